package session

import (
	"context"
	"sync"

	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

// IdentityProvider mantiene la identidad actual de una sesión y notifica sus cambios.
// Es el único lugar donde se observan cambios externos de identidad.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*entity.Identity, error)
	SignUp(ctx context.Context, email, password string) (*entity.Identity, error)
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	Current() *entity.Identity
	// OnIdentityChanged registra fn; se invoca de forma síncrona en cada cambio.
	OnIdentityChanged(fn func(*entity.Identity)) (cancel func())
}

var _ IdentityProvider = (*Provider)(nil)

// Provider IdentityProvider sobre un CredentialStore. Una instancia por sesión.
type Provider struct {
	creds repository.CredentialStore

	mu        sync.Mutex
	current   *entity.Identity
	listeners []listener
	nextID    uint64
}

type listener struct {
	id uint64
	fn func(*entity.Identity)
}

// NewProvider construye el proveedor sin identidad activa.
func NewProvider(creds repository.CredentialStore) *Provider {
	return &Provider{creds: creds}
}

// SignIn autentica y activa la identidad.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*entity.Identity, error) {
	id, err := p.creds.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	p.setCurrent(id)
	return id, nil
}

// SignUp crea la identidad y la activa de inmediato, sin paso de confirmación.
func (p *Provider) SignUp(ctx context.Context, email, password string) (*entity.Identity, error) {
	id, err := p.creds.CreateIdentity(ctx, email, password)
	if err != nil {
		return nil, err
	}
	p.setCurrent(id)
	return id, nil
}

// SignOut desactiva la identidad actual. Sin identidad activa no hace nada.
func (p *Provider) SignOut(_ context.Context) error {
	p.setCurrent(nil)
	return nil
}

// SendPasswordReset delega en el almacén de credenciales.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	return p.creds.SendCredentialReset(ctx, email)
}

// ConfirmPasswordReset delega en el almacén de credenciales.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	return p.creds.ConfirmCredentialReset(ctx, token, newPassword)
}

// Current identidad activa o nil.
func (p *Provider) Current() *entity.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	c := *p.current
	return &c
}

// OnIdentityChanged registra un listener.
func (p *Provider) OnIdentityChanged(fn func(*entity.Identity)) func() {
	p.mu.Lock()
	p.nextID++
	id := p.nextID
	p.listeners = append(p.listeners, listener{id: id, fn: fn})
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		for i, l := range p.listeners {
			if l.id == id {
				p.listeners = append(p.listeners[:i], p.listeners[i+1:]...)
				return
			}
		}
	}
}

func (p *Provider) setCurrent(id *entity.Identity) {
	p.mu.Lock()
	if p.current == nil && id == nil {
		p.mu.Unlock()
		return
	}
	p.current = id
	listeners := append([]listener(nil), p.listeners...)
	p.mu.Unlock()

	for _, l := range listeners {
		var c *entity.Identity
		if id != nil {
			cp := *id
			c = &cp
		}
		l.fn(c)
	}
}
