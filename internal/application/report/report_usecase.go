// Package report arma el reporte de cartera (usuarios e inmuebles) que se exporta en PDF.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/amlak-api/internal/domain"
	"github.com/jhoicas/amlak-api/internal/domain/entity"
	"github.com/jhoicas/amlak-api/internal/domain/repository"
)

// PortfolioRow una fila del reporte: un usuario con el resumen de sus inmuebles.
type PortfolioRow struct {
	UserID     string
	Email      string
	FullName   string
	Role       entity.Role
	Properties int
	AreaSqm    decimal.Decimal
	LastLogin  *time.Time
}

// Portfolio datos del reporte, listos para renderizar.
type Portfolio struct {
	GeneratedAt     time.Time
	GeneratedBy     string
	Rows            []PortfolioRow
	TotalUsers      int
	TotalProperties int
	TotalAreaSqm    decimal.Decimal
}

// PortfolioPDFGenerator puerto del renderizador PDF.
type PortfolioPDFGenerator interface {
	GeneratePortfolioPDF(ctx context.Context, p *Portfolio) ([]byte, error)
}

// ReportUseCase genera el reporte de cartera. Solo admin.
type ReportUseCase struct {
	store     repository.DocumentStore
	generator PortfolioPDFGenerator
	now       func() time.Time
}

// NewReportUseCase construye el caso de uso.
func NewReportUseCase(store repository.DocumentStore, generator PortfolioPDFGenerator) *ReportUseCase {
	return &ReportUseCase{store: store, generator: generator, now: time.Now}
}

// Build reúne perfiles e inmuebles en un Portfolio ordenado por email.
func (uc *ReportUseCase) Build(ctx context.Context, actor entity.Principal) (*Portfolio, error) {
	if actor.Demo || !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := uc.store.Query(ctx, repository.Query{Collection: repository.CollectionUsers})
	if err != nil {
		return nil, fmt.Errorf("reporte: usuarios: %w", err)
	}
	props, err := uc.store.Query(ctx, repository.Query{Collection: repository.CollectionProperties})
	if err != nil {
		return nil, fmt.Errorf("reporte: inmuebles: %w", err)
	}

	byOwner := make(map[string]*PortfolioRow, len(users.Docs))
	out := &Portfolio{GeneratedAt: uc.now().UTC(), GeneratedBy: actor.ID, TotalAreaSqm: decimal.Zero}
	for _, d := range users.Docs {
		p := entity.ProfileFromFields(d.ID, d.Fields)
		byOwner[d.ID] = &PortfolioRow{
			UserID:    d.ID,
			Email:     p.Email,
			FullName:  p.FullName,
			Role:      p.Role,
			AreaSqm:   decimal.Zero,
			LastLogin: p.LastLogin,
		}
	}
	for _, d := range props.Docs {
		p := entity.PropertyFromFields(d.ID, d.Fields)
		row, ok := byOwner[p.OwnerID]
		if !ok {
			// inmueble sin perfil: se cuenta en el total pero no tiene fila
			out.TotalProperties++
			out.TotalAreaSqm = out.TotalAreaSqm.Add(p.AreaSqm)
			continue
		}
		row.Properties++
		row.AreaSqm = row.AreaSqm.Add(p.AreaSqm)
		out.TotalProperties++
		out.TotalAreaSqm = out.TotalAreaSqm.Add(p.AreaSqm)
	}

	out.Rows = make([]PortfolioRow, 0, len(byOwner))
	for _, r := range byOwner {
		r.AreaSqm = r.AreaSqm.Round(2)
		out.Rows = append(out.Rows, *r)
	}
	sort.Slice(out.Rows, func(i, j int) bool {
		if out.Rows[i].Email != out.Rows[j].Email {
			return out.Rows[i].Email < out.Rows[j].Email
		}
		return out.Rows[i].UserID < out.Rows[j].UserID
	})
	out.TotalUsers = len(out.Rows)
	out.TotalAreaSqm = out.TotalAreaSqm.Round(2)
	return out, nil
}

// PortfolioPDF construye el reporte y lo renderiza.
func (uc *ReportUseCase) PortfolioPDF(ctx context.Context, actor entity.Principal) ([]byte, error) {
	p, err := uc.Build(ctx, actor)
	if err != nil {
		return nil, err
	}
	pdf, err := uc.generator.GeneratePortfolioPDF(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("reporte: pdf: %w", err)
	}
	return pdf, nil
}
