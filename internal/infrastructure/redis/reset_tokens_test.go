package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/amlak-api/internal/domain"
)

// fakeRedis mapa en memoria con la semántica de SET EX y GETDEL.
type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	fail error
}

func newFake() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, exp time.Duration) *goredis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return goredis.NewStatusResult("", f.fail)
	}
	f.data[key] = value.(string)
	f.ttl[key] = exp
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) GetDel(_ context.Context, key string) *goredis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return goredis.NewStringResult("", f.fail)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	delete(f.data, key)
	return goredis.NewStringResult(v, nil)
}

func TestResetTokens_UnSoloUso(t *testing.T) {
	fake := newFake()
	repo := &ResetTokens{client: fake}
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, "tok", "id-1", 15*time.Minute))
	assert.Equal(t, 15*time.Minute, fake.ttl[keyPrefix+"tok"])

	id, err := repo.Consume(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "id-1", id)

	_, err = repo.Consume(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResetTokens_Errores(t *testing.T) {
	fake := newFake()
	repo := &ResetTokens{client: fake}
	ctx := context.Background()

	assert.ErrorIs(t, repo.Save(ctx, "", "id", time.Minute), domain.ErrInvalidInput)
	_, err := repo.Consume(ctx, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	fake.fail = assert.AnError
	assert.ErrorIs(t, repo.Save(ctx, "tok", "id", time.Minute), assert.AnError)
	_, err = repo.Consume(ctx, "tok")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}
