package srv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name  string
	order *[]string
	err   error
}

func (r *recorder) Start(ctx context.Context) error { return nil }

func (r *recorder) Shutdown(ctx context.Context) error {
	*r.order = append(*r.order, r.name)
	return r.err
}

func TestShutdownServices_ReverseOrder(t *testing.T) {
	var order []string
	services := []Service{
		&recorder{name: "storage", order: &order},
		&recorder{name: "agent", order: &order, err: errors.New("boom")},
		&recorder{name: "transport", order: &order},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ShutdownServices(ctx, services)
	assert.Equal(t, []string{"transport", "agent", "storage"}, order)
}

func TestNewCleanup(t *testing.T) {
	called := false
	s := NewCleanup(func() error {
		called = true
		return nil
	})

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, called)
	require.NoError(t, s.Shutdown(context.Background()))
	assert.True(t, called)
}

func TestNewFunc(t *testing.T) {
	var got context.Context
	s := NewFunc(func(ctx context.Context) error {
		got = ctx
		return nil
	})

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	assert.Equal(t, ctx, got)
	require.NoError(t, s.Shutdown(ctx))
}
