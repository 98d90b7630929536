package tools

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/log"
	"github.com/sandevgo/annabot/pkg/srv"
)

var _ srv.Service = (*Supervisor)(nil)

type toolLoop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Supervisor runs the context loop of every enabled tool, each under its own
// cancellable context, and joins them all on shutdown. Toggling a tool in the
// registry starts or stops its loop.
type Supervisor struct {
	registry *Registry
	emit     func(core.Event)

	mu     sync.Mutex
	runCtx context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	loops  map[string]*toolLoop
}

func NewSupervisor(registry *Registry, emit func(core.Event)) *Supervisor {
	s := &Supervisor{registry: registry, emit: emit, loops: make(map[string]*toolLoop)}
	registry.onToggle(s.toggled)
	return s
}

// Start initializes tools and launches their loops. It does not block.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.group != nil {
		return errors.New("supervisor already started")
	}

	s.registry.Initialize(ctx)

	s.runCtx, s.cancel = context.WithCancel(ctx)
	s.group = &errgroup.Group{}

	for name, looper := range s.registry.Loopers() {
		s.startLocked(name, looper)
	}
	return nil
}

// Running reports whether the named tool's loop is live.
func (s *Supervisor) Running(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loops[name]
	return ok
}

func (s *Supervisor) startLocked(name string, looper core.ContextLooper) {
	if _, running := s.loops[name]; running {
		return
	}

	ctx, cancel := context.WithCancel(s.runCtx)
	l := &toolLoop{cancel: cancel, done: make(chan struct{})}
	s.loops[name] = l

	logger := log.FromCtx(s.runCtx).With().Str("tool", name).Logger()
	s.group.Go(func() error {
		defer close(l.done)
		defer s.forget(name, l)

		logger.Debug().Msg("context loop started")
		if err := looper.RunContextLoop(ctx, s.emit); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("context loop stopped")
			return nil
		}
		logger.Debug().Msg("context loop finished")
		return nil
	})
}

// forget drops l from the running set unless it was already replaced.
func (s *Supervisor) forget(name string, l *toolLoop) {
	s.mu.Lock()
	if s.loops[name] == l {
		delete(s.loops, name)
	}
	s.mu.Unlock()
	l.cancel()
}

// toggled follows the registry: a disabled tool's loop is cancelled and
// joined before returning, an enabled one is started if the supervisor runs.
func (s *Supervisor) toggled(ctx context.Context, name string, enabled bool) {
	s.mu.Lock()
	if enabled {
		if s.group != nil {
			if looper, ok := s.registry.looper(name); ok {
				s.startLocked(name, looper)
			}
		}
		s.mu.Unlock()
		return
	}

	l, ok := s.loops[name]
	delete(s.loops, name)
	s.mu.Unlock()
	if !ok {
		return
	}

	l.cancel()
	select {
	case <-l.done:
		log.FromCtx(ctx).Debug().Str("tool", name).Msg("context loop stopped by toggle")
	case <-ctx.Done():
	}
}

// Shutdown cancels every loop, waits for them and cleans the tools up.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	cancel, g := s.cancel, s.group
	s.cancel, s.group = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		done := make(chan error, 1)
		go func() { done <- g.Wait() }()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.registry.Cleanup(ctx)
}
