package mcp

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

type TransportFactory func(TransportType) (Transport, error)

// Pool owns the live MCP client of every connected server, keyed by server name.
type Pool struct {
	mu               sync.RWMutex
	clients          map[string]*ManagedClient
	transportFactory TransportFactory
}

func NewPool() *Pool {
	return NewPoolWithFactory(NewTransport)
}

func NewPoolWithFactory(factory TransportFactory) *Pool {
	return &Pool{
		clients:          make(map[string]*ManagedClient),
		transportFactory: factory,
	}
}

// Add connects to the server and replaces any previous client with the same name.
func (p *Pool) Add(ctx context.Context, name string, cfg ServerConfig) (*ManagedClient, error) {
	tType, err := cfg.GetTransport()
	if err != nil {
		return nil, err
	}

	transport, err := p.transportFactory(tType)
	if err != nil {
		return nil, err
	}

	cli, err := transport(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("transport creation failed: %w", err)
	}

	managed := &ManagedClient{Client: cli, name: name}

	p.mu.Lock()
	old := p.clients[name]
	p.clients[name] = managed
	p.mu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return managed, nil
}

func (p *Pool) Del(name string) error {
	p.mu.Lock()
	cli, exists := p.clients[name]
	delete(p.clients, name)
	p.mu.Unlock()

	if !exists {
		return nil
	}
	return cli.Close()
}

func (p *Pool) Get(name string) (*ManagedClient, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	cli, ok := p.clients[name]
	if !ok || cli.IsClosed() {
		return nil, false
	}
	return cli, true
}

func (p *Pool) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.clients))
	for name := range p.clients {
		names = append(names, name)
	}
	return names
}

func (p *Pool) Close() error {
	p.mu.Lock()
	clients := p.clients
	p.clients = make(map[string]*ManagedClient)
	p.mu.Unlock()

	var errs []error
	for _, cli := range clients {
		if err := cli.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
