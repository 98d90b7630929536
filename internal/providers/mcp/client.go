package mcp

import (
	"fmt"
	"sync"

	"github.com/mark3labs/mcp-go/client"
)

// ManagedClient is one pooled server connection, named after its entry in
// mcp_config.json.
type ManagedClient struct {
	*client.Client
	name string

	mu     sync.RWMutex
	closed bool
}

func (mc *ManagedClient) Name() string { return mc.name }

// Close is idempotent. A failed close names the server it came from.
func (mc *ManagedClient) Close() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	if mc.closed {
		return nil
	}
	mc.closed = true
	if mc.Client == nil {
		return nil
	}
	if err := mc.Client.Close(); err != nil {
		return fmt.Errorf("close mcp server %s: %w", mc.name, err)
	}
	return nil
}

func (mc *ManagedClient) IsClosed() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.closed
}
