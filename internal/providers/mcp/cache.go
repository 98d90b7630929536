package mcp

import "sync"

// RemoteTool is one tool advertised by an MCP server.
type RemoteTool struct {
	Name        string
	Description string
}

// ToolCache keeps the last tool listing of one server.
type ToolCache struct {
	mu    sync.RWMutex
	tools []RemoteTool
	valid bool
}

func NewToolCache() *ToolCache {
	return &ToolCache{}
}

func (c *ToolCache) Get() ([]RemoteTool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid {
		return nil, false
	}
	out := make([]RemoteTool, len(c.tools))
	copy(out, c.tools)
	return out, true
}

func (c *ToolCache) Update(tools []RemoteTool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tools = make([]RemoteTool, len(tools))
	copy(c.tools, tools)
	c.valid = true
}

func (c *ToolCache) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, t := range c.tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

func (c *ToolCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = false
	c.tools = nil
}
