package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	mcpproto "github.com/mark3labs/mcp-go/mcp"
	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/pkg/log"
	"github.com/sandevgo/annabot/pkg/retry"
)

// CommandList is the Execute command that lists the server's tools.
const CommandList = "list"

var ErrNotConnected = errors.New("mcp server is not connected")

type Timeouts struct {
	Connect  time.Duration
	ToolList time.Duration
	ToolCall time.Duration
}

func NewDefaultTimeouts() Timeouts {
	return Timeouts{
		Connect:  30 * time.Second,
		ToolList: 5 * time.Second,
		ToolCall: 2 * time.Minute,
	}
}

var _ core.Tool = (*ServerTool)(nil)

// ServerTool exposes one MCP server as a single tool. The Execute command is
// the remote tool name and args are key=value pairs.
type ServerTool struct {
	name     string
	cfg      ServerConfig
	pool     *Pool
	cache    *ToolCache
	retrier  *retry.Retrier
	timeouts Timeouts
}

func NewServerTool(name string, cfg ServerConfig, pool *Pool, retrier *retry.Retrier) *ServerTool {
	if retrier == nil {
		retrier = retry.NewDefaultRetrier()
	}
	return &ServerTool{
		name:     name,
		cfg:      cfg,
		pool:     pool,
		cache:    NewToolCache(),
		retrier:  retrier,
		timeouts: NewDefaultTimeouts(),
	}
}

// LoadServerTools builds a ServerTool for every configured server, sorted by name.
func LoadServerTools(ctx context.Context, storage *FileStorage, pool *Pool, retrier *retry.Retrier) ([]*ServerTool, error) {
	cfg, err := storage.Load(ctx)
	if err != nil {
		return nil, err
	}

	tools := make([]*ServerTool, 0, len(cfg.MCPServers))
	for _, name := range cfg.ServerNames() {
		tools = append(tools, NewServerTool(name, cfg.MCPServers[name], pool, retrier))
	}
	return tools, nil
}

func (s *ServerTool) Name() string {
	return s.name
}

func (s *ServerTool) Capability() string {
	if s.cfg.Description != "" {
		return s.cfg.Description
	}
	return "mcp server"
}

// EnabledByDefault reports whether the server starts switched on.
func (s *ServerTool) EnabledByDefault() bool {
	return !s.cfg.Disabled
}

func (s *ServerTool) Initialize(ctx context.Context) error {
	logger := log.FromCtx(ctx).With().Str("server", s.name).Logger()
	logger.Info().
		Str("url", s.cfg.URL).
		Str("command", s.cfg.Command).
		Msg("starting mcp server")

	if _, err := s.cfg.GetTransport(); err != nil {
		return fmt.Errorf("server %s: %w", s.name, err)
	}

	err := s.retrier.Do(ctx, func() error {
		connectCtx, cancel := context.WithTimeout(ctx, s.timeouts.Connect)
		defer cancel()

		_, err := s.pool.Add(connectCtx, s.name, s.cfg)
		if err != nil {
			logger.Warn().Err(err).Msg("mcp connect attempt failed")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("connect %s: %w", s.name, err)
	}

	if _, err := s.refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to list mcp tools")
	}
	logger.Info().Msg("mcp server connected")
	return nil
}

func (s *ServerTool) refresh(ctx context.Context) ([]RemoteTool, error) {
	cli, ok := s.pool.Get(s.name)
	if !ok {
		return nil, ErrNotConnected
	}

	listCtx, cancel := context.WithTimeout(ctx, s.timeouts.ToolList)
	defer cancel()

	resp, err := cli.ListTools(listCtx, mcpproto.ListToolsRequest{})
	if err != nil {
		return nil, err
	}

	tools := make([]RemoteTool, 0, len(resp.Tools))
	for _, t := range resp.Tools {
		tools = append(tools, RemoteTool{Name: t.Name, Description: t.Description})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	s.cache.Update(tools)
	return tools, nil
}

// Tools returns the cached remote tool list, refreshing it when stale.
func (s *ServerTool) Tools(ctx context.Context) ([]RemoteTool, error) {
	if tools, ok := s.cache.Get(); ok {
		return tools, nil
	}
	return s.refresh(ctx)
}

func (s *ServerTool) Execute(ctx context.Context, command string, args []string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" || command == CommandList {
		return s.list(ctx)
	}

	cli, ok := s.pool.Get(s.name)
	if !ok {
		return "", ErrNotConnected
	}

	arguments, err := ParseArgs(args)
	if err != nil {
		return "", err
	}

	log.FromCtx(ctx).Info().Str("server", s.name).Str("tool", command).Msg("executing mcp tool")

	req := mcpproto.CallToolRequest{}
	req.Params.Name = command
	req.Params.Arguments = arguments

	callCtx, cancel := context.WithTimeout(ctx, s.timeouts.ToolCall)
	defer cancel()

	res, err := cli.CallTool(callCtx, req)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	for _, content := range res.Content {
		switch c := content.(type) {
		case mcpproto.TextContent:
			output.WriteString(c.Text + "\n")
		case *mcpproto.TextContent:
			output.WriteString(c.Text + "\n")
		}
	}

	text := strings.TrimSpace(output.String())
	if res.IsError {
		return "", fmt.Errorf("tool execution failed: %s", text)
	}
	return text, nil
}

func (s *ServerTool) list(ctx context.Context) (string, error) {
	tools, err := s.Tools(ctx)
	if err != nil {
		return "", err
	}
	if len(tools) == 0 {
		return "no tools", nil
	}

	lines := make([]string, 0, len(tools))
	for _, t := range tools {
		if t.Description == "" {
			lines = append(lines, t.Name)
			continue
		}
		lines = append(lines, t.Name+": "+t.Description)
	}
	return strings.Join(lines, "\n"), nil
}

func (s *ServerTool) Cleanup(context.Context) error {
	s.cache.Invalidate()
	return s.pool.Del(s.name)
}

func (s *ServerTool) IsAvailable() bool {
	_, ok := s.pool.Get(s.name)
	return ok
}

// ParseArgs turns key=value pairs into tool arguments. Values that parse as
// JSON keep their type; everything else is passed as a string.
func ParseArgs(args []string) (map[string]any, error) {
	out := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, want key=value", arg)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			out[key] = decoded
			continue
		}
		out[key] = value
	}
	return out, nil
}
