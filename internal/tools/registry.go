package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool groups
const (
	GroupData   = "data"
	GroupSignal = "signal"
	GroupSector = "sector"
)

// Entry is a registered tool and its instrumented handler
type Entry struct {
	Tool    mcp.Tool
	Group   string
	Handler server.ToolHandlerFunc
}

// Info describes a tool for listings
type Info struct {
	Name        string
	Group       string
	Description string
}

// Registry holds the tools exposed by the server, in registration order
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
	wrap    []server.ToolHandlerMiddleware
}

// NewRegistry creates a registry; every registered handler is wrapped by
// the given middleware, outermost first
func NewRegistry(mw ...server.ToolHandlerMiddleware) *Registry {
	return &Registry{
		entries: make(map[string]Entry),
		wrap:    mw,
	}
}

// Register adds a tool. Registering a name twice replaces the handler.
func (r *Registry) Register(group string, tool mcp.Tool, h server.ToolHandlerFunc) {
	for i := len(r.wrap) - 1; i >= 0; i-- {
		h = r.wrap[i](h)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[tool.Name]; !ok {
		r.order = append(r.order, tool.Name)
	}
	r.entries[tool.Name] = Entry{Tool: tool, Group: group, Handler: h}
}

// Get returns a tool by name
func (r *Registry) Get(name string) (Entry, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return Entry{}, fmt.Errorf("unknown tool: %s (available: %v)", name, r.List())
	}
	return e, nil
}

// List returns tool names sorted alphabetically
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllInfo describes every tool in registration order
func (r *Registry) AllInfo() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		infos = append(infos, Info{Name: name, Group: e.Group, Description: e.Tool.Description})
	}
	return infos
}

// Call invokes a tool directly, outside any MCP session
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	e, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return e.Handler(ctx, req)
}

// Attach adds every tool to an MCP server
func (r *Registry) Attach(s *server.MCPServer) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.order {
		e := r.entries[name]
		s.AddTool(e.Tool, e.Handler)
	}
}
