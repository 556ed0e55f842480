package tools

import (
	"encoding/json"
	"fmt"

	"mcp-http-test/mcp/types"
)

// Handler executes a registered tool using the provided arguments.
type Handler func(arguments json.RawMessage) (*types.CallToolResult, error)

// Registration 绑定工具定义与其处理函数。
type Registration struct {
	Definition types.ToolDefinition
	Handler    Handler
}

// Registry holds tools in registration order. It is filled once during
// startup and only read afterwards; Register is not safe for concurrent use.
type Registry struct {
	index map[string]Registration
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: map[string]Registration{}}
}

// Default returns a registry holding the built-in tools.
func Default() *Registry {
	r := NewRegistry()
	r.MustRegister(RagQueryTool())
	return r
}

// NewRegistration 校验工具定义与处理函数，并补全默认的输入 schema。
func NewRegistration(def types.ToolDefinition, handler Handler) (Registration, error) {
	if def.Name == "" {
		return Registration{}, fmt.Errorf("tool name is required")
	}
	if handler == nil {
		return Registration{}, fmt.Errorf("tool handler for %s is nil", def.Name)
	}

	sanitized := def
	if sanitized.InputSchema == nil {
		sanitized.InputSchema = types.JSONSchema{"type": "object"}
	}

	return Registration{Definition: sanitized, Handler: handler}, nil
}

// Register 注册工具，重复的名称会被拒绝。
func (r *Registry) Register(def types.ToolDefinition, handler Handler) error {
	registration, err := NewRegistration(def, handler)
	if err != nil {
		return err
	}

	name := registration.Definition.Name
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}

	r.index[name] = registration
	r.order = append(r.order, name)
	return nil
}

// MustRegister 注册失败时直接 panic，用于启动阶段的内置工具。
func (r *Registry) MustRegister(def types.ToolDefinition, handler Handler) {
	if err := r.Register(def, handler); err != nil {
		panic(err)
	}
}

// Lookup finds a tool by exact name.
func (r *Registry) Lookup(name string) (Registration, bool) {
	registration, ok := r.index[name]
	return registration, ok
}

// Definitions lists tool definitions in registration order.
func (r *Registry) Definitions() []types.ToolDefinition {
	defs := make([]types.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.index[name].Definition)
	}
	return defs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
