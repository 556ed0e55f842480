package mcp

import (
	"errors"
	"fmt"
	"net/http"

	"mcp-http-test/mcp/tools"
	"mcp-http-test/mcp/types"
)

// methodHandler processes a request and returns a result or an error.
type methodHandler func(req types.Request) (any, *types.Error)

// Dispatcher routes requests to method handlers. It holds no mutable state
// once constructed, so one instance may serve any number of concurrent
// requests.
type Dispatcher struct {
	handlers map[types.Method]methodHandler
	tools    *tools.Registry
	info     types.ServerInfo
}

// Option customises dispatcher behaviour during construction.
type Option func(*Dispatcher)

// WithServerInfo overrides the name and version reported by get_server_info.
func WithServerInfo(name, version string) Option {
	return func(d *Dispatcher) {
		if name != "" {
			d.info.Name = name
		}
		if version != "" {
			d.info.Version = version
		}
	}
}

// WithRegistry replaces the default tool registry.
func WithRegistry(r *tools.Registry) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.tools = r
		}
	}
}

// NewDispatcher builds a dispatcher serving the built-in methods.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: map[types.Method]methodHandler{},
		tools:    tools.Default(),
		info: types.ServerInfo{
			Name:    types.DefaultServerName,
			Version: types.DefaultServerVersion,
		},
	}

	for _, opt := range opts {
		opt(d)
	}

	d.registerBuiltins()
	return d
}

// Info returns the identity this dispatcher reports.
func (d *Dispatcher) Info() types.ServerInfo {
	return d.info
}

// Dispatch resolves a request into a response and the HTTP status that goes
// with it. It never panics for a request produced by types.ParseRequest; every
// failure is encoded in the response's error field.
func (d *Dispatcher) Dispatch(req types.Request) (types.Response, int) {
	method, ok := types.ParseMethod(req.Method)
	if !ok {
		return errorResponse(req, types.NewErrorf(types.CodeMethodNotFound, "Unknown method: %s", req.Method))
	}

	result, errObj := d.handlers[method](req)
	if errObj != nil {
		return errorResponse(req, errObj)
	}
	return types.NewResponse(req.ID, result), http.StatusOK
}

func errorResponse(req types.Request, errObj *types.Error) (types.Response, int) {
	return types.NewErrorResponse(req.ID, errObj), errObj.Code.HTTPStatus()
}

func (d *Dispatcher) registerBuiltins() {
	d.handlers[types.MethodListTools] = d.handleListTools
	d.handlers[types.MethodCallTool] = d.handleCallTool
	d.handlers[types.MethodGetServerInfo] = d.handleGetServerInfo
}

func (d *Dispatcher) handleListTools(_ types.Request) (any, *types.Error) {
	return types.ListToolsResult{Tools: d.tools.Definitions()}, nil
}

func (d *Dispatcher) handleGetServerInfo(_ types.Request) (any, *types.Error) {
	return types.ServerInfoResult{
		Name:     d.info.Name,
		Version:  d.info.Version,
		Protocol: types.ProtocolVersion,
		Capabilities: types.ServerCapabilities{
			Tools: true,
		},
	}, nil
}

func (d *Dispatcher) handleCallTool(req types.Request) (any, *types.Error) {
	var params types.CallToolParams
	if err := types.DecodeParams(req.Params, &params); err != nil {
		return nil, types.NewInvalidParamsError(fmt.Errorf("params: %w", err))
	}

	name, ok := types.AsString(params.Name)
	if !ok {
		return nil, types.NewErrorf(types.CodeToolNotFound, "Unknown tool: %s", types.RenderValue(params.Name))
	}

	registration, ok := d.tools.Lookup(name)
	if !ok {
		return nil, types.NewErrorf(types.CodeToolNotFound, "Unknown tool: %s", name)
	}

	// null, false, 0, "", [] and {} all mean "no arguments".
	arguments := params.Arguments
	if types.IsEmptyValue(arguments) {
		arguments = nil
	} else if !types.IsObject(arguments) {
		return nil, types.NewInvalidParamsError(errors.New("arguments: expected an object"))
	}

	result, err := registration.Handler(arguments)
	if err != nil {
		return nil, types.NewInvalidParamsError(err)
	}
	if result == nil {
		result = &types.CallToolResult{Content: []types.ContentItem{}}
	}
	return result, nil
}
