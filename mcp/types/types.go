package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
)

const (
	// ProtocolVersion identifies the protocol dialect spoken by this server.
	ProtocolVersion = "mcp/0.1"

	DefaultServerName    = "mcp-http-test"
	DefaultServerVersion = "0.1.0"
)

// Method is the discriminator selecting the operation a Request asks for.
type Method string

// Methods understood by the dispatcher. The set is closed: anything not listed
// here resolves to method_not_found.
const (
	MethodListTools     Method = "list_tools"
	MethodCallTool      Method = "call_tool"
	MethodGetServerInfo Method = "get_server_info"
)

var knownMethods = map[string]Method{
	string(MethodListTools):     MethodListTools,
	string(MethodCallTool):      MethodCallTool,
	string(MethodGetServerInfo): MethodGetServerInfo,
}

// ParseMethod resolves a raw method name. Matching is exact and case-sensitive.
func ParseMethod(raw string) (Method, bool) {
	m, ok := knownMethods[raw]
	return m, ok
}

// Methods returns the supported methods in a stable order.
func Methods() []Method {
	return []Method{MethodListTools, MethodCallTool, MethodGetServerInfo}
}

// Request is the envelope posted by clients.
type Request struct {
	ID     *string         `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the envelope returned to clients. ID and Error are always
// serialised, as null when absent.
type Response struct {
	ID     *string `json:"id"`
	Result any     `json:"result"`
	Error  *Error  `json:"error"`
}

// ErrorCode is the machine readable part of an Error.
type ErrorCode string

const (
	CodeMethodNotFound ErrorCode = "method_not_found"
	CodeToolNotFound   ErrorCode = "tool_not_found"
	CodeInvalidParams  ErrorCode = "invalid_params"
	CodeInvalidRequest ErrorCode = "invalid_request"
)

// HTTPStatus maps an error code onto the status code sent with it.
func (c ErrorCode) HTTPStatus() int {
	switch c {
	case CodeToolNotFound:
		return http.StatusNotFound
	case CodeMethodNotFound, CodeInvalidParams:
		return http.StatusBadRequest
	case CodeInvalidRequest:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Error is the structured error attached to a Response.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// EmptyResult is the result carried by error responses.
type EmptyResult struct{}

// ToolDefinition describes a tool that the server can execute.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"input_schema"`
}

// JSONSchema represents a JSON schema document used to describe tool inputs.
type JSONSchema map[string]any

// ListToolsResult is returned by list_tools.
type ListToolsResult struct {
	Tools []ToolDefinition `json:"tools"`
}

// CallToolParams is the payload for call_tool. Name stays raw so that any
// JSON value can be rendered back in an error message; only a JSON string
// can match a tool.
type CallToolParams struct {
	Name      json.RawMessage `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResult wraps the response returned by a tool invocation.
type CallToolResult struct {
	Content []ContentItem `json:"content"`
	Data    any           `json:"data,omitempty"`
}

// ContentItem is a minimal text-based content payload.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextContent creates a text content item.
func TextContent(text string) ContentItem {
	return ContentItem{Type: "text", Text: text}
}

// ServerInfoResult is returned by get_server_info.
type ServerInfoResult struct {
	Name         string             `json:"name"`
	Version      string             `json:"version"`
	Protocol     string             `json:"protocol"`
	Capabilities ServerCapabilities `json:"capabilities"`
}

// ServerCapabilities advertises what the server supports.
type ServerCapabilities struct {
	Tools bool `json:"tools"`
}

// ServerInfo names this server instance.
type ServerInfo struct {
	Name    string
	Version string
}

// NewResponse builds a successful response echoing id.
func NewResponse(id *string, result any) Response {
	return Response{ID: CloneID(id), Result: result}
}

// NewErrorResponse builds a response with an empty result and the given error.
func NewErrorResponse(id *string, errObj *Error) Response {
	return Response{ID: CloneID(id), Result: EmptyResult{}, Error: errObj}
}

// CloneID 拷贝请求 ID，避免响应与请求共享内存。
func CloneID(id *string) *string {
	if id == nil {
		return nil
	}
	clone := *id
	return &clone
}

// DecodeParams 将参数对象解码到目标结构；空值或 null 不修改目标，未知字段被忽略。
func DecodeParams(raw json.RawMessage, target any) error {
	if IsNull(raw) {
		return nil
	}
	if !IsObject(raw) {
		return errors.New("expected an object")
	}
	if err := json.Unmarshal(raw, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return fmt.Errorf("%s: expected %s, got %s", typeErr.Field, jsonKind(typeErr.Type.Kind()), typeErr.Value)
		}
		return errors.New("malformed object")
	}
	return nil
}

func jsonKind(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	default:
		return k.String()
	}
}

// IsNull reports whether raw is empty or the JSON literal null.
func IsNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// IsObject reports whether raw holds a JSON object.
func IsObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// RenderValue renders a raw JSON value for use in messages and snippets.
// Strings render as their contents, an absent value or null renders as
// "null", and anything else renders as its compact JSON text.
func RenderValue(raw json.RawMessage) string {
	if IsNull(raw) {
		return "null"
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	return compact.String()
}

// AsString returns the contents of raw when it holds a JSON string.
func AsString(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return "", false
	}
	var str string
	if err := json.Unmarshal(trimmed, &str); err != nil {
		return "", false
	}
	return str, true
}

// IsEmptyValue reports whether raw is absent or one of the JSON values that
// count as "nothing given": null, false, 0, "", [] or {}.
func IsEmptyValue(raw json.RawMessage) bool {
	if IsNull(raw) {
		return true
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch val := v.(type) {
	case bool:
		return !val
	case float64:
		return val == 0
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}

// NewError 构造通用的错误对象。
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NewErrorf 基于格式化字符串创建错误对象。
func NewErrorf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidParamsError 将给定错误包装为 invalid_params 错误。
func NewInvalidParamsError(err error) *Error {
	if err == nil {
		err = errors.New("invalid parameters")
	}
	return &Error{Code: CodeInvalidParams, Message: err.Error()}
}

// NewInvalidRequestError wraps err as an invalid_request error.
func NewInvalidRequestError(err error) *Error {
	if err == nil {
		err = errors.New("invalid request")
	}
	return &Error{Code: CodeInvalidRequest, Message: err.Error()}
}
