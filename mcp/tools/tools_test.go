package tools

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/baalimago/go_away_boilerplate/pkg/testboil"

	"mcp-http-test/mcp/types"
)

func noopHandler(json.RawMessage) (*types.CallToolResult, error) {
	return &types.CallToolResult{}, nil
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(types.ToolDefinition{Name: "first"}, noopHandler); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(types.ToolDefinition{Name: "second"}, noopHandler); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	testboil.FailTestIfDiff(t, r.Len(), 2)

	defs := r.Definitions()
	testboil.FailTestIfDiff(t, defs[0].Name, "first")
	testboil.FailTestIfDiff(t, defs[1].Name, "second")
	if defs[0].InputSchema["type"] != "object" {
		t.Errorf("expected default object schema, got %v", defs[0].InputSchema)
	}
}

func TestRegistryRegisterRejects(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(types.ToolDefinition{Name: "dup"}, noopHandler)

	tests := []struct {
		name    string
		def     types.ToolDefinition
		handler Handler
	}{
		{"empty name", types.ToolDefinition{}, noopHandler},
		{"nil handler", types.ToolDefinition{Name: "x"}, nil},
		{"duplicate", types.ToolDefinition{Name: "dup"}, noopHandler},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := r.Register(tt.def, tt.handler); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	testboil.FailTestIfDiff(t, r.Len(), 1)
}

func TestMustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewRegistry().MustRegister(types.ToolDefinition{}, noopHandler)
}

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	testboil.FailTestIfDiff(t, r.Len(), 1)

	reg, ok := r.Lookup(RagQueryToolName)
	if !ok {
		t.Fatalf("%s not registered", RagQueryToolName)
	}
	required, _ := reg.Definition.InputSchema["required"].([]string)
	if len(required) != 1 || required[0] != "query" {
		t.Fatalf("expected query to be required, got %v", reg.Definition.InputSchema["required"])
	}

	if _, ok := r.Lookup("Dummy_Rag_Query"); ok {
		t.Fatal("lookup must be case-sensitive")
	}
}

func TestRagQueryHandler(t *testing.T) {
	_, handler := RagQueryTool()

	result, err := handler(json.RawMessage(`{"query":"foo"}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	testboil.FailTestIfDiff(t, result.Content[0].Text, "Found 2 dummy results")
	testboil.FailTestIfDiff(t, result.Content[0].Type, "text")

	data, ok := result.Data.(RagQueryData)
	if !ok {
		t.Fatalf("unexpected data type %T", result.Data)
	}
	testboil.FailTestIfDiff(t, len(data.Results), 2)
	for _, entry := range data.Results {
		testboil.AssertStringContains(t, entry.Snippet, "'foo'")
	}
}

func TestRagQueryHandlerDefaultsQuery(t *testing.T) {
	_, handler := RagQueryTool()

	for _, raw := range []json.RawMessage{nil, json.RawMessage(`{}`), json.RawMessage(`null`)} {
		result, err := handler(raw)
		if err != nil {
			t.Fatalf("handler(%s): %v", raw, err)
		}
		data := result.Data.(RagQueryData)
		testboil.FailTestIfDiff(t, data.Results[0].Snippet, "This is a dummy snippet for ''.")
	}
}

func TestRagQueryHandlerRendersNonStringQuery(t *testing.T) {
	_, handler := RagQueryTool()

	result, err := handler(json.RawMessage(`{"query":42}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	data := result.Data.(RagQueryData)
	testboil.FailTestIfDiff(t, data.Results[0].Snippet, "This is a dummy snippet for '42'.")

	result, err = handler(json.RawMessage(`{"query":null}`))
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	data = result.Data.(RagQueryData)
	testboil.FailTestIfDiff(t, data.Results[1].Snippet, "Another placeholder snippet for 'null'.")
}

func TestRagQueryHandlerRejectsNonObjectArguments(t *testing.T) {
	_, handler := RagQueryTool()

	_, err := handler(json.RawMessage(`["foo"]`))
	if err == nil {
		t.Fatal("expected error for non-object arguments")
	}
	testboil.FailTestIfDiff(t, err.Error(), "arguments: expected an object")
}

func TestSearchKBEmbedsQueryVerbatim(t *testing.T) {
	query := `<script>'"%s`
	entries := SearchKB(query)

	testboil.FailTestIfDiff(t, entries[0].Source, "kb://dummy/a")
	testboil.FailTestIfDiff(t, entries[1].Source, "kb://dummy/b")
	for _, entry := range entries {
		if !strings.Contains(entry.Snippet, "'"+query+"'") {
			t.Errorf("snippet %q does not contain raw query", entry.Snippet)
		}
	}
}
