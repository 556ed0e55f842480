package tools

import (
	"encoding/json"
	"fmt"

	"mcp-http-test/mcp/types"
)

// RagQueryToolName is the name of the placeholder knowledge base search tool.
const RagQueryToolName = "dummy_rag_query"

// RagQueryArguments are the arguments accepted by dummy_rag_query. Query is
// kept raw: any JSON value is accepted and rendered into the snippets.
type RagQueryArguments struct {
	Query json.RawMessage `json:"query,omitempty"`
}

// QueryText renders the query for embedding. An absent query is empty; an
// explicit null renders as "null", like an absent tool name.
func (a RagQueryArguments) QueryText() string {
	if len(a.Query) == 0 {
		return ""
	}
	return types.RenderValue(a.Query)
}

// KBEntry is a synthesized knowledge base hit. Nothing is stored.
type KBEntry struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// RagQueryData is the structured part of a dummy_rag_query result.
type RagQueryData struct {
	Results []KBEntry `json:"results"`
}

// RagQueryTool returns the definition and handler for dummy_rag_query.
func RagQueryTool() (types.ToolDefinition, Handler) {
	schema := types.JSONSchema{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "User question to search the KB",
			},
		},
		"required": []string{"query"},
	}

	handler := func(arguments json.RawMessage) (*types.CallToolResult, error) {
		var args RagQueryArguments
		if err := types.DecodeParams(arguments, &args); err != nil {
			return nil, fmt.Errorf("arguments: %w", err)
		}

		results := SearchKB(args.QueryText())
		return &types.CallToolResult{
			Content: []types.ContentItem{
				types.TextContent(fmt.Sprintf("Found %d dummy results", len(results))),
			},
			Data: RagQueryData{Results: results},
		}, nil
	}

	return types.ToolDefinition{
		Name:        RagQueryToolName,
		Description: "Return dummy knowledge base snippets for connectivity testing.",
		InputSchema: schema,
	}, handler
}

// SearchKB pretends to search a knowledge base. The query is embedded in each
// snippet verbatim, without escaping.
func SearchKB(query string) []KBEntry {
	return []KBEntry{
		{
			Title:   "MCP RAG KB Entry A",
			Snippet: fmt.Sprintf("This is a dummy snippet for '%s'.", query),
			Source:  "kb://dummy/a",
		},
		{
			Title:   "MCP RAG KB Entry B",
			Snippet: fmt.Sprintf("Another placeholder snippet for '%s'.", query),
			Source:  "kb://dummy/b",
		},
	}
}
