package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"mcp-http-test/mcp/tools"
	"mcp-http-test/mcp/types"
)

// ProbeResult reports the outcome of one probe step.
type ProbeResult struct {
	Step     string
	Status   int
	OK       bool
	Detail   string
	Response types.Response
}

type probeStep struct {
	name   string
	req    types.Request
	status int
	check  func(types.Response) error
}

// Probe exercises every method of a running server and checks the shape of
// each answer. It stops early only when ctx is cancelled.
func Probe(ctx context.Context, c *Client, query string) ([]ProbeResult, error) {
	steps := probeSteps(query)
	results := make([]ProbeResult, 0, len(steps))

	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		id := fmt.Sprintf("probe-%d", i+1)
		step.req.ID = &id

		resp, status, err := c.Call(ctx, step.req)
		result := ProbeResult{Step: step.name, Status: status, Response: resp}
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			result.Detail = err.Error()
		case status != step.status:
			result.Detail = fmt.Sprintf("status %d, want %d", status, step.status)
		case resp.ID == nil || *resp.ID != id:
			result.Detail = fmt.Sprintf("id not echoed: %v", resp.ID)
		default:
			if err := step.check(resp); err != nil {
				result.Detail = err.Error()
			} else {
				result.OK = true
			}
		}
		results = append(results, result)
	}

	return results, nil
}

// Failed returns the steps that did not pass.
func Failed(results []ProbeResult) []ProbeResult {
	var failed []ProbeResult
	for _, r := range results {
		if !r.OK {
			failed = append(failed, r)
		}
	}
	return failed
}

func probeSteps(query string) []probeStep {
	return []probeStep{
		{
			name:   "get_server_info",
			req:    types.Request{Method: string(types.MethodGetServerInfo)},
			status: http.StatusOK,
			check: func(resp types.Response) error {
				var info types.ServerInfoResult
				if err := decodeResult(resp, &info); err != nil {
					return err
				}
				if info.Protocol != types.ProtocolVersion {
					return fmt.Errorf("protocol %q, want %q", info.Protocol, types.ProtocolVersion)
				}
				if !info.Capabilities.Tools {
					return errors.New("capabilities.tools is false")
				}
				return nil
			},
		},
		{
			name:   "list_tools",
			req:    types.Request{Method: string(types.MethodListTools)},
			status: http.StatusOK,
			check: func(resp types.Response) error {
				var list types.ListToolsResult
				if err := decodeResult(resp, &list); err != nil {
					return err
				}
				for _, tool := range list.Tools {
					if tool.Name == tools.RagQueryToolName {
						return nil
					}
				}
				return fmt.Errorf("tool %s not listed", tools.RagQueryToolName)
			},
		},
		{
			name: "call_tool " + tools.RagQueryToolName,
			req: types.Request{
				Method: string(types.MethodCallTool),
				Params: mustJSON(map[string]any{
					"name":      tools.RagQueryToolName,
					"arguments": map[string]string{"query": query},
				}),
			},
			status: http.StatusOK,
			check: func(resp types.Response) error {
				var result struct {
					Content []types.ContentItem `json:"content"`
					Data    tools.RagQueryData  `json:"data"`
				}
				if err := decodeResult(resp, &result); err != nil {
					return err
				}
				if len(result.Content) == 0 || result.Content[0].Text != "Found 2 dummy results" {
					return fmt.Errorf("unexpected content: %+v", result.Content)
				}
				if len(result.Data.Results) != 2 {
					return fmt.Errorf("got %d results, want 2", len(result.Data.Results))
				}
				for _, entry := range result.Data.Results {
					if !strings.Contains(entry.Snippet, "'"+query+"'") {
						return fmt.Errorf("snippet %q does not quote the query", entry.Snippet)
					}
				}
				return nil
			},
		},
		{
			name: "call_tool unknown",
			req: types.Request{
				Method: string(types.MethodCallTool),
				Params: mustJSON(map[string]any{"name": "probe_missing_tool"}),
			},
			status: http.StatusNotFound,
			check:  expectErrorCode(types.CodeToolNotFound),
		},
		{
			name:   "unknown method",
			req:    types.Request{Method: "probe_unknown_method"},
			status: http.StatusBadRequest,
			check:  expectErrorCode(types.CodeMethodNotFound),
		},
	}
}

func expectErrorCode(code types.ErrorCode) func(types.Response) error {
	return func(resp types.Response) error {
		if resp.Error == nil {
			return fmt.Errorf("expected %s error, got none", code)
		}
		if resp.Error.Code != code {
			return fmt.Errorf("error code %q, want %q", resp.Error.Code, code)
		}
		return nil
	}
}

func decodeResult(resp types.Response, target any) error {
	if resp.Error != nil {
		return fmt.Errorf("unexpected error: %s", resp.Error)
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("re-encode result: %w", err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

func mustJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
