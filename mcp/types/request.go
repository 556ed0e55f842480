package types

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ParseRequest decodes and validates a request body. It is the only place a
// Request is built from untrusted input, so the dispatcher may assume method
// is present, id is a string or absent, and params is an object or absent.
func ParseRequest(data []byte) (Request, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	if fields == nil {
		return Request{}, errors.New("request body must be a JSON object")
	}

	var req Request

	rawMethod, ok := fields["method"]
	if !ok || IsNull(rawMethod) {
		return Request{}, errors.New("method: field required")
	}
	if err := json.Unmarshal(rawMethod, &req.Method); err != nil {
		return Request{}, errors.New("method: expected a string")
	}

	if rawID, ok := fields["id"]; ok && !IsNull(rawID) {
		var id string
		if err := json.Unmarshal(rawID, &id); err != nil {
			return Request{}, errors.New("id: expected a string or null")
		}
		req.ID = &id
	}

	if rawParams, ok := fields["params"]; ok && !IsNull(rawParams) {
		if !IsObject(rawParams) {
			return Request{}, errors.New("params: expected an object or null")
		}
		req.Params = rawParams
	}

	return req, nil
}
