// internal/service/datasource/list.go
package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"referee-dashboard/internal/external"
)

// listKeys are the envelope fields list endpoints wrap their items in.
var listKeys = []string{"items", "data", "messageData"}

func getList[T any](ctx context.Context, client *external.Client, path, token string) ([]T, error) {
	resp, err := client.Call(ctx, external.Request{Path: path, Method: http.MethodGet, AccessToken: token})
	if err != nil {
		return nil, err
	}
	if resp.Kind != external.BodyJSON {
		return nil, &external.APIError{
			Kind:   external.KindDecode,
			Method: http.MethodGet,
			Path:   path,
			Status: resp.Status,
			Err:    fmt.Errorf("expected json list"),
		}
	}
	items, err := decodeList[T](resp.JSON)
	if err != nil {
		return nil, &external.APIError{Kind: external.KindDecode, Method: http.MethodGet, Path: path, Status: resp.Status, Err: err}
	}
	return items, nil
}

// decodeList accepts a bare array or an object wrapping it under one of listKeys.
// null yields an empty list.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	out := []T{}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}

	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, err
		}
		if out == nil {
			out = []T{}
		}
		return out, nil
	case '{':
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, err
		}
		for _, key := range listKeys {
			if inner, ok := envelope[key]; ok {
				// may itself be an envelope, e.g. {"messageData": {"items": [...]}}
				return decodeList[T](inner)
			}
		}
		return nil, fmt.Errorf("no list field in object")
	default:
		return nil, fmt.Errorf("unexpected json list payload")
	}
}
