package ghapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// GetJSON sends a GET request and decodes the response into T.
func GetJSON[T any](ctx context.Context, client Client, path string) (T, error) {
	return doJSON[T](ctx, client, &Request{Method: MethodGet, Path: path})
}

// PostJSON sends body as a POST request and decodes the response into T.
func PostJSON[T any](ctx context.Context, client Client, path string, body any) (T, error) {
	return doJSON[T](ctx, client, &Request{Method: MethodPost, Path: path, Body: body})
}

// PutJSON sends body as a PUT request and decodes the response into T.
func PutJSON[T any](ctx context.Context, client Client, path string, body any) (T, error) {
	return doJSON[T](ctx, client, &Request{Method: MethodPut, Path: path, Body: body})
}

// PatchJSON sends body as a PATCH request and decodes the response into T.
func PatchJSON[T any](ctx context.Context, client Client, path string, body any) (T, error) {
	return doJSON[T](ctx, client, &Request{Method: MethodPatch, Path: path, Body: body})
}

// Delete sends a DELETE request and discards the response body.
func Delete(ctx context.Context, client Client, path string) error {
	_, err := client.Do(ctx, &Request{Method: MethodDelete, Path: path})

	return err
}

// DecodeJSON decodes a response body into T. An empty 204 response decodes
// to the zero value.
func DecodeJSON[T any](method Method, resp *Response) (T, error) {
	var out T

	if resp.StatusCode == http.StatusNoContent && len(bytes.TrimSpace(resp.Body)) == 0 {
		return out, nil
	}

	err := json.Unmarshal(resp.Body, &out)
	if err != nil {
		var zero T

		return zero, NewDecodeError(method, resp, err)
	}

	return out, nil
}

func doJSON[T any](ctx context.Context, client Client, req *Request) (T, error) {
	resp, err := client.Do(ctx, req)
	if err != nil {
		var zero T

		return zero, err
	}

	return DecodeJSON[T](req.Method, resp)
}
