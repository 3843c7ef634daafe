package gateway

import (
	"context"
	"net/http"
)

// Collection exposes list/create/update/delete for one record type.
type Collection[T any] struct {
	client *Client
}

// NewCollection binds a Collection to client.
func NewCollection[T any](client *Client) *Collection[T] {
	return &Collection[T]{client: client}
}

// List fetches endpoint and decodes it with DecodeList.
func (c *Collection[T]) List(ctx context.Context, endpoint string) ([]T, error) {
	body, err := c.client.read(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	records, err := DecodeList[T](body)
	if err != nil {
		return nil, &TransientError{Method: http.MethodGet, Path: endpoint, Err: err}
	}
	return records, nil
}

// Create POSTs payload to endpoint.
func (c *Collection[T]) Create(ctx context.Context, endpoint string, payload any) (string, error) {
	return c.client.Send(ctx, http.MethodPost, endpoint, payload)
}

// Update PUTs payload to endpoint.
func (c *Collection[T]) Update(ctx context.Context, endpoint string, payload any) (string, error) {
	return c.client.Send(ctx, http.MethodPut, endpoint, payload)
}

// Delete issues DELETE on endpoint.
func (c *Collection[T]) Delete(ctx context.Context, endpoint string) (string, error) {
	return c.client.Send(ctx, http.MethodDelete, endpoint, nil)
}
