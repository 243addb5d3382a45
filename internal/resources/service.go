package resources

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"stealthcompany.com/wardconsole/internal/apiclient"
)

// Service exposes one method per backend resource or action.
// Methods never cache and never deduplicate; every call hits the API.
type Service struct {
	client *apiclient.Client
}

// NewService creates a fetcher set over an authenticated client
func NewService(client *apiclient.Client) *Service {
	return &Service{client: client}
}

// Client returns the underlying API client
func (s *Service) Client() *apiclient.Client {
	return s.client
}

func call[T any](ctx context.Context, c *apiclient.Client, req apiclient.Request) (Response[T], error) {
	var resp Response[T]

	env, err := c.Do(ctx, req)
	if err != nil {
		return resp, err
	}

	if err := env.DecodeData(&resp.Data); err != nil {
		return resp, err
	}
	resp.Status = string(env.Status)
	resp.Code = string(env.Code)
	resp.Message = env.Message
	return resp, nil
}

func get[T any](ctx context.Context, c *apiclient.Client, endpoint, path string, query url.Values) (Response[T], error) {
	return call[T](ctx, c, apiclient.Request{
		Method:   http.MethodGet,
		Endpoint: endpoint,
		Path:     path,
		Query:    query,
	})
}

func post[T any](ctx context.Context, c *apiclient.Client, endpoint, path string, query url.Values, body interface{}) (Response[T], error) {
	return call[T](ctx, c, apiclient.Request{
		Method:   http.MethodPost,
		Endpoint: endpoint,
		Path:     path,
		Query:    query,
		Body:     body,
	})
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

// statusQuery builds ?status=... and omits it when status is empty.
func statusQuery(status string) url.Values {
	if status == "" {
		return nil
	}
	return url.Values{"status": {status}}
}
