package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"stealthcompany.com/wardconsole/internal/metrics"
	"stealthcompany.com/wardconsole/internal/session"
)

// APIPrefix is prepended to every endpoint path.
const APIPrefix = "/api/v1"

// Client is the authenticated JSON client for the hospital API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	session    session.Holder
	headers    http.Header
}

// Request describes one API call.
type Request struct {
	Method string
	// Path is relative to /api/v1, e.g. "/nurse/workflow/steps/5/skip".
	Path string
	// Endpoint is the metrics label; defaults to Path. Use the path template to keep cardinality low.
	Endpoint string
	Query    url.Values
	Header   http.Header
	Body     interface{}
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithHeader adds a default header sent on every call
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// NewClient creates a client for baseURL. The holder is consulted on every call.
// No timeout is set; callers bound calls with their context.
func NewClient(baseURL string, holder session.Holder, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    holder,
		headers:    http.Header{},
	}
	c.headers.Set("Accept", "application/json")

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the credential holder the client reads tokens from
func (c *Client) Session() session.Holder {
	return c.session
}

// URL builds the absolute URL for an API path
func (c *Client) URL(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.baseURL + APIPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Do sends req and decodes the response envelope.
// Non-2xx responses return *HTTPError, network failures *TransportError.
func (c *Client) Do(ctx context.Context, req Request) (*Envelope, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = req.Path
	}
	target := c.URL(req.Path, req.Query)

	var body io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.applyHeaders(httpReq, req)

	requestID := httpReq.Header.Get("X-Request-ID")
	startTime := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.RecordAPIRequest(method, endpoint, startTime, 0)
		log.Warn().
			Err(err).
			Str("method", method).
			Str("endpoint", endpoint).
			Str("request_id", requestID).
			Msg("API request failed before a response")
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &TransportError{Method: method, URL: target, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Failed to close response body")
		}
	}()

	metrics.RecordAPIRequest(method, endpoint, startTime, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, URL: target, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	log.Debug().
		Str("method", method).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Str("request_id", requestID).
		Dur("duration", time.Since(startTime)).
		Msg("API request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := parseHTTPError(resp.StatusCode, raw)
		log.Warn().
			Str("method", method).
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("request_id", requestID).
			Str("message", httpErr.Message).
			Msg("API returned an error")
		return nil, httpErr
	}

	env := &Envelope{}
	if len(bytes.TrimSpace(raw)) == 0 {
		return env, nil
	}
	if err := json.Unmarshal(raw, env); err != nil {
		return nil, &DecodeError{StatusCode: resp.StatusCode, Err: err}
	}
	return env, nil
}

// Get is a GET without body
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post is a POST with an optional JSON body
func (c *Client) Post(ctx context.Context, path string, query url.Values, body interface{}) (*Envelope, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Query: query, Body: body})
}

// applyHeaders merges default headers, the caller's headers and the bearer token.
// Caller headers win over defaults; an explicit Authorization header wins over the session.
func (c *Client) applyHeaders(httpReq *http.Request, req Request) {
	for k, vs := range c.headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	if httpReq.Header.Get("Authorization") == "" {
		if token := session.AccessToken(c.session); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}
	if httpReq.Header.Get("X-Request-ID") == "" {
		httpReq.Header.Set("X-Request-ID", uuid.NewString())
	}
}

func parseHTTPError(status int, raw []byte) *HTTPError {
	httpErr := &HTTPError{StatusCode: status, Message: genericHTTPMessage(status)}

	var body struct {
		Message string `json:"message"`
		Code    Text   `json:"code"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return httpErr
	}
	if strings.TrimSpace(body.Message) != "" {
		httpErr.Message = body.Message
	}
	httpErr.Code = string(body.Code)
	return httpErr
}
