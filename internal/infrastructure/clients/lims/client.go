// Package lims is the HTTP client for the LIMS REST API.
package lims

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
	"github.com/zatekoja/limsgateway/internal/infrastructure/observability"
	"github.com/zatekoja/limsgateway/internal/query/keys"
	apperrors "github.com/zatekoja/limsgateway/pkg/errors"
)

// PaginationHeader carries list paging metadata as JSON
const PaginationHeader = "X-Pagination"

// maxErrorBody bounds how much of a failed response is kept for logging
const maxErrorBody = 4 << 10

// HTTPClient talks to the LIMS REST API
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     zerolog.Logger
}

var _ providers.LIMSClient = (*HTTPClient)(nil)

// Option configures an HTTPClient
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.httpClient = c }
}

// WithMetrics records request durations
func WithMetrics(m *observability.Metrics) Option {
	return func(h *HTTPClient) { h.metrics = m }
}

// WithLogger sets the client's logger
func WithLogger(l zerolog.Logger) Option {
	return func(h *HTTPClient) { h.logger = l }
}

// NewClient creates a client for the API rooted at baseURL
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// problemDetails is the error body shape returned by the LIMS API
type problemDetails struct {
	Title  string              `json:"title"`
	Detail string              `json:"detail"`
	Errors map[string][]string `json:"errors"`
}

func (c *HTTPClient) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/v1")
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func listQuery(p keys.ListParams) url.Values {
	q := url.Values{}
	if p.PageNumber > 0 {
		q.Set("pageNumber", strconv.Itoa(p.PageNumber))
	}
	if p.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(p.PageSize))
	}
	if p.Filters != "" {
		q.Set("filters", p.Filters)
	}
	if p.SortOrder != "" {
		q.Set("sortOrder", p.SortOrder)
	}
	return q
}

// do sends a request and decodes a JSON response into out when out is non-nil.
// It returns the response headers of successful calls.
func (c *HTTPClient) do(ctx context.Context, method, endpoint string, query url.Values, in, out interface{}) (http.Header, error) {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return nil, apperrors.NewInternalError("encode lims request", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, apperrors.NewInternalError("build lims request", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamMetric(ctx, method, req.URL.Path, 0, time.Since(start))
		return nil, apperrors.NewExternalError(fmt.Sprintf("%s %s", method, req.URL.Path), err)
	}
	defer resp.Body.Close()
	c.metrics.RecordUpstreamMetric(ctx, method, req.URL.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(req, resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return nil, apperrors.NewExternalError("decode lims response", err)
		}
	}
	return resp.Header, nil
}

func (c *HTTPClient) statusError(req *http.Request, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	detail := strings.TrimSpace(string(raw))

	message := fmt.Sprintf("%s %s failed", req.Method, req.URL.Path)
	var problem problemDetails
	if json.Unmarshal(raw, &problem) == nil && problem.Title != "" {
		message = problem.Title
		if problem.Detail != "" {
			message += ": " + problem.Detail
		}
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Msg("LIMS request failed")
	return apperrors.FromStatus(resp.StatusCode, message, detail)
}

// ParsePagination reads the X-Pagination header. A missing header yields
// metadata describing a single page of n items.
func ParsePagination(h http.Header, p keys.ListParams, n int) (entities.Pagination, error) {
	raw := h.Get(PaginationHeader)
	if raw == "" {
		return entities.Pagination{
			CurrentPageSize: n,
			CurrentEndIndex: n,
			PageNumber:      max(p.PageNumber, 1),
			PageSize:        p.PageSize,
			TotalCount:      n,
			TotalPages:      1,
		}, nil
	}
	var meta entities.Pagination
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return entities.Pagination{}, apperrors.NewExternalError("decode pagination header", err)
	}
	return meta, nil
}

func list[T any](ctx context.Context, c *HTTPClient, endpoint string, p keys.ListParams) (*entities.Page[T], error) {
	items := []T{}
	h, err := c.do(ctx, http.MethodGet, endpoint, listQuery(p), nil, &items)
	if err != nil {
		return nil, err
	}
	meta, err := ParsePagination(h, p, len(items))
	if err != nil {
		return nil, err
	}
	return &entities.Page[T]{Items: items, Pagination: meta}, nil
}

func get[T any](ctx context.Context, c *HTTPClient, endpoint string) (T, error) {
	var out T
	_, err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &out)
	return out, err
}

func send[T any](ctx context.Context, c *HTTPClient, method, endpoint string, in interface{}) (T, error) {
	var out T
	_, err := c.do(ctx, method, endpoint, nil, in, &out)
	return out, err
}

func (c *HTTPClient) exec(ctx context.Context, method, endpoint string, in interface{}) error {
	_, err := c.do(ctx, method, endpoint, nil, in, nil)
	return err
}
