// Package cipapi resolves interpretation request numbers to participant
// (proband) ids through the CIP-API interpretation request list endpoint.
package cipapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/gwrecon/pkg/logger"
	"github.com/okian/gwrecon/pkg/metrics"
)

// ListPath is the interpretation request list endpoint.
const ListPath = "/api/2/interpretation-request"

// QueryParam filters the list by request number.
const QueryParam = "interpretation_request_id"

const (
	defaultTimeout = 30 * time.Second
	maxErrorBody   = 512
)

// InterpretationRequest is the subset of a list entry the pipeline reads.
// Every field is decoded leniently, see Text.
type InterpretationRequest struct {
	InterpretationRequestID Text `json:"interpretation_request_id"`
	Version                 Text `json:"version"`
	CIP                     Text `json:"cip"`
	Proband                 Text `json:"proband"`
	FamilyID                Text `json:"family_id"`
}

// ListResponse is the paginated list envelope.
type ListResponse struct {
	Count   int                     `json:"count"`
	Next    *string                 `json:"next"`
	Results []InterpretationRequest `json:"results"`
}

// Client talks to CIP-API. One request per lookup, no caching.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  logger.Logger
	metrics *metrics.Manager
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.http.Timeout = d
		}
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// WithMetrics sets the metrics manager. Defaults to metrics.Default().
func WithMetrics(m *metrics.Manager) Option {
	return func(cl *Client) {
		if m != nil {
			cl.metrics = m
		}
	}
}

// New creates a client for the service rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		logger:  logger.NewNop(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve returns the proband of the first interpretation request matching
// requestNumber. A blank request number, an empty result list or a first
// result without a proband all resolve to "" without error. Transport and
// service failures return an error wrapping ErrUnavailable.
func (c *Client) Resolve(ctx context.Context, requestNumber string) (string, error) {
	requestNumber = strings.TrimSpace(requestNumber)
	if requestNumber == "" {
		c.metrics.RecordResolution(metrics.OutcomeSkipped, 0)
		return "", nil
	}

	start := time.Now()
	found, err := c.InterpretationRequests(ctx, requestNumber)
	elapsed := float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		c.metrics.RecordResolution(metrics.OutcomeError, elapsed)
		return "", err
	}

	if len(found) == 0 || found[0].Proband.String() == "" {
		c.metrics.RecordResolution(metrics.OutcomeMiss, elapsed)
		c.logger.Debug(ctx, "no participant for request",
			logger.String("request_number", requestNumber),
			logger.Int("results", len(found)),
		)
		return "", nil
	}

	c.metrics.RecordResolution(metrics.OutcomeFound, elapsed)
	return found[0].Proband.String(), nil
}

// InterpretationRequests lists the interpretation requests for requestNumber.
// Only the first page is read.
func (c *Client) InterpretationRequests(ctx context.Context, requestNumber string) ([]InterpretationRequest, error) {
	u := c.baseURL + ListPath + "?" + url.Values{QueryParam: {requestNumber}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn(ctx, "failed to close response body", logger.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Code: resp.StatusCode, RequestNumber: requestNumber, Body: strings.TrimSpace(string(body))}
	}

	var list ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("%w: decode response for %s: %w", ErrUnavailable, requestNumber, err)
	}
	return list.Results, nil
}
