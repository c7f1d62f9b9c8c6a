// ABOUTME: HTTP implementation of the record Client for the hosted backend
// ABOUTME: Adds credentials, request ids, tracing spans, a circuit breaker and call metrics
package apper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/crmdesk/observability"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("apper")

// Header names carrying the two opaque credentials and the request id.
const (
	HeaderProjectID = "X-Apper-Project-Id"
	HeaderPublicKey = "X-Apper-Public-Key"
	HeaderRequestID = "X-Request-Id"
)

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("apper returned status %d: %s", e.Status, e.Body)
}

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	BaseURL   string
	ProjectID string
	PublicKey string
	Timeout   time.Duration
}

// HTTPClient talks to the hosted record service over JSON.
type HTTPClient struct {
	httpClient *http.Client
	cfg        HTTPConfig
	cb         *gobreaker.CircuitBreaker
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewCircuitBreaker trips after at least 5 requests with a 60% failure rate.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}

// NewHTTPClient builds a client. metrics may be nil.
func NewHTTPClient(cfg HTTPConfig, logger *zap.Logger, metrics *observability.Metrics) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HTTPClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		cfg:        cfg,
		cb:         NewCircuitBreaker("apper"),
		metrics:    metrics,
		logger:     logger,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, table, op, path string, in, out any) error {
	ctx, span := tracer.Start(ctx, "Apper."+op)
	defer span.End()
	span.SetAttributes(attribute.String("apper.table", table), attribute.String("apper.op", op))

	start := time.Now()
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.roundTrip(ctx, method, table, path, in, out)
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
	}
	c.metrics.RecordRemoteCall(table, op, outcome, time.Since(start))
	return err
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, table, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/tables/%s/%s", c.cfg.BaseURL, url.PathEscape(table), path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderProjectID, c.cfg.ProjectID)
	req.Header.Set(HeaderPublicKey, c.cfg.PublicKey)
	req.Header.Set(HeaderRequestID, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("apper: request failed",
			zap.String("method", method),
			zap.String("table", table),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("apper: non-2xx response",
			zap.String("method", method),
			zap.String("table", table),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID),
		)
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	c.logger.Debug("apper: request OK",
		zap.String("method", method),
		zap.String("table", table),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
	)

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// IsCircuitOpen reports whether err came from a tripped breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

type getRequest struct {
	ID int `json:"id"`
	Query
}

func (c *HTTPClient) FetchRecords(ctx context.Context, table string, q Query) (*ListResponse, error) {
	var resp ListResponse
	if err := c.do(ctx, http.MethodPost, table, OpFetch, "fetch", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetRecordByID(ctx context.Context, table string, id int, q Query) (*RecordResponse, error) {
	var resp RecordResponse
	if err := c.do(ctx, http.MethodPost, table, OpGet, "get", getRequest{ID: id, Query: q}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CreateRecord(ctx context.Context, table string, req RecordsRequest) (*MutationResponse, error) {
	var resp MutationResponse
	if err := c.do(ctx, http.MethodPost, table, OpCreate, "records", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateRecord(ctx context.Context, table string, req RecordsRequest) (*MutationResponse, error) {
	var resp MutationResponse
	if err := c.do(ctx, http.MethodPut, table, OpUpdate, "records", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) DeleteRecord(ctx context.Context, table string, req DeleteRequest) (*MutationResponse, error) {
	var resp MutationResponse
	if err := c.do(ctx, http.MethodDelete, table, OpDelete, "records", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
