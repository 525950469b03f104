// Package apiclient is the typed HTTP client of the scores API.
// Calls are made once: a failed call is reported, never retried.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/examscores/scorebot/core/logger"
	"github.com/examscores/scorebot/core/netutil"
	"github.com/examscores/scorebot/internal/domain"
)

const maxErrorBody = 512

// Operation names carried by UpstreamError.
const (
	OpCreateStudent = "create student"
	OpGetStudent    = "get student"
	OpUpsertScore   = "upsert score"
	OpListScores    = "list scores"
)

// UpstreamError reports a call that did not get the expected answer.
// StatusCode is zero when the request never got a response.
type UpstreamError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Client calls the scores API over HTTP.
type Client struct {
	base string
	hc   *http.Client
}

// New returns a client for baseURL whose requests are bounded by timeout.
func New(baseURL string, timeout time.Duration) *Client {
	transport := netutil.NewTransport(netutil.TransportOptions{MaxIdleConns: 20})
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout, Transport: transport})
}

// NewWithHTTPClient uses hc as is.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{base: strings.TrimRight(baseURL, "/"), hc: hc}
}

// CreateStudent registers a student.
func (c *Client) CreateStudent(ctx context.Context, firstName, lastName string) (domain.Student, error) {
	var st domain.Student
	in := domain.StudentCreate{FirstName: firstName, LastName: lastName}
	err := c.do(ctx, OpCreateStudent, http.MethodPost, "/students/", in, http.StatusCreated, &st)
	return st, err
}

// GetStudent reads a student by id.
func (c *Client) GetStudent(ctx context.Context, id int64) (domain.Student, error) {
	var st domain.Student
	err := c.do(ctx, OpGetStudent, http.MethodGet, fmt.Sprintf("/students/%d", id), nil, http.StatusOK, &st)
	return st, err
}

// UpsertScore creates or overwrites the student's score for subject.
func (c *Client) UpsertScore(ctx context.Context, studentID int64, subject string, score int) (domain.Score, error) {
	var out domain.Score
	in := domain.ScoreUpsert{Subject: subject, Score: &score}
	err := c.do(ctx, OpUpsertScore, http.MethodPost, fmt.Sprintf("/students/%d/scores/", studentID), in, http.StatusOK, &out)
	return out, err
}

// ListScores returns the student's scores in insertion order.
func (c *Client) ListScores(ctx context.Context, studentID int64) ([]domain.Score, error) {
	out := []domain.Score{}
	err := c.do(ctx, OpListScores, http.MethodGet, fmt.Sprintf("/students/%d/scores/", studentID), nil, http.StatusOK, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, op, method, path string, in any, want int, out any) error {
	start := time.Now()

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return &UpstreamError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if rid := logger.RIDFrom(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		c.log(ctx, op, method, path, 0, start, err)
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		uerr := &UpstreamError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
		c.log(ctx, op, method, path, resp.StatusCode, start, uerr)
		return uerr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		derr := &UpstreamError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		c.log(ctx, op, method, path, resp.StatusCode, start, derr)
		return derr
	}
	c.log(ctx, op, method, path, resp.StatusCode, start, nil)
	return nil
}

func (c *Client) log(ctx context.Context, op, method, path string, code int, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", path),
		slog.Duration("duration", logger.Took(start)),
	}
	if code != 0 {
		attrs = append(attrs, slog.Int("http_code", code))
	}
	level := slog.LevelDebug
	if err != nil {
		attrs[0] = slog.String("status", "fail")
		attrs = append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))
		level = slog.LevelWarn
	}
	logger.LogEvent(ctx, logger.Client, level, "api.call", attrs...)
}
