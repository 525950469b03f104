package telegram

import (
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type flakyTransport struct {
	fails int
	calls int
	err   error
	next  http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	if f.calls <= f.fails {
		return nil, f.err
	}
	return f.next.RoundTrip(req)
}

func TestDialRetryResendsBody(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
	}))
	defer srv.Close()

	flaky := &flakyTransport{fails: 2, err: &net.OpError{Op: "dial", Err: errors.New("refused")}, next: http.DefaultTransport}
	client := &http.Client{Transport: &dialRetry{next: flaky, retries: 3, backoff: time.Millisecond}}

	resp, err := client.Post(srv.URL, "text/plain", strings.NewReader("chat_id=1"))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if flaky.calls != 3 || got != "chat_id=1" {
		t.Fatalf("calls = %d, body = %q", flaky.calls, got)
	}
}

func TestDialRetrySkipsLateFailures(t *testing.T) {
	flaky := &flakyTransport{fails: 5, err: errors.New("read: connection reset by peer"), next: http.DefaultTransport}
	client := &http.Client{Transport: &dialRetry{next: flaky, retries: 3, backoff: time.Millisecond}}
	if _, err := client.Get("http://127.0.0.1:1/"); err == nil {
		t.Fatal("expected error")
	}
	if flaky.calls != 1 {
		t.Fatalf("late failure retried: calls = %d", flaky.calls)
	}
}
