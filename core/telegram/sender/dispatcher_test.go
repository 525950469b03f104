package sender

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

func TestDispatcherKeepsOrderPerKey(t *testing.T) {
	d := NewDispatcher(Options{Workers: 4, QueueSize: 128})

	var mu sync.Mutex
	got := map[int64][]int{}
	for i := 0; i < 50; i++ {
		for _, key := range []int64{-1001, 7, 42} {
			err := d.Enqueue(context.Background(), key, "send.text", "sendMessage", func() error {
				mu.Lock()
				got[key] = append(got[key], i)
				mu.Unlock()
				return nil
			})
			if err != nil {
				t.Fatalf("enqueue: %v", err)
			}
		}
	}
	d.Close()

	for key, seq := range got {
		if len(seq) != 50 {
			t.Fatalf("key %d: %d jobs ran, want 50", key, len(seq))
		}
		for i, v := range seq {
			if v != i {
				t.Fatalf("key %d: out of order at %d: %v", key, i, seq)
			}
		}
	}
}

func TestDispatcherCountsFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	calls := 0
	if err := d.Enqueue(context.Background(), 1, "send.text", "sendMessage", func() error {
		calls++
		return errors.New("bad request (400)")
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	d.Close()
	if calls != 1 {
		t.Fatalf("non-network error retried: calls = %d", calls)
	}
	if d.ErrorCount() != 1 {
		t.Fatalf("ErrorCount = %d", d.ErrorCount())
	}
}

func TestDispatcherRetriesTransient(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})
	calls := 0
	if err := d.Enqueue(context.Background(), 1, "send.text", "sendMessage", func() error {
		calls++
		if calls == 1 {
			return &net.OpError{Op: "dial", Err: errors.New("connection refused")}
		}
		return nil
	}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	d.Close()
	if calls != 2 || d.ErrorCount() != 0 {
		t.Fatalf("calls = %d, errors = %d", calls, d.ErrorCount())
	}
}

func TestErrorKind(t *testing.T) {
	cases := map[string]error{
		"http_4xx": errors.New("telegram: Forbidden: bot was blocked by the user (403)"),
		"http_5xx": errors.New("telegram: Internal Server Error (500)"),
		"dial":     &net.OpError{Op: "dial", Err: errors.New("refused")},
		"unknown":  errors.New("odd"),
	}
	for want, err := range cases {
		if got := errorKind(err); got != want {
			t.Fatalf("errorKind(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestDispatcherClosed(t *testing.T) {
	d := NewDispatcher(Options{})
	d.Close()
	d.Close()
	err := d.Enqueue(context.Background(), 1, "send.text", "sendMessage", func() error { return nil })
	if !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("err = %v, want ErrQueueClosed", err)
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	msg := sanitizeErrorMessage(errors.New(`Post "https://api.telegram.org/bot123456:ABC-def_1/sendMessage": timeout`))
	if msg != `Post "https://api.telegram.org/bot<redacted>/sendMessage": timeout` {
		t.Fatalf("token leaked: %s", msg)
	}
}
