package middleware

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestLimiterAllow(t *testing.T) {
	l := &limiter{interval: time.Second, lastSeen: map[int64]time.Time{}}
	t0 := time.Unix(1_700_000_000, 0)

	if !l.allow(1, t0) {
		t.Fatal("first hit must pass")
	}
	if l.allow(1, t0.Add(500*time.Millisecond)) {
		t.Fatal("hit inside interval must be limited")
	}
	if !l.allow(2, t0.Add(500*time.Millisecond)) {
		t.Fatal("other users are independent")
	}
	if !l.allow(1, t0.Add(2*time.Second)) {
		t.Fatal("hit after interval must pass")
	}
}

func TestLimiterSweeps(t *testing.T) {
	l := &limiter{interval: time.Second, lastSeen: map[int64]time.Time{}}
	t0 := time.Unix(1_700_000_000, 0)
	for id := int64(1); id <= 10; id++ {
		l.allow(id, t0)
	}
	l.allow(99, t0.Add(5*time.Second))
	if len(l.lastSeen) != 1 {
		t.Fatalf("stale entries kept: %d", len(l.lastSeen))
	}
}

func TestUpdateKind(t *testing.T) {
	cases := map[string]tele.Update{
		"message":      {Message: &tele.Message{}},
		"callback":     {Callback: &tele.Callback{}},
		"inline_query": {Query: &tele.Query{}},
		"other":        {},
	}
	for want, u := range cases {
		if got := updateKind(u); got != want {
			t.Fatalf("updateKind = %q, want %q", got, want)
		}
	}
}
