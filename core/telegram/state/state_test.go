package state

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type payload struct {
	StudentID int64
	Subject   string
}

func TestStoreDefaultsToIdle(t *testing.T) {
	s := NewStore[payload]()
	sess := s.Get(1)
	if sess.State != StateIdle || sess.InProgress() {
		t.Fatalf("unexpected default session: %+v", sess)
	}
	if tracked, _ := s.Stats(); tracked != 0 {
		t.Fatalf("Get must not create sessions, tracked = %d", tracked)
	}
}

func TestStoreUpdateKeepsDataAcrossStates(t *testing.T) {
	s := NewStore[payload]()
	s.Update(7, func(sess *Session[payload]) {
		sess.State = "awaiting_score_value"
		sess.Data = payload{StudentID: 3, Subject: "Physics"}
	})
	if !s.InProgress(7) {
		t.Fatal("expected session in progress")
	}
	s.Update(7, func(sess *Session[payload]) { sess.State = StateIdle })
	got := s.Get(7)
	if got.State != StateIdle || got.Data.StudentID != 3 {
		t.Fatalf("unexpected session after reset: %+v", got)
	}
	tracked, inProgress := s.Stats()
	if tracked != 1 || inProgress != 0 {
		t.Fatalf("stats = %d/%d", tracked, inProgress)
	}
	s.Clear(7)
	if got := s.Get(7); got.Data.StudentID != 0 {
		t.Fatalf("Clear kept data: %+v", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore[payload]()
	s.Update(1, func(sess *Session[payload]) { sess.Data.Subject = "Biology" })
	sess := s.Get(1)
	sess.Data.Subject = "changed"
	if s.Get(1).Data.Subject != "Biology" {
		t.Fatal("mutating a returned session must not change the store")
	}
}

func TestLanesSerializeSameKey(t *testing.T) {
	l := NewLanes()
	var active, maxActive atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := l.Acquire(42)
			defer release()
			n := active.Add(1)
			for {
				m := maxActive.Load()
				if n <= m || maxActive.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()
	if maxActive.Load() != 1 {
		t.Fatalf("same key ran concurrently: max active = %d", maxActive.Load())
	}
	if l.Len() != 0 {
		t.Fatalf("lanes leaked: %d", l.Len())
	}
}

func TestLanesIndependentKeys(t *testing.T) {
	l := NewLanes()
	release := l.Acquire(1)
	defer release()

	done := make(chan struct{})
	go func() {
		r := l.Acquire(2)
		r()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("key 2 blocked behind key 1")
	}
}

func TestLaneReleaseIdempotent(t *testing.T) {
	l := NewLanes()
	release := l.Acquire(5)
	release()
	release()
	if l.Len() != 0 {
		t.Fatalf("lanes = %d", l.Len())
	}
	r := l.Acquire(5)
	r()
}
