package state

import "sync"

type lane struct {
	mu   sync.Mutex
	refs int
}

// Lanes is a keyed mutex: work for one key runs one at a time while other
// keys proceed. Entries are dropped as soon as nobody holds or waits on them.
type Lanes struct {
	mu    sync.Mutex
	lanes map[int64]*lane
}

// NewLanes constructs an empty set of lanes.
func NewLanes() *Lanes {
	return &Lanes{lanes: make(map[int64]*lane)}
}

// Acquire blocks until the lane for key is free and returns its release func.
// Calling release more than once is a no-op.
func (l *Lanes) Acquire(key int64) (release func()) {
	l.mu.Lock()
	ln, ok := l.lanes[key]
	if !ok {
		ln = &lane{}
		l.lanes[key] = ln
	}
	ln.refs++
	l.mu.Unlock()

	ln.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			ln.mu.Unlock()
			l.mu.Lock()
			ln.refs--
			if ln.refs == 0 {
				delete(l.lanes, key)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of lanes currently held or awaited.
func (l *Lanes) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.lanes)
}
