package mailbox

import (
	"context"
	"sync"
	"time"
)

type slot struct {
	entry Entry
	gen   uint64
	timer *time.Timer
}

// MemoryStore holds slots in process memory; each write arms its own expiry timer.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu    sync.Mutex
	slots map[Kind]*slot
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:   ttl,
		now:   time.Now,
		slots: make(map[Kind]*slot),
	}
}

func (s *MemoryStore) Put(_ context.Context, kind Kind, payload map[string]any) (Entry, error) {
	e := newEntry(payload, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[kind]
	if !ok {
		sl = &slot{}
		s.slots[kind] = sl
	}
	if sl.timer != nil {
		sl.timer.Stop()
	}
	sl.gen++
	sl.entry = e
	gen := sl.gen
	sl.timer = time.AfterFunc(s.ttl, func() { s.expire(kind, gen) })
	return e, nil
}

// expire clears a slot only if no newer write has happened since gen.
func (s *MemoryStore) expire(kind Kind, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sl, ok := s.slots[kind]; ok && sl.gen == gen {
		sl.entry = nil
		sl.timer = nil
	}
}

func (s *MemoryStore) Recent(context.Context) (Recent, error) {
	r := emptyRecent()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, sl := range s.slots {
		if sl.entry != nil {
			r[k] = sl.entry
		}
	}
	return r, nil
}

// Close stops pending expiry timers.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sl := range s.slots {
		if sl.timer != nil {
			sl.timer.Stop()
		}
	}
	return nil
}
