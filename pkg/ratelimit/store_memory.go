package ratelimit

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// DefaultMaxKeys bounds the keys a MemoryStore tracks.
const DefaultMaxKeys = 10000

// MemoryStore keeps timestamps in process. When full, the least recently
// used tenth of the keys is evicted.
type MemoryStore struct {
	mu      sync.Mutex
	maxKeys int
	keys    map[string]*list.Element
	lru     *list.List // front is most recent
	onEvict func(n int)
}

type entry struct {
	key        string
	timestamps []time.Time
}

// NewMemoryStore returns a store for up to maxKeys keys. maxKeys <= 0 means
// DefaultMaxKeys.
func NewMemoryStore(maxKeys int) *MemoryStore {
	if maxKeys <= 0 {
		maxKeys = DefaultMaxKeys
	}
	return &MemoryStore{
		maxKeys: maxKeys,
		keys:    make(map[string]*list.Element),
		lru:     list.New(),
	}
}

// OnEvict registers a callback receiving the number of keys evicted.
func (s *MemoryStore) OnEvict(fn func(n int)) {
	s.mu.Lock()
	s.onEvict = fn
	s.mu.Unlock()
}

func (s *MemoryStore) CheckAndAdd(_ context.Context, key string, now, cutoff time.Time, limit int) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.keys[key]
	if !ok {
		if len(s.keys) >= s.maxKeys {
			s.evictLocked()
		}
		el = s.lru.PushFront(&entry{key: key})
		s.keys[key] = el
	} else {
		s.lru.MoveToFront(el)
	}

	e := el.Value.(*entry)
	e.timestamps = after(e.timestamps, cutoff)
	if len(e.timestamps) >= limit {
		return false, len(e.timestamps), nil
	}
	e.timestamps = append(e.timestamps, now)
	return true, len(e.timestamps), nil
}

func (s *MemoryStore) Cleanup(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, el := range s.keys {
		e := el.Value.(*entry)
		e.timestamps = after(e.timestamps, cutoff)
		if len(e.timestamps) == 0 {
			s.lru.Remove(el)
			delete(s.keys, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) KeyCount(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys), nil
}

func (s *MemoryStore) evictLocked() {
	n := max(s.maxKeys/10, 1)
	evicted := 0
	for ; evicted < n; evicted++ {
		el := s.lru.Back()
		if el == nil {
			break
		}
		s.lru.Remove(el)
		delete(s.keys, el.Value.(*entry).key)
	}
	if s.onEvict != nil && evicted > 0 {
		s.onEvict(evicted)
	}
}

// after drops the timestamps at or before cutoff. Timestamps are appended in
// order, so the kept ones are a suffix.
func after(ts []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(ts) && !ts[i].After(cutoff) {
		i++
	}
	if i == 0 {
		return ts
	}
	return append(ts[:0], ts[i:]...)
}
