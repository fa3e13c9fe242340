package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// MemoryOptions configures a Memory store.
type MemoryOptions struct {
	DefaultTTL time.Duration

	// MaxEntries bounds the store. Zero means unbounded.
	MaxEntries int

	// SweepInterval is how often expired entries are dropped. Zero disables
	// the sweeper; expired entries then go on their next lookup.
	SweepInterval time.Duration
}

// Memory keeps entries in process. Values are copied in and out so callers
// cannot alias stored bytes.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	bytes   int64
	closed  bool

	ttl   time.Duration
	limit int
	now   func() time.Time
	stop  chan struct{}

	hits   atomic.Int64
	misses atomic.Int64
	writes atomic.Int64
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory returns a Memory store and starts its sweeper if one is configured.
func NewMemory(opts MemoryOptions) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		ttl:     opts.DefaultTTL,
		limit:   opts.MaxEntries,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if opts.SweepInterval > 0 {
		go m.sweepLoop(opts.SweepInterval)
	}
	return m
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}
	e, ok := m.entries[key]
	if ok && !m.now().Before(e.expiresAt) {
		m.remove(key)
		ok = false
	}
	if !ok {
		m.misses.Add(1)
		return nil, ErrMiss
	}

	m.hits.Add(1)
	return append([]byte(nil), e.value...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = m.ttl
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if _, exists := m.entries[key]; exists {
		m.remove(key)
	} else if m.limit > 0 && len(m.entries) >= m.limit {
		m.evict()
	}

	m.entries[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: m.now().Add(ttl),
	}
	m.bytes += int64(len(value))
	m.writes.Add(1)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.remove(key)
	return nil
}

// Close stops the sweeper and drops every entry.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.closed {
		m.closed = true
		close(m.stop)
		m.entries = nil
		m.bytes = 0
	}
	return nil
}

func (m *Memory) Stats() Stats {
	m.mu.Lock()
	entries, bytes := len(m.entries), m.bytes
	m.mu.Unlock()

	return Stats{
		Entries: entries,
		Bytes:   bytes,
		Hits:    m.hits.Load(),
		Misses:  m.misses.Load(),
		Writes:  m.writes.Load(),
	}
}

// remove drops key. Callers hold mu.
func (m *Memory) remove(key string) {
	if e, ok := m.entries[key]; ok {
		m.bytes -= int64(len(e.value))
		delete(m.entries, key)
	}
}

// evict makes room for one entry: expired entries go first, then the entry
// closest to expiry. Callers hold mu.
func (m *Memory) evict() {
	m.sweepLocked()
	if len(m.entries) < m.limit {
		return
	}

	var victim string
	var soonest time.Time
	for k, e := range m.entries {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim, soonest = k, e.expiresAt
		}
	}
	m.remove(victim)
}

func (m *Memory) sweepLocked() {
	now := m.now()
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			m.remove(k)
		}
	}
}

func (m *Memory) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			if !m.closed {
				m.sweepLocked()
			}
			m.mu.Unlock()
		case <-m.stop:
			return
		}
	}
}

var (
	_ Cache         = (*Memory)(nil)
	_ StatsReporter = (*Memory)(nil)
)
