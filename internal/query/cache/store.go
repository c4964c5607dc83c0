// Package cache is the gateway's query cache. Entries are addressed by
// hierarchical query keys and are invalidated by key prefix.
package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/zatekoja/limsgateway/internal/query/keys"
)

// DefaultIdleTimeout is how long an entry may go unread before Sweep drops it
const DefaultIdleTimeout = 5 * time.Minute

// Fetcher loads the serialized result for a key from the backend
type Fetcher func(ctx context.Context) ([]byte, error)

// SharedCache is an optional second level shared between gateway instances
type SharedCache interface {
	Get(ctx context.Context, key keys.Key) ([]byte, bool, error)
	Set(ctx context.Context, key keys.Key, data []byte, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix keys.Key) (int, error)
}

// Observer is told about cache lookups
type Observer interface {
	CacheHit(key keys.Key)
	CacheMiss(key keys.Key)
	CacheEvicted(n int)
}

// Entry is one cached query result
type Entry struct {
	Key        keys.Key  `json:"key"`
	Data       []byte    `json:"-"`
	FetchedAt  time.Time `json:"fetchedAt"`
	LastAccess time.Time `json:"lastAccess"`
	Stale      bool      `json:"stale"`
	Size       int       `json:"size"`
}

func (e *Entry) fresh(now time.Time, ttl time.Duration) bool {
	if e.Stale {
		return false
	}
	return ttl <= 0 || now.Sub(e.FetchedAt) < ttl
}

type flight struct {
	key         keys.Key
	invalidated bool
}

// Store holds query results in memory, optionally backed by a SharedCache
type Store struct {
	mu       sync.Mutex
	entries  map[string]*Entry
	inflight map[string]*flight
	group    singleflight.Group

	shared   SharedCache
	observer Observer
	idle     time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithSharedCache adds a second-level cache
func WithSharedCache(shared SharedCache) Option {
	return func(s *Store) { s.shared = shared }
}

// WithObserver reports hits and misses
func WithObserver(o Observer) Option {
	return func(s *Store) { s.observer = o }
}

// WithIdleTimeout sets how long unread entries survive a Sweep
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.idle = d
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store's logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates an empty store
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries:  make(map[string]*Entry),
		inflight: make(map[string]*flight),
		idle:     DefaultIdleTimeout,
		now:      time.Now,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fetch returns the cached result for key when it is fresh. Otherwise it loads
// the result once, however many callers ask concurrently, and caches it.
// A ttl of zero keeps results fresh until they are invalidated.
func (s *Store) Fetch(ctx context.Context, key keys.Key, ttl time.Duration, fetch Fetcher) ([]byte, error) {
	id := key.String()

	s.mu.Lock()
	if e, ok := s.entries[id]; ok && e.fresh(s.now(), ttl) {
		e.LastAccess = s.now()
		data := e.Data
		s.mu.Unlock()
		s.hit(key)
		return data, nil
	}
	s.mu.Unlock()
	s.miss(key)

	// The load is detached from any one caller so a cancelled request does
	// not fail the others waiting on it.
	loadCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(id, func() (interface{}, error) {
		return s.load(loadCtx, key, id, ttl, fetch)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (s *Store) load(ctx context.Context, key keys.Key, id string, ttl time.Duration, fetch Fetcher) ([]byte, error) {
	f := &flight{key: key}
	s.mu.Lock()
	s.inflight[id] = f
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.inflight, id)
		s.mu.Unlock()
	}()

	if s.shared != nil {
		data, ok, err := s.shared.Get(ctx, key)
		if err != nil {
			s.logger.Warn().Err(err).Str("key", id).Msg("Shared cache read failed")
		} else if ok {
			s.put(key, id, data, f)
			return data, nil
		}
	}

	data, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if s.put(key, id, data, f) && s.shared != nil {
		if err := s.shared.Set(ctx, key, data, ttl); err != nil {
			s.logger.Warn().Err(err).Str("key", id).Msg("Shared cache write failed")
		}
	}
	return data, nil
}

// put stores data and reports whether it went in fresh. Data fetched while an
// invalidation covered the key is kept but already stale.
func (s *Store) put(key keys.Key, id string, data []byte, f *flight) bool {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &Entry{
		Key:        key,
		Data:       data,
		FetchedAt:  now,
		LastAccess: now,
		Stale:      f.invalidated,
		Size:       len(data),
	}
	return !f.invalidated
}

// InvalidatePrefix marks every entry under prefix stale and returns how many
// cached entries it matched. Entries are never removed or made fresh here;
// the next read refetches them.
func (s *Store) InvalidatePrefix(prefix keys.Key) int {
	s.mu.Lock()
	matched := 0
	for _, e := range s.entries {
		if e.Key.HasPrefix(prefix) {
			e.Stale = true
			matched++
		}
	}
	for _, f := range s.inflight {
		if f.key.HasPrefix(prefix) {
			f.invalidated = true
		}
	}
	s.mu.Unlock()
	return matched
}

// InvalidateShared removes entries under prefix from the shared cache
func (s *Store) InvalidateShared(ctx context.Context, prefix keys.Key) (int, error) {
	if s.shared == nil {
		return 0, nil
	}
	return s.shared.InvalidatePrefix(ctx, prefix)
}

// Peek returns a copy of the entry for key without touching its access time
func (s *Store) Peek(key keys.Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key.String()]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of cached entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot lists entries under prefix ordered by key; an empty prefix lists all
func (s *Store) Snapshot(prefix keys.Key) []Entry {
	s.mu.Lock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Key.HasPrefix(prefix) {
			cp := *e
			cp.Data = nil
			out = append(out, cp)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out
}

// Sweep drops entries nobody has read for longer than the idle timeout
func (s *Store) Sweep(now time.Time) int {
	s.mu.Lock()
	removed := 0
	for id, e := range s.entries {
		if _, loading := s.inflight[id]; loading {
			continue
		}
		if now.Sub(e.LastAccess) > s.idle {
			delete(s.entries, id)
			removed++
		}
	}
	s.mu.Unlock()

	if removed > 0 && s.observer != nil {
		s.observer.CacheEvicted(removed)
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done
func (s *Store) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(s.now()); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("Swept idle query cache entries")
			}
		}
	}
}

func (s *Store) hit(key keys.Key) {
	if s.observer != nil {
		s.observer.CacheHit(key)
	}
}

func (s *Store) miss(key keys.Key) {
	if s.observer != nil {
		s.observer.CacheMiss(key)
	}
}
