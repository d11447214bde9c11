package hypergraph

import (
	"sort"
	"strconv"
	"strings"
)

// cacheKey identifies a derived quantity: a kind tag plus the sorted
// tuple of parameter ids it was built from. Two requests for the same
// kind and parameter tuple share one Cache entry.
func cacheKey(kind string, parameterIDs []ID) string {
	ids := append([]ID(nil), parameterIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var b strings.Builder
	b.WriteString(kind)
	for _, id := range ids {
		b.WriteByte('/')
		b.WriteString(strconv.FormatInt(int64(id), 10))
	}
	return b.String()
}

// cacheEntry is a derived, per-vertex-per-parameter-tuple value. It
// records the vertex version it was computed at; CacheStore.Get
// recomputes whenever the owning vertex's version has moved on.
type cacheEntry struct {
	version uint64
	payload any
}

// CacheStore holds the caches owned by a single vertex. Vertex
// implementations that need derived data (e.g. a precomputed rotation
// matrix from a parameter + the vertex's own pose) embed one alongside
// BaseVertex.
type CacheStore struct {
	owner   Vertex
	entries map[string]*cacheEntry
}

// NewCacheStore creates a store bound to owner. owner.Version() is
// consulted on every Get to decide whether a cached payload is stale.
func NewCacheStore(owner Vertex) *CacheStore {
	return &CacheStore{owner: owner, entries: make(map[string]*cacheEntry)}
}

// Get returns the cached payload for (kind, parameterIDs), invoking
// build to (re)compute it when absent or when the owning vertex's
// estimate has changed since it was last computed.
func (s *CacheStore) Get(kind string, parameterIDs []ID, build func() any) any {
	key := cacheKey(kind, parameterIDs)
	v := s.owner.Version()
	e, ok := s.entries[key]
	if !ok || e.version != v {
		e = &cacheEntry{version: v, payload: build()}
		s.entries[key] = e
	}
	return e.payload
}

// Invalidate drops every cached entry, forcing recomputation on next Get.
func (s *CacheStore) Invalidate() {
	s.entries = make(map[string]*cacheEntry)
}
