package backends

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jwgv/QuickTone/logcolors"

	log "github.com/sirupsen/logrus"
)

// Factory constructs a backend for an identifier. Construction may be slow
// (model or resource loading) and may fail.
type Factory func(id string) (Backend, error)

type registryEntry struct {
	once    sync.Once
	ready   atomic.Bool
	backend Backend
	err     error
}

// Registry lazily instantiates and caches one live backend handle per
// identifier. Concurrent first-time requests for the same identifier trigger
// exactly one construction, and a slow construction never blocks requests
// for other identifiers.
type Registry struct {
	mu       sync.Mutex // guards entries
	inflight sync.RWMutex
	entries  map[string]*registryEntry
	factory  Factory
}

// NewRegistry creates an empty registry backed by the given factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		entries: make(map[string]*registryEntry),
		factory: factory,
	}
}

// Get returns the live handle for id, constructing it on first use. A failed
// construction is not cached, so a later Get retries it.
func (r *Registry) Get(id string) (Backend, error) {
	// Clear() takes the write side, so holding the read side here keeps an
	// administrative reset from racing an in-flight construction.
	r.inflight.RLock()
	defer r.inflight.RUnlock()

	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok {
		e = &registryEntry{}
		r.entries[id] = e
	}
	r.mu.Unlock()

	e.once.Do(func() {
		start := time.Now()
		e.backend, e.err = r.factory(id)
		if e.err == nil {
			e.ready.Store(true)
			log.Infof("%s Constructed backend %q in %dms", logcolors.LogRegistry, id, time.Since(start).Milliseconds())
		}
	})

	if e.err != nil {
		r.mu.Lock()
		if r.entries[id] == e {
			delete(r.entries, id)
		}
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s: %v", ErrConstruction, id, e.err)
	}
	return e.backend, nil
}

// Has reports whether a live handle exists for id.
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	e, ok := r.entries[id]
	r.mu.Unlock()
	return ok && e.ready.Load()
}

// Loaded returns the identifiers with a live handle, sorted for stable
// output.
func (r *Registry) Loaded() []string {
	r.mu.Lock()
	ids := make([]string, 0, len(r.entries))
	for id, e := range r.entries {
		if e.ready.Load() {
			ids = append(ids, id)
		}
	}
	r.mu.Unlock()

	sort.Strings(ids)
	return ids
}

// WarmUp constructs every identifier not already present, returning per-id
// construction time. Identifiers already loaded are skipped, so repeated
// warm-ups are incremental.
func (r *Registry) WarmUp(ids []string) (map[string]time.Duration, error) {
	times := make(map[string]time.Duration)
	for _, id := range ids {
		if r.Has(id) {
			continue
		}
		start := time.Now()
		if _, err := r.Get(id); err != nil {
			return times, err
		}
		times[id] = time.Since(start)
		log.Infof("%s Warmed backend %q in %v", logcolors.LogWarmUp, id, times[id])
	}
	return times, nil
}

// Clear drops all handles. It waits for in-flight constructions to finish so
// a reset never races a publish.
func (r *Registry) Clear() {
	r.inflight.Lock()
	defer r.inflight.Unlock()

	r.mu.Lock()
	n := len(r.entries)
	r.entries = make(map[string]*registryEntry)
	r.mu.Unlock()

	log.Infof("%s Cleared %d backend handle(s)", logcolors.LogRegistry, n)
}
