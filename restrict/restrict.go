// Package restrict stores permission policies and resolves the nearest
// applicable policy for the runtime class of an invocation context.
//
// A Class is a name plus an ordered ancestry chain rather than a reflected
// type: platform adapters that hand out generated or proxied context kinds
// present an unseen name with the original chain appended, so resolution is
// a distance search over the chain instead of an exact-key map lookup.
package restrict

import (
	"context"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Class identifies the runtime kind of an invocation context. Lineage lists
// ancestor class names ordered nearest first; the class itself is at
// distance 0, its first ancestor at distance 1, and so on.
type Class struct {
	Name    string
	Lineage []string
}

// NewClass creates a Class from a name and its ancestors, nearest first.
func NewClass(name string, ancestors ...string) Class {
	return Class{Name: name, Lineage: ancestors}
}

// Derive creates a subclass of c, as a platform adapter would for a
// generated or proxied context kind.
func (c Class) Derive(name string) Class {
	lineage := make([]string, 0, len(c.Lineage)+1)
	lineage = append(lineage, c.Name)
	lineage = append(lineage, c.Lineage...)
	return Class{Name: name, Lineage: lineage}
}

// chain returns the class name followed by its lineage, i.e. all candidate
// names in distance order.
func (c Class) chain() []string {
	return append([]string{c.Name}, c.Lineage...)
}

// key returns the cache key for the class. Two classes with the same chain
// resolve identically.
func (c Class) key() string {
	return strings.Join(c.chain(), "/")
}

// Invocation is the part of an invocation context a policy gets to see.
// Policy implementations type-assert it to the richer platform context they
// were registered for.
type Invocation interface {
	Class() Class
}

// Policy decides whether an invocation context may run a command.
type Policy interface {
	Allow(ctx context.Context, inv Invocation) (bool, error)
}

// Entry binds a policy to the class of invocation contexts it governs.
type Entry struct {
	Class  string
	Policy Policy
}

// cacheSize bounds the resolution cache. Runtime class variety is small in
// practice; proxied classes are the reason it is not unbounded.
const cacheSize = 256

type resolution struct {
	policy Policy
	ok     bool
}

// Directory holds restriction entries and resolves the nearest applicable
// policy per requested class. It supports many concurrent Resolve calls
// against rare Add calls.
type Directory struct {
	mu      sync.RWMutex
	entries []Entry
	cache   *lru.Cache[string, resolution]
}

// NewDirectory creates an empty Directory.
func NewDirectory() *Directory {
	cache, err := lru.New[string, resolution](cacheSize)
	if err != nil {
		panic("restrict: " + err.Error())
	}
	return &Directory{cache: cache}
}

// Add registers the given entries. Entries can only be added, never
// removed; duplicates of already-registered entries are dropped, comparing
// policies by interface equality (policies should be pointer types). The
// resolution cache is invalidated before any subsequent Resolve can
// observe the new entries.
func (d *Directory) Add(entries ...Entry) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range entries {
		if e.Policy == nil {
			continue
		}
		if d.registered(e) {
			continue
		}
		d.entries = append(d.entries, e)
	}

	d.cache.Purge()
}

func (d *Directory) registered(e Entry) bool {
	for _, have := range d.entries {
		if have.Class == e.Class && have.Policy == e.Policy {
			return true
		}
	}
	return false
}

// Len returns the number of registered entries.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Resolve returns the registered policy nearest to the requested class:
// an entry for the class itself wins over one for its ancestor, and so on
// up the chain. When two entries sit at the same distance, the
// first-registered one wins. The second return is false when no entry
// matches anywhere in the chain; that is not an error, and the caller
// decides the default policy.
func (d *Directory) Resolve(c Class) (Policy, bool) {
	key := c.key()
	if r, ok := d.cache.Get(key); ok {
		return r.policy, r.ok
	}

	// Filling the cache under the read lock keeps it consistent: Add holds
	// the write lock while purging, so no stale resolution can be inserted
	// after a purge.
	d.mu.RLock()
	defer d.mu.RUnlock()

	r := d.resolveLocked(c)
	d.cache.Add(key, r)
	return r.policy, r.ok
}

func (d *Directory) resolveLocked(c Class) resolution {
	for _, name := range c.chain() {
		for _, e := range d.entries {
			if e.Class == name {
				return resolution{policy: e.Policy, ok: true}
			}
		}
	}
	return resolution{}
}
