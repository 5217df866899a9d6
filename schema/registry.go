package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Registry holds schema documents keyed by version and resolves the
// best document for a discovered firmware version: the highest
// registered version at or below it.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{docs: make(map[string]*Document)}
}

// Add registers a document under its version. Registering the same
// version twice is an error.
func (r *Registry) Add(doc *Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.docs[doc.Version]; dup {
		return &SchemaError{Reason: "version " + doc.Version + " already registered"}
	}
	r.docs[doc.Version] = doc
	return nil
}

// Versions returns the registered versions in ascending order.
func (r *Registry) Versions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions := make([]string, 0, len(r.docs))
	for v := range r.docs {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		return compareVersions(versions[i], versions[j]) < 0
	})
	return versions
}

// Resolve returns the document whose version is the highest registered
// one at or below the discovered version. An empty registry, or a
// discovered version below every registered one, is an error.
func (r *Registry) Resolve(discovered string) (*Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *Document
	for _, doc := range r.docs {
		if compareVersions(doc.Version, discovered) > 0 {
			continue
		}
		if best == nil || compareVersions(doc.Version, best.Version) > 0 {
			best = doc
		}
	}
	if best == nil {
		return nil, fmt.Errorf("no schema registered at or below version %s", discovered)
	}
	return best, nil
}

// compareVersions compares dotted version strings segment by segment.
// Numeric segments compare numerically, anything else lexically; a
// missing segment counts as zero.
func compareVersions(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	for i := 0; i < len(as) || i < len(bs); i++ {
		sa, sb := "0", "0"
		if i < len(as) {
			sa = as[i]
		}
		if i < len(bs) {
			sb = bs[i]
		}
		na, errA := strconv.Atoi(sa)
		nb, errB := strconv.Atoi(sb)
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				if na < nb {
					return -1
				}
				return 1
			}
		case sa != sb:
			if sa < sb {
				return -1
			}
			return 1
		}
	}
	return 0
}
