package opdoc

import (
	"sort"
	"sync"
)

// OperationDoc is the documentation recorded for a single annotated handler.
// Summary and Description follow the Split contract: the summary is a single
// line, the description keeps its paragraph structure. Tags and Deprecated
// come from the directive arguments and the standard "Deprecated:" comment
// convention.
type OperationDoc struct {
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
}

// Attacher records a summary and description against the operation metadata
// identified by id, typically an OpenAPI operation under construction. It is
// the only contract between this package and whatever builds the final
// document.
type Attacher interface {
	AttachOperationDocs(id, summary, description string)
}

// Registry stores operation documentation keyed by operation ID. Generated
// files fill the package-level default registry from their init functions;
// NewRegistry exists for embedding and tests.
//
// The registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu   sync.RWMutex
	docs map[string]OperationDoc
}

// NewRegistry creates a new, empty registry.
func NewRegistry() *Registry {
	return &Registry{docs: map[string]OperationDoc{}}
}

// Register records doc under id. A later registration for the same id
// replaces the earlier one, so regenerating code never piles up stale
// entries.
func (r *Registry) Register(id string, doc OperationDoc) {
	r.mu.Lock()
	r.docs[id] = doc
	r.mu.Unlock()
}

// Lookup returns the documentation registered under id.
func (r *Registry) Lookup(id string) (OperationDoc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	return doc, ok
}

// Docs returns a copy of every registered entry so callers can freely modify
// the returned map without affecting the internal state.
func (r *Registry) Docs() map[string]OperationDoc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make(map[string]OperationDoc, len(r.docs))
	for id, doc := range r.docs {
		cp[id] = doc
	}
	return cp
}

// Len reports the number of registered operations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// Apply replays every registered entry into att, ordered by operation ID so
// repeated runs touch operations in the same order.
func (r *Registry) Apply(att Attacher) {
	docs := r.Docs()
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		doc := docs[id]
		att.AttachOperationDocs(id, doc.Summary, doc.Description)
	}
}

// defaultRegistry backs the package-level functions used by generated code.
var defaultRegistry = NewRegistry()

// Register records doc in the default registry.
func Register(id string, doc OperationDoc) {
	defaultRegistry.Register(id, doc)
}

// Lookup returns the documentation registered under id in the default
// registry.
func Lookup(id string) (OperationDoc, bool) {
	return defaultRegistry.Lookup(id)
}

// Docs returns a copy of every entry in the default registry.
func Docs() map[string]OperationDoc {
	return defaultRegistry.Docs()
}

// Apply replays the default registry into att.
func Apply(att Attacher) {
	defaultRegistry.Apply(att)
}
