package model

// Registry is the deduplicating store of processed pages keyed by PageID.
//
// A page moves through two states: reserved, when the crawler decides to
// process it, and stored, when processing finishes. Reserving before the
// crawler recurses makes re-entrant discoveries of the same page (link
// cycles, links back to the root) detectable as already visited.
//
// Registry is not safe for concurrent use; the crawler is single-threaded.
type Registry struct {
	// entries maps identities to their state.
	entries map[PageID]*registryEntry

	// order records first-seen order so that Items is deterministic.
	order []PageID
}

type registryEntry struct {
	page   Page
	stored bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[PageID]*registryEntry),
		order:   make([]PageID, 0),
	}
}

// Reserve claims id for processing. It returns false when id is already
// reserved or stored, in which case the caller must not process it again.
func (r *Registry) Reserve(id PageID) bool {
	if _, ok := r.entries[id]; ok {
		return false
	}
	r.entries[id] = &registryEntry{}
	r.order = append(r.order, id)
	return true
}

// Store records the processed page for id, reserving it first if needed.
func (r *Registry) Store(id PageID, page Page) {
	e, ok := r.entries[id]
	if !ok {
		e = &registryEntry{}
		r.entries[id] = e
		r.order = append(r.order, id)
	}
	e.page = page
	e.stored = true
}

// Contains reports whether id is reserved or stored.
func (r *Registry) Contains(id PageID) bool {
	_, ok := r.entries[id]
	return ok
}

// Get returns the stored page for id.
// Reserved entries that have not been stored yet report false.
func (r *Registry) Get(id PageID) (Page, bool) {
	e, ok := r.entries[id]
	if !ok || !e.stored {
		return Page{}, false
	}
	return e.page, true
}

// Len returns the number of stored pages.
func (r *Registry) Len() int {
	n := 0
	for _, e := range r.entries {
		if e.stored {
			n++
		}
	}
	return n
}

// Items returns the stored pages in first-seen order.
// Reservations without a stored page, such as the root page, are omitted.
func (r *Registry) Items() []RenderItem {
	items := make([]RenderItem, 0, len(r.order))
	for _, id := range r.order {
		e := r.entries[id]
		if !e.stored {
			continue
		}
		items = append(items, RenderItem{LinkMarker: id, Page: e.page})
	}
	return items
}
