package entities

import "sort"

// IndexedTemplate is a template plus the precomputed data the matcher needs
type IndexedTemplate struct {
	Template *LicenseTemplate
	TokenIDs []uint64       // hashed Template.Tokens, same order
	Bag      map[uint64]int // token id -> occurrence count
}

// Key returns the template key
func (t *IndexedTemplate) Key() string {
	return t.Template.Key
}

// CorpusSnapshot is an immutable, read-only set of indexed templates.
// Snapshots are shared across concurrent scans without locking; changes
// always produce a new snapshot.
type CorpusSnapshot struct {
	templates []*IndexedTemplate // ascending by key
	byKey     map[string]*IndexedTemplate
	digest    string
}

// NewCorpusSnapshot builds a snapshot; later entries win on duplicate keys
func NewCorpusSnapshot(templates []*IndexedTemplate, digest string) *CorpusSnapshot {
	byKey := make(map[string]*IndexedTemplate, len(templates))
	for _, t := range templates {
		byKey[t.Key()] = t
	}

	sorted := make([]*IndexedTemplate, 0, len(byKey))
	for _, t := range byKey {
		sorted = append(sorted, t)
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Key() < sorted[j].Key()
	})

	return &CorpusSnapshot{
		templates: sorted,
		byKey:     byKey,
		digest:    digest,
	}
}

// Templates returns the templates in ascending key order.
// The slice must not be modified.
func (c *CorpusSnapshot) Templates() []*IndexedTemplate {
	return c.templates
}

// Get returns the template for key
func (c *CorpusSnapshot) Get(key string) (*IndexedTemplate, bool) {
	t, ok := c.byKey[key]
	return t, ok
}

// Len returns the number of templates
func (c *CorpusSnapshot) Len() int {
	return len(c.templates)
}

// Digest identifies the snapshot content; equal digests mean equal corpora
func (c *CorpusSnapshot) Digest() string {
	return c.digest
}
