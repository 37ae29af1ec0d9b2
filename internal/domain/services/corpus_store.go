package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ochairo/golicense/internal/domain/entities"
)

// IndexTemplate normalizes a template and precomputes its matcher data.
// The input is not modified; a template without any tokens is rejected.
func IndexTemplate(t *entities.LicenseTemplate) (*entities.IndexedTemplate, error) {
	if t == nil {
		return nil, fmt.Errorf("template cannot be nil")
	}
	if strings.TrimSpace(t.Key) == "" {
		return nil, fmt.Errorf("template from %s has no key", t.Source)
	}

	tmpl := *t
	if tmpl.Category == "" {
		tmpl.Category = entities.CategoryUnknown
	}
	tmpl.Tokens = NormalizeText(t.RawText)
	if len(tmpl.Tokens) == 0 {
		return nil, fmt.Errorf("template %q has no comparable text", t.Key)
	}

	ids := make([]uint64, len(tmpl.Tokens))
	bag := make(map[uint64]int, len(tmpl.Tokens))
	for i, w := range tmpl.Tokens {
		id := TokenID(w)
		ids[i] = id
		bag[id]++
	}

	return &entities.IndexedTemplate{
		Template: &tmpl,
		TokenIDs: ids,
		Bag:      bag,
	}, nil
}

// BuildCorpus indexes templates into a new snapshot
func BuildCorpus(templates []*entities.LicenseTemplate) (*entities.CorpusSnapshot, error) {
	return ExtendCorpus(nil, templates)
}

// ExtendCorpus returns a new snapshot holding base plus templates.
// base is left untouched; a template whose key exists in base replaces it.
func ExtendCorpus(base *entities.CorpusSnapshot, templates []*entities.LicenseTemplate) (*entities.CorpusSnapshot, error) {
	indexed := make([]*entities.IndexedTemplate, 0, len(templates))
	if base != nil {
		indexed = append(indexed, base.Templates()...)
	}

	for _, t := range templates {
		it, err := IndexTemplate(t)
		if err != nil {
			return nil, err
		}
		indexed = append(indexed, it)
	}

	if len(indexed) == 0 {
		return nil, fmt.Errorf("corpus has no templates")
	}

	// Digest is computed over the deduplicated, key-ordered view
	snapshot := entities.NewCorpusSnapshot(indexed, "")
	return entities.NewCorpusSnapshot(snapshot.Templates(), corpusDigest(snapshot.Templates())), nil
}

func corpusDigest(templates []*entities.IndexedTemplate) string {
	h := sha256.New()
	for _, t := range templates {
		h.Write([]byte(t.Key()))
		h.Write([]byte{0})
		h.Write([]byte(t.Template.Category))
		h.Write([]byte{0})
		h.Write([]byte(strings.Join(t.Template.Tokens, " ")))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
