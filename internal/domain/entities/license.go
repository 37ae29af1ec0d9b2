// Package entities defines core domain models and data structures.
package entities

// Category values used when a template does not declare one
const (
	CategoryUnknown = "unknown"
)

// LicenseTemplate represents a normalized reference license text
// Templates are immutable once loaded into a corpus
type LicenseTemplate struct {
	Key      string   // Unique identifier, e.g. "mit", "apache-2.0"
	Name     string   // Human readable name (optional)
	Category string   // Licensing classification tag, e.g. "permissive", "copyleft"
	RawText  string   // Original template text
	Tokens   []string // Normalized token sequence
	Source   string   // File the template was loaded from
}

// TemplateInfo is the read-only summary of a template exposed to callers
type TemplateInfo struct {
	Key      string `json:"key"`
	Name     string `json:"name,omitempty"`
	Category string `json:"category"`
	Tokens   int    `json:"tokens"`
	Source   string `json:"source,omitempty"`
}

// Info returns the summary view of the template
func (t *LicenseTemplate) Info() TemplateInfo {
	return TemplateInfo{
		Key:      t.Key,
		Name:     t.Name,
		Category: t.Category,
		Tokens:   len(t.Tokens),
		Source:   t.Source,
	}
}
