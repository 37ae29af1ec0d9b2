package entities

import "time"

// ToolName is reported in directory scan headers
const ToolName = "golicense"

// ToolVersion is reported in directory scan headers
const ToolVersion = "0.1.0"

// FileScanResult holds everything found in one file.
// Licenses and LicenseExpressions are parallel: LicenseExpressions[i] == Licenses[i].Key.
type FileScanResult struct {
	Path               string               `json:"path"`
	Licenses           []Match              `json:"licenses"`
	LicenseExpressions []string             `json:"license_expressions"`
	Copyrights         []CopyrightStatement `json:"copyrights"`
	Holders            []Holder             `json:"holders"`
	ScanErrors         []string             `json:"scan_errors"`
}

// NewFileScanResult returns an empty result for path with non-nil slices,
// so the JSON payload always carries arrays
func NewFileScanResult(path string) *FileScanResult {
	return &FileScanResult{
		Path:               path,
		Licenses:           []Match{},
		LicenseExpressions: []string{},
		Copyrights:         []CopyrightStatement{},
		Holders:            []Holder{},
		ScanErrors:         []string{},
	}
}

// SetLicenses replaces the matches and rebuilds the parallel expression list
func (r *FileScanResult) SetLicenses(matches []Match) {
	r.Licenses = make([]Match, len(matches))
	copy(r.Licenses, matches)
	r.LicenseExpressions = make([]string, len(matches))
	for i, m := range matches {
		r.LicenseExpressions[i] = m.Key
	}
}

// AddError records a per-file failure
func (r *FileScanResult) AddError(msg string) {
	r.ScanErrors = append(r.ScanErrors, msg)
}

// Clone returns a deep copy of the result
func (r *FileScanResult) Clone() *FileScanResult {
	c := NewFileScanResult(r.Path)
	c.Licenses = append(c.Licenses, r.Licenses...)
	c.LicenseExpressions = append(c.LicenseExpressions, r.LicenseExpressions...)
	c.Copyrights = append(c.Copyrights, r.Copyrights...)
	c.Holders = append(c.Holders, r.Holders...)
	c.ScanErrors = append(c.ScanErrors, r.ScanErrors...)
	return c
}

// ProjectLicense is a project-level license detected from license files in the scanned root
type ProjectLicense struct {
	Key        string  `json:"key"`
	Confidence float64 `json:"confidence"`
	File       string  `json:"file,omitempty"`
}

// ScanOptions records the options a directory scan ran with
type ScanOptions struct {
	Threshold   float64 `json:"threshold"`
	Recursive   bool    `json:"recursive"`
	Concurrency int     `json:"concurrency"`
}

// ScanHeader describes one directory scan invocation
type ScanHeader struct {
	ToolName        string           `json:"tool_name"`
	ToolVersion     string           `json:"tool_version"`
	ScanID          string           `json:"scan_id"`
	Input           string           `json:"input"`
	StartTimestamp  time.Time        `json:"start_timestamp"`
	EndTimestamp    time.Time        `json:"end_timestamp"`
	Duration        float64          `json:"duration"` // seconds
	FilesCount      int              `json:"files_count"`
	Errors          []string         `json:"errors"`
	Options         ScanOptions      `json:"options"`
	ProjectLicenses []ProjectLicense `json:"project_licenses,omitempty"`
}

// DirectoryScanResult aggregates a directory scan; Files are sorted by Path
type DirectoryScanResult struct {
	Headers []ScanHeader      `json:"header"`
	Files   []*FileScanResult `json:"files"`
}

// Header returns the scan header (the first and only header entry)
func (d *DirectoryScanResult) Header() *ScanHeader {
	if len(d.Headers) == 0 {
		return nil
	}
	return &d.Headers[0]
}
