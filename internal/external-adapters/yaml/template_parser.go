// Package yaml provides YAML-based license template parsing and corpus repository implementations.
package yaml

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ochairo/golicense/internal/domain/entities"
)

// yamlTemplate represents the raw YAML structure of one template file
type yamlTemplate struct {
	Key      string `yaml:"key"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Text     string `yaml:"text"`
}

// TemplateParser parses license template files
type TemplateParser struct{}

// NewTemplateParser creates a new template parser
func NewTemplateParser() *TemplateParser {
	return &TemplateParser{}
}

// ParseFile parses a template file: YAML documents (.yml, .yaml) carry
// their own key, plain text files (.txt) take the key from the file name
func (p *TemplateParser) ParseFile(filePath string) (*entities.LicenseTemplate, error) {
	//nolint:gosec // G304: filePath is a template inside the configured corpus directory
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	var tmpl *entities.LicenseTemplate
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".yml", ".yaml":
		tmpl, err = p.Parse(data)
	case ".txt":
		tmpl, err = p.ParseText(strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath)), data)
	default:
		return nil, fmt.Errorf("unsupported template file type %q", ext)
	}
	if err != nil {
		return nil, err
	}

	tmpl.Source = filePath
	return tmpl, nil
}

// Parse parses YAML bytes into a LicenseTemplate entity
func (p *TemplateParser) Parse(data []byte) (*entities.LicenseTemplate, error) {
	var yamlTmpl yamlTemplate
	if err := yaml.Unmarshal(data, &yamlTmpl); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	if err := validateKey(yamlTmpl.Key); err != nil {
		return nil, err
	}
	if strings.TrimSpace(yamlTmpl.Text) == "" {
		return nil, fmt.Errorf("template %q must have text", yamlTmpl.Key)
	}

	return &entities.LicenseTemplate{
		Key:      yamlTmpl.Key,
		Name:     yamlTmpl.Name,
		Category: yamlTmpl.Category,
		RawText:  yamlTmpl.Text,
	}, nil
}

// ParseText builds a template from plain license text
func (p *TemplateParser) ParseText(key string, data []byte) (*entities.LicenseTemplate, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("template %q must have text", key)
	}

	return &entities.LicenseTemplate{
		Key:     key,
		RawText: string(data),
	}, nil
}

// ParseCategories parses a key -> category mapping
func (p *TemplateParser) ParseCategories(data []byte) (map[string]string, error) {
	categories := make(map[string]string)
	if err := yaml.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse categories: %w", err)
	}
	return categories, nil
}

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("template must have a key")
	}
	if strings.ContainsFunc(key, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '/' || r == '\\'
	}) {
		return fmt.Errorf("template key %q must not contain whitespace or path separators", key)
	}
	return nil
}
