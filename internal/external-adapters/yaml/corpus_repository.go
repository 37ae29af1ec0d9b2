package yaml

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ochairo/golicense/internal/domain/entities"
	"github.com/ochairo/golicense/internal/domain/interfaces"
	"github.com/ochairo/golicense/internal/domain/interfaces/repositories"
)

// Files in a corpus directory that are not templates
var reservedFiles = map[string]bool{
	"categories.yml":  true,
	"categories.yaml": true,
	"checksums.txt":   true,
}

// CorpusRepository implements repositories.CorpusRepository using a directory of template files
type CorpusRepository struct {
	parser *TemplateParser
	logger interfaces.Logger
}

// Ensure CorpusRepository implements CorpusRepository interface
var _ repositories.CorpusRepository = (*CorpusRepository)(nil)

// NewCorpusRepository creates a new file-based corpus repository
func NewCorpusRepository(logger interfaces.Logger) *CorpusRepository {
	return &CorpusRepository{
		parser: NewTemplateParser(),
		logger: interfaces.OrNoOp(logger),
	}
}

// LoadTemplates reads every template in corpusPath. Unlike a best-effort
// listing, any unreadable or malformed template fails the whole load.
func (r *CorpusRepository) LoadTemplates(ctx context.Context, corpusPath string) ([]*entities.LicenseTemplate, error) {
	info, err := os.Stat(corpusPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, entities.CorpusInvalidf(corpusPath, fmt.Errorf("corpus directory does not exist"))
		}
		return nil, entities.CorpusInvalidf(corpusPath, err)
	}
	if !info.IsDir() {
		return nil, entities.CorpusInvalidf(corpusPath, fmt.Errorf("corpus path is not a directory"))
	}

	entries, err := os.ReadDir(corpusPath)
	if err != nil {
		return nil, entities.CorpusInvalidf(corpusPath, fmt.Errorf("failed to read corpus directory: %w", err))
	}

	categories, err := r.loadCategories(corpusPath)
	if err != nil {
		return nil, entities.CorpusInvalidf(corpusPath, err)
	}

	templates := make([]*entities.LicenseTemplate, 0, len(entries))
	seen := make(map[string]string)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isTemplateFile(entry) {
			continue
		}

		filePath := filepath.Join(corpusPath, entry.Name())
		tmpl, err := r.parser.ParseFile(filePath)
		if err != nil {
			return nil, entities.CorpusInvalidf(corpusPath, fmt.Errorf("%s: %w", entry.Name(), err))
		}
		if prev, dup := seen[tmpl.Key]; dup {
			return nil, entities.CorpusInvalidf(corpusPath,
				fmt.Errorf("duplicate template key %q in %s and %s", tmpl.Key, prev, entry.Name()))
		}
		seen[tmpl.Key] = entry.Name()

		if tmpl.Category == "" {
			tmpl.Category = categories[tmpl.Key]
		}
		templates = append(templates, tmpl)
	}

	if len(templates) == 0 {
		return nil, entities.CorpusInvalidf(corpusPath, fmt.Errorf("no templates found"))
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Key < templates[j].Key
	})

	r.logger.Debug("corpus templates loaded",
		interfaces.F("corpus", corpusPath),
		interfaces.F("templates", len(templates)))
	return templates, nil
}

// loadCategories reads the optional categories file
func (r *CorpusRepository) loadCategories(corpusPath string) (map[string]string, error) {
	for _, name := range []string{"categories.yml", "categories.yaml"} {
		//nolint:gosec // G304: fixed file name inside the configured corpus directory
		data, err := os.ReadFile(filepath.Join(corpusPath, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return r.parser.ParseCategories(data)
	}
	return map[string]string{}, nil
}

func isTemplateFile(entry fs.DirEntry) bool {
	name := entry.Name()
	if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") || reservedFiles[name] {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yml", ".yaml", ".txt":
		return true
	}
	return false
}
