// Package gateways provides adapter implementations for the file system and corpus integrity checks.
package gateways

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/ochairo/golicense/internal/domain/entities"
	"github.com/ochairo/golicense/internal/domain/interfaces/gateways"
)

// fileSystem reads documents and enumerates scan targets on the local disk
type fileSystem struct{}

// NewFileSystem creates a new local file system gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewFileSystem() *fileSystem {
	return &fileSystem{}
}

// Ensure fileSystem implements FileSystemGateway interface
var _ gateways.FileSystemGateway = (*fileSystem)(nil)

// ReadDocument reads at most maxSize bytes of a regular file
func (f *fileSystem) ReadDocument(ctx context.Context, path string, maxSize int64) (*gateways.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, entities.NotFoundf("read file", path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, entities.WrongKindf("read file", path, "is a directory")
	}
	if !info.Mode().IsRegular() {
		return nil, entities.WrongKindf("read file", path, "not a regular file")
	}

	//nolint:gosec // G304: path is the scan target chosen by the caller
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	//nolint:errcheck // Defer close
	defer file.Close()

	if maxSize <= 0 {
		maxSize = entities.DefaultMaxScanSize
	}
	content, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc := &gateways.Document{Path: path, Content: content}
	if int64(len(content)) > maxSize {
		doc.Content = content[:maxSize]
		doc.Truncated = true
	}
	return doc, nil
}

// errWalkCancelled stops a walk when the context is done
var errWalkCancelled = errors.New("walk cancelled")

// ListFiles returns the regular files under root sorted by path.
// Unreadable entries below root become warnings; a cancelled context ends
// the walk early with the files found so far.
func (f *fileSystem) ListFiles(ctx context.Context, root string, recursive bool) ([]string, []string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, entities.NotFoundf("scan directory", root)
		}
		return nil, nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, entities.WrongKindf("scan directory", root, "not a directory")
	}

	var files []string
	warnings := []string{}

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read directory %s: %w", root, err)
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() {
				files = append(files, filepath.Join(root, entry.Name()))
			}
		}
		sort.Strings(files)
		return files, warnings, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return errWalkCancelled
		}
		if err != nil {
			if path == root {
				return err
			}
			warnings = append(warnings, fmt.Sprintf("cannot read %s: %v", path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil && !errors.Is(err, errWalkCancelled) {
		return nil, nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, warnings, nil
}
