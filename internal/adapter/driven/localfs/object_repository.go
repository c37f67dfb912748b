// Package localfs reads billing exports from a local directory.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/diillson/billing-alerts-go/internal/domain/repository"
	"github.com/diillson/billing-alerts-go/internal/shared/types"
)

// ObjectRepositoryImpl maps object names to slash-separated paths under root.
type ObjectRepositoryImpl struct {
	root string
}

// NewObjectRepository cria um repositório sobre o diretório root.
func NewObjectRepository(root string) repository.ObjectRepository {
	return &ObjectRepositoryImpl{root: root}
}

func (r *ObjectRepositoryImpl) ListObjects(ctx context.Context, prefix string) ([]string, error) {
	names := []string{}
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(r.root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return names, nil
		}
		return nil, fmt.Errorf("error listing %s: %w", r.root, err)
	}
	sort.Strings(names)
	return names, nil
}

func (r *ObjectRepositoryImpl) ReadObject(ctx context.Context, name string) ([]byte, error) {
	path, err := r.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", name, types.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}
	return data, nil
}

// path resolves name under root and refuses names escaping it.
func (r *ObjectRepositoryImpl) path(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("object name %q escapes the export directory", name)
	}
	return filepath.Join(r.root, clean), nil
}
