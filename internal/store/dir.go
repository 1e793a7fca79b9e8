package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ziadkadry99/webgl-serve/internal/mime"
)

// DirStore serves files straight from a directory on disk. Lookups cannot
// escape the directory.
type DirStore struct {
	dir  string
	root *os.Root
}

// OpenDir opens dir as a store.
func OpenDir(dir string) (*DirStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	root, err := os.OpenRoot(abs)
	if err != nil {
		return nil, fmt.Errorf("opening build directory: %w", err)
	}
	return &DirStore{dir: abs, root: root}, nil
}

// Dir returns the absolute directory the store serves.
func (d *DirStore) Dir() string { return d.dir }

// Close releases the directory handle.
func (d *DirStore) Close() error { return d.root.Close() }

// Get reads the file at the slash-separated path p.
func (d *DirStore) Get(ctx context.Context, p string) (*File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := d.root.Open(filepath.FromSlash(p))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("opening %s: %w", p, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", p, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory: %w", p, ErrNotFound)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}

	contentType := mime.Resolve(p)
	return &File{
		Path:        p,
		ContentType: contentType,
		IsText:      mime.IsText(contentType),
		Content:     data,
		Encoding:    EncodingRaw,
	}, nil
}

// List returns every regular file below the directory.
func (d *DirStore) List(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	err := fs.WalkDir(d.root.FS(), ".", func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !e.Type().IsRegular() {
			return nil
		}
		info, err := e.Info()
		if err != nil {
			return nil
		}
		contentType := mime.Resolve(p)
		entries = append(entries, Entry{
			Path:        p,
			ContentType: contentType,
			IsText:      mime.IsText(contentType),
			Size:        info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", d.dir, err)
	}
	return entries, nil
}

// HasIndex reports whether the directory tree contains an index.html at any
// depth. Names are compared case-insensitively.
func (d *DirStore) HasIndex() bool {
	found := false
	_ = fs.WalkDir(d.root.FS(), ".", func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !e.IsDir() && strings.EqualFold(e.Name(), "index.html") {
			found = true
			return fs.SkipAll
		}
		return nil
	})
	return found
}
