// Package walker enumerates the files of a Unity WebGL build folder.
package walker

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ziadkadry99/webgl-serve/internal/mime"
)

// DefaultMaxFileSize is the largest file taken from a build (512 MB).
const DefaultMaxFileSize int64 = 512 << 20

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path        string // Absolute path on disk.
	RelPath     string // Slash-separated path relative to the build root.
	Size        int64  // File size in bytes.
	ContentType string // Content type served for the file.
	IsText      bool   // Whether the file is stored as text.
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir     string   // Root directory to walk.
	Include     []string // Glob patterns; only matching files are included.
	Exclude     []string // Glob patterns; matching files are excluded.
	MaxFileSize int64    // Files larger than this are skipped (0 = use default).
}

// Walk traverses the build rooted at config.RootDir and returns every file
// that passes filtering, in lexical order.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root, err := filepath.Abs(config.RootDir)
	if err != nil {
		return nil, fmt.Errorf("walker: resolve root: %w", err)
	}

	maxSize := config.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	var files []FileInfo

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		name := d.Name()

		if d.IsDir() {
			if path != root && shouldExcludeName(name) {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() || shouldExcludeName(name) {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)

		if !MatchesInclude(relPath, config.Include) {
			return nil
		}
		if MatchesExclude(relPath, config.Exclude) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.Size() > maxSize {
			return nil
		}

		files = append(files, FileInfo{
			Path:        path,
			RelPath:     relPath,
			Size:        info.Size(),
			ContentType: mime.Resolve(relPath),
			IsText:      isText(path, relPath),
		})

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	return files, nil
}

// HasIndex reports whether any file is an index.html, at any depth.
func HasIndex(files []FileInfo) bool {
	for _, f := range files {
		if strings.HasSuffix(strings.ToLower(f.RelPath), "index.html") {
			return true
		}
	}
	return false
}

// isText decides how a file is stored. Known text extensions are text and
// known binary types are binary; anything else is sniffed.
func isText(path, relPath string) bool {
	if mime.IsTextName(relPath) {
		return true
	}
	if mime.Resolve(relPath) != mime.Default {
		return false
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	for ; mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}
