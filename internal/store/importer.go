package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/webgl-serve/internal/progress"
	"github.com/ziadkadry99/webgl-serve/internal/walker"
)

// ErrNoIndex is returned when an upload has no index.html.
var ErrNoIndex = errors.New("no index.html found in the selected files")

// Importer copies a build folder into a RecordStore.
type Importer struct {
	Store    *RecordStore
	Reporter progress.Reporter
	Logger   *slog.Logger

	Include     []string
	Exclude     []string
	MaxFileSize int64

	// Replace drops every existing record. The drop and the import commit
	// together, so a failed import leaves the previous build in place.
	Replace bool

	// Concurrency bounds the number of files read at once.
	Concurrency int

	readFile func(name string) ([]byte, error)
}

// ImportResult summarises an import.
type ImportResult struct {
	Files int
	Bytes int64
}

// Import walks dir and stores every file under its path relative to dir.
// Text files are stored as text and binary files as data URLs. Nothing is
// written when the selection has no index.html or any file fails.
func (im *Importer) Import(ctx context.Context, dir string) (*ImportResult, error) {
	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:     dir,
		Include:     im.Include,
		Exclude:     im.Exclude,
		MaxFileSize: im.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no files selected")
	}
	if !walker.HasIndex(files) {
		return nil, ErrNoIndex
	}

	reporter := im.Reporter
	if reporter == nil {
		reporter = progress.Discard{}
	}
	logger := im.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := im.Concurrency
	if limit <= 0 {
		limit = 4
	}

	readFile := im.readFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	tx, err := im.Store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if im.Replace {
		if err := tx.Clear(ctx); err != nil {
			return nil, err
		}
	}

	reporter.Start(len(files))
	defer reporter.Finish()

	var (
		done  atomic.Int64
		size  atomic.Int64
		repMu sync.Mutex
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, f := range files {
		g.Go(func() error {
			rec, err := readRecord(f, readFile)
			if err != nil {
				return err
			}
			if err := tx.Put(gctx, rec); err != nil {
				return err
			}
			size.Add(f.Size)
			repMu.Lock()
			reporter.Update(int(done.Add(1)), f.RelPath)
			repMu.Unlock()
			logger.Debug("stored file", slog.String("path", f.RelPath), slog.Bool("text", f.IsText))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &ImportResult{Files: len(files), Bytes: size.Load()}, nil
}

func readRecord(f walker.FileInfo, readFile func(string) ([]byte, error)) (*Record, error) {
	data, err := readFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.RelPath, err)
	}
	rec := &Record{
		Path:        f.RelPath,
		ContentType: f.ContentType,
		IsText:      f.IsText,
		Size:        int64(len(data)),
	}
	if f.IsText {
		rec.Content = string(data)
	} else {
		rec.Content = DataURL(f.ContentType, data)
	}
	return rec, nil
}
