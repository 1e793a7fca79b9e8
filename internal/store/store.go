// Package store provides the content stores a game build is served from: a
// live directory, a SQLite record store and the common File model.
package store

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a path has no file in a store.
var ErrNotFound = errors.New("file not found")

// Encoding describes how File.Content is encoded.
type Encoding int

const (
	// EncodingRaw means Content holds the file bytes as-is.
	EncodingRaw Encoding = iota
	// EncodingBase64 means Content holds standard base64.
	EncodingBase64
	// EncodingDataURL means Content holds a "data:<type>;base64,<payload>" URL.
	EncodingDataURL
)

func (e Encoding) String() string {
	switch e {
	case EncodingBase64:
		return "base64"
	case EncodingDataURL:
		return "dataurl"
	default:
		return "raw"
	}
}

// File is one served asset.
type File struct {
	Path string

	// ContentType is the type reported by the store. It may be empty, in
	// which case callers resolve it from Path.
	ContentType string
	IsText      bool
	Content     []byte
	Encoding    Encoding
}

// Entry describes a stored file without its content.
type Entry struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	IsText      bool   `json:"is_text"`
	Size        int64  `json:"size"`
}

// Store returns files by slash-separated path relative to the build root.
type Store interface {
	Get(ctx context.Context, path string) (*File, error)
}

// Lister is implemented by stores that can enumerate their files.
type Lister interface {
	List(ctx context.Context) ([]Entry, error)
}

// Clearer is implemented by stores whose content can be wiped.
type Clearer interface {
	Clear(ctx context.Context) error
}

var dataPrefix = []byte("data:")

// Decode returns the raw bytes of f. Base64 and data URL payloads are
// decoded; raw content is returned unchanged.
func Decode(f *File) ([]byte, error) {
	switch f.Encoding {
	case EncodingBase64:
		out, err := base64.StdEncoding.DecodeString(string(f.Content))
		if err != nil {
			return nil, fmt.Errorf("decoding base64 %s: %w", f.Path, err)
		}
		return out, nil
	case EncodingDataURL:
		_, payload, ok := bytes.Cut(f.Content, []byte(","))
		if !ok {
			return nil, fmt.Errorf("decoding %s: malformed data URL", f.Path)
		}
		out, err := base64.StdEncoding.DecodeString(string(payload))
		if err != nil {
			return nil, fmt.Errorf("decoding data URL %s: %w", f.Path, err)
		}
		return out, nil
	default:
		return f.Content, nil
	}
}

// DataURL encodes data as a base64 data URL of the given content type.
func DataURL(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// detectEncoding classifies a stored payload. Text records are always raw;
// binary records uploaded from a browser or by Importer are data URLs.
func detectEncoding(isText bool, content []byte) Encoding {
	if !isText && bytes.HasPrefix(content, dataPrefix) {
		return EncodingDataURL
	}
	return EncodingRaw
}
