// Package bridge forwards file lookups to a remote agent that owns the
// build directory. The server side is a Hub; the remote side is an Agent.
// Both talk JSON messages over a WebSocket.
package bridge

import (
	"errors"
	"fmt"

	"github.com/ziadkadry99/webgl-serve/internal/store"
)

// Message actions.
const (
	ActionGetFile  = "getFile"
	ActionRegister = "register"
)

// Message is the single envelope used in both directions. Requests carry
// Action; responses set Response and echo the request ID.
type Message struct {
	Action   string `json:"action,omitempty"`
	Response bool   `json:"response,omitempty"`
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	FilePath string `json:"filePath,omitempty"`

	Success     bool   `json:"success"`
	Content     string `json:"content,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	IsText      bool   `json:"isText"`
	Error       string `json:"error,omitempty"`
}

var (
	// ErrNoAgent is returned when a lookup is made with no agent connected.
	ErrNoAgent = errors.New("no bridge agent connected")
	// ErrTimeout is returned when the agent does not answer in time.
	ErrTimeout = errors.New("timed out waiting for file response")
	// ErrAgentGone is returned for lookups pending on an agent that
	// disconnected.
	ErrAgentGone = errors.New("bridge agent disconnected")
)

// FileError is an agent's failure answer. It matches store.ErrNotFound.
type FileError struct {
	Path    string
	Message string
}

func (e *FileError) Error() string {
	return fmt.Sprintf("agent could not read %s: %s", e.Path, e.Message)
}

func (e *FileError) Is(target error) bool {
	return target == store.ErrNotFound
}

// toFile converts a success response into a store file. Binary content
// travels as base64.
func toFile(m Message) *store.File {
	enc := store.EncodingBase64
	if m.IsText {
		enc = store.EncodingRaw
	}
	return &store.File{
		Path:        m.FilePath,
		ContentType: m.ContentType,
		IsText:      m.IsText,
		Content:     []byte(m.Content),
		Encoding:    enc,
	}
}
