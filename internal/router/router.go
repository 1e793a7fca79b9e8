// Package router serves a game build from a content store under a virtual
// path prefix.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ziadkadry99/webgl-serve/internal/mime"
	"github.com/ziadkadry99/webgl-serve/internal/rewrite"
	"github.com/ziadkadry99/webgl-serve/internal/store"
)

// Isolation headers make the page cross-origin isolated, which threaded
// WebAssembly (SharedArrayBuffer) requires.
const (
	HeaderCOEP = "Cross-Origin-Embedder-Policy"
	HeaderCOOP = "Cross-Origin-Opener-Policy"
)

// SetIsolationHeaders adds both isolation headers to h.
func SetIsolationHeaders(h http.Header) {
	h.Set(HeaderCOEP, "require-corp")
	h.Set(HeaderCOOP, "same-origin")
}

// Router is the http.Handler for the virtual path prefix. It never fails
// hard: every request ends in 200, 404 or 500.
type Router struct {
	env      *Env
	rewriter *rewrite.Rewriter
}

// New returns a Router serving from env.
func New(env *Env) *Router {
	return &Router{
		env: env,
		rewriter: &rewrite.Rewriter{
			Registry:  env.Scripts(),
			URLPrefix: env.Prefix(),
		},
	}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := rt.env.logger.With(slog.String("path", r.URL.Path))
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic serving file", slog.Any("panic", rec))
			writeError(w, fmt.Errorf("%v", rec))
		}
	}()

	filePath, ok := rt.env.ResolvePath(r.URL.Path)
	if !ok {
		writeNotFound(w)
		return
	}

	if body, ok := rt.env.Scripts().Lookup(filePath); ok {
		write(w, r, mime.JavaScript, "", []byte(body))
		return
	}

	// A client going away does not abort the lookup.
	ctx := context.WithoutCancel(r.Context())

	contentType, encoding, body, err := rt.load(ctx, filePath)
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Warn("file not found in store", slog.String("file", filePath))
		writeNotFound(w)
		return
	case err != nil:
		log.Error("error serving file", slog.String("file", filePath), slog.Any("err", err))
		writeError(w, err)
		return
	}

	log.Debug("serving file", slog.String("file", filePath), slog.String("type", contentType), slog.Int("size", len(body)))
	write(w, r, contentType, encoding, body)
}

// load looks filePath up and returns the response content type, the
// Content-Encoding and the decoded, possibly rewritten body.
func (rt *Router) load(ctx context.Context, filePath string) (string, string, []byte, error) {
	st, err := rt.env.Store(ctx)
	if err != nil {
		return "", "", nil, err
	}

	f, err := st.Get(ctx, filePath)
	if err != nil {
		return "", "", nil, err
	}

	contentType := f.ContentType
	if contentType == "" {
		contentType = mime.Resolve(filePath)
	}
	var encoding string
	if rt.env.precompressed {
		if inner, enc := mime.Encoding(filePath); enc != "" {
			contentType = mime.Resolve(inner)
			encoding = enc
		}
	}

	body, err := store.Decode(f)
	if err != nil {
		return "", "", nil, err
	}

	if contentType == mime.HTML && encoding == "" {
		doc, scripts, err := rt.rewriter.Rewrite(string(body), filePath)
		if err != nil {
			return "", "", nil, err
		}
		if len(scripts) > 0 {
			rt.env.logger.Debug("extracted inline scripts", slog.String("file", filePath), slog.Int("count", len(scripts)))
		}
		body = []byte(doc)
	}

	return contentType, encoding, body, nil
}

func write(w http.ResponseWriter, r *http.Request, contentType, encoding string, body []byte) {
	h := w.Header()
	h.Set("Content-Type", contentType)
	if encoding != "" {
		h.Set("Content-Encoding", encoding)
	}
	h.Set("Content-Length", strconv.Itoa(len(body)))
	SetIsolationHeaders(h)
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(body)
	}
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte("File not found"))
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte("Error: " + err.Error()))
}
