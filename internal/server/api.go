package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ziadkadry99/webgl-serve/internal/bridge"
	"github.com/ziadkadry99/webgl-serve/internal/router"
	"github.com/ziadkadry99/webgl-serve/internal/store"
)

type apiHandler struct {
	env    *router.Env
	hub    *bridge.Hub
	source string
	logger *slog.Logger
}

type statusResponse struct {
	Source  string `json:"source"`
	Ready   bool   `json:"ready"`
	Prefix  string `json:"prefix"`
	Index   string `json:"index"`
	Scripts int    `json:"extracted_scripts"`
	Agents  *int   `json:"agents,omitempty"`
	Files   *int   `json:"files,omitempty"`
}

type counter interface {
	Count(ctx context.Context) (int, error)
}

func (h *apiHandler) status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Source:  h.source,
		Ready:   h.env.Ready(),
		Prefix:  h.env.Prefix(),
		Index:   h.env.Index(),
		Scripts: h.env.Scripts().Len(),
	}
	if h.hub != nil {
		n := h.hub.Agents()
		resp.Agents = &n
	}
	if st, ok := h.readyStore(); ok {
		if c, ok := st.(counter); ok {
			if n, err := c.Count(r.Context()); err == nil {
				resp.Files = &n
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *apiHandler) listFiles(w http.ResponseWriter, r *http.Request) {
	st, ok := h.readyStore()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "content store is not ready"})
		return
	}
	lister, ok := st.(store.Lister)
	if !ok {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "source " + h.source + " cannot list files"})
		return
	}

	entries, err := lister.List(r.Context())
	if err != nil {
		h.logger.Error("listing files", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []store.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// clearFiles wipes the record store and forgets extracted scripts.
func (h *apiHandler) clearFiles(w http.ResponseWriter, r *http.Request) {
	st, ok := h.readyStore()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "content store is not ready"})
		return
	}
	clearer, ok := st.(store.Clearer)
	if !ok {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "source " + h.source + " cannot be cleared"})
		return
	}

	if err := clearer.Clear(r.Context()); err != nil {
		h.logger.Error("clearing files", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.env.Reset()
	h.logger.Info("storage cleared")
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *apiHandler) readyStore() (store.Store, bool) {
	if !h.env.Ready() {
		return nil, false
	}
	st, err := h.env.Store(context.Background())
	return st, err == nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
