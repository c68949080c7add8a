package api

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
)

type documentEntry struct {
	Name     string    `json:"name"`
	Kind     string    `json:"kind"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// handleListDocuments inventories the work-product log and the final outputs.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := make([]documentEntry, 0, 16)

	for _, src := range []struct {
		dir  string
		kind string
	}{
		{s.store.WorkDir(), "workproduct"},
		{s.store.OutputDir(), "final"},
	} {
		entries, err := os.ReadDir(src.dir)
		if err != nil {
			jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
			return
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}
			docs = append(docs, documentEntry{
				Name:     entry.Name(),
				Kind:     src.kind,
				Size:     info.Size(),
				Modified: info.ModTime(),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"documents": docs})
}

// handleGetDocument serves one snapshot's content by filename. Names carrying
// path separators or traversal tokens are refused outright.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		jsonError(w, "invalid document name", http.StatusBadRequest)
		return
	}

	for _, dir := range []string{s.store.WorkDir(), s.store.OutputDir()} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.Write(data)
			return
		}
		if !errors.Is(err, fs.ErrNotExist) {
			jsonError(w, "failed to read document: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}
	jsonError(w, "document not found", http.StatusNotFound)
}
