package ingest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/awickham/feedforge/internal/repository"

	"github.com/google/uuid"
)

// RawDeleter removes retained upload bytes.
type RawDeleter interface {
	Delete(key string) error
}

// FilesHandler exposes source file status lookup and deletion.
type FilesHandler struct {
	files repository.SourceFileRepository
	raw   RawDeleter
}

// NewFilesHandler wraps the source file repository with GET and DELETE
// endpoints.
func NewFilesHandler(files repository.SourceFileRepository, raw RawDeleter) http.Handler {
	return &FilesHandler{files: files, raw: raw}
}

func (h *FilesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("accountId")))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid account id: %v", err), http.StatusBadRequest)
		return
	}
	fileID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("fileId")))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid file id: %v", err), http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r.Context(), accountID, fileID)
	case http.MethodDelete:
		h.delete(w, r.Context(), accountID, fileID)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *FilesHandler) get(w http.ResponseWriter, ctx context.Context, accountID, fileID uuid.UUID) {
	file, err := h.files.GetByID(ctx, accountID, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "source file not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, file)
}

func (h *FilesHandler) delete(w http.ResponseWriter, ctx context.Context, accountID, fileID uuid.UUID) {
	file, err := h.files.GetByID(ctx, accountID, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "source file not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := h.files.Delete(ctx, accountID, fileID); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// Retained bytes go with the rows.
	_ = h.raw.Delete(file.RawKey())

	w.WriteHeader(http.StatusNoContent)
}
