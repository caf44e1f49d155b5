package export

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// Handler exposes export as an HTTP endpoint.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with a GET endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("accountId")))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid account id: %v", err), http.StatusBadRequest)
		return
	}
	fileIDRaw := r.URL.Query().Get("fileId")
	if fileIDRaw == "" {
		fileIDRaw = r.URL.Query().Get("sourceFileId")
	}
	sourceFileID, err := uuid.Parse(strings.TrimSpace(fileIDRaw))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid source file id: %v", err), http.StatusBadRequest)
		return
	}

	result, err := h.service.Export(r.Context(), accountID, sourceFileID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, ErrNothingProcessed):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.FileName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}
