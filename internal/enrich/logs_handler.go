package enrich

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/awickham/feedforge/internal/repository"

	"github.com/google/uuid"
)

// LogsHandler exposes per row processing failures for inspection.
type LogsHandler struct {
	logs repository.ProcessingLogRepository
}

// NewLogsHandler wraps the log repository with a GET endpoint.
func NewLogsHandler(logs repository.ProcessingLogRepository) http.Handler {
	return &LogsHandler{logs: logs}
}

func (h *LogsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accountID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("accountId")))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid account id: %v", err), http.StatusBadRequest)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	entries, err := h.logs.List(r.Context(), accountID, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
