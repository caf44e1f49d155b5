package enrich

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/awickham/feedforge/internal/domain"
	"github.com/awickham/feedforge/internal/repository"

	"github.com/google/uuid"
)

// ProfileHandler manages per account processing profiles.
type ProfileHandler struct {
	profiles repository.ProfileRepository
}

// NewProfileHandler exposes profile lookup and upsert.
func NewProfileHandler(profiles repository.ProfileRepository) http.Handler {
	return &ProfileHandler{profiles: profiles}
}

type profilePayload struct {
	AccountID           string  `json:"accountId"`
	Model               string  `json:"model"`
	Temperature         float64 `json:"temperature"`
	MaxTokens           int     `json:"maxTokens"`
	PromptName          string  `json:"promptName"`
	UseInlineImages     bool    `json:"useInlineImages"`
	SEODescriptionLimit int     `json:"seoDescriptionLimit"`
}

func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPost, http.MethodPut:
		h.upsert(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ProfileHandler) get(w http.ResponseWriter, r *http.Request) {
	accountID, err := uuid.Parse(strings.TrimSpace(r.URL.Query().Get("accountId")))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid account id: %v", err), http.StatusBadRequest)
		return
	}

	profile, err := h.profiles.GetByAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *ProfileHandler) upsert(w http.ResponseWriter, r *http.Request) {
	var payload profilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	accountID, err := uuid.Parse(strings.TrimSpace(payload.AccountID))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid account id: %v", err), http.StatusBadRequest)
		return
	}
	if payload.Model == "" {
		http.Error(w, "model is required", http.StatusBadRequest)
		return
	}
	if payload.PromptName == "" {
		payload.PromptName = "default"
	}

	profile, err := h.profiles.Upsert(r.Context(), domain.ProcessingProfile{
		AccountID:           accountID,
		Model:               payload.Model,
		Temperature:         payload.Temperature,
		MaxTokens:           payload.MaxTokens,
		PromptName:          payload.PromptName,
		UseInlineImages:     payload.UseInlineImages,
		SEODescriptionLimit: payload.SEODescriptionLimit,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
