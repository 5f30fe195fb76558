package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stylemuse/shopassist/internal/auth"
	"github.com/stylemuse/shopassist/internal/usage"
)

// AccountHandler covers API key management and usage reporting for the
// authenticated user.
type AccountHandler struct {
	auth     *auth.Service
	usage    *usage.Service
	validate *validator.Validate
}

func NewAccountHandler(a *auth.Service, u *usage.Service) *AccountHandler {
	return &AccountHandler{auth: a, usage: u, validate: validator.New()}
}

type createKeyRequest struct {
	Name      string     `json:"name" validate:"required,max=80"`
	ExpiresAt *time.Time `json:"expires_at"`
}

func (h *AccountHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ak, plaintext, err := h.auth.CreateAPIKey(r.Context(), auth.UserIDFromContext(r.Context()), req.Name, req.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// The plaintext key appears in this response only.
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"api_key": ak,
		"key":     plaintext,
	})
}

func (h *AccountHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.auth.ListAPIKeys(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"api_keys": keys, "count": len(keys)})
}

func (h *AccountHandler) DeleteAPIKey(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid key ID")
		return
	}
	if err := h.auth.DeleteAPIKey(r.Context(), auth.UserIDFromContext(r.Context()), id); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Usage reports the user's LLM spend grouped by provider and model. Optional
// start/end query params bound the window (RFC 3339).
func (h *AccountHandler) Usage(w http.ResponseWriter, r *http.Request) {
	var startDate, endDate *time.Time
	if s := r.URL.Query().Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid start date")
			return
		}
		startDate = &t
	}
	if e := r.URL.Query().Get("end"); e != "" {
		t, err := time.Parse(time.RFC3339, e)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid end date")
			return
		}
		endDate = &t
	}

	summaries, err := h.usage.UserSummary(r.Context(), auth.UserIDFromContext(r.Context()), startDate, endDate)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"usage": summaries})
}
