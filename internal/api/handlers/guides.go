package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stylemuse/shopassist/internal/auth"
	"github.com/stylemuse/shopassist/internal/chat"
	"github.com/stylemuse/shopassist/internal/docservice"
	"github.com/stylemuse/shopassist/internal/guide"
	"github.com/stylemuse/shopassist/internal/queue"
)

type GuideHandler struct {
	guides   *guide.Service
	chats    *chat.Service
	queue    *queue.Client
	validate *validator.Validate
}

func NewGuideHandler(guides *guide.Service, chats *chat.Service, qc *queue.Client) *GuideHandler {
	return &GuideHandler{guides: guides, chats: chats, queue: qc, validate: validator.New()}
}

type generateRequest struct {
	MessageID string `json:"message_id" validate:"required,uuid4"`
	Title     string `json:"title" validate:"omitempty,max=120"`
}

// Generate queues style-guide generation for an assistant message. The heavy
// work (render, upload, derived artifacts) runs on the worker; clients poll
// the guide resource for progress.
func (h *GuideHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	messageID, err := uuid.Parse(req.MessageID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message ID")
		return
	}

	msg, err := h.chats.MessageForGuide(r.Context(), userID, messageID)
	if errors.Is(err, chat.ErrNotFound) {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if msg.StyleProfile == nil {
		writeError(w, http.StatusUnprocessableEntity, "message has no style profile to build a guide from")
		return
	}

	if err := h.queue.EnqueueGuideGenerate(queue.GuideGeneratePayload{
		MessageID: messageID.String(),
		UserID:    userID.String(),
		Title:     req.Title,
	}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":     "queued",
		"message_id": messageID.String(),
	})
}

func (h *GuideHandler) List(w http.ResponseWriter, r *http.Request) {
	guides, err := h.guides.ListForUser(r.Context(), auth.UserIDFromContext(r.Context()), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"guides": guides, "count": len(guides)})
}

func (h *GuideHandler) Get(w http.ResponseWriter, r *http.Request) {
	guideID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid guide ID")
		return
	}

	g, err := h.guides.Get(r.Context(), auth.UserIDFromContext(r.Context()), guideID)
	if errors.Is(err, guide.ErrNotFound) {
		writeError(w, http.StatusNotFound, "guide not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// DownloadArtifact streams a derived artifact. Not-yet-ready, expired and
// unauthorized download failures map onto distinct status codes so clients
// can react without parsing messages.
func (h *GuideHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	guideID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid guide ID")
		return
	}
	kind := chi.URLParam(r, "kind")

	data, err := h.guides.DownloadArtifact(r.Context(), auth.UserIDFromContext(r.Context()), guideID, kind)
	switch {
	case errors.Is(err, guide.ErrNotFound):
		writeError(w, http.StatusNotFound, "artifact not found")
		return
	case errors.Is(err, docservice.ErrNotReady):
		writeError(w, http.StatusConflict, "artifact is still processing")
		return
	case errors.Is(err, docservice.ErrExpired):
		writeError(w, http.StatusGone, "download link has expired, regenerate the guide")
		return
	case errors.Is(err, docservice.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "not authorized to download this artifact")
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
