package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/stylemuse/shopassist/internal/auth"
	"github.com/stylemuse/shopassist/internal/chat"
)

type ChatHandler struct {
	svc      *chat.Service
	validate *validator.Validate
}

func NewChatHandler(svc *chat.Service) *ChatHandler {
	return &ChatHandler{svc: svc, validate: validator.New()}
}

type turnRequest struct {
	ConversationID string `json:"conversation_id" validate:"omitempty,uuid4"`
	Text           string `json:"text" validate:"required_without=Image,max=4000"`
	Image          string `json:"image" validate:"omitempty,max=10000000"`
}

// Turn handles one message from the user and responds with the assistant's
// reply, the extracted style profile and ranked product matches.
func (h *ChatHandler) Turn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	convID := uuid.Nil
	if req.ConversationID != "" {
		var err error
		convID, err = uuid.Parse(req.ConversationID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid conversation ID")
			return
		}
	}

	result, err := h.svc.Turn(r.Context(), chat.TurnInput{
		UserID:         auth.UserIDFromContext(r.Context()),
		ConversationID: convID,
		Text:           req.Text,
		Image:          req.Image,
	})
	if errors.Is(err, chat.ErrNotFound) {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *ChatHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.svc.ListConversations(r.Context(), auth.UserIDFromContext(r.Context()), 0)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": convs, "count": len(convs)})
}

func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	convID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid conversation ID")
		return
	}

	msgs, err := h.svc.Messages(r.Context(), auth.UserIDFromContext(r.Context()), convID)
	if errors.Is(err, chat.ErrNotFound) {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": msgs, "count": len(msgs)})
}
