package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/models"
	"storefront-backend/internal/services"
)

type assistantService interface {
	Ask(ctx context.Context, userID uuid.UUID, message string) (*models.AssistantResponse, error)
	History(ctx context.Context, userID uuid.UUID) ([]*models.ChatMessage, error)
	ClearHistory(ctx context.Context, userID uuid.UUID) (int64, error)
}

type AssistantHandler struct {
	assistant assistantService
	log       *logger.Logger
}

func NewAssistantHandler(assistant assistantService, log *logger.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, log: log}
}

func (h *AssistantHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req models.AssistantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Message = nil
	}

	resp, err := h.assistant.Ask(r.Context(), middleware.GetUserID(r.Context()), services.MessageText(req.Message))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AssistantHandler) History(w http.ResponseWriter, r *http.Request) {
	messages, err := h.assistant.History(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

func (h *AssistantHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.assistant.ClearHistory(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}
