package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one persisted turn of the shopping assistant conversation.
type ChatMessage struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"-"`
	Role            string           `json:"role"` // "user" or "assistant"
	Content         string           `json:"content"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Recommendation is a sanitized pick from the assistant.
type Recommendation struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

// AssistantRequest is the payload sent to the assistant endpoint.
type AssistantRequest struct {
	// Message is kept raw; clients sometimes send numbers or other non-strings.
	Message json.RawMessage `json:"message"`
}

// AssistantResponse is the reply from the assistant.
type AssistantResponse struct {
	AssistantMessage string           `json:"assistant_message"`
	Recommendations  []Recommendation `json:"recommendations"`
	Products         []ProductSummary `json:"products"`
}
