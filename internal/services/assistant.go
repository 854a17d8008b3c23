package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
)

const (
	promptHistoryLimit   = 12
	historyPageLimit     = 50
	fallbackAssistantMsg = "Here are some options you might like."
)

type chatStore interface {
	Create(ctx context.Context, m *models.ChatMessage) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type assistantCatalog interface {
	candidateSearcher
	GetByIDs(ctx context.Context, ids []int64) ([]models.ProductSummary, error)
}

type categorySource interface {
	Categories(ctx context.Context) ([]string, error)
}

type AssistantService struct {
	chats      chatStore
	products   assistantCatalog
	categories categorySource
	llm        LLM
	log        *logger.Logger
}

func NewAssistantService(chats chatStore, products assistantCatalog, categories categorySource, llm LLM, log *logger.Logger) *AssistantService {
	return &AssistantService{chats: chats, products: products, categories: categories, llm: llm, log: log}
}

// Ask answers one shopper message. The user's turn is stored before anything
// else, so it stays in the log even if a later step fails.
func (s *AssistantService) Ask(ctx context.Context, userID uuid.UUID, message string) (*models.AssistantResponse, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is required."}}
	}

	userTurn := &models.ChatMessage{UserID: userID, Role: models.RoleUser, Content: message}
	if err := s.chats.Create(ctx, userTurn); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	recent, err := s.chats.ListRecent(ctx, userID, promptHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load chat history: %w", err)
	}
	history := priorTurns(recent, userTurn.ID)

	categories, err := s.categories.Categories(ctx)
	if err != nil {
		return nil, err
	}

	intent := ExtractIntent(message, categories)
	products, err := FindCandidates(ctx, s.products, intent)
	if err != nil {
		return nil, err
	}

	log := s.log.With("user_id", userID.String())
	log.Debug("assistant intent",
		"keywords", intent.Keywords,
		"category", orEmpty(intent.InferredCategory),
		"has_budget", intent.BudgetMax != nil,
		"candidates", len(products),
	)

	if len(products) == 0 {
		msg := noMatchMessage(intent)
		if err := s.saveAssistantTurn(ctx, userID, msg, nil); err != nil {
			return nil, err
		}
		return &models.AssistantResponse{
			AssistantMessage: msg,
			Recommendations:  []models.Recommendation{},
			Products:         []models.ProductSummary{},
		}, nil
	}

	req, err := buildRecommendationRequest(message, intent, products, history)
	if err != nil {
		return nil, fmt.Errorf("build recommendation request: %w", err)
	}

	content, err := s.llm.Complete(ctx, req)
	if errors.Is(err, errNoContent) {
		// A reply without a message is read as an empty object
		content, err = "{}", nil
	}
	if err != nil {
		return nil, &UpstreamError{Message: "Assistant request failed", Err: err}
	}

	reply, err := parseRecommendationReply(content)
	if err != nil {
		log.Warn("assistant reply not JSON", "error", err)
		return nil, &UpstreamError{Message: "Assistant returned invalid JSON", Err: err}
	}

	recs := SanitizeRecommendations(reply.Recommendations, products)

	// The stored turn always has text; the response carries the model's own
	// message and leaves the fallback to the client.
	stored := reply.AssistantMessage
	if stored == "" {
		stored = fallbackAssistantMsg
	}
	if err := s.saveAssistantTurn(ctx, userID, stored, recs); err != nil {
		return nil, err
	}

	recProducts := []models.ProductSummary{}
	if len(recs) > 0 {
		recProducts, err = s.products.GetByIDs(ctx, recommendationIDs(recs))
		if err != nil {
			return nil, fmt.Errorf("load recommended products: %w", err)
		}
	}

	log.Info("assistant answered", "recommendations", len(recs))

	return &models.AssistantResponse{
		AssistantMessage: reply.AssistantMessage,
		Recommendations:  recs,
		Products:         recProducts,
	}, nil
}

// MessageText reads a request's message field. Missing or null is empty and
// any other JSON value is stringified, so 123 reads as "123".
func MessageText(raw json.RawMessage) string {
	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil || v == nil {
		return ""
	}
	return jsString(v)
}

// History returns the user's most recent messages, oldest first.
func (s *AssistantService) History(ctx context.Context, userID uuid.UUID) ([]*models.ChatMessage, error) {
	recent, err := s.chats.ListRecent(ctx, userID, historyPageLimit)
	if err != nil {
		return nil, err
	}
	reverseMessages(recent)
	return recent, nil
}

func (s *AssistantService) ClearHistory(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.chats.DeleteByUser(ctx, userID)
}

func (s *AssistantService) saveAssistantTurn(ctx context.Context, userID uuid.UUID, content string, recs []models.Recommendation) error {
	if recs == nil {
		recs = []models.Recommendation{}
	}
	turn := &models.ChatMessage{UserID: userID, Role: models.RoleAssistant, Content: content, Recommendations: recs}
	if err := s.chats.Create(ctx, turn); err != nil {
		return fmt.Errorf("save assistant message: %w", err)
	}
	return nil
}

// priorTurns orders newest-first rows oldest-first and leaves out the
// message being answered.
func priorTurns(recent []*models.ChatMessage, current uuid.UUID) []ChatTurn {
	turns := make([]ChatTurn, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		if recent[i].ID == current {
			continue
		}
		turns = append(turns, ChatTurn{Role: recent[i].Role, Content: recent[i].Content})
	}
	return turns
}

func reverseMessages(msgs []*models.ChatMessage) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}
