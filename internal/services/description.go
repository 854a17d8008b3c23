package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
)

const descriptionTemp = 0.6

type descriptionRepo interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	UpdateDescription(ctx context.Context, id int64, description string) (bool, error)
}

type DescriptionService struct {
	repo   descriptionRepo
	llm    LLM
	events eventPublisher
	log    *logger.Logger
}

func NewDescriptionService(repo descriptionRepo, llm LLM, events eventPublisher, log *logger.Logger) *DescriptionService {
	if events == nil {
		events = nopPublisher{}
	}
	return &DescriptionService{repo: repo, llm: llm, events: events, log: log}
}

// ParseProductID accepts a JSON number or numeric string. A missing or null
// value is not treated as an id.
func ParseProductID(raw json.RawMessage) (int64, error) {
	invalid := &ValidationError{Fields: map[string]string{"productId": "Invalid productId"}}

	var v interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil || v == nil {
		return 0, invalid
	}
	n := jsNumber(v)
	if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || n >= 1<<63 || n < -(1<<63) {
		return 0, invalid
	}
	return int64(n), nil
}

// Rewrite asks the model for a fresh description of product id and stores it.
func (s *DescriptionService) Rewrite(ctx context.Context, id int64) (*models.GenerateDescriptionResponse, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Product not found"}
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	content, err := s.llm.Complete(ctx, ChatRequest{
		Messages:    []ChatTurn{{Role: models.RoleUser, Content: buildDescriptionPrompt(product)}},
		Temperature: descriptionTemp,
	})
	if errors.Is(err, errNoContent) {
		return nil, &UpstreamError{Message: "AI returned empty description"}
	}
	if err != nil {
		return nil, &UpstreamError{Message: "Description generation failed", Err: err}
	}

	description := strings.TrimSpace(content)
	if description == "" {
		return nil, &UpstreamError{Message: "AI returned empty description"}
	}

	found, err := s.repo.UpdateDescription(ctx, id, description)
	if err != nil {
		return nil, fmt.Errorf("update description: %w", err)
	}
	if !found {
		return nil, &NotFoundError{Message: "Product not found"}
	}

	s.log.Info("product description rewritten", "product_id", id, "length", len(description))
	s.events.Publish(ctx, models.WSMessage{
		Type:    EventProductUpdated,
		Payload: models.ProductUpdatedEvent{ProductID: id},
	})

	return &models.GenerateDescriptionResponse{ProductID: id, Description: description}, nil
}

func buildDescriptionPrompt(p *models.Product) string {
	var b strings.Builder
	b.WriteString("Write a clean, persuasive e-commerce product description in 2 short paragraphs.\n")
	b.WriteString("No buzzwords. No emojis. No bullet points.\n")
	b.WriteString("Mention the product name, category, and brand if available.\n")
	b.WriteString("Keep it under 90 words.\n\n")
	b.WriteString("Product:\n")
	fmt.Fprintf(&b, "- Name: %s\n", p.Title)
	fmt.Fprintf(&b, "- Category: %s\n", orNA(p.Category))
	fmt.Fprintf(&b, "- Brand: %s\n", orNA(p.Brand))
	fmt.Fprintf(&b, "- Price: %s\n", strconv.FormatFloat(p.Price, 'f', -1, 64))
	fmt.Fprintf(&b, "Current description (may be bad): %s\n", orNA(p.Description))
	return b.String()
}

func orNA(s *string) string {
	if s == nil {
		return "N/A"
	}
	return *s
}
