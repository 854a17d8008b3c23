package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storefront-backend/internal/models"
)

type stubLLM struct {
	mu       sync.Mutex
	requests []ChatRequest
	reply    string
	err      error
}

func (s *stubLLM) Complete(_ context.Context, req ChatRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	return s.reply, s.err
}

type memoryChatStore struct {
	messages  []*models.ChatMessage
	createErr error
	clock     time.Time
}

func (m *memoryChatStore) Create(_ context.Context, msg *models.ChatMessage) error {
	if m.createErr != nil {
		return m.createErr
	}
	if m.clock.IsZero() {
		m.clock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	m.clock = m.clock.Add(time.Second)
	msg.ID = uuid.New()
	msg.CreatedAt = m.clock
	m.messages = append(m.messages, msg)
	return nil
}

func (m *memoryChatStore) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]*models.ChatMessage, error) {
	out := make([]*models.ChatMessage, 0)
	for i := len(m.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if m.messages[i].UserID == userID {
			out = append(out, m.messages[i])
		}
	}
	return out, nil
}

func (m *memoryChatStore) DeleteByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	kept := m.messages[:0]
	var n int64
	for _, msg := range m.messages {
		if msg.UserID == userID {
			n++
			continue
		}
		kept = append(kept, msg)
	}
	m.messages = kept
	return n, nil
}

// stubCatalog serves products from memory for every catalog-facing interface.
type stubCatalog struct {
	products   []models.Product
	searches   []models.ProductQuery
	searchFn   func(q models.ProductQuery) []models.CandidateProduct
	categories []string
	upserted   []models.Product
	err        error
}

func (s *stubCatalog) Search(_ context.Context, q models.ProductQuery) ([]models.CandidateProduct, error) {
	s.searches = append(s.searches, q)
	if s.err != nil {
		return nil, s.err
	}
	if s.searchFn != nil {
		return s.searchFn(q), nil
	}
	return []models.CandidateProduct{}, nil
}

func (s *stubCatalog) find(id int64) *models.Product {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i]
		}
	}
	return nil
}

func summary(p models.Product) models.ProductSummary {
	return models.ProductSummary{ID: p.ID, Title: p.Title, Price: p.Price, Category: p.Category, ImageURL: p.ImageURL}
}

func (s *stubCatalog) GetByIDs(_ context.Context, ids []int64) ([]models.ProductSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.ProductSummary, 0)
	for _, id := range ids {
		if p := s.find(id); p != nil {
			out = append(out, summary(*p))
		}
	}
	return out, nil
}

func (s *stubCatalog) List(_ context.Context, limit int) ([]models.ProductSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]models.ProductSummary, 0)
	for _, p := range s.products {
		if len(out) == limit {
			break
		}
		out = append(out, summary(p))
	}
	return out, nil
}

func (s *stubCatalog) ListAll(_ context.Context) ([]*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]*models.Product, 0, len(s.products))
	for i := range s.products {
		out = append(out, &s.products[i])
	}
	return out, nil
}

func (s *stubCatalog) GetByID(_ context.Context, id int64) (*models.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	if p := s.find(id); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *stubCatalog) Related(_ context.Context, category string, excludeID int64, limit int) ([]models.ProductSummary, error) {
	out := make([]models.ProductSummary, 0)
	for _, p := range s.products {
		if len(out) == limit {
			break
		}
		if p.Category != nil && *p.Category == category && p.ID != excludeID {
			out = append(out, summary(p))
		}
	}
	return out, nil
}

func (s *stubCatalog) DistinctCategories(_ context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.categories, nil
}

func (s *stubCatalog) Categories(ctx context.Context) ([]string, error) {
	return s.DistinctCategories(ctx)
}

func (s *stubCatalog) UpdateDescription(_ context.Context, id int64, description string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	p := s.find(id)
	if p == nil {
		return false, nil
	}
	p.Description = &description
	return true, nil
}

func (s *stubCatalog) UpsertMany(_ context.Context, products []models.Product) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.upserted = append(s.upserted, products...)
	return len(products), nil
}

type recordingPublisher struct {
	events []models.WSMessage
}

func (r *recordingPublisher) Publish(_ context.Context, msg models.WSMessage) {
	r.events = append(r.events, msg)
}
