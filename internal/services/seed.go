package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
)

const seedSuccessMessage = "Products seeded successfully"

type productUpserter interface {
	UpsertMany(ctx context.Context, products []models.Product) (int, error)
}

type categoryInvalidator interface {
	InvalidateCategories(ctx context.Context)
}

type SeedService struct {
	repo      productUpserter
	client    *http.Client
	sourceURL string
	catalog   categoryInvalidator
	events    eventPublisher
	log       *logger.Logger
}

func NewSeedService(repo productUpserter, sourceURL string, catalog categoryInvalidator, events eventPublisher, log *logger.Logger) *SeedService {
	if events == nil {
		events = nopPublisher{}
	}
	return &SeedService{
		repo:      repo,
		client:    &http.Client{Timeout: 30 * time.Second},
		sourceURL: sourceURL,
		catalog:   catalog,
		events:    events,
		log:       log,
	}
}

// sourceProduct is one entry of the DummyJSON products feed.
type sourceProduct struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Price       float64  `json:"price"`
	Category    *string  `json:"category"`
	Brand       *string  `json:"brand"`
	Thumbnail   *string  `json:"thumbnail"`
	Rating      *float64 `json:"rating"`
	Stock       *int     `json:"stock"`
}

type sourceFeed struct {
	Products []sourceProduct `json:"products"`
}

func (p sourceProduct) toProduct() models.Product {
	return models.Product{
		ID:          p.ID,
		Title:       p.Title,
		Price:       p.Price,
		Category:    p.Category,
		Brand:       p.Brand,
		Description: p.Description,
		ImageURL:    p.Thumbnail,
		Rating:      p.Rating,
		Stock:       p.Stock,
	}
}

// Seed fetches the demo catalog and upserts it by id. Running it twice
// overwrites rather than duplicates.
func (s *SeedService) Seed(ctx context.Context) (*models.SeedResult, error) {
	feed, err := s.fetch(ctx)
	if err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(feed.Products))
	for _, p := range feed.Products {
		products = append(products, p.toProduct())
	}

	if _, err := s.repo.UpsertMany(ctx, products); err != nil {
		return nil, fmt.Errorf("upsert products: %w", err)
	}

	if s.catalog != nil {
		s.catalog.InvalidateCategories(ctx)
	}
	s.events.Publish(ctx, models.WSMessage{
		Type:    EventCatalogSeeded,
		Payload: models.CatalogSeededEvent{Count: len(products)},
	})
	s.log.Info("catalog seeded", "count", len(products))

	return &models.SeedResult{Inserted: len(products), Message: seedSuccessMessage}, nil
}

func (s *SeedService) fetch(ctx context.Context) (*sourceFeed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build seed request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Message: "Failed to fetch products from seed source", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, &UpstreamError{Message: fmt.Sprintf("Failed to fetch products from seed source (status %d)", resp.StatusCode)}
	}

	var feed sourceFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, &UpstreamError{Message: "Seed source returned invalid JSON", Err: err}
	}
	return &feed, nil
}
