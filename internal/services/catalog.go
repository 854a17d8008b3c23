package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
)

const (
	listingLimit  = 60
	relatedLimit  = 8
	categoriesKey = "catalog:categories"
)

type catalogRepo interface {
	List(ctx context.Context, limit int) ([]models.ProductSummary, error)
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	Related(ctx context.Context, category string, excludeID int64, limit int) ([]models.ProductSummary, error)
	GetByIDs(ctx context.Context, ids []int64) ([]models.ProductSummary, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}

type CatalogService struct {
	repo     catalogRepo
	cache    keyValueCache
	cacheTTL time.Duration
	log      *logger.Logger
}

// NewCatalogService caches distinct categories for cacheTTL; a nil cache or a
// zero TTL reads them from the database every time.
func NewCatalogService(repo catalogRepo, cache keyValueCache, cacheTTL time.Duration, log *logger.Logger) *CatalogService {
	return &CatalogService{repo: repo, cache: cache, cacheTTL: cacheTTL, log: log}
}

// List returns the first page of the catalog and the categories found on it.
func (s *CatalogService) List(ctx context.Context) (*models.ProductListResponse, error) {
	products, err := s.repo.List(ctx, listingLimit)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, p := range products {
		if p.Category == nil || *p.Category == "" {
			continue
		}
		if _, ok := seen[*p.Category]; ok {
			continue
		}
		seen[*p.Category] = struct{}{}
		categories = append(categories, *p.Category)
	}
	sort.Strings(categories)

	return &models.ProductListResponse{Products: products, Categories: categories}, nil
}

func (s *CatalogService) Detail(ctx context.Context, id int64) (*models.ProductDetail, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Product not found"}
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	related := []models.ProductSummary{}
	if product.Category != nil {
		related, err = s.repo.Related(ctx, *product.Category, product.ID, relatedLimit)
		if err != nil {
			return nil, fmt.Errorf("related products: %w", err)
		}
	}

	return &models.ProductDetail{Product: product, Related: related}, nil
}

// ByIDs looks up products for a client-held id list. Malformed input yields
// an empty result rather than an error.
func (s *CatalogService) ByIDs(ctx context.Context, raw json.RawMessage) ([]models.ProductSummary, error) {
	ids := CleanProductIDs(raw)
	if len(ids) == 0 {
		return []models.ProductSummary{}, nil
	}
	products, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("products by ids: %w", err)
	}
	return products, nil
}

// CleanProductIDs keeps the entries of a JSON array that coerce to integral
// numbers. Anything that is not an array cleans to nothing.
func CleanProductIDs(raw json.RawMessage) []int64 {
	var items []interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		n := jsNumber(item)
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			continue
		}
		if n >= 1<<63 || n < -(1<<63) {
			continue
		}
		ids = append(ids, int64(n))
	}
	return ids
}

// Categories returns every distinct catalog category, sorted.
func (s *CatalogService) Categories(ctx context.Context) ([]string, error) {
	if s.cachingEnabled() {
		if cached, err := s.cache.Get(ctx, categoriesKey); err == nil {
			var categories []string
			if json.Unmarshal([]byte(cached), &categories) == nil {
				return categories, nil
			}
		} else if !errors.Is(err, errCacheMiss) {
			s.log.Warn("category cache read failed", "error", err)
		}
	}

	categories, err := s.repo.DistinctCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}

	if s.cachingEnabled() {
		data, _ := json.Marshal(categories)
		if err := s.cache.Set(ctx, categoriesKey, string(data), s.cacheTTL); err != nil {
			s.log.Warn("category cache write failed", "error", err)
		}
	}
	return categories, nil
}

// InvalidateCategories drops the cached category list after catalog writes.
func (s *CatalogService) InvalidateCategories(ctx context.Context) {
	if !s.cachingEnabled() {
		return
	}
	if err := s.cache.Del(ctx, categoriesKey); err != nil {
		s.log.Warn("category cache invalidation failed", "error", err)
	}
}

func (s *CatalogService) cachingEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}
