package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/models"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestBuildSearchQuery_StrictWithCategoryAndTitleKeywords(t *testing.T) {
	query, args := buildSearchQuery(models.ProductQuery{
		Category:      strPtr("laptops"),
		BudgetMax:     floatPtr(900),
		TitleKeywords: []string{"gaming", "slim"},
		Limit:         60,
	})

	assert.Equal(t,
		"SELECT id, title, price, category, rating, stock FROM products WHERE category = $1 AND price <= $2 AND title ILIKE $3 AND title ILIKE $4 ORDER BY id ASC LIMIT $5",
		query)
	assert.Equal(t, []interface{}{"laptops", 900.0, "%gaming%", "%slim%", 60}, args)
}

func TestBuildSearchQuery_AnyKeywordsWithoutCategory(t *testing.T) {
	query, args := buildSearchQuery(models.ProductQuery{
		AnyKeywords: []string{"perfume", "floral"},
		Limit:       60,
	})

	assert.Equal(t,
		"SELECT id, title, price, category, rating, stock FROM products WHERE (title ILIKE $1 OR category ILIKE $1 OR title ILIKE $2 OR category ILIKE $2) ORDER BY id ASC LIMIT $3",
		query)
	assert.Equal(t, []interface{}{"%perfume%", "%floral%", 60}, args)
}

func TestBuildSearchQuery_NoFiltersDefaultsLimit(t *testing.T) {
	query, args := buildSearchQuery(models.ProductQuery{})

	assert.Equal(t, "SELECT id, title, price, category, rating, stock FROM products ORDER BY id ASC LIMIT $1", query)
	assert.Equal(t, []interface{}{60}, args)
}

func seedProducts(t *testing.T, repo *ProductRepo) {
	t.Helper()
	n, err := repo.UpsertMany(context.Background(), []models.Product{
		{ID: 1, Title: "Essence Mascara", Price: 9.99, Category: strPtr("beauty")},
		{ID: 2, Title: "Eyeshadow Palette", Price: 19.99, Category: strPtr("beauty")},
		{ID: 3, Title: "Chanel Perfume", Price: 129.99, Category: strPtr("fragrances")},
		{ID: 4, Title: "Gaming Laptop", Price: 1499, Category: strPtr("laptops")},
		{ID: 5, Title: "Mystery Box", Price: 5},
		{ID: 6, Title: "Blank Tag", Price: 3, Category: strPtr("")},
	})
	require.NoError(t, err)
	require.Equal(t, 6, n)
}

func TestProductRepo_Integration(t *testing.T) {
	pool := newTestPool(t)
	repo := NewProductRepo(pool)
	ctx := context.Background()
	seedProducts(t, repo)

	t.Run("list ordered by id", func(t *testing.T) {
		list, err := repo.List(ctx, 3)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []int64{1, 2, 3}, []int64{list[0].ID, list[1].ID, list[2].ID})
	})

	t.Run("distinct categories sorted without nulls or blanks", func(t *testing.T) {
		cats, err := repo.DistinctCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"beauty", "fragrances", "laptops"}, cats)
	})

	t.Run("related excludes self", func(t *testing.T) {
		related, err := repo.Related(ctx, "beauty", 1, 8)
		require.NoError(t, err)
		require.Len(t, related, 1)
		assert.Equal(t, int64(2), related[0].ID)
	})

	t.Run("missing product is ErrNoRows", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 999)
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})

	t.Run("search by category and budget", func(t *testing.T) {
		got, err := repo.Search(ctx, models.ProductQuery{Category: strPtr("beauty"), BudgetMax: floatPtr(10), Limit: 60})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(1), got[0].ID)
	})

	t.Run("search any keyword matches category text", func(t *testing.T) {
		got, err := repo.Search(ctx, models.ProductQuery{AnyKeywords: []string{"fragrance"}, Limit: 60})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, int64(3), got[0].ID)
	})

	t.Run("get by ids ignores unknown", func(t *testing.T) {
		got, err := repo.GetByIDs(ctx, []int64{4, 42})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Gaming Laptop", got[0].Title)
	})

	t.Run("upsert overwrites and update description", func(t *testing.T) {
		_, err := repo.UpsertMany(ctx, []models.Product{{ID: 4, Title: "Gaming Laptop Pro", Price: 1599, Category: strPtr("laptops")}})
		require.NoError(t, err)

		ok, err := repo.UpdateDescription(ctx, 4, "Fast and quiet.")
		require.NoError(t, err)
		assert.True(t, ok)

		p, err := repo.GetByID(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, "Gaming Laptop Pro", p.Title)
		require.NotNil(t, p.Description)
		assert.Equal(t, "Fast and quiet.", *p.Description)

		ok, err = repo.UpdateDescription(ctx, 999, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
