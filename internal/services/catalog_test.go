package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
)

type mapCache struct {
	data map[string]string
	sets int
}

func (m *mapCache) Get(_ context.Context, key string) (string, error) {
	v, ok := m.data[key]
	if !ok {
		return "", errCacheMiss
	}
	return v, nil
}

func (m *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	if m.data == nil {
		m.data = map[string]string{}
	}
	m.sets++
	m.data[key] = value
	return nil
}

func (m *mapCache) Del(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func sampleCatalog() *stubCatalog {
	beauty, furniture := "beauty", "furniture"
	return &stubCatalog{
		categories: []string{"beauty", "furniture"},
		products: []models.Product{
			{ID: 1, Title: "Mascara", Price: 9.99, Category: &beauty},
			{ID: 2, Title: "Sofa", Price: 499, Category: &furniture},
			{ID: 3, Title: "Palette", Price: 19.99, Category: &beauty},
			{ID: 4, Title: "Mystery"},
		},
	}
}

func TestCatalogList(t *testing.T) {
	svc := NewCatalogService(sampleCatalog(), nil, 0, logger.NewNop())

	resp, err := svc.List(context.Background())
	require.NoError(t, err)

	assert.Len(t, resp.Products, 4)
	assert.Equal(t, []string{"beauty", "furniture"}, resp.Categories)
}

func TestCatalogDetail(t *testing.T) {
	svc := NewCatalogService(sampleCatalog(), nil, 0, logger.NewNop())

	detail, err := svc.Detail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Mascara", detail.Product.Title)
	require.Len(t, detail.Related, 1)
	assert.Equal(t, int64(3), detail.Related[0].ID)

	detail, err = svc.Detail(context.Background(), 4)
	require.NoError(t, err)
	assert.NotNil(t, detail.Related)
	assert.Empty(t, detail.Related)

	_, err = svc.Detail(context.Background(), 42)
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestCleanProductIDs(t *testing.T) {
	tests := []struct {
		raw  string
		want []int64
	}{
		{`[1, "2", 3.5, "x", null, true, 1e300]`, []int64{1, 2, 0, 1}},
		{`"1,2"`, nil},
		{`{"ids": [1]}`, nil},
		{``, nil},
		{`[]`, []int64{}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CleanProductIDs(json.RawMessage(tc.raw)), tc.raw)
	}
}

func TestCatalogByIDs(t *testing.T) {
	svc := NewCatalogService(sampleCatalog(), nil, 0, logger.NewNop())

	got, err := svc.ByIDs(context.Background(), json.RawMessage(`[2, 99, "nope"]`))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Sofa", got[0].Title)

	got, err = svc.ByIDs(context.Background(), json.RawMessage(`"garbage"`))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCatalogCategories_Cached(t *testing.T) {
	repo := sampleCatalog()
	cache := &mapCache{}
	svc := NewCatalogService(repo, cache, time.Minute, logger.NewNop())
	ctx := context.Background()

	first, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beauty", "furniture"}, first)
	assert.Equal(t, 1, cache.sets)

	repo.categories = []string{"changed"}
	second, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	svc.InvalidateCategories(ctx)
	third, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"changed"}, third)
}

func TestCatalogCategories_ZeroTTLSkipsCache(t *testing.T) {
	cache := &mapCache{}
	svc := NewCatalogService(sampleCatalog(), cache, 0, logger.NewNop())

	_, err := svc.Categories(context.Background())
	require.NoError(t, err)
	assert.Zero(t, cache.sets)
}
