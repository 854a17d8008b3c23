package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/services"
)

const seedFeed = `{"products":[
	{"id": 1, "title": "Essence Mascara", "price": 9.99, "category": "beauty"},
	{"id": 2, "title": "Calvin Klein CK One", "price": 49.99, "category": "fragrances"},
	{"id": 3, "title": "Unlabelled Sample", "price": 1.5, "category": ""}
]}`

func TestSeed_TwiceKeepsOneRowPerSourceID(t *testing.T) {
	pool := newTestPool(t)
	repo := NewProductRepo(pool)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(seedFeed))
	}))
	defer srv.Close()

	seeder := services.NewSeedService(repo, srv.URL, nil, nil, logger.NewNop())
	for i := 0; i < 2; i++ {
		res, err := seeder.Seed(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Inserted)
	}

	var count int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&count))
	assert.Equal(t, 3, count)

	cats, err := repo.DistinctCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"beauty", "fragrances"}, cats)
}
