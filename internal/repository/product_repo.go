package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-backend/internal/models"
)

type ProductRepo struct {
	pool *pgxpool.Pool
}

func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

const productColumns = `id, title, price, category, brand, description, image_url, rating, stock`

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.Title, &p.Price, &p.Category, &p.Brand, &p.Description, &p.ImageURL, &p.Rating, &p.Stock)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func collectSummaries(rows pgx.Rows) ([]models.ProductSummary, error) {
	defer rows.Close()

	out := make([]models.ProductSummary, 0)
	for rows.Next() {
		var p models.ProductSummary
		if err := rows.Scan(&p.ID, &p.Title, &p.Price, &p.Category, &p.ImageURL); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// List returns the first limit products ordered by id.
func (r *ProductRepo) List(ctx context.Context, limit int) ([]models.ProductSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, price, category, image_url FROM products ORDER BY id ASC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows)
}

// ListAll returns every product with all columns, ordered by id.
func (r *ProductRepo) ListAll(ctx context.Context) ([]*models.Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	return scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

// Related returns up to limit products sharing category, excluding excludeID.
func (r *ProductRepo) Related(ctx context.Context, category string, excludeID int64, limit int) ([]models.ProductSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, price, category, image_url FROM products
		 WHERE category = $1 AND id <> $2
		 ORDER BY id ASC LIMIT $3`, category, excludeID, limit)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows)
}

// GetByIDs returns the products whose id is in ids. Order is unspecified.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]models.ProductSummary, error) {
	if len(ids) == 0 {
		return []models.ProductSummary{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, price, category, image_url FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows)
}

// DistinctCategories returns non-empty categories, sorted ascending.
func (r *ProductRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT category FROM products WHERE category IS NOT NULL AND category <> '' ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Search runs a filtered candidate lookup for the assistant.
func (r *ProductRepo) Search(ctx context.Context, q models.ProductQuery) ([]models.CandidateProduct, error) {
	query, args := buildSearchQuery(q)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.CandidateProduct, 0)
	for rows.Next() {
		var c models.CandidateProduct
		if err := rows.Scan(&c.ID, &c.Title, &c.Price, &c.Category, &c.Rating, &c.Stock); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func buildSearchQuery(q models.ProductQuery) (string, []interface{}) {
	var (
		conds  []string
		args   []interface{}
		argIdx = 1
	)

	if q.Category != nil {
		conds = append(conds, fmt.Sprintf("category = $%d", argIdx))
		args = append(args, *q.Category)
		argIdx++
	}
	if q.BudgetMax != nil {
		conds = append(conds, fmt.Sprintf("price <= $%d", argIdx))
		args = append(args, *q.BudgetMax)
		argIdx++
	}
	if len(q.AnyKeywords) > 0 {
		var ors []string
		for _, kw := range q.AnyKeywords {
			ors = append(ors, fmt.Sprintf("title ILIKE $%d OR category ILIKE $%d", argIdx, argIdx))
			args = append(args, "%"+kw+"%")
			argIdx++
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}
	for _, kw := range q.TitleKeywords {
		conds = append(conds, fmt.Sprintf("title ILIKE $%d", argIdx))
		args = append(args, "%"+kw+"%")
		argIdx++
	}

	query := "SELECT id, title, price, category, rating, stock FROM products"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id ASC"

	limit := q.Limit
	if limit <= 0 {
		limit = 60
	}
	query += fmt.Sprintf(" LIMIT $%d", argIdx)
	args = append(args, limit)

	return query, args
}

// UpdateDescription stores description and reports whether the product exists.
func (r *ProductRepo) UpdateDescription(ctx context.Context, id int64, description string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET description = $1, updated_at = NOW() WHERE id = $2`, description, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpsertMany inserts or overwrites products by id in a single transaction.
func (r *ProductRepo) UpsertMany(ctx context.Context, products []models.Product) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(`
			INSERT INTO products (id, title, description, price, category, brand, image_url, rating, stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title,
				description = EXCLUDED.description,
				price = EXCLUDED.price,
				category = EXCLUDED.category,
				brand = EXCLUDED.brand,
				image_url = EXCLUDED.image_url,
				rating = EXCLUDED.rating,
				stock = EXCLUDED.stock,
				updated_at = NOW()`,
			p.ID, p.Title, p.Description, p.Price, p.Category, p.Brand, p.ImageURL, p.Rating, p.Stock,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for range products {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return 0, err
		}
	}
	if err := results.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return len(products), nil
}
