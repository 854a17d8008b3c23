package services

import (
	"context"
	"fmt"
	"strconv"

	"storefront-backend/internal/models"
)

const (
	candidateLimit = 60
	relaxThreshold = 8
)

type candidateSearcher interface {
	Search(ctx context.Context, q models.ProductQuery) ([]models.CandidateProduct, error)
}

// strictQuery narrows by category and budget and, when the shopper used
// descriptive words, by those too. Without a category any keyword may match
// title or category; with one, every keyword must appear in the title.
func strictQuery(intent Intent) models.ProductQuery {
	q := relaxedQuery(intent)
	if len(intent.Keywords) == 0 {
		return q
	}
	if intent.InferredCategory == nil {
		q.AnyKeywords = intent.Keywords
	} else {
		q.TitleKeywords = intent.Keywords
	}
	return q
}

func relaxedQuery(intent Intent) models.ProductQuery {
	return models.ProductQuery{
		Category:  intent.InferredCategory,
		BudgetMax: intent.BudgetMax,
		Limit:     candidateLimit,
	}
}

// FindCandidates runs the strict search and, when it comes back thin, replaces
// it with a category and budget only search. There is no further widening.
func FindCandidates(ctx context.Context, repo candidateSearcher, intent Intent) ([]models.CandidateProduct, error) {
	products, err := repo.Search(ctx, strictQuery(intent))
	if err != nil {
		return nil, fmt.Errorf("strict candidate search: %w", err)
	}
	if len(products) >= relaxThreshold {
		return products, nil
	}

	products, err = repo.Search(ctx, relaxedQuery(intent))
	if err != nil {
		return nil, fmt.Errorf("relaxed candidate search: %w", err)
	}
	return products, nil
}

// noMatchMessage is the assistant's reply when no candidate survived.
func noMatchMessage(intent Intent) string {
	switch {
	case intent.InferredCategory != nil && intent.BudgetMax != nil:
		return fmt.Sprintf("I couldn't find any %s products under $%s.", *intent.InferredCategory, formatBudget(*intent.BudgetMax))
	case intent.InferredCategory != nil:
		return fmt.Sprintf("I couldn't find any products in the \"%s\" category.", *intent.InferredCategory)
	case intent.BudgetMax != nil:
		return fmt.Sprintf("I couldn't find any products under $%s.", formatBudget(*intent.BudgetMax))
	default:
		return "I couldn't find any products that match your request."
	}
}

func formatBudget(b float64) string {
	return strconv.FormatFloat(b, 'f', -1, 64)
}
