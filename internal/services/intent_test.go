package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCategories = []string{"beauty", "fragrances", "furniture", "groceries", "laptops", "mens-shirts", "smartphones"}

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    []string
	}{
		{
			name:    "drops stopwords and short words",
			message: "Show me the best perfume for a date, please!",
			want:    []string{"perfume", "date"},
		},
		{
			name:    "dedupes preserving first-seen order",
			message: "laptop LAPTOP gaming laptop",
			want:    []string{"laptop", "gaming"},
		},
		{
			name:    "punctuation splits words",
			message: "men's t-shirt",
			want:    []string{"men", "shirt"},
		},
		{
			name:    "caps at eight",
			message: "alpha bravo charlie delta echo foxtrot golf hotel india juliet",
			want:    []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"},
		},
		{
			name:    "only filler",
			message: "I want something good",
			want:    []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractKeywords(tc.message))
		})
	}
}

func TestExtractBudgetMax(t *testing.T) {
	tests := []struct {
		message string
		want    *float64
	}{
		{"perfume under $50", floatPtr(50)},
		{"UNDER 30 bucks", floatPtr(30)},
		{"laptop below $ 900", floatPtr(900)},
		{"shoes <= 75", floatPtr(75)},
		{"something below 20 but under 40", floatPtr(40)},
		{"under $123456", floatPtr(12345)},
		{"around $50", nil},
		{"under budget", nil},
	}

	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			got := ExtractBudgetMax(tc.message)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func TestInferCategory(t *testing.T) {
	tests := []struct {
		name       string
		message    string
		categories []string
		want       *string
	}{
		{"direct category name", "any laptops on sale?", testCategories, strPtr("laptops")},
		{"first direct match in given order", "beauty or fragrances gift", testCategories, strPtr("beauty")},
		{"synonym maps to canonical", "I need a perfume", testCategories, strPtr("fragrances")},
		{"synonym keeps stored case", "a nice sofa", []string{"Furniture"}, strPtr("Furniture")},
		{"earlier table entry wins", "body spray and lipstick", testCategories, strPtr("fragrances")},
		{"first hit decides even when absent from catalog", "a watch", testCategories, nil},
		{"absent canonical does not fall through", "kitchen knife", testCategories, nil},
		{"nothing matches", "surprise me", testCategories, nil},
		{"no categories", "perfume", nil, nil},
		{"blank category never matches", "I want a gaming laptop", []string{"", "laptops"}, strPtr("laptops")},
		{"only a blank category", "surprise me", []string{""}, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := InferCategory(tc.message, tc.categories)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tc.want, *got)
		})
	}
}

func TestExtractIntent(t *testing.T) {
	intent := ExtractIntent("cheap makeup under $25", testCategories)

	assert.Equal(t, []string{"makeup"}, intent.Keywords)
	require.NotNil(t, intent.BudgetMax)
	assert.Equal(t, 25.0, *intent.BudgetMax)
	require.NotNil(t, intent.InferredCategory)
	assert.Equal(t, "beauty", *intent.InferredCategory)
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
