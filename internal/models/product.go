package models

import "encoding/json"

// Product is a full catalog row.
type Product struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Category    *string  `json:"category"`
	Brand       *string  `json:"brand"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"image_url"`
	Rating      *float64 `json:"rating"`
	Stock       *int     `json:"stock"`
}

// ProductSummary is the card-sized projection used by listings and lookups.
type ProductSummary struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category *string `json:"category"`
	ImageURL *string `json:"image_url"`
}

// CandidateProduct is the projection shown to the assistant model.
type CandidateProduct struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Category *string  `json:"category"`
	Rating   *float64 `json:"rating"`
	Stock    *int     `json:"stock"`
}

// ProductQuery describes a filtered catalog search. Empty fields add no
// constraint.
type ProductQuery struct {
	Category  *string
	BudgetMax *float64
	// AnyKeywords matches when any keyword appears in the title or category.
	AnyKeywords []string
	// TitleKeywords matches only when every keyword appears in the title.
	TitleKeywords []string
	Limit         int
}

type ProductDetail struct {
	Product *Product         `json:"product"`
	Related []ProductSummary `json:"related"`
}

type ProductListResponse struct {
	Products   []ProductSummary `json:"products"`
	Categories []string         `json:"categories"`
}

type ByIDsRequest struct {
	IDs json.RawMessage `json:"ids"`
}

type GenerateDescriptionRequest struct {
	ProductID json.RawMessage `json:"productId"`
}

type GenerateDescriptionResponse struct {
	ProductID   int64  `json:"productId"`
	Description string `json:"description"`
}

type SeedResult struct {
	Inserted int    `json:"inserted"`
	Message  string `json:"message"`
}
