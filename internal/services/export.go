package services

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"storefront-backend/internal/models"
)

const exportSheet = "Products"

var exportHeaders = []string{"ID", "Title", "Category", "Brand", "Price", "Rating", "Stock", "Image URL", "Description"}

type productLister interface {
	ListAll(ctx context.Context) ([]*models.Product, error)
}

// CatalogExporter renders the whole catalog as an xlsx workbook for review.
type CatalogExporter struct {
	repo productLister
}

func NewCatalogExporter(repo productLister) *CatalogExporter {
	return &CatalogExporter{repo: repo}
}

func (e *CatalogExporter) WriteXLSX(ctx context.Context, w io.Writer) (int, error) {
	products, err := e.repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list products: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return 0, err
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeaders); err != nil {
		return 0, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}
	if err := f.SetRowStyle(exportSheet, 1, 1, bold); err != nil {
		return 0, err
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		row := []interface{}{
			p.ID, p.Title, orEmpty(p.Category), orEmpty(p.Brand), p.Price,
			floatOrEmpty(p.Rating), intOrEmpty(p.Stock), orEmpty(p.ImageURL), orEmpty(p.Description),
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return 0, err
		}
	}

	if err := f.SetColWidth(exportSheet, "B", "B", 40); err != nil {
		return 0, err
	}
	if err := f.SetColWidth(exportSheet, "I", "I", 80); err != nil {
		return 0, err
	}

	if _, err := f.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(products), nil
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) interface{} {
	if f == nil {
		return ""
	}
	return *f
}

func intOrEmpty(n *int) interface{} {
	if n == nil {
		return ""
	}
	return *n
}
