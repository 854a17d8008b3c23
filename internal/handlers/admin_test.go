package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
	"storefront-backend/internal/services"
)

type stubDescriptionService struct {
	rewritten []int64
}

func (s *stubDescriptionService) Rewrite(ctx context.Context, id int64) (*models.GenerateDescriptionResponse, error) {
	s.rewritten = append(s.rewritten, id)
	if id == 404 {
		return nil, &services.NotFoundError{Message: "Product not found"}
	}
	return &models.GenerateDescriptionResponse{ProductID: id, Description: "Fresh copy."}, nil
}

type stubSeedService struct{ err error }

func (s *stubSeedService) Seed(ctx context.Context) (*models.SeedResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.SeedResult{Inserted: 30, Message: "Products seeded successfully"}, nil
}

type stubExporter struct{ err error }

func (s *stubExporter) WriteXLSX(ctx context.Context, w io.Writer) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	_, err := io.WriteString(w, "PK-fake-workbook")
	return 2, err
}

func newTestAdminHandler(desc *stubDescriptionService, seed *stubSeedService, exp *stubExporter) *AdminHandler {
	return NewAdminHandler(desc, seed, exp, logger.NewNop())
}

func TestAdminHandler_GenerateDescription(t *testing.T) {
	desc := &stubDescriptionService{}
	h := newTestAdminHandler(desc, &stubSeedService{}, &stubExporter{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/generate-description", strings.NewReader(`{"productId":"7"}`))
	h.GenerateDescription(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"productId":7,"description":"Fresh copy."}`, rr.Body.String())
	assert.Equal(t, []int64{7}, desc.rewritten)
}

func TestAdminHandler_GenerateDescription_InvalidProductID(t *testing.T) {
	for _, body := range []string{`{}`, `{"productId":null}`, `{"productId":"abc"}`, `{"productId":1.5}`, `garbage`} {
		t.Run(body, func(t *testing.T) {
			desc := &stubDescriptionService{}
			h := newTestAdminHandler(desc, &stubSeedService{}, &stubExporter{})

			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/generate-description", strings.NewReader(body))
			h.GenerateDescription(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, "VALIDATION_ERROR", decodeError(t, rr).Code)
			assert.Empty(t, desc.rewritten)
		})
	}
}

func TestAdminHandler_GenerateDescription_NotFound(t *testing.T) {
	h := newTestAdminHandler(&stubDescriptionService{}, &stubSeedService{}, &stubExporter{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/generate-description", strings.NewReader(`{"productId":404}`))
	h.GenerateDescription(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdminHandler_SeedProducts(t *testing.T) {
	h := newTestAdminHandler(&stubDescriptionService{}, &stubSeedService{}, &stubExporter{})

	rr := httptest.NewRecorder()
	h.SeedProducts(rr, httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed-products", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"inserted":30,"message":"Products seeded successfully"}`, rr.Body.String())
}

func TestAdminHandler_SeedProducts_SourceDown(t *testing.T) {
	seed := &stubSeedService{err: &services.UpstreamError{Message: "Failed to fetch seed products", Err: errors.New("502")}}
	h := newTestAdminHandler(&stubDescriptionService{}, seed, &stubExporter{})

	rr := httptest.NewRecorder()
	h.SeedProducts(rr, httptest.NewRequest(http.MethodPost, "/api/v1/admin/seed-products", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "UPSTREAM_ERROR", decodeError(t, rr).Code)
}

func TestAdminHandler_ExportProducts(t *testing.T) {
	h := newTestAdminHandler(&stubDescriptionService{}, &stubSeedService{}, &stubExporter{})

	rr := httptest.NewRecorder()
	h.ExportProducts(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/products/export", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "attachment;")
	assert.Equal(t, "2", rr.Header().Get("X-Product-Count"))
	assert.Equal(t, "PK-fake-workbook", rr.Body.String())
}

func TestAdminHandler_ExportProducts_Failure(t *testing.T) {
	h := newTestAdminHandler(&stubDescriptionService{}, &stubSeedService{}, &stubExporter{err: errors.New("db down")})

	rr := httptest.NewRecorder()
	h.ExportProducts(rr, httptest.NewRequest(http.MethodGet, "/api/v1/admin/products/export", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
}
