package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
)

type catalogService interface {
	List(ctx context.Context) (*models.ProductListResponse, error)
	Detail(ctx context.Context, id int64) (*models.ProductDetail, error)
	ByIDs(ctx context.Context, raw json.RawMessage) ([]models.ProductSummary, error)
	Categories(ctx context.Context) ([]string, error)
}

type ProductHandler struct {
	catalog catalogService
	log     *logger.Logger
}

func NewProductHandler(catalog catalogService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, log: log}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.catalog.List(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid product ID", r))
		return
	}

	detail, err := h.catalog.Detail(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"categories": categories})
}

// ByIDs never rejects its input: anything unreadable is an empty id list.
func (h *ProductHandler) ByIDs(w http.ResponseWriter, r *http.Request) {
	var req models.ByIDsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.IDs = nil
	}

	products, err := h.catalog.ByIDs(r.Context(), req.IDs)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}
