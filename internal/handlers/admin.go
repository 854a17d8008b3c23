package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"storefront-backend/internal/logger"
	"storefront-backend/internal/models"
	"storefront-backend/internal/services"
)

type descriptionService interface {
	Rewrite(ctx context.Context, id int64) (*models.GenerateDescriptionResponse, error)
}

type seedService interface {
	Seed(ctx context.Context) (*models.SeedResult, error)
}

type catalogExporter interface {
	WriteXLSX(ctx context.Context, w io.Writer) (int, error)
}

type AdminHandler struct {
	descriptions descriptionService
	seeder       seedService
	exporter     catalogExporter
	log          *logger.Logger
}

func NewAdminHandler(descriptions descriptionService, seeder seedService, exporter catalogExporter, log *logger.Logger) *AdminHandler {
	return &AdminHandler{descriptions: descriptions, seeder: seeder, exporter: exporter, log: log}
}

func (h *AdminHandler) GenerateDescription(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateDescriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.ProductID = nil
	}

	id, err := services.ParseProductID(req.ProductID)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	resp, err := h.descriptions.Rewrite(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AdminHandler) SeedProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.seeder.Seed(r.Context())
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AdminHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	// Buffer so a failure mid-write can still be reported as JSON
	var buf bytes.Buffer
	n, err := h.exporter.WriteXLSX(r.Context(), &buf)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	filename := fmt.Sprintf("products-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Product-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
