package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/matthewbaird/lensgrid/internal/engine"
	"github.com/matthewbaird/lensgrid/internal/types"
)

// CatalogHandler implements HTTP handlers for colors and attribute options.
type CatalogHandler struct {
	engine *engine.Engine
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(eng *engine.Engine) *CatalogHandler {
	return &CatalogHandler{engine: eng}
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

type addOptionRequest struct {
	Value string `json:"value"`
}

type addOptionResponse struct {
	Attribute types.Attribute `json:"attribute"`
	Value     string          `json:"value"`
	Options   []string        `json:"options"`
}

func (h *CatalogHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Options())
}

func (h *CatalogHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	attr := types.Attribute(chi.URLParam(r, "attribute"))
	var req addOptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	value, err := h.engine.AddAttributeOption(r.Context(), attr, req.Value)
	if err != nil {
		engineErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addOptionResponse{
		Attribute: attr,
		Value:     value,
		Options:   h.engine.Options()[attr],
	})
}

// ---------------------------------------------------------------------------
// Colors
// ---------------------------------------------------------------------------

type addColorRequest struct {
	Name              string          `json:"name"`
	Value             string          `json:"value"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold *int            `json:"lowStockThreshold,omitempty"`
}

type setPriceRequest struct {
	Value string           `json:"value"`
	Price *decimal.Decimal `json:"price"`
}

func (h *CatalogHandler) ListColors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Colors())
}

func (h *CatalogHandler) AddColor(w http.ResponseWriter, r *http.Request) {
	var req addColorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	added, err := h.engine.AddColor(r.Context(), types.ColorInfo{
		Name:              req.Name,
		Value:             req.Value,
		Price:             req.Price,
		LowStockThreshold: req.LowStockThreshold,
	})
	if err != nil {
		engineErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (h *CatalogHandler) SetPrice(w http.ResponseWriter, r *http.Request) {
	var req setPriceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.Price == nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "price is required")
		return
	}
	if err := h.engine.SetPrice(r.Context(), req.Value, *req.Price); err != nil {
		engineErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Colors())
}
