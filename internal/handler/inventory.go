// Package handler implements the HTTP surface of the grid engine.
package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/matthewbaird/lensgrid/internal/catalog"
	"github.com/matthewbaird/lensgrid/internal/csvcodec"
	"github.com/matthewbaird/lensgrid/internal/engine"
	"github.com/matthewbaird/lensgrid/internal/filterkey"
	"github.com/matthewbaird/lensgrid/internal/grading"
	"github.com/matthewbaird/lensgrid/internal/gridview"
	"github.com/matthewbaird/lensgrid/internal/session"
	"github.com/matthewbaird/lensgrid/internal/types"
)

// maxImportBytes bounds the size of an uploaded CSV file.
const maxImportBytes = 16 << 20

// InventoryHandler implements HTTP handlers for the grid, cells, CSV and stats.
type InventoryHandler struct {
	engine *engine.Engine
}

// NewInventoryHandler creates a new InventoryHandler.
func NewInventoryHandler(eng *engine.Engine) *InventoryHandler {
	return &InventoryHandler{engine: eng}
}

// ---------------------------------------------------------------------------
// Grid
// ---------------------------------------------------------------------------

type gridResponse struct {
	FilterKey string              `json:"filter_key"`
	Filters   types.LensFilters   `json:"filters"`
	Sort      gridview.SortConfig `json:"sort"`
	Spheres   []string            `json:"spheres"`
	Cylinders []string            `json:"cylinders"`
	Cells     types.SubGrid       `json:"cells"`
}

// filtersFromQuery starts from the default selection and overrides each
// attribute named in the query string.
func filtersFromQuery(r *http.Request) types.LensFilters {
	f := catalog.DefaultFilters()
	q := r.URL.Query()
	for _, a := range types.Attributes {
		if q.Has(string(a)) {
			f = f.With(a, q.Get(string(a)))
		}
	}
	return f
}

func sortFromQuery(r *http.Request) (gridview.SortConfig, error) {
	q := r.URL.Query()
	sc := gridview.DefaultSort()
	if v := q.Get("sort"); v != "" {
		sc.Key = gridview.SortKey(v)
	}
	if sc.Key != gridview.SortSphere && sc.Key != gridview.SortStock {
		return sc, fmt.Errorf("sort must be sphere or stock, got %q", sc.Key)
	}
	sc.Column = q.Get("column")
	if v := q.Get("dir"); v != "" {
		sc.Direction = gridview.Direction(v)
	}
	if sc.Direction != gridview.Asc && sc.Direction != gridview.Desc {
		return sc, fmt.Errorf("dir must be asc or desc, got %q", sc.Direction)
	}
	return sc, nil
}

func (h *InventoryHandler) GetGrid(w http.ResponseWriter, r *http.Request) {
	sc, err := sortFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SORT", err.Error())
		return
	}
	filters := filtersFromQuery(r)
	key := filterkey.Encode(filters)
	grid := h.engine.SubGrid(key)
	gv := gridview.Compute(grading.Spheres(), grading.Cylinders(), grid, r.URL.Query().Get("q"), sc)

	writeJSON(w, http.StatusOK, gridResponse{
		FilterKey: key,
		Filters:   filters,
		Sort:      sc,
		Spheres:   gv.Spheres,
		Cylinders: gv.Cylinders,
		Cells:     session.VisibleCells(grid, gv),
	})
}

// ---------------------------------------------------------------------------
// Cells
// ---------------------------------------------------------------------------

type paintRequest struct {
	Filters types.LensFilters `json:"filters"`
	Sph     string            `json:"sph"`
	Cyl     string            `json:"cyl"`
	Color   string            `json:"color"`
}

type stockRequest struct {
	Filters types.LensFilters `json:"filters"`
	Sph     string            `json:"sph"`
	Cyl     string            `json:"cyl"`
	Stock   *int              `json:"stock"`
}

type cellResponse struct {
	FilterKey string     `json:"filter_key"`
	Sph       string     `json:"sph"`
	Cyl       string     `json:"cyl"`
	Changed   bool       `json:"changed"`
	Cell      types.Cell `json:"cell"`
	Available bool       `json:"available"`
}

func (h *InventoryHandler) cellResponse(key, sph, cyl string, changed bool) cellResponse {
	cell, ok := h.engine.Cell(key, sph, cyl)
	return cellResponse{FilterKey: key, Sph: sph, Cyl: cyl, Changed: changed, Cell: cell, Available: ok}
}

func (h *InventoryHandler) PaintCell(w http.ResponseWriter, r *http.Request) {
	req := paintRequest{Filters: catalog.DefaultFilters()}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	key := filterkey.Encode(req.Filters)
	changed, err := h.engine.Paint(r.Context(), key, req.Sph, req.Cyl, req.Color)
	if err != nil {
		engineErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cellResponse(key, req.Sph, req.Cyl, changed))
}

func (h *InventoryHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	req := stockRequest{Filters: catalog.DefaultFilters()}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if req.Stock == nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "stock is required")
		return
	}
	key := filterkey.Encode(req.Filters)
	changed, err := h.engine.SetStock(r.Context(), key, req.Sph, req.Cyl, *req.Stock)
	if err != nil {
		engineErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cellResponse(key, req.Sph, req.Cyl, changed))
}

// ---------------------------------------------------------------------------
// CSV and analytics
// ---------------------------------------------------------------------------

func (h *InventoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if _, err := h.engine.Export(&buf); err != nil {
		engineErrorToHTTP(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvcodec.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *InventoryHandler) Import(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	defer body.Close()

	res, err := h.engine.Import(r.Context(), body)
	if err != nil {
		engineErrorToHTTP(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *InventoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Stats())
}
