package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matthewbaird/lensgrid/internal/catalog"
	"github.com/matthewbaird/lensgrid/internal/csvcodec"
	"github.com/matthewbaird/lensgrid/internal/engine"
)

func TestEngineErrorToHTTP(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: x", catalog.ErrUnknownColor), http.StatusNotFound},
		{catalog.ErrDuplicateColor, http.StatusConflict},
		{engine.ErrUnavailableCell, http.StatusConflict},
		{csvcodec.ErrNothingToExport, http.StatusUnprocessableEntity},
		{&csvcodec.MissingColumnError{Column: "Stock"}, http.StatusBadRequest},
		{engine.ErrOffGrid, http.StatusBadRequest},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		engineErrorToHTTP(rec, tt.err)
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(Logging(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INTERNAL_ERROR")
}

func TestFiltersFromQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/v1/grid?foco=Bifocal&adicion=1.50&unknown=x", nil)
	f := filtersFromQuery(r)

	want := catalog.DefaultFilters()
	want.Foco = "Bifocal"
	want.Adicion = "1.50"
	assert.Equal(t, want, f)
}
