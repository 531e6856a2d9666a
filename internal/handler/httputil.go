package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/matthewbaird/lensgrid/internal/catalog"
	"github.com/matthewbaird/lensgrid/internal/csvcodec"
	"github.com/matthewbaird/lensgrid/internal/engine"
)

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON encode error: %v", err)
	}
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
		"code":  code,
	})
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// engineErrorToHTTP maps engine, catalog and CSV errors to HTTP responses.
func engineErrorToHTTP(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", err.Error())
	case errors.Is(err, catalog.ErrUnknownColor),
		errors.Is(err, catalog.ErrUnknownAttribute):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, catalog.ErrDuplicateColor):
		writeError(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, engine.ErrUnavailableCell):
		writeError(w, http.StatusConflict, "UNAVAILABLE", err.Error())
	case errors.Is(err, csvcodec.ErrNothingToExport):
		writeError(w, http.StatusUnprocessableEntity, "NOTHING_TO_EXPORT", err.Error())
	case errors.Is(err, engine.ErrOffGrid),
		errors.Is(err, engine.ErrNegativeStock),
		errors.Is(err, catalog.ErrInvalidOption),
		errors.Is(err, catalog.ErrNegativePrice),
		errors.Is(err, catalog.ErrReservedTag),
		errors.Is(err, catalog.ErrEmptyName),
		errors.Is(err, csvcodec.ErrEmptyFile),
		errors.Is(err, csvcodec.ErrMissingColumn):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
