package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/matthewbaird/lensgrid/internal/activity"
)

// ActivityHandler serves the change log.
type ActivityHandler struct {
	store activity.Store
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store activity.Store) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// List returns logged changes, newest first.
// GET /v1/activity?type=&key=&since=&until=&min_weight=&q=&limit=&cursor=
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.DefaultQueryOptions()

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{{"since", &opts.Since}, {"until", &opts.Until}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_PARAM", p.name+" must be an RFC 3339 time")
			return
		}
		*p.dst = &t
	}
	if kinds := q.Get("type"); kinds != "" {
		opts.EventTypes = strings.Split(kinds, ",")
	}
	if mw := q.Get("min_weight"); mw != "" {
		opts.MinWeight = mw
	}
	if l := q.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "INVALID_PARAM", "limit must be a positive integer")
			return
		}
		opts.Limit = min(n, activity.MaxLimit)
	}
	opts.FilterKey = q.Get("key")
	opts.Text = q.Get("q")
	opts.Cursor = q.Get("cursor")

	entries, next, err := h.store.Query(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "QUERY_FAILED", err.Error())
		return
	}
	if entries == nil {
		entries = []activity.Entry{}
	}
	writeJSON(w, http.StatusOK, struct {
		Activities []activity.Entry `json:"activities"`
		NextCursor string           `json:"next_cursor,omitempty"`
	}{entries, next})
}
