// Package wire defines the WebSocket protocol for grid gestures.
package wire

import (
	"encoding/json"

	"github.com/matthewbaird/lensgrid/internal/session"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // see the Msg* constants
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	MsgSelectFilter = "select_filter"
	MsgAddOption    = "add_option"
	MsgSearch       = "search"
	MsgSort         = "sort"
	MsgSelectColor  = "select_color"
	MsgClearColor   = "clear_color"
	MsgPointerDown  = "pointer_down"
	MsgPointerEnter = "pointer_enter"
	MsgPointerUp    = "pointer_up"
	MsgPointerLeave = "pointer_leave"
	MsgClick        = "click"
	MsgConfirm      = "confirm"
	MsgBlur         = "blur"
	MsgCancel       = "cancel"
	MsgView         = "view"
	MsgPing         = "ping"
)

// FilterData is the payload for "select_filter" and "add_option".
type FilterData struct {
	Attribute string `json:"attribute"`
	Value     string `json:"value"`
}

// SearchData is the payload for "search".
type SearchData struct {
	Query string `json:"query"`
}

// SortData is the payload for "sort".
type SortData struct {
	Key    string `json:"key"`
	Column string `json:"column,omitempty"`
}

// ColorData is the payload for "select_color".
type ColorData struct {
	Color string `json:"color"`
}

// CellData is the payload for pointer and click gestures.
type CellData struct {
	Sph string `json:"sph"`
	Cyl string `json:"cyl"`
}

// ValueData is the payload for "confirm" and "blur".
type ValueData struct {
	Value string `json:"value"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "session", "view", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionData carries session information.
type SessionData struct {
	SessionID string `json:"session_id"`
}

// ViewData is the grid as the session sees it.
type ViewData = session.View
