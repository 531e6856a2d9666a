package wire

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/matthewbaird/lensgrid/internal/gridview"
	"github.com/matthewbaird/lensgrid/internal/session"
	"github.com/matthewbaird/lensgrid/internal/types"
)

// Handler manages WebSocket connections for the grid.
type Handler struct {
	sessions *session.Manager
}

// NewHandler creates a WebSocket handler.
func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{sessions: sessions}
}

// ServeHTTP upgrades to WebSocket and runs the message loop. A "session"
// query parameter resumes an existing session.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Printf("wire: websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	sess := h.sessions.Resume(r.URL.Query().Get("session"))
	// A dropped connection must not leave a stroke running.
	defer sess.PointerLeave()
	ctx := r.Context()

	h.send(ctx, conn, ServerMessage{
		Type: "session",
		Data: SessionData{SessionID: sess.ID},
	})
	h.send(ctx, conn, ServerMessage{Type: MsgView, Data: sess.View()})

	for {
		var msg ClientMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Printf("wire: connection closed: %v", websocket.CloseStatus(err))
			}
			return
		}

		if msg.Type == MsgPing {
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
			continue
		}
		if code, err := h.dispatch(ctx, sess, msg); err != nil {
			h.sendError(ctx, conn, msg.ID, code, err.Error())
			continue
		}
		h.send(ctx, conn, ServerMessage{Type: MsgView, RequestID: msg.ID, Data: sess.View()})
	}
}

// dispatch applies one gesture to the session. On failure it returns an error
// code for the client along with the error.
func (h *Handler) dispatch(ctx context.Context, sess *session.Session, msg ClientMessage) (string, error) {
	switch msg.Type {
	case MsgSelectFilter, MsgAddOption:
		var d FilterData
		if err := decode(msg, &d); err != nil {
			return "invalid_data", err
		}
		attr := types.Attribute(d.Attribute)
		var err error
		if msg.Type == MsgAddOption {
			err = sess.AddOption(ctx, attr, d.Value)
		} else {
			err = sess.SelectFilter(attr, d.Value)
		}
		if err != nil {
			return "rejected", err
		}
	case MsgSearch:
		var d SearchData
		if err := decode(msg, &d); err != nil {
			return "invalid_data", err
		}
		sess.Search(d.Query)
	case MsgSort:
		var d SortData
		if err := decode(msg, &d); err != nil {
			return "invalid_data", err
		}
		if err := sess.Sort(gridview.SortKey(d.Key), d.Column); err != nil {
			return "rejected", err
		}
	case MsgSelectColor:
		var d ColorData
		if err := decode(msg, &d); err != nil {
			return "invalid_data", err
		}
		if err := sess.SelectColor(d.Color); err != nil {
			return "rejected", err
		}
	case MsgClearColor:
		sess.ClearColor()
	case MsgPointerDown, MsgPointerEnter, MsgClick:
		var d CellData
		if err := decode(msg, &d); err != nil {
			return "invalid_data", err
		}
		switch msg.Type {
		case MsgPointerDown:
			sess.PointerDown(ctx, d.Sph, d.Cyl)
		case MsgPointerEnter:
			sess.PointerEnter(ctx, d.Sph, d.Cyl)
		default:
			sess.Click(ctx, d.Sph, d.Cyl)
		}
	case MsgPointerUp:
		sess.PointerUp()
	case MsgPointerLeave:
		sess.PointerLeave()
	case MsgConfirm, MsgBlur:
		var d ValueData
		if err := decode(msg, &d); err != nil {
			return "invalid_data", err
		}
		if msg.Type == MsgConfirm {
			sess.Confirm(ctx, d.Value)
		} else {
			sess.Blur(ctx, d.Value)
		}
	case MsgCancel:
		sess.Cancel()
	case MsgView:
		// re-render only
	default:
		return "unknown_type", fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return "", nil
}

func decode(msg ClientMessage, dst any) error {
	if err := json.Unmarshal(msg.Data, dst); err != nil {
		return fmt.Errorf("invalid %s data: %w", msg.Type, err)
	}
	return nil
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		log.Printf("wire: write error: %v", err)
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	})
}
