// Package mutation turns grid gestures into store writes.
//
// The Machine is an explicit finite-state machine:
//
//	Idle ──select color──▶ PaintArmed ──pointer down──▶ Painting
//	  ▲  ◀──same color────     ▲  ◀──pointer up / leave──────┘
//	  │                        │
//	  └─click available cell─▶ EditArmed ──confirm / blur / cancel──▶ Idle
//
// Paint and edit modes are mutually exclusive: arming a color clears the edit
// cell and opening an edit clears the armed color.
package mutation

import (
	"strconv"
	"strings"

	"github.com/matthewbaird/lensgrid/internal/types"
)

// State is one of the machine's states.
type State string

const (
	Idle       State = "idle"
	PaintArmed State = "paint_armed"
	Painting   State = "painting"
	EditArmed  State = "edit_armed"
)

// Coord addresses one cell of the current sub-grid.
type Coord struct {
	Sph string `json:"sph"`
	Cyl string `json:"cyl"`
}

// Target is the sub-grid the gestures act on.
type Target interface {
	Cell(sph, cyl string) (types.Cell, bool)
	Paint(sph, cyl, tag string)
	SetStock(sph, cyl string, stock int)
}

// Machine holds the gesture state of one user. It is not safe for concurrent
// use; each session owns its own Machine.
type Machine struct {
	state State
	color string
	edit  Coord
}

// New returns a Machine in the Idle state.
func New() *Machine {
	return &Machine{state: Idle}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// ArmedColor returns the armed paint tag. The erase tag is a valid armed color,
// so callers must check ok rather than the tag.
func (m *Machine) ArmedColor() (tag string, ok bool) {
	if m.state == PaintArmed || m.state == Painting {
		return m.color, true
	}
	return "", false
}

// EditCell returns the cell whose stock is being edited.
func (m *Machine) EditCell() (Coord, bool) {
	if m.state == EditArmed {
		return m.edit, true
	}
	return Coord{}, false
}

// SelectColor arms tag for painting. Selecting the tag that is already armed
// disarms it. Any open edit or running stroke is dropped.
func (m *Machine) SelectColor(tag string) {
	if armed, ok := m.ArmedColor(); ok && armed == tag {
		m.reset()
		return
	}
	m.state = PaintArmed
	m.color = tag
	m.edit = Coord{}
}

// ClearColor disarms painting.
func (m *Machine) ClearColor() {
	if m.state == PaintArmed || m.state == Painting {
		m.reset()
	}
}

// ClearEdit closes an open edit without applying it.
func (m *Machine) ClearEdit() {
	if m.state == EditArmed {
		m.reset()
	}
}

// PointerDown starts a paint stroke and paints the cell under the pointer.
// It does nothing unless a color is armed.
func (m *Machine) PointerDown(t Target, sph, cyl string) {
	if m.state != PaintArmed && m.state != Painting {
		return
	}
	m.state = Painting
	t.Paint(sph, cyl, m.color)
}

// PointerEnter paints each cell entered while a stroke is running.
func (m *Machine) PointerEnter(t Target, sph, cyl string) {
	if m.state != Painting {
		return
	}
	t.Paint(sph, cyl, m.color)
}

// PointerUp ends the stroke; the color stays armed.
func (m *Machine) PointerUp() {
	if m.state == Painting {
		m.state = PaintArmed
	}
}

// PointerLeave ends the stroke when the pointer leaves the grid. Transports
// call it on disconnect too, so no stroke outlives its surface.
func (m *Machine) PointerLeave() {
	m.PointerUp()
}

// Click handles a single click. With a color armed it paints the cell. With no
// color armed it opens an edit on an available cell and returns its current
// stock; clicking an unavailable cell closes any open edit.
func (m *Machine) Click(t Target, sph, cyl string) (stock int, editing bool) {
	switch m.state {
	case PaintArmed, Painting:
		t.Paint(sph, cyl, m.color)
		return 0, false
	}

	cell, ok := t.Cell(sph, cyl)
	if !ok || !cell.Available() {
		m.reset()
		return 0, false
	}
	m.state = EditArmed
	m.edit = Coord{Sph: sph, Cyl: cyl}
	return cell.Stock, true
}

// Confirm submits the edited quantity. Values that are not non-negative
// integers are discarded. The edit closes either way.
func (m *Machine) Confirm(t Target, raw string) {
	if m.state != EditArmed {
		return
	}
	at := m.edit
	m.reset()
	if stock, ok := ParseStock(raw); ok {
		t.SetStock(at.Sph, at.Cyl, stock)
	}
}

// Blur submits like Confirm; losing focus commits the typed value.
func (m *Machine) Blur(t Target, raw string) {
	m.Confirm(t, raw)
}

// Cancel closes the edit and discards the typed value.
func (m *Machine) Cancel() {
	m.ClearEdit()
}

func (m *Machine) reset() {
	m.state = Idle
	m.color = ""
	m.edit = Coord{}
}

// ParseStock parses a user-entered stock quantity.
func ParseStock(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
