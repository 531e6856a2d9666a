// Package session holds the per-user grid state: the current filter
// selection, search query, sort directive and gesture machine.
package session

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/lensgrid/internal/catalog"
	"github.com/matthewbaird/lensgrid/internal/filterkey"
	"github.com/matthewbaird/lensgrid/internal/grading"
	"github.com/matthewbaird/lensgrid/internal/gridview"
	"github.com/matthewbaird/lensgrid/internal/mutation"
	"github.com/matthewbaird/lensgrid/internal/types"
)

// Engine is the part of the shared engine a session reads and writes.
type Engine interface {
	SubGrid(key string) types.SubGrid
	Colors() []types.ColorInfo
	Options() types.OptionSets
	Paint(ctx context.Context, key, sph, cyl, tag string) (bool, error)
	SetStock(ctx context.Context, key, sph, cyl string, stock int) (bool, error)
	AddAttributeOption(ctx context.Context, attr types.Attribute, value string) (string, error)
}

// Session holds one user's grid state. Methods are safe for concurrent use.
type Session struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`

	mu      sync.Mutex
	engine  Engine
	filters types.LensFilters
	query   string
	sort    gridview.SortConfig
	machine *mutation.Machine
}

// NewSession creates a session on the default filter selection.
func NewSession(eng Engine) *Session {
	now := time.Now()
	return &Session{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		LastActiveAt: now,
		engine:       eng,
		filters:      catalog.DefaultFilters(),
		sort:         gridview.DefaultSort(),
		machine:      mutation.New(),
	}
}

// touch updates the last activity timestamp. Callers hold s.mu.
func (s *Session) touch() {
	s.LastActiveAt = time.Now()
}

// IsExpired returns true if the session has exceeded the given max age.
func (s *Session) IsExpired(maxAge time.Duration) bool {
	return time.Since(s.CreatedAt) > maxAge
}

// IsIdle returns true if the session has been idle longer than the timeout.
func (s *Session) IsIdle(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.LastActiveAt) > timeout
}

// ── Selection ────────────────────────────────────────────────────────────────

// FilterKey returns the key of the sub-grid on screen.
func (s *Session) FilterKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return filterkey.Encode(s.filters)
}

// SelectFilter switches one attribute to a value from its option list.
// Any open stock edit is closed.
func (s *Session) SelectFilter(attr types.Attribute, value string) error {
	if !types.IsAttribute(string(attr)) {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownAttribute, attr)
	}
	if !slices.Contains(s.engine.Options()[attr], value) {
		return fmt.Errorf("%w: %q is not an option of %s", catalog.ErrInvalidOption, value, attr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.filters = s.filters.With(attr, value)
	s.machine.ClearEdit()
	return nil
}

// AddOption appends a new option to an attribute and selects it.
func (s *Session) AddOption(ctx context.Context, attr types.Attribute, value string) error {
	stored, err := s.engine.AddAttributeOption(ctx, attr, value)
	if err != nil {
		return err
	}
	return s.SelectFilter(attr, stored)
}

// Search sets the free-text axis query.
func (s *Session) Search(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.query = query
}

// Sort applies a sort click on key/column.
func (s *Session) Sort(key gridview.SortKey, column string) error {
	if key != gridview.SortSphere && key != gridview.SortStock {
		return fmt.Errorf("unknown sort key %q", key)
	}
	if key == gridview.SortSphere {
		column = ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.sort = s.sort.Toggle(key, column)
	return nil
}

// ── Gestures ─────────────────────────────────────────────────────────────────

// SelectColor arms a cataloged tag, or disarms it when it is already armed.
func (s *Session) SelectColor(tag string) error {
	if _, ok := catalog.ByTag(s.engine.Colors(), tag); !ok {
		return fmt.Errorf("%w: %q", catalog.ErrUnknownColor, tag)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.machine.SelectColor(tag)
	return nil
}

func (s *Session) ClearColor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.machine.ClearColor()
}

func (s *Session) PointerDown(ctx context.Context, sph, cyl string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.machine.PointerDown(s.target(ctx), sph, cyl)
}

func (s *Session) PointerEnter(ctx context.Context, sph, cyl string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.machine.PointerEnter(s.target(ctx), sph, cyl)
}

func (s *Session) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.machine.PointerUp()
}

// PointerLeave ends a running stroke. Connections call it when they close.
func (s *Session) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.machine.PointerLeave()
}

// Click paints when a color is armed and otherwise opens a stock edit.
func (s *Session) Click(ctx context.Context, sph, cyl string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.machine.Click(s.target(ctx), sph, cyl)
}

func (s *Session) Confirm(ctx context.Context, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.machine.Confirm(s.target(ctx), raw)
}

func (s *Session) Blur(ctx context.Context, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.machine.Blur(s.target(ctx), raw)
}

func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.machine.Cancel()
}

// target binds the gesture machine to the sub-grid on screen. Callers hold s.mu.
func (s *Session) target(ctx context.Context) mutation.Target {
	return &gridTarget{ctx: ctx, engine: s.engine, key: filterkey.Encode(s.filters)}
}

type gridTarget struct {
	ctx    context.Context
	engine Engine
	key    string
}

func (t *gridTarget) Cell(sph, cyl string) (types.Cell, bool) {
	cell, ok := t.engine.SubGrid(t.key)[sph][cyl]
	return cell, ok
}

func (t *gridTarget) Paint(sph, cyl, tag string) {
	if _, err := t.engine.Paint(t.ctx, t.key, sph, cyl, tag); err != nil {
		log.Printf("session: paint %s/%s: %v", sph, cyl, err)
	}
}

func (t *gridTarget) SetStock(sph, cyl string, stock int) {
	if _, err := t.engine.SetStock(t.ctx, t.key, sph, cyl, stock); err != nil {
		log.Printf("session: set stock %s/%s: %v", sph, cyl, err)
	}
}

// ── Rendering ────────────────────────────────────────────────────────────────

// EditView is the open stock edit.
type EditView struct {
	Sph   string `json:"sph"`
	Cyl   string `json:"cyl"`
	Stock int    `json:"stock"`
}

// View is everything a client needs to draw the grid.
type View struct {
	SessionID  string              `json:"session_id"`
	FilterKey  string              `json:"filter_key"`
	Filters    types.LensFilters   `json:"filters"`
	Query      string              `json:"query"`
	Sort       gridview.SortConfig `json:"sort"`
	Spheres    []string            `json:"spheres"`
	Cylinders  []string            `json:"cylinders"`
	Cells      types.SubGrid       `json:"cells"`
	State      mutation.State      `json:"state"`
	ArmedColor *string             `json:"armed_color,omitempty"`
	Edit       *EditView           `json:"edit,omitempty"`
}

// View renders the current state. Cells holds only the visible cells that
// exist in the store.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := filterkey.Encode(s.filters)
	grid := s.engine.SubGrid(key)
	gv := gridview.Compute(grading.Spheres(), grading.Cylinders(), grid, s.query, s.sort)

	v := View{
		SessionID: s.ID,
		FilterKey: key,
		Filters:   s.filters,
		Query:     s.query,
		Sort:      s.sort,
		Spheres:   gv.Spheres,
		Cylinders: gv.Cylinders,
		Cells:     VisibleCells(grid, gv),
		State:     s.machine.State(),
	}
	if tag, ok := s.machine.ArmedColor(); ok {
		v.ArmedColor = &tag
	}
	if at, ok := s.machine.EditCell(); ok {
		cell := grid[at.Sph][at.Cyl]
		v.Edit = &EditView{Sph: at.Sph, Cyl: at.Cyl, Stock: cell.Stock}
	}
	return v
}

// VisibleCells returns the cells of grid that fall inside the view.
func VisibleCells(grid types.SubGrid, gv gridview.View) types.SubGrid {
	out := types.SubGrid{}
	for _, sph := range gv.Spheres {
		row, ok := grid[sph]
		if !ok {
			continue
		}
		r := types.CylinderRow{}
		for _, cyl := range gv.Cylinders {
			if cell, ok := row[cyl]; ok {
				r[cyl] = cell
			}
		}
		if len(r) > 0 {
			out[sph] = r
		}
	}
	return out
}
