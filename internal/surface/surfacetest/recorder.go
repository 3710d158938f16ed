// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package surfacetest provides a Surface that records calls instead of drawing.
package surfacetest

import (
	"fmt"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/jeranaias/chatbubbles/internal/surface"
)

// Op names recorded by the Recorder.
const (
	OpPlaceText   = "PlaceText"
	OpDrawPolygon = "DrawPolygon"
	OpPlaceImage  = "PlaceImage"
	OpBoundingBox = "BoundingBox"
	OpMoveAll     = "MoveAll"
	OpRemove      = "Remove"
	OpScroll      = "Scroll"
	OpSetExtent   = "SetContentExtent"
)

// Call is one recorded primitive invocation.
type Call struct {
	Op     string
	X, Y   float64
	Anchor surface.Anchor
	Text   surface.TextSpec
	Image  surface.Image
	Points []surface.Point
	Fill   surface.Color
	ID     surface.ItemID
	Rect   surface.Rect
	N      int
}

// Recorder is a deterministic fake surface.
//
// Text metrics: every rune is CharWidth units wide and every line is
// LineHeight units tall. Lines break when the next rune would cross the wrap
// width.
type Recorder struct {
	CharWidth  float64
	LineHeight float64

	mu     sync.Mutex
	width  float64
	calls  []Call
	boxes  map[surface.ItemID]surface.Rect
	nextID surface.ItemID
	fail   map[string]error
	extent surface.Rect
	scroll int
}

// NewRecorder creates a recorder reporting the given surface width.
func NewRecorder(width float64) *Recorder {
	return &Recorder{
		CharWidth:  10,
		LineHeight: 20,
		width:      width,
		boxes:      make(map[surface.ItemID]surface.Rect),
		nextID:     1,
		fail:       make(map[string]error),
	}
}

// SetWidth simulates a surface resize.
func (r *Recorder) SetWidth(w float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width = w
}

// FailOn makes every future call to op return err. A nil err clears it.
func (r *Recorder) FailOn(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.fail, op)
		return
	}
	r.fail[op] = err
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsOf returns the recorded calls with the given op.
func (r *Recorder) CallsOf(op string) []Call {
	var out []Call
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Extent returns the last content extent set.
func (r *Recorder) Extent() surface.Rect {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.extent
}

// Scrolled returns the sum of all Scroll calls.
func (r *Recorder) Scrolled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scroll
}

// Box returns the current box of an item.
func (r *Recorder) Box(id surface.ItemID) (surface.Rect, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.boxes[id]
	return b, ok
}

func (r *Recorder) record(c Call) error {
	r.calls = append(r.calls, c)
	if err, ok := r.fail[c.Op]; ok {
		return &surface.Error{Op: c.Op, Err: err}
	}
	return nil
}

func (r *Recorder) add(box surface.Rect) surface.ItemID {
	id := r.nextID
	r.nextID++
	r.boxes[id] = box
	return id
}

// TextSize returns the box size the recorder assigns to spec.
func (r *Recorder) TextSize(spec surface.TextSpec) (w, h float64) {
	n := float64(utf8.RuneCountInString(spec.Text))
	perLine := math.Max(1, math.Floor(spec.WrapWidth/r.CharWidth))
	lines := math.Max(1, math.Ceil(n/perLine))
	textW := math.Min(n, perLine) * r.CharWidth
	return textW + 2*spec.PadX, lines*r.LineHeight + 2*spec.PadY
}

// PlaceText implements surface.Surface.
func (r *Recorder) PlaceText(x, y float64, anchor surface.Anchor, spec surface.TextSpec) (surface.ItemID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: OpPlaceText, X: x, Y: y, Anchor: anchor, Text: spec}); err != nil {
		return 0, err
	}
	w, h := r.TextSize(spec)
	ox, oy := anchor.Origin(x, y, w, h)
	return r.add(surface.RectFromOrigin(ox, oy, w, h)), nil
}

// DrawPolygon implements surface.Surface.
func (r *Recorder) DrawPolygon(points []surface.Point, fill surface.Color) (surface.ItemID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pts := append([]surface.Point(nil), points...)
	if err := r.record(Call{Op: OpDrawPolygon, Points: pts, Fill: fill}); err != nil {
		return 0, err
	}
	return r.add(surface.BoundsOf(pts)), nil
}

// PlaceImage implements surface.Surface.
func (r *Recorder) PlaceImage(x, y float64, anchor surface.Anchor, img surface.Image) (surface.ItemID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: OpPlaceImage, X: x, Y: y, Anchor: anchor, Image: img}); err != nil {
		return 0, err
	}
	ox, oy := anchor.Origin(x, y, img.Width, img.Height)
	return r.add(surface.RectFromOrigin(ox, oy, img.Width, img.Height)), nil
}

// BoundingBox implements surface.Surface.
func (r *Recorder) BoundingBox(id surface.ItemID) (surface.Rect, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: OpBoundingBox, ID: id}); err != nil {
		return surface.Rect{}, err
	}
	b, ok := r.boxes[id]
	if !ok {
		return surface.Rect{}, &surface.Error{Op: OpBoundingBox, Err: fmt.Errorf("%w: %d", surface.ErrUnknownItem, id)}
	}
	return b, nil
}

// Width implements surface.Surface.
func (r *Recorder) Width() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

// MoveAll implements surface.Surface.
func (r *Recorder) MoveAll(dx, dy float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: OpMoveAll, X: dx, Y: dy}); err != nil {
		return err
	}
	for id, b := range r.boxes {
		r.boxes[id] = b.Translate(dx, dy)
	}
	return nil
}

// Remove implements surface.Surface.
func (r *Recorder) Remove(id surface.ItemID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.record(Call{Op: OpRemove, ID: id}); err != nil {
		return err
	}
	if _, ok := r.boxes[id]; !ok {
		return &surface.Error{Op: OpRemove, Err: fmt.Errorf("%w: %d", surface.ErrUnknownItem, id)}
	}
	delete(r.boxes, id)
	return nil
}

// Items returns the number of items currently on the surface.
func (r *Recorder) Items() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boxes)
}

// Scroll implements surface.Surface.
func (r *Recorder) Scroll(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpScroll, N: n})
	r.scroll += n
}

// SetContentExtent implements surface.Surface.
func (r *Recorder) SetContentExtent(rect surface.Rect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, Call{Op: OpSetExtent, Rect: rect})
	r.extent = rect
}

var _ surface.Surface = (*Recorder)(nil)
