// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package surface

import (
	"errors"
	"fmt"
	"math"
)

// =============================================================================
// GEOMETRY
// =============================================================================

// Point is a position in logical units.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned box; (X1, Y1) is the top-left corner.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// RectFromOrigin builds a rect from its top-left corner and size.
func RectFromOrigin(x, y, w, h float64) Rect {
	return Rect{X1: x, Y1: y, X2: x + w, Y2: y + h}
}

// Width returns the horizontal size.
func (r Rect) Width() float64 { return r.X2 - r.X1 }

// Height returns the vertical size.
func (r Rect) Height() float64 { return r.Y2 - r.Y1 }

// Empty reports whether the rect has no area.
func (r Rect) Empty() bool { return r.X2 <= r.X1 || r.Y2 <= r.Y1 }

// Translate returns the rect moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X1: r.X1 + dx, Y1: r.Y1 + dy, X2: r.X2 + dx, Y2: r.Y2 + dy}
}

// Union returns the smallest rect containing both. An empty rect is ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return Rect{
		X1: math.Min(r.X1, o.X1),
		Y1: math.Min(r.Y1, o.Y1),
		X2: math.Max(r.X2, o.X2),
		Y2: math.Max(r.Y2, o.Y2),
	}
}

// String formats the rect like a toolkit bbox tuple.
func (r Rect) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", r.X1, r.Y1, r.X2, r.Y2)
}

// BoundsOf returns the bounding box of a set of points.
func BoundsOf(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	r := Rect{X1: points[0].X, Y1: points[0].Y, X2: points[0].X, Y2: points[0].Y}
	for _, p := range points[1:] {
		r.X1 = math.Min(r.X1, p.X)
		r.Y1 = math.Min(r.Y1, p.Y)
		r.X2 = math.Max(r.X2, p.X)
		r.Y2 = math.Max(r.Y2, p.Y)
	}
	return r
}

// =============================================================================
// ANCHORS
// =============================================================================

// Anchor names the point of an item that sits at the placement coordinate.
type Anchor int

const (
	NorthWest Anchor = iota
	North
	NorthEast
	West
	Center
	East
	SouthWest
	South
	SouthEast
)

// Origin converts an anchored placement into the item's top-left corner.
func (a Anchor) Origin(x, y, w, h float64) (float64, float64) {
	switch a {
	case North, Center, South:
		x -= w / 2
	case NorthEast, East, SouthEast:
		x -= w
	}
	switch a {
	case West, Center, East:
		y -= h / 2
	case SouthWest, South, SouthEast:
		y -= h
	}
	return x, y
}

// =============================================================================
// ITEM SPECS
// =============================================================================

// ItemID identifies a placed item on a surface.
type ItemID int

// Color is a hex color such as "#E3F2FD". Empty means "inherit".
type Color string

// Justify controls line alignment inside a text widget.
type Justify int

const (
	JustifyLeft Justify = iota
	JustifyRight
)

// TextSpec describes a text-bearing widget (a bubble body).
type TextSpec struct {
	Text       string
	WrapWidth  float64
	Justify    Justify
	Foreground Color
	Background Color
	PadX       float64
	PadY       float64
}

// Image is a small picture placed next to a bubble. Terminal surfaces draw
// Glyph; pixel surfaces would look up Name.
type Image struct {
	Name       string
	Glyph      string
	Width      float64
	Height     float64
	Foreground Color
	Background Color
}

// =============================================================================
// SURFACE INTERFACE
// =============================================================================

// Surface is the capability set the layout engine draws through.
type Surface interface {
	// PlaceText places a text widget with the given anchor at (x, y).
	PlaceText(x, y float64, anchor Anchor, spec TextSpec) (ItemID, error)

	// DrawPolygon draws a filled polygon.
	DrawPolygon(points []Point, fill Color) (ItemID, error)

	// PlaceImage places an image with the given anchor at (x, y).
	PlaceImage(x, y float64, anchor Anchor, img Image) (ItemID, error)

	// BoundingBox reports the box of a previously placed item.
	BoundingBox(id ItemID) (Rect, error)

	// Width reports the current drawable width in logical units.
	Width() float64

	// MoveAll translates every placed item.
	MoveAll(dx, dy float64) error

	// Remove deletes a placed item.
	Remove(id ItemID) error

	// Scroll moves the view by n logical units (negative scrolls up).
	Scroll(n int)

	// SetContentExtent sets the logical rectangle the view may scroll over.
	SetContentExtent(r Rect)
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrUnknownItem is returned when an ItemID was never placed.
var ErrUnknownItem = errors.New("unknown item")

// ErrInvalidSpec is returned for placements that cannot be drawn.
var ErrInvalidSpec = errors.New("invalid item spec")

// Error reports a failed drawing primitive.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "surface: " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns err as a *Error for op, leaving an existing *Error untouched.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Op: op, Err: err}
}
