// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package layout

import (
	"math"
	"sync"
	"time"

	"github.com/jeranaias/chatbubbles/internal/surface"
	"github.com/jeranaias/chatbubbles/internal/transcript"
)

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds the geometry constants in logical units.
type Config struct {
	Baseline     float64 // y of every newly placed bubble
	Gap          float64 // vertical gap between bubbles
	LeftMargin   float64 // x of bot bubbles
	RightMargin  float64 // distance of user bubbles from the right edge
	RightFloor   float64 // minimum x of the user bubble's right edge
	WrapInset    float64 // wrap width is surface width minus this
	WrapFloor    float64 // minimum wrap width
	AvatarOffset float64 // distance of the avatar from the bubble corner
	PointerSize  float64 // leg length of the pointer triangle
	PadX         float64 // horizontal text padding inside a bubble
	PadY         float64 // vertical text padding inside a bubble
}

// DefaultConfig returns the stock geometry.
func DefaultConfig() Config {
	return Config{
		Baseline:     440,
		Gap:          10,
		LeftMargin:   50,
		RightMargin:  50,
		RightFloor:   700,
		WrapInset:    180,
		WrapFloor:    300,
		AvatarOffset: 72,
		PointerSize:  10,
		PadX:         10,
		PadY:         10,
	}
}

// Decor holds bubble colors and avatars.
type Decor struct {
	BotBubble   surface.Color
	UserBubble  surface.Color
	ErrorBubble surface.Color
	Text        surface.Color
	BotAvatar   surface.Image
	UserAvatar  surface.Image
}

// DefaultDecor returns the light palette of the original window.
func DefaultDecor() Decor {
	return Decor{
		BotBubble:   "#E3F2FD",
		UserBubble:  "#DCF8C6",
		ErrorBubble: "#FDE2E1",
		Text:        "#111827",
		BotAvatar:   surface.Image{Name: "robot.png", Glyph: "🤖", Width: 20, Height: 10},
		UserAvatar:  surface.Image{Name: "user.png", Glyph: "🙂", Width: 20, Height: 10},
	}
}

// =============================================================================
// BUBBLE LAYOUT
// =============================================================================

// Side is the transcript edge a bubble hangs from.
type Side int

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// BubbleLayout is the placed geometry of one message.
type BubbleLayout struct {
	MessageID uint64
	AnchorX   float64
	AnchorY   float64
	Width     float64
	Height    float64
	WrapWidth float64
	Side      Side
	Bounds    surface.Rect
	PlacedAt  time.Time
}

// WrapWidth returns the text wrap width for a surface of the given width.
func (c Config) WrapWidth(surfaceWidth float64) float64 {
	return math.Max(surfaceWidth-c.WrapInset, c.WrapFloor)
}

// RightAnchor returns the x of a user bubble's right edge.
func (c Config) RightAnchor(surfaceWidth float64) float64 {
	return math.Max(surfaceWidth-c.RightMargin, c.RightFloor)
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine places bubbles on a surface. It must only be driven from the
// goroutine that owns the surface; the mutex only protects readers.
type Engine struct {
	mu      sync.Mutex
	surface surface.Surface
	cfg     Config
	decor   Decor
	layouts []BubbleLayout
	items   []surface.ItemID
	now     func() time.Time
}

// New creates an engine drawing on s.
func New(s surface.Surface, cfg Config, decor Decor) *Engine {
	return &Engine{
		surface: s,
		cfg:     cfg,
		decor:   decor,
		now:     time.Now,
	}
}

// Config returns the engine geometry.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// SetDecor changes colors and avatars for future bubbles.
func (e *Engine) SetDecor(d Decor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.decor = d
}

// Layouts returns every placed bubble in placement order.
func (e *Engine) Layouts() []BubbleLayout {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]BubbleLayout, len(e.layouts))
	copy(out, e.layouts)
	return out
}

// Last returns the most recently placed bubble, or nil.
func (e *Engine) Last() *BubbleLayout {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.layouts) == 0 {
		return nil
	}
	l := e.layouts[len(e.layouts)-1]
	return &l
}

// Place draws msg as a new bubble. prior is the previously placed bubble,
// or nil for the first one.
func (e *Engine) Place(msg transcript.Message, prior *BubbleLayout) (BubbleLayout, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cfg := e.cfg
	var shift float64
	if prior != nil {
		shift = -(prior.Height + cfg.Gap)
		if err := e.surface.MoveAll(0, shift); err != nil {
			return BubbleLayout{}, surface.Wrap("move", err)
		}
		e.shiftLayouts(shift)
	}

	bl, ids, err := e.draw(msg, cfg)
	if err != nil {
		e.rollback(ids, shift)
		return BubbleLayout{}, err
	}

	e.items = append(e.items, ids...)
	if err := e.updateExtent(); err != nil {
		e.items = e.items[:len(e.items)-len(ids)]
		e.rollback(ids, shift)
		return BubbleLayout{}, err
	}

	bl.PlacedAt = e.now()
	e.layouts = append(e.layouts, bl)
	return bl, nil
}

// rollback removes the items of a failed placement and moves prior content
// back down. Its own failures are dropped in favour of the original error.
func (e *Engine) rollback(ids []surface.ItemID, shift float64) {
	for _, id := range ids {
		_ = e.surface.Remove(id)
	}
	if shift != 0 && e.surface.MoveAll(0, -shift) == nil {
		e.shiftLayouts(-shift)
	}
}

func (e *Engine) shiftLayouts(dy float64) {
	for i := range e.layouts {
		e.layouts[i].AnchorY += dy
		e.layouts[i].Bounds = e.layouts[i].Bounds.Translate(0, dy)
	}
}

// draw places the bubble body and its decorations.
func (e *Engine) draw(msg transcript.Message, cfg Config) (BubbleLayout, []surface.ItemID, error) {
	width := e.surface.Width()
	wrap := cfg.WrapWidth(width)

	bot := msg.IsBot()
	bl := BubbleLayout{
		MessageID: msg.ID,
		AnchorY:   cfg.Baseline,
		WrapWidth: wrap,
	}

	spec := surface.TextSpec{
		Text:       msg.Text,
		WrapWidth:  wrap,
		Foreground: e.decor.Text,
		Background: e.decor.UserBubble,
		PadX:       cfg.PadX,
		PadY:       cfg.PadY,
	}
	anchor := surface.NorthEast
	if bot {
		bl.Side = Left
		bl.AnchorX = cfg.LeftMargin
		anchor = surface.NorthWest
		spec.Background = e.decor.BotBubble
		if msg.Failed {
			spec.Background = e.decor.ErrorBubble
		}
	} else {
		bl.Side = Right
		bl.AnchorX = cfg.RightAnchor(width)
		spec.Justify = surface.JustifyRight
	}

	widget, err := e.surface.PlaceText(bl.AnchorX, bl.AnchorY, anchor, spec)
	if err != nil {
		return bl, nil, surface.Wrap("place text", err)
	}
	ids := []surface.ItemID{widget}

	box, err := e.surface.BoundingBox(widget)
	if err != nil {
		return bl, ids, surface.Wrap("bbox", err)
	}
	bl.Width = box.Width()
	bl.Height = box.Height()

	pointer, err := e.surface.DrawPolygon(pointerPoints(box, bot, cfg.PointerSize), spec.Background)
	if err != nil {
		return bl, ids, surface.Wrap("draw pointer", err)
	}
	ids = append(ids, pointer)

	var avatar surface.ItemID
	if bot {
		avatar, err = e.surface.PlaceImage(box.X1-cfg.AvatarOffset, box.Y2, surface.West, e.decor.BotAvatar)
	} else {
		avatar, err = e.surface.PlaceImage(box.X2+cfg.AvatarOffset, box.Y2, surface.East, e.decor.UserAvatar)
	}
	if err != nil {
		return bl, ids, surface.Wrap("place avatar", err)
	}
	ids = append(ids, avatar)

	bl.Bounds = box
	return bl, ids, nil
}

// pointerPoints returns the triangle hanging off the lower outer corner.
func pointerPoints(box surface.Rect, bot bool, size float64) []surface.Point {
	if bot {
		return []surface.Point{
			{X: box.X1, Y: box.Y2 - size},
			{X: box.X1 - size, Y: box.Y2},
			{X: box.X1, Y: box.Y2},
		}
	}
	return []surface.Point{
		{X: box.X2, Y: box.Y2 - size},
		{X: box.X2, Y: box.Y2},
		{X: box.X2 + size, Y: box.Y2},
	}
}

// updateExtent unions the boxes of every placed item and pushes the result.
func (e *Engine) updateExtent() error {
	var ext surface.Rect
	for _, id := range e.items {
		box, err := e.surface.BoundingBox(id)
		if err != nil {
			return surface.Wrap("extent", err)
		}
		ext = ext.Union(box)
	}
	e.surface.SetContentExtent(ext)
	return nil
}
