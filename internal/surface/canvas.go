// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package surface

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// =============================================================================
// CANVAS CONFIGURATION
// =============================================================================

// CanvasConfig controls how logical units map onto terminal cells.
type CanvasConfig struct {
	// CellWidth is the number of logical units per column.
	CellWidth float64
	// CellHeight is the number of logical units per row.
	CellHeight float64
	// Gutter is a margin in logical units hidden on both sides of the
	// reported width. Avatars sit just outside bubbles and would otherwise
	// land off-screen.
	Gutter float64
}

// DefaultCanvasConfig returns a mapping of 10 units per cell with a 30 unit
// gutter.
func DefaultCanvasConfig() CanvasConfig {
	return CanvasConfig{
		CellWidth:  10,
		CellHeight: 10,
		Gutter:     30,
	}
}

// =============================================================================
// CANVAS
// =============================================================================

type itemKind int

const (
	kindText itemKind = iota
	kindPolygon
	kindImage
)

type canvasItem struct {
	id     ItemID
	kind   itemKind
	bounds Rect

	// text widgets
	lines   []string
	spec    TextSpec
	padCols int
	padRows int

	// polygons
	points []Point
	fill   Color

	// images
	image Image
}

// Canvas is a Surface drawn into a grid of terminal cells.
//
// The view is pinned to the bottom of the content extent so new bubbles stay
// next to the input bar. Scrolling up unpins it; scrolling back to the bottom
// pins it again.
type Canvas struct {
	cfg    CanvasConfig
	cols   int
	rows   int
	items  []*canvasItem
	byID   map[ItemID]*canvasItem
	nextID ItemID

	extent  Rect
	viewTop float64
	pinned  bool
}

// NewCanvas creates a canvas of cols x rows cells.
func NewCanvas(cols, rows int, cfg CanvasConfig) *Canvas {
	def := DefaultCanvasConfig()
	if cfg.CellWidth <= 0 {
		cfg.CellWidth = def.CellWidth
	}
	if cfg.CellHeight <= 0 {
		cfg.CellHeight = def.CellHeight
	}
	if cfg.Gutter < 0 {
		cfg.Gutter = 0
	}
	c := &Canvas{
		cfg:    cfg,
		byID:   make(map[ItemID]*canvasItem),
		nextID: 1,
		pinned: true,
	}
	c.Resize(cols, rows)
	return c
}

// Resize changes the visible grid. Placed items keep their coordinates.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c.cols = cols
	c.rows = rows
	c.clampView()
}

// Size returns the grid dimensions in cells.
func (c *Canvas) Size() (cols, rows int) {
	return c.cols, c.rows
}

// Width reports the drawable width in logical units, excluding both gutters.
// It can be zero or negative before the first resize.
func (c *Canvas) Width() float64 {
	return float64(c.cols)*c.cfg.CellWidth - 2*c.cfg.Gutter
}

// ViewHeight reports the visible height in logical units.
func (c *Canvas) ViewHeight() float64 {
	return float64(c.rows) * c.cfg.CellHeight
}

// Pinned reports whether the view follows the bottom of the content.
func (c *Canvas) Pinned() bool {
	return c.pinned
}

// Extent returns the last content extent set on the canvas.
func (c *Canvas) Extent() Rect {
	return c.extent
}

// ItemCount returns the number of placed items.
func (c *Canvas) ItemCount() int {
	return len(c.items)
}

// =============================================================================
// SURFACE PRIMITIVES
// =============================================================================

// PlaceText wraps spec.Text to spec.WrapWidth and places the resulting box.
func (c *Canvas) PlaceText(x, y float64, anchor Anchor, spec TextSpec) (ItemID, error) {
	if spec.WrapWidth <= 0 {
		return 0, &Error{Op: "place text", Err: fmt.Errorf("%w: wrap width %g", ErrInvalidSpec, spec.WrapWidth)}
	}

	wrapCols := int(math.Floor(spec.WrapWidth / c.cfg.CellWidth))
	if wrapCols < 1 {
		wrapCols = 1
	}
	lines := wrapLines(spec.Text, wrapCols)

	textCols := 0
	for _, line := range lines {
		if w := runewidth.StringWidth(line); w > textCols {
			textCols = w
		}
	}
	padCols := int(math.Round(spec.PadX / c.cfg.CellWidth))
	padRows := int(math.Round(spec.PadY / c.cfg.CellHeight))

	w := float64(textCols+2*padCols) * c.cfg.CellWidth
	h := float64(len(lines)+2*padRows) * c.cfg.CellHeight
	ox, oy := anchor.Origin(x, y, w, h)

	it := &canvasItem{
		kind:    kindText,
		bounds:  RectFromOrigin(ox, oy, w, h),
		lines:   lines,
		spec:    spec,
		padCols: padCols,
		padRows: padRows,
	}
	return c.add(it), nil
}

// DrawPolygon records a filled polygon.
func (c *Canvas) DrawPolygon(points []Point, fill Color) (ItemID, error) {
	if len(points) < 3 {
		return 0, &Error{Op: "draw polygon", Err: fmt.Errorf("%w: %d points", ErrInvalidSpec, len(points))}
	}
	pts := make([]Point, len(points))
	copy(pts, points)
	it := &canvasItem{
		kind:   kindPolygon,
		bounds: BoundsOf(pts),
		points: pts,
		fill:   fill,
	}
	return c.add(it), nil
}

// PlaceImage places an image glyph.
func (c *Canvas) PlaceImage(x, y float64, anchor Anchor, img Image) (ItemID, error) {
	w, h := img.Width, img.Height
	if w <= 0 {
		w = float64(runewidth.StringWidth(img.Glyph)) * c.cfg.CellWidth
	}
	if h <= 0 {
		h = c.cfg.CellHeight
	}
	ox, oy := anchor.Origin(x, y, w, h)
	it := &canvasItem{
		kind:   kindImage,
		bounds: RectFromOrigin(ox, oy, w, h),
		image:  img,
	}
	return c.add(it), nil
}

// BoundingBox returns the box of a placed item.
func (c *Canvas) BoundingBox(id ItemID) (Rect, error) {
	it, ok := c.byID[id]
	if !ok {
		return Rect{}, &Error{Op: "bbox", Err: fmt.Errorf("%w: %d", ErrUnknownItem, id)}
	}
	return it.bounds, nil
}

// MoveAll translates every item.
func (c *Canvas) MoveAll(dx, dy float64) error {
	for _, it := range c.items {
		it.bounds = it.bounds.Translate(dx, dy)
		for i := range it.points {
			it.points[i].X += dx
			it.points[i].Y += dy
		}
	}
	return nil
}

// Remove deletes an item. Ids are never reused.
func (c *Canvas) Remove(id ItemID) error {
	if _, ok := c.byID[id]; !ok {
		return &Error{Op: "remove", Err: fmt.Errorf("%w: %d", ErrUnknownItem, id)}
	}
	delete(c.byID, id)
	for i, it := range c.items {
		if it.id == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	return nil
}

// Scroll moves the view by n logical units.
func (c *Canvas) Scroll(n int) {
	c.viewTop += float64(n)
	c.pinned = false
	c.clampView()
}

// ScrollLines moves the view by whole rows.
func (c *Canvas) ScrollLines(n int) {
	c.Scroll(n * int(c.cfg.CellHeight))
}

// ScrollToBottom pins the view to the newest content.
func (c *Canvas) ScrollToBottom() {
	c.pinned = true
	c.clampView()
}

// SetContentExtent records the scrollable region.
func (c *Canvas) SetContentExtent(r Rect) {
	c.extent = r
	c.clampView()
}

func (c *Canvas) add(it *canvasItem) ItemID {
	it.id = c.nextID
	c.nextID++
	c.items = append(c.items, it)
	c.byID[it.id] = it
	return it.id
}

// clampView keeps viewTop inside the extent and applies pinning.
func (c *Canvas) clampView() {
	bottomTop := c.extent.Y2 - c.ViewHeight()
	if c.pinned {
		c.viewTop = bottomTop
		return
	}
	minTop := math.Min(c.extent.Y1, bottomTop)
	if c.viewTop < minTop {
		c.viewTop = minTop
	}
	if c.viewTop >= bottomTop {
		c.viewTop = bottomTop
		c.pinned = true
	}
}

// wrapLines word-wraps text and hard-breaks words longer than the limit.
func wrapLines(text string, limit int) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\t", "    ")
	wrapped := wrap.String(wordwrap.String(text, limit), limit)
	lines := strings.Split(wrapped, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return lines
}

// =============================================================================
// RENDERING
// =============================================================================

type cellStyle struct {
	fg Color
	bg Color
}

type cell struct {
	r     rune
	style cellStyle
	cont  bool // right half of a wide rune
}

// Render draws the visible rows with lipgloss colors.
func (c *Canvas) Render() string {
	return c.draw(true)
}

// String draws the visible rows without any styling.
func (c *Canvas) String() string {
	return c.draw(false)
}

func (c *Canvas) draw(styled bool) string {
	if c.cols == 0 || c.rows == 0 {
		return ""
	}
	grid := make([][]cell, c.rows)
	for r := range grid {
		grid[r] = make([]cell, c.cols)
		for col := range grid[r] {
			grid[r][col].r = ' '
		}
	}

	for _, it := range c.items {
		switch it.kind {
		case kindText:
			c.paintText(grid, it)
		case kindPolygon:
			c.paintPolygon(grid, it)
		case kindImage:
			c.paintImage(grid, it)
		}
	}

	out := make([]string, c.rows)
	for r, row := range grid {
		out[r] = renderRow(row, styled)
	}
	return strings.Join(out, "\n")
}

func (c *Canvas) colOf(x float64) int {
	return int(math.Floor((x + c.cfg.Gutter) / c.cfg.CellWidth))
}

func (c *Canvas) rowOf(y float64) int {
	return int(math.Floor((y - c.viewTop) / c.cfg.CellHeight))
}

func (c *Canvas) put(grid [][]cell, row, col int, r rune, st cellStyle) {
	if row < 0 || row >= len(grid) || col < 0 || col >= c.cols {
		return
	}
	w := runewidth.RuneWidth(r)
	if w == 2 && col+1 >= c.cols {
		r, w = ' ', 1
	}
	grid[row][col] = cell{r: r, style: st}
	if w == 2 {
		grid[row][col+1] = cell{cont: true, style: st}
	}
}

func (c *Canvas) putString(grid [][]cell, row, col int, s string, st cellStyle) {
	for _, r := range s {
		c.put(grid, row, col, r, st)
		col += runewidth.RuneWidth(r)
	}
}

func (c *Canvas) paintText(grid [][]cell, it *canvasItem) {
	st := cellStyle{fg: it.spec.Foreground, bg: it.spec.Background}
	c0 := c.colOf(it.bounds.X1)
	r0 := c.rowOf(it.bounds.Y1)
	wCols := int(math.Round(it.bounds.Width() / c.cfg.CellWidth))
	hRows := len(it.lines) + 2*it.padRows

	for r := 0; r < hRows; r++ {
		for col := 0; col < wCols; col++ {
			c.put(grid, r0+r, c0+col, ' ', st)
		}
	}
	for i, line := range it.lines {
		start := c0 + it.padCols
		if it.spec.Justify == JustifyRight {
			start = c0 + wCols - it.padCols - runewidth.StringWidth(line)
		}
		c.putString(grid, r0+it.padRows+i, start, line, st)
	}
}

func (c *Canvas) paintImage(grid [][]cell, it *canvasItem) {
	st := cellStyle{fg: it.image.Foreground, bg: it.image.Background}
	c.putString(grid, c.rowOf(it.bounds.Y1), c.colOf(it.bounds.X1), it.image.Glyph, st)
}

// quadrantGlyphs is indexed by a mask of TL=1, TR=2, BL=4, BR=8.
var quadrantGlyphs = []rune(" ▘▝▀▖▌▞▛▗▚▐▜▄▙▟█")

// paintPolygon samples four points per cell and draws the matching block glyph.
func (c *Canvas) paintPolygon(grid [][]cell, it *canvasItem) {
	st := cellStyle{fg: it.fill}
	cw, ch := c.cfg.CellWidth, c.cfg.CellHeight
	// Shrink by a hair so an edge that lies on a cell boundary does not
	// spill into the neighbouring cell.
	const eps = 1e-6
	cStart, cEnd := c.colOf(it.bounds.X1+eps), c.colOf(it.bounds.X2-eps)
	rStart, rEnd := c.rowOf(it.bounds.Y1+eps), c.rowOf(it.bounds.Y2-eps)

	for row := rStart; row <= rEnd; row++ {
		for col := cStart; col <= cEnd; col++ {
			x0 := float64(col)*cw - c.cfg.Gutter
			y0 := c.viewTop + float64(row)*ch
			mask := 0
			samples := [4]Point{
				{x0 + cw*0.25, y0 + ch*0.25},
				{x0 + cw*0.75, y0 + ch*0.25},
				{x0 + cw*0.25, y0 + ch*0.75},
				{x0 + cw*0.75, y0 + ch*0.75},
			}
			for bit, p := range samples {
				if containsPoint(it.points, p) {
					mask |= 1 << bit
				}
			}
			if mask == 0 {
				continue
			}
			if row >= 0 && row < len(grid) && col >= 0 && col < c.cols {
				st.bg = grid[row][col].style.bg
			}
			c.put(grid, row, col, quadrantGlyphs[mask], st)
		}
	}
}

// containsPoint is an even-odd test that counts points on an edge as inside.
func containsPoint(poly []Point, p Point) bool {
	inside := false
	j := len(poly) - 1
	for i := range poly {
		a, b := poly[i], poly[j]
		if onSegment(a, b, p) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)*(b.X-a.X)/(b.Y-a.Y)
			if p.X < x {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

func onSegment(a, b, p Point) bool {
	const eps = 1e-9
	cross := (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
	if math.Abs(cross) > eps {
		return false
	}
	return p.X >= math.Min(a.X, b.X)-eps && p.X <= math.Max(a.X, b.X)+eps &&
		p.Y >= math.Min(a.Y, b.Y)-eps && p.Y <= math.Max(a.Y, b.Y)+eps
}

// renderRow groups runs of equally styled cells into single lipgloss renders.
func renderRow(row []cell, styled bool) string {
	var b strings.Builder
	var run strings.Builder
	var current cellStyle

	flush := func() {
		if run.Len() == 0 {
			return
		}
		if styled && (current.fg != "" || current.bg != "") {
			style := lipgloss.NewStyle()
			if current.fg != "" {
				style = style.Foreground(lipgloss.Color(current.fg))
			}
			if current.bg != "" {
				style = style.Background(lipgloss.Color(current.bg))
			}
			b.WriteString(style.Render(run.String()))
		} else {
			b.WriteString(run.String())
		}
		run.Reset()
	}

	for i, cl := range row {
		if cl.cont {
			continue
		}
		if i == 0 || cl.style != current {
			flush()
			current = cl.style
		}
		run.WriteRune(cl.r)
	}
	flush()

	if !styled {
		return strings.TrimRight(b.String(), " ")
	}
	return b.String()
}

var _ Surface = (*Canvas)(nil)
