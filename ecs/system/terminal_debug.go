package system

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs/component"
)

const terminalCircleSegments = 16

// CellSetter is the part of tcell.Screen the terminal drawer writes to.
type CellSetter interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (int, int)
}

// TerminalDrawer renders world geometry as glyphs. World +Y maps to screen
// rows going down.
type TerminalDrawer struct {
	screen CellSetter
	view   cp.BB
	scaleX float64
	scaleY float64
}

// NewTerminalDrawer fits view into the whole screen.
func NewTerminalDrawer(screen CellSetter, view cp.BB) *TerminalDrawer {
	d := &TerminalDrawer{screen: screen, view: view}
	d.Resize()
	return d
}

// Resize recomputes the world to cell scale after the terminal changed size.
func (d *TerminalDrawer) Resize() {
	w, h := d.screen.Size()
	width := d.view.R - d.view.L
	height := d.view.T - d.view.B
	d.scaleX, d.scaleY = 0, 0
	if width > 0 && w > 0 {
		d.scaleX = float64(w-1) / width
	}
	if height > 0 && h > 0 {
		d.scaleY = float64(h-1) / height
	}
}

// Cell maps a world position to a terminal cell.
func (d *TerminalDrawer) Cell(v cp.Vector) (int, int) {
	x := (v.X - d.view.L) * d.scaleX
	y := (v.Y - d.view.B) * d.scaleY
	return int(math.Round(x)), int(math.Round(y))
}

func (d *TerminalDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		d.plot(pos, 'o', fill)
		return
	}
	var prev cp.Vector
	for i := 0; i <= terminalCircleSegments; i++ {
		t := 2 * math.Pi * float64(i) / terminalCircleSegments
		p := cp.Vector{X: pos.X + math.Cos(t)*radius, Y: pos.Y + math.Sin(t)*radius}
		if i > 0 {
			d.line(prev, p, 'o', fill)
		}
		prev = p
	}
	d.line(pos, cp.Vector{X: pos.X + math.Cos(angle)*radius, Y: pos.Y + math.Sin(angle)*radius}, '+', outline)
}

func (d *TerminalDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.line(a, b, '-', fill)
}

func (d *TerminalDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.line(a, b, '=', fill)
}

func (d *TerminalDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	verts = verts[:count]
	for i := range verts {
		d.line(verts[i], verts[(i+1)%len(verts)], '#', fill)
	}
}

func (d *TerminalDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	d.plot(pos, '.', fill)
}

func (d *TerminalDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *TerminalDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.8, G: 0.8, B: 0.8, A: 1}
}

// ShapeColor colours shapes by their category tag.
func (d *TerminalDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	switch component.CategoryOf(shape) {
	case component.CategoryTerrain:
		return cp.FColor{R: 0.5, G: 0.5, B: 0.5, A: 1}
	case component.CategoryPlayer:
		return cp.FColor{R: 0.2, G: 0.6, B: 1, A: 1}
	case component.CategoryPlayerFeet:
		return cp.FColor{R: 0.2, G: 1, B: 1, A: 1}
	case component.CategoryHazard:
		return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 1}
	case component.CategoryPickup:
		return cp.FColor{R: 1, G: 0.85, B: 0, A: 1}
	case component.CategoryProp:
		return cp.FColor{R: 0.6, G: 0.4, B: 0.2, A: 1}
	}
	return cp.FColor{R: 1, G: 1, B: 1, A: 1}
}

func (d *TerminalDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 1}
}

func (d *TerminalDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 1}
}

func (d *TerminalDrawer) Data() interface{} {
	return nil
}

func (d *TerminalDrawer) plot(v cp.Vector, r rune, c cp.FColor) {
	x, y := d.Cell(v)
	d.set(x, y, r, c)
}

func (d *TerminalDrawer) set(x, y int, r rune, c cp.FColor) {
	w, h := d.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	d.screen.SetContent(x, y, r, nil, tcell.StyleDefault.Foreground(toTermColor(c)))
}

// line walks the cells between a and b with Bresenham's algorithm.
func (d *TerminalDrawer) line(a, b cp.Vector, r rune, c cp.FColor) {
	x0, y0 := d.Cell(a)
	x1, y1 := d.Cell(b)
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		d.set(x0, y0, r, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func toTermColor(c cp.FColor) tcell.Color {
	return tcell.NewRGBColor(int32(clamp01(c.R)*255), int32(clamp01(c.G)*255), int32(clamp01(c.B)*255))
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
