// Package signature implements the hand-drawn signature pad: pointer or
// touch movement segments rendered into an offscreen raster. The raster is
// kept purely in session memory and is never uploaded.
package signature

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Point is a pad-local coordinate. The caller already translated pointer or
// touch positions into pad space, so the pad itself has no input-source
// distinction.
type Point struct {
	X, Y int
}

var ink = color.NRGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xFF}

// Pad accumulates strokes on a transparent canvas of fixed size.
type Pad struct {
	canvas  *image.NRGBA
	width   int
	height  int
	drawing bool
	last    Point
	empty   bool
}

// NewPad creates an empty pad of the given dimensions.
func NewPad(width, height int) *Pad {
	return &Pad{
		canvas: imaging.New(width, height, color.NRGBA{}),
		width:  width,
		height: height,
		empty:  true,
	}
}

// Begin starts a stroke at the given point.
func (p *Pad) Begin(pt Point) {
	p.drawing = true
	p.last = pt
}

// MoveTo extends the current stroke to the given point. Movements outside a
// stroke are ignored, matching pointer-up behavior.
func (p *Pad) MoveTo(pt Point) {
	if !p.drawing {
		return
	}
	p.line(p.last, pt)
	p.last = pt
	p.empty = false
}

// End finishes the current stroke.
func (p *Pad) End() {
	p.drawing = false
}

// AddStroke replays a full movement segment sequence as one stroke.
func (p *Pad) AddStroke(points []Point) {
	if len(points) == 0 {
		return
	}
	p.Begin(points[0])
	for _, pt := range points[1:] {
		p.MoveTo(pt)
	}
	p.End()
}

// Clear wipes the canvas back to its initial transparent state.
func (p *Pad) Clear() {
	p.canvas = imaging.New(p.width, p.height, color.NRGBA{})
	p.drawing = false
	p.empty = true
}

// Empty reports whether anything has been drawn since the last Clear.
func (p *Pad) Empty() bool {
	return p.empty
}

// Size reports the canvas dimensions.
func (p *Pad) Size() (int, int) {
	return p.width, p.height
}

// Image returns a snapshot of the current raster. The returned image is a
// copy; further drawing does not mutate it.
func (p *Pad) Image() image.Image {
	return imaging.Clone(p.canvas)
}

// line rasterizes a straight segment between two points (Bresenham), with a
// small square brush so strokes remain visible when scaled down.
func (p *Pad) line(from, to Point) {
	dx := abs(to.X - from.X)
	dy := -abs(to.Y - from.Y)
	sx := 1
	if from.X > to.X {
		sx = -1
	}
	sy := 1
	if from.Y > to.Y {
		sy = -1
	}
	err := dx + dy

	x, y := from.X, from.Y
	for {
		p.plot(x, y)
		if x == to.X && y == to.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func (p *Pad) plot(x, y int) {
	for ox := 0; ox < 2; ox++ {
		for oy := 0; oy < 2; oy++ {
			px, py := x+ox, y+oy
			if px < 0 || py < 0 || px >= p.width || py >= p.height {
				continue
			}
			p.canvas.SetNRGBA(px, py, ink)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
