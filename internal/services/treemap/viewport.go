package treemap

import "math"

const (
	MinZoom = 1.0
	MaxZoom = 8.0
)

// Viewport is the pan/zoom transform applied to the rendered treemap.
// Screen = content*K + (X, Y). Content always covers the viewport.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	K      float64 `json:"k"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func NewViewport(w, h float64) Viewport {
	return Viewport{Width: w, Height: h, K: 1}
}

// ZoomAt multiplies the scale by factor around a screen-space focal point.
func (v Viewport) ZoomAt(fx, fy, factor float64) Viewport {
	if !(factor > 0) {
		return v
	}
	k := math.Max(MinZoom, math.Min(MaxZoom, v.K*factor))
	// keep the content point under the focus fixed
	cx, cy := v.ToContent(fx, fy)
	v.K = k
	v.X = fx - cx*k
	v.Y = fy - cy*k
	return v.clamp()
}

// Pan translates by a screen-space delta.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.X += dx
	v.Y += dy
	return v.clamp()
}

// ToContent maps a screen point back to layout coordinates.
func (v Viewport) ToContent(sx, sy float64) (float64, float64) {
	k := v.K
	if k == 0 {
		k = 1
	}
	return (sx - v.X) / k, (sy - v.Y) / k
}

func (v Viewport) clamp() Viewport {
	v.X = math.Min(0, math.Max(v.Width-v.Width*v.K, v.X))
	v.Y = math.Min(0, math.Max(v.Height-v.Height*v.K, v.Y))
	return v
}

// Gesture tracks one pointer interaction. It resolves to a selection only
// when the viewport did not move while it was active.
type Gesture struct {
	current Viewport
	x, y    float64
	moved   bool
}

// Begin starts a gesture at a screen point.
func Begin(v Viewport, sx, sy float64) *Gesture {
	return &Gesture{current: v, x: sx, y: sy}
}

// Drag pans the viewport by the pointer delta.
func (g *Gesture) Drag(dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	g.moved = true
	g.current = g.current.Pan(dx, dy)
}

// Zoom applies a wheel or pinch factor around the gesture origin.
func (g *Gesture) Zoom(factor float64) {
	if factor == 1 || !(factor > 0) {
		return
	}
	g.moved = true
	g.current = g.current.ZoomAt(g.x, g.y, factor)
}

// Viewport returns the transform after the gesture so far.
func (g *Gesture) Viewport() Viewport { return g.current }

// Moved reports whether any pan or zoom delta occurred, even one absorbed by clamping.
func (g *Gesture) Moved() bool { return g.moved }

// End resolves the gesture against cells: a cell is selected only for a tap.
func (g *Gesture) End(cells []Cell) (Cell, bool) {
	if g.Moved() {
		return Cell{}, false
	}
	cx, cy := g.current.ToContent(g.x, g.y)
	return HitTest(cells, cx, cy)
}
