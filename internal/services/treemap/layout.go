// Package treemap partitions a viewport into rectangles proportional to asset weight.
package treemap

import (
	"math"
	"sort"
)

// Phi is the target aspect ratio used by the squarified tiling.
var Phi = (1 + math.Sqrt(5)) / 2

// DefaultPadding is the gap in pixels between cells and around the viewport edge.
const DefaultPadding = 3.0

// Item is one weighted input to the layout.
type Item struct {
	ID     string
	Weight float64
}

// Rect is an axis-aligned rectangle in viewport pixels.
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }
func (r Rect) Area() float64   { return r.Width() * r.Height() }

// Contains reports whether (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X0 && x <= r.X1 && y >= r.Y0 && y <= r.Y1
}

// Cell is the layout result for one item. Tile is the exact share of the
// padded viewport; Rect is Tile shrunk by half the padding and rounded.
type Cell struct {
	ID     string  `json:"id"`
	Weight float64 `json:"weight"`
	Index  int     `json:"index"`
	Tile   Rect    `json:"-"`
	Rect   Rect    `json:"rect"`
}

// Options tunes a layout run.
type Options struct {
	Padding float64
	Round   bool
}

// DefaultOptions matches the dashboard rendering.
func DefaultOptions() Options {
	return Options{Padding: DefaultPadding, Round: true}
}

// Squarify lays items out in a width x height viewport. Items with a
// non-positive or non-finite weight are excluded. The remaining items are
// ordered by weight descending, ties keeping input order.
func Squarify(items []Item, width, height float64, opt Options) []Cell {
	if !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return nil
	}

	nodes := make([]Cell, 0, len(items))
	total := 0.0
	for i, it := range items {
		if !(it.Weight > 0) || math.IsInf(it.Weight, 0) {
			continue
		}
		nodes = append(nodes, Cell{ID: it.ID, Weight: it.Weight, Index: i})
		total += it.Weight
	}
	if len(nodes) == 0 {
		return nil
	}
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Weight > nodes[j].Weight })

	half := opt.Padding / 2
	bounds := shrink(Rect{X0: 0, Y0: 0, X1: width, Y1: height}, opt.Padding-half)
	squarify(nodes, total, bounds)

	for i := range nodes {
		r := shrink(nodes[i].Tile, half)
		if opt.Round {
			r = Rect{X0: math.Round(r.X0), Y0: math.Round(r.Y0), X1: math.Round(r.X1), Y1: math.Round(r.Y1)}
		}
		nodes[i].Rect = r
	}
	return nodes
}

func squarify(nodes []Cell, value float64, b Rect) {
	x0, y0, x1, y1 := b.X0, b.Y0, b.X1, b.Y1
	n := len(nodes)
	for i0 := 0; i0 < n; {
		dx, dy := x1-x0, y1-y0

		i1 := i0
		sum := nodes[i1].Weight
		i1++
		minV, maxV := sum, sum
		alpha := math.Max(dy/dx, dx/dy) / (value * Phi)
		beta := sum * sum * alpha
		minRatio := math.Max(maxV/beta, beta/minV)

		for ; i1 < n; i1++ {
			w := nodes[i1].Weight
			sum += w
			lo, hi := math.Min(minV, w), math.Max(maxV, w)
			beta = sum * sum * alpha
			ratio := math.Max(hi/beta, beta/lo)
			if ratio > minRatio {
				sum -= w
				break
			}
			minV, maxV, minRatio = lo, hi, ratio
		}

		row := nodes[i0:i1]
		last := i1 == n
		if dx < dy {
			// horizontal strip across the top
			ry1 := y1
			if !last {
				ry1 = y0 + dy*sum/value
			}
			dice(row, sum, x0, y0, x1, ry1)
			y0 = ry1
		} else {
			// vertical strip down the left
			rx1 := x1
			if !last {
				rx1 = x0 + dx*sum/value
			}
			slice(row, sum, x0, y0, rx1, y1)
			x0 = rx1
		}
		value -= sum
		i0 = i1
	}
}

// dice lays row out left to right inside the given band.
func dice(row []Cell, value, x0, y0, x1, y1 float64) {
	k := (x1 - x0) / value
	x := x0
	for i := range row {
		next := x + row[i].Weight*k
		if i == len(row)-1 {
			next = x1
		}
		row[i].Tile = Rect{X0: x, Y0: y0, X1: next, Y1: y1}
		x = next
	}
}

// slice lays row out top to bottom inside the given band.
func slice(row []Cell, value, x0, y0, x1, y1 float64) {
	k := (y1 - y0) / value
	y := y0
	for i := range row {
		next := y + row[i].Weight*k
		if i == len(row)-1 {
			next = y1
		}
		row[i].Tile = Rect{X0: x0, Y0: y, X1: x1, Y1: next}
		y = next
	}
}

func shrink(r Rect, p float64) Rect {
	out := Rect{X0: r.X0 + p, Y0: r.Y0 + p, X1: r.X1 - p, Y1: r.Y1 - p}
	if out.X1 < out.X0 {
		mid := (out.X0 + out.X1) / 2
		out.X0, out.X1 = mid, mid
	}
	if out.Y1 < out.Y0 {
		mid := (out.Y0 + out.Y1) / 2
		out.Y0, out.Y1 = mid, mid
	}
	return out
}

// HitTest returns the cell containing the content-space point, if any.
func HitTest(cells []Cell, x, y float64) (Cell, bool) {
	for _, c := range cells {
		if c.Rect.Contains(x, y) {
			return c, true
		}
	}
	return Cell{}, false
}
