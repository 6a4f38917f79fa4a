package treemap

import (
	"math"
	"testing"
)

func rectOverlap(a, b Rect) float64 {
	w := math.Min(a.X1, b.X1) - math.Max(a.X0, b.X0)
	h := math.Min(a.Y1, b.Y1) - math.Max(a.Y0, b.Y0)
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

func TestSquarifyAreasProportional(t *testing.T) {
	items := []Item{
		{ID: "btc", Weight: 1200}, {ID: "eth", Weight: 400}, {ID: "usdt", Weight: 110},
		{ID: "bnb", Weight: 90}, {ID: "sol", Weight: 70}, {ID: "xrp", Weight: 30},
		{ID: "doge", Weight: 20}, {ID: "ada", Weight: 12},
	}
	total := 0.0
	for _, it := range items {
		total += it.Weight
	}
	const w, h = 800.0, 500.0
	cells := Squarify(items, w, h, DefaultOptions())
	if len(cells) != len(items) {
		t.Fatalf("expected %d cells, got %d", len(items), len(cells))
	}

	inner := (w - DefaultPadding) * (h - DefaultPadding)
	sum := 0.0
	for _, c := range cells {
		want := inner * c.Weight / total
		if math.Abs(c.Tile.Area()-want) > 1e-6*inner {
			t.Fatalf("%s area = %v, want %v", c.ID, c.Tile.Area(), want)
		}
		sum += c.Tile.Area()
	}
	if math.Abs(sum-inner) > 1e-6*inner {
		t.Fatalf("tiles cover %v, want %v", sum, inner)
	}
	for i := range cells {
		for j := i + 1; j < len(cells); j++ {
			if ov := rectOverlap(cells[i].Tile, cells[j].Tile); ov > 1e-6 {
				t.Fatalf("%s and %s overlap by %v", cells[i].ID, cells[j].ID, ov)
			}
			if ov := rectOverlap(cells[i].Rect, cells[j].Rect); ov > 0 {
				t.Fatalf("rendered %s and %s overlap by %v", cells[i].ID, cells[j].ID, ov)
			}
		}
	}
}

func TestSquarifyWithoutPaddingTilesViewport(t *testing.T) {
	items := []Item{{ID: "a", Weight: 3}, {ID: "b", Weight: 2}, {ID: "c", Weight: 1}}
	cells := Squarify(items, 300, 200, Options{})
	sum := 0.0
	for _, c := range cells {
		if c.Rect != c.Tile {
			t.Fatalf("unpadded unrounded rect should equal tile: %+v vs %+v", c.Rect, c.Tile)
		}
		if c.Rect.X0 < 0 || c.Rect.Y0 < 0 || c.Rect.X1 > 300+1e-9 || c.Rect.Y1 > 200+1e-9 {
			t.Fatalf("cell %s outside viewport: %+v", c.ID, c.Rect)
		}
		sum += c.Rect.Area()
	}
	if math.Abs(sum-60000) > 1e-6 {
		t.Fatalf("area sum = %v", sum)
	}
	if cells[0].Rect.Area() != 30000 {
		t.Fatalf("largest cell area = %v, want 30000", cells[0].Rect.Area())
	}
}

func TestSquarifyExcludesInvalidWeights(t *testing.T) {
	items := []Item{
		{ID: "ok", Weight: 10},
		{ID: "zero", Weight: 0},
		{ID: "neg", Weight: -4},
		{ID: "nan", Weight: math.NaN()},
		{ID: "inf", Weight: math.Inf(1)},
		{ID: "ok2", Weight: 5},
	}
	cells := Squarify(items, 100, 100, DefaultOptions())
	if len(cells) != 2 {
		t.Fatalf("expected 2 cells, got %d", len(cells))
	}
	if cells[0].ID != "ok" || cells[1].ID != "ok2" {
		t.Fatalf("unexpected order %s, %s", cells[0].ID, cells[1].ID)
	}
	if cells[1].Index != 5 {
		t.Fatalf("index should point into input, got %d", cells[1].Index)
	}
}

func TestSquarifyZeroViewport(t *testing.T) {
	items := []Item{{ID: "a", Weight: 1}}
	if cells := Squarify(items, 0, 400, DefaultOptions()); cells != nil {
		t.Fatalf("expected no layout for zero width, got %v", cells)
	}
	if cells := Squarify(items, 400, 0, DefaultOptions()); cells != nil {
		t.Fatalf("expected no layout for zero height, got %v", cells)
	}
	if cells := Squarify(nil, 400, 400, DefaultOptions()); cells != nil {
		t.Fatalf("expected no layout without items, got %v", cells)
	}
}

func TestSquarifyStableTies(t *testing.T) {
	items := []Item{{ID: "x", Weight: 5}, {ID: "y", Weight: 5}, {ID: "z", Weight: 5}}
	cells := Squarify(items, 90, 30, Options{})
	for i, want := range []string{"x", "y", "z"} {
		if cells[i].ID != want {
			t.Fatalf("position %d = %s, want %s", i, cells[i].ID, want)
		}
	}
}

func TestSquarifyRoundsRenderedRects(t *testing.T) {
	items := []Item{{ID: "a", Weight: 7}, {ID: "b", Weight: 3}, {ID: "c", Weight: 1}}
	for _, c := range Squarify(items, 333, 211, DefaultOptions()) {
		for _, v := range []float64{c.Rect.X0, c.Rect.Y0, c.Rect.X1, c.Rect.Y1} {
			if v != math.Round(v) {
				t.Fatalf("cell %s has unrounded edge %v", c.ID, v)
			}
		}
	}
}

func TestHitTest(t *testing.T) {
	cells := Squarify([]Item{{ID: "big", Weight: 3}, {ID: "small", Weight: 1}}, 400, 200, DefaultOptions())
	c, ok := HitTest(cells, 50, 100)
	if !ok || c.ID != "big" {
		t.Fatalf("expected big, got %v %v", c.ID, ok)
	}
	c, ok = HitTest(cells, 390, 100)
	if !ok || c.ID != "small" {
		t.Fatalf("expected small, got %v %v", c.ID, ok)
	}
	if _, ok := HitTest(cells, 0.5, 0.5); ok {
		t.Fatalf("outer padding should not resolve to a cell")
	}
}
