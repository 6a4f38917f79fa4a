package overlay

import (
	"testing"

	"CryptoView/internal/domain/models"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"$64,250.50", "64250.5", true},
		{"64,200 - 64,500", "64200", true},
		{"Around 0.00012345 BTC", "0.00012345", true},
		{"Close below $1,180 on 4H", "1180", true},
		{"N/A", "0", false},
		{"", "0", false},
		{"0", "0", false},
	}
	for _, c := range cases {
		got, ok := ParseLevel(c.in)
		if ok != c.ok || got.String() != c.want {
			t.Fatalf("ParseLevel(%q) = %s %v, want %s %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

type fakeSurface struct {
	next  int
	lines map[int]PriceLine
}

func newFakeSurface() *fakeSurface { return &fakeSurface{lines: map[int]PriceLine{}} }

func (s *fakeSurface) CreatePriceLine(l PriceLine) any {
	s.next++
	s.lines[s.next] = l
	return s.next
}

func (s *fakeSurface) RemovePriceLine(h any) { delete(s.lines, h.(int)) }

func TestLevelControllerSync(t *testing.T) {
	r := &models.AnalysisResult{Setup: models.TradeSetup{
		EntryZone:   "$100 - $102",
		StopLoss:    "95.5",
		TakeProfits: []string{"110", "unknown", "$120", "130"},
	}}
	surface := newFakeSurface()
	c := NewLevelController(surface)

	lines := c.Sync(r, true)
	// entry, stop, TP1 and TP3; the 4th take profit is beyond the limit
	if len(lines) != 4 || len(surface.lines) != 4 || c.Drawn() != 4 {
		t.Fatalf("expected 4 lines, got %d drawn=%d surface=%d", len(lines), c.Drawn(), len(surface.lines))
	}
	if lines[3].Title != "TP3" || lines[3].Price.String() != "120" {
		t.Fatalf("unexpected last line %+v", lines[3])
	}

	c.Sync(r, true)
	if len(surface.lines) != 4 {
		t.Fatalf("resync should replace lines, have %d", len(surface.lines))
	}

	c.Sync(r, false)
	if len(surface.lines) != 0 || c.Drawn() != 0 {
		t.Fatalf("hidden overlays should leave no lines, have %d", len(surface.lines))
	}

	c.Sync(r, true)
	c.Clear()
	if len(surface.lines) != 0 {
		t.Fatalf("clear should remove all lines")
	}
}
