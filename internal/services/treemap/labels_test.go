package treemap

import "testing"

func TestLabelsFor(t *testing.T) {
	cases := []struct {
		name   string
		w, h   float64
		spark  int
		want   Labels
	}{
		{"hidden", 20, 40, 0, Labels{}},
		{"tiny", 45, 40, 168, Labels{Visible: true, Symbol: true, TextSize: TextXS}},
		{"small", 80, 70, 168, Labels{Visible: true, Symbol: true, Change: true, TextSize: TextSM}},
		{"medium", 130, 90, 168, Labels{Visible: true, Symbol: true, Change: true, Price: true, Sparkline: true, TextSize: TextMD}},
		{"medium short series", 130, 90, 5, Labels{Visible: true, Symbol: true, Change: true, Price: true, TextSize: TextMD}},
		{"large", 250, 160, 168, Labels{Visible: true, Symbol: true, Change: true, Price: true, Sparkline: true, TextSize: TextLG}},
		{"xl", 400, 300, 0, Labels{Visible: true, Symbol: true, Change: true, Price: true, TextSize: TextXL}},
		{"price without sparkline", 95, 65, 168, Labels{Visible: true, Symbol: true, Change: true, Price: true, TextSize: TextSM}},
	}
	for _, c := range cases {
		if got := LabelsFor(c.w, c.h, c.spark); got != c.want {
			t.Fatalf("%s: LabelsFor(%v,%v,%d) = %+v, want %+v", c.name, c.w, c.h, c.spark, got, c.want)
		}
	}
}

func TestSparklinePoints(t *testing.T) {
	pts := SparklinePoints([]float64{10, 20, 15}, 200, 100)
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	if pts[0].X != 0 || pts[2].X != 200 || pts[1].X != 100 {
		t.Fatalf("unexpected x spread %+v", pts)
	}
	if pts[0].Y != 100 || pts[1].Y != 60 || pts[2].Y != 80 {
		t.Fatalf("unexpected y mapping %+v", pts)
	}

	flat := SparklinePoints([]float64{5, 5, 5, 5}, 90, 60)
	for _, p := range flat {
		if p.Y != 60 {
			t.Fatalf("flat series should sit on the bottom edge, got %+v", p)
		}
	}
	if SparklinePoints([]float64{1}, 100, 100) != nil {
		t.Fatalf("single point should not produce a line")
	}
}
