package features

import (
	"reflect"
	"testing"

	"CryptoView/internal/domain/models"
)

func TestNormalizeCandlesKeepsFirstAndSorts(t *testing.T) {
	raw := []models.Candle{
		{Time: 300, Close: 3},
		{Time: 100, Close: 1},
		{Time: 200, Close: 2},
		{Time: 100, Close: 99},
	}
	got := NormalizeCandles(raw)
	if len(got) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(got))
	}
	if got[0].Time != 100 || got[0].Close != 1 || got[2].Time != 300 {
		t.Fatalf("unexpected order %+v", got)
	}
}

func TestNormalizeCandlesIsIdempotent(t *testing.T) {
	raw := []models.Candle{{Time: 5}, {Time: 3}, {Time: 5, Close: 1}, {Time: 1}, {Time: 3, Open: 2}}
	once := NormalizeCandles(raw)
	twice := NormalizeCandles(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("normalize not idempotent: %+v vs %+v", once, twice)
	}
}

func TestSimpleMovingAverageLength(t *testing.T) {
	for _, n := range []int{0, 1, 19, 20, 21, 50} {
		candles := make([]models.Candle, n)
		for i := range candles {
			candles[i] = models.Candle{Time: int64(i), Close: float64(i + 1)}
		}
		got := SimpleMovingAverage(candles, MovingAverageWindow)
		want := n - 19
		if want < 0 {
			want = 0
		}
		if len(got) != want {
			t.Fatalf("n=%d: expected %d points, got %d", n, want, len(got))
		}
	}
}

func TestSimpleMovingAverageValues(t *testing.T) {
	candles := make([]models.Candle, 25)
	for i := range candles {
		candles[i] = models.Candle{Time: int64(i * 60), Close: float64(i + 1)}
	}
	got := SimpleMovingAverage(candles, MovingAverageWindow)
	// closes 1..20 average 10.5; each later point shifts by one
	if got[0].Value != 10.5 || got[0].Time != 19*60 {
		t.Fatalf("unexpected first point %+v", got[0])
	}
	if got[5].Value != 15.5 {
		t.Fatalf("unexpected last point %+v", got[5])
	}
}
