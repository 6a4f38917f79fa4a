package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"CryptoView/internal/clock"
	"CryptoView/internal/domain/models"
)

func candidates(n int) []models.SearchCandidate {
	out := make([]models.SearchCandidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.SearchCandidate{ID: fmt.Sprintf("hit%d", i), Name: fmt.Sprintf("Hit %d", i)})
	}
	return out
}

func TestDebounceIssuesOneRequestPerBurst(t *testing.T) {
	m := newFakeMarket()
	m.found = candidates(3)
	clk := clock.NewManual(testStart)
	d := NewSearchDebouncer(m, clk, SearchOptions{}, nil)
	defer d.Close()

	for _, q := range []string{"b", "bi", "bit", "bitc", "bitco"} {
		d.Input(q, nil)
		clk.Advance(200 * time.Millisecond)
	}
	if d.Requests() != 0 {
		t.Fatalf("no request expected while typing, got %d", d.Requests())
	}
	clk.Advance(300 * time.Millisecond)
	if d.Requests() != 1 {
		t.Fatalf("expected exactly one request, got %d", d.Requests())
	}
	if len(m.queries) != 1 || m.queries[0] != "bitco" {
		t.Fatalf("expected final query searched, got %v", m.queries)
	}
	res := d.Result()
	if res.State != SearchIdle || len(res.Results) != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDebounceShortQueryClearsImmediately(t *testing.T) {
	m := newFakeMarket()
	m.found = candidates(2)
	clk := clock.NewManual(testStart)
	d := NewSearchDebouncer(m, clk, SearchOptions{}, nil)
	defer d.Close()

	d.Input("eth", nil)
	clk.Advance(time.Second)
	if len(d.Result().Results) != 2 {
		t.Fatalf("expected results for eth")
	}

	var cleared bool
	d.OnResult(func(r SearchResult) { cleared = len(r.Results) == 0 })
	d.Input("e", nil)
	if !cleared || len(d.Result().Results) != 0 {
		t.Fatalf("short query should clear results without waiting")
	}
	clk.Advance(time.Second)
	if d.Requests() != 1 {
		t.Fatalf("short query must not search, got %d requests", d.Requests())
	}
}

func TestDebounceFiltersExistingAndCaps(t *testing.T) {
	m := newFakeMarket()
	m.found = candidates(12)
	clk := clock.NewManual(testStart)
	d := NewSearchDebouncer(m, clk, SearchOptions{}, nil)
	defer d.Close()

	d.Input("hit", []string{"hit0", "hit2"})
	clk.Advance(DefaultQuietPeriod)
	res := d.Result().Results
	if len(res) != DefaultMaxResults {
		t.Fatalf("expected %d results, got %d", DefaultMaxResults, len(res))
	}
	for _, c := range res {
		if c.ID == "hit0" || c.ID == "hit2" {
			t.Fatalf("existing id %s not filtered", c.ID)
		}
	}
	if res[0].ID != "hit1" {
		t.Fatalf("upstream order not kept, first is %s", res[0].ID)
	}
}

func TestDebounceDiscardsSupersededResponse(t *testing.T) {
	m := newFakeMarket()
	m.found = candidates(4)
	clk := clock.NewManual(testStart)
	d := NewSearchDebouncer(m, clk, SearchOptions{}, nil)
	defer d.Close()

	m.onSearch = func(q string) {
		if q == "sol" {
			// a keystroke lands while the request is in flight
			d.Input("sola", nil)
		}
	}
	d.Input("sol", nil)
	clk.Advance(DefaultQuietPeriod)

	res := d.Result()
	if res.Query != "sola" || res.State != SearchPending || len(res.Results) != 0 {
		t.Fatalf("stale response applied: %+v", res)
	}
	clk.Advance(DefaultQuietPeriod)
	if d.Result().Query != "sola" || len(d.Result().Results) != 4 {
		t.Fatalf("latest query not applied: %+v", d.Result())
	}
}

func TestDebounceCloseCancelsPendingTimer(t *testing.T) {
	m := newFakeMarket()
	clk := clock.NewManual(testStart)
	d := NewSearchDebouncer(m, clk, SearchOptions{}, nil)

	d.Input("doge", nil)
	d.Close()
	if clk.Pending() != 0 {
		t.Fatalf("pending timer left after close")
	}
	clk.Advance(time.Second)
	if m.count("search") != 0 {
		t.Fatalf("search issued after teardown")
	}
	d.Input("dogecoin", nil)
	clk.Advance(time.Second)
	if m.count("search") != 0 {
		t.Fatalf("closed debouncer accepted input")
	}
}

func TestSearchOnce(t *testing.T) {
	m := newFakeMarket()
	m.found = candidates(3)
	ctx := context.Background()

	if got := SearchOnce(ctx, m, " a ", nil, SearchOptions{}); len(got) != 0 || m.count("search") != 0 {
		t.Fatalf("short query should not search")
	}
	got := SearchOnce(ctx, m, "hit", []string{"hit1"}, SearchOptions{MaxResults: 1})
	if len(got) != 1 || got[0].ID != "hit0" {
		t.Fatalf("unexpected %v", got)
	}
}

func TestSearchSessionsLifecycle(t *testing.T) {
	m := newFakeMarket()
	m.found = candidates(2)
	clk := clock.NewManual(testStart)
	s := NewSearchSessions(m, clk, SearchOptions{}, time.Minute)

	id := s.Create()
	res, err := s.Input(id, "btc", nil)
	if err != nil || res.State != SearchPending {
		t.Fatalf("Input: %+v %v", res, err)
	}
	clk.Advance(DefaultQuietPeriod)
	res, err = s.Result(id)
	if err != nil || len(res.Results) != 2 {
		t.Fatalf("Result: %+v %v", res, err)
	}

	other := s.Create()
	clk.Advance(45 * time.Second)
	_, _ = s.Result(id)
	clk.Advance(30 * time.Second)
	if n := s.Sweep(); n != 1 {
		t.Fatalf("expected one idle session swept, got %d", n)
	}
	if _, err := s.Result(other); err != ErrSessionNotFound {
		t.Fatalf("swept session still reachable: %v", err)
	}
	if err := s.Close(id); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(id); err != ErrSessionNotFound {
		t.Fatalf("double close should report not found, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("sessions left open: %d", s.Len())
	}
}
