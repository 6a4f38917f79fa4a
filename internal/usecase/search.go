package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"CryptoView/internal/clock"
	"CryptoView/internal/domain/models"
	domrepo "CryptoView/internal/domain/repository"
	applogger "CryptoView/pkg/logger"
)

const (
	DefaultQuietPeriod = 500 * time.Millisecond
	DefaultMinQuery    = 2
	DefaultMaxResults  = 8
)

// SearchState is the debouncer state for one input stream.
type SearchState string

const (
	SearchIdle     SearchState = "idle"
	SearchPending  SearchState = "pending"
	SearchFetching SearchState = "fetching"
)

// SearchResult is what an input stream currently shows.
type SearchResult struct {
	Query   string                   `json:"query"`
	State   SearchState              `json:"state"`
	Results []models.SearchCandidate `json:"results"`
}

// SearchOptions tunes a debouncer.
type SearchOptions struct {
	QuietPeriod time.Duration
	MinQuery    int
	MaxResults  int
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.QuietPeriod <= 0 {
		o.QuietPeriod = DefaultQuietPeriod
	}
	if o.MinQuery <= 0 {
		o.MinQuery = DefaultMinQuery
	}
	if o.MaxResults <= 0 {
		o.MaxResults = DefaultMaxResults
	}
	return o
}

// SearchDebouncer issues one search per burst of keystrokes. Only the latest
// keystroke's result is ever applied.
type SearchDebouncer struct {
	market domrepo.MarketData
	clk    clock.Clock
	opt    SearchOptions
	logger *applogger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	gen      uint64
	timer    clock.Timer
	query    string
	existing map[string]struct{}
	state    SearchState
	results  []models.SearchCandidate
	closed   bool
	onResult func(SearchResult)
	requests int
}

func NewSearchDebouncer(market domrepo.MarketData, clk clock.Clock, opt SearchOptions, logger *applogger.Logger) *SearchDebouncer {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = applogger.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchDebouncer{
		market:  market,
		clk:     clk,
		opt:     opt.withDefaults(),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		state:   SearchIdle,
		results: []models.SearchCandidate{},
	}
}

// OnResult registers a callback invoked whenever results are applied or cleared.
func (d *SearchDebouncer) OnResult(fn func(SearchResult)) {
	d.mu.Lock()
	d.onResult = fn
	d.mu.Unlock()
}

// Input handles one keystroke. existing lists identifiers to leave out of the results.
func (d *SearchDebouncer) Input(query string, existing []string) {
	q := strings.TrimSpace(query)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.query = q
	d.existing = make(map[string]struct{}, len(existing))
	for _, id := range existing {
		d.existing[id] = struct{}{}
	}

	if len([]rune(q)) < d.opt.MinQuery {
		d.state = SearchIdle
		d.results = []models.SearchCandidate{}
		res, fn := d.resultLocked(), d.onResult
		d.mu.Unlock()
		if fn != nil {
			fn(res)
		}
		return
	}
	d.state = SearchPending
	d.timer = d.clk.AfterFunc(d.opt.QuietPeriod, func() { d.fire(gen) })
	d.mu.Unlock()
}

func (d *SearchDebouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.state = SearchFetching
	d.requests++
	q := d.query
	d.mu.Unlock()

	found := d.market.Search(d.ctx, q)

	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		d.logger.Debug("search result discarded", applogger.String("query", q))
		return
	}
	d.results = filterCandidates(found, d.existing, d.opt.MaxResults)
	d.state = SearchIdle
	res, fn := d.resultLocked(), d.onResult
	d.mu.Unlock()
	if fn != nil {
		fn(res)
	}
}

// Result returns the current state of the input stream.
func (d *SearchDebouncer) Result() SearchResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.resultLocked()
}

func (d *SearchDebouncer) resultLocked() SearchResult {
	return SearchResult{
		Query:   d.query,
		State:   d.state,
		Results: append([]models.SearchCandidate{}, d.results...),
	}
}

// Requests is the number of searches issued so far.
func (d *SearchDebouncer) Requests() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests
}

// Close cancels any pending timer and discards in-flight results.
func (d *SearchDebouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.closed = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.state = SearchIdle
	d.cancel()
}

// SearchOnce runs an undebounced filtered search.
func SearchOnce(ctx context.Context, market domrepo.MarketData, query string, existing []string, opt SearchOptions) []models.SearchCandidate {
	opt = opt.withDefaults()
	q := strings.TrimSpace(query)
	if len([]rune(q)) < opt.MinQuery {
		return []models.SearchCandidate{}
	}
	skip := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		skip[id] = struct{}{}
	}
	return filterCandidates(market.Search(ctx, q), skip, opt.MaxResults)
}

// filterCandidates drops known identifiers and keeps the first max hits in upstream order.
func filterCandidates(found []models.SearchCandidate, skip map[string]struct{}, max int) []models.SearchCandidate {
	out := make([]models.SearchCandidate, 0, max)
	for _, c := range found {
		if _, ok := skip[c.ID]; ok {
			continue
		}
		out = append(out, c)
		if len(out) == max {
			break
		}
	}
	return out
}
