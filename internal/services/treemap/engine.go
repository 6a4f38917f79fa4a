package treemap

import (
	"hash/fnv"
	"math"
	"strconv"
	"sync"

	"CryptoView/internal/domain/models"
	"CryptoView/internal/services/features"
)

// Tile is a rendered treemap cell with the asset data it displays.
type Tile struct {
	Cell
	Symbol    string        `json:"symbol"`
	Name      string        `json:"name"`
	Price     float64       `json:"price"`
	Change24h float64       `json:"change_24h"`
	Tone      features.Tone `json:"tone"`
	Labels    Labels        `json:"labels"`
	Sparkline []Point       `json:"sparkline,omitempty"`
}

// Layout is the result of one engine run.
type Layout struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Tiles  []Tile  `json:"tiles"`
}

// Engine computes asset layouts and reuses the last result while neither the
// assets, their weights nor the viewport changed.
type Engine struct {
	opt Options

	mu      sync.Mutex
	lastKey uint64
	last    *Layout
	runs    int
}

func NewEngine(opt Options) *Engine {
	return &Engine{opt: opt}
}

// Layout returns tiles for assets weighted by market cap in a width x height viewport.
func (e *Engine) Layout(assets []models.Asset, width, height float64) Layout {
	key := fingerprint(assets, width, height)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last != nil && e.lastKey == key {
		return *e.last
	}

	out := build(assets, width, height, e.opt)
	e.last = &out
	e.lastKey = key
	e.runs++
	return out
}

// Runs is the number of layouts actually computed.
func (e *Engine) Runs() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runs
}

func build(assets []models.Asset, width, height float64, opt Options) Layout {
	out := Layout{Width: width, Height: height, Tiles: []Tile{}}
	items := make([]Item, len(assets))
	for i, a := range assets {
		items[i] = Item{ID: a.ID, Weight: a.MarketCap}
	}
	cells := Squarify(items, width, height, opt)
	for _, c := range cells {
		a := assets[c.Index]
		w, h := c.Rect.Width(), c.Rect.Height()
		prices := a.SparklinePrices()
		t := Tile{
			Cell:      c,
			Symbol:    a.Symbol,
			Name:      a.Name,
			Price:     a.CurrentPrice,
			Change24h: a.PriceChangePercentage24h,
			Tone:      features.ChangeTone(a.PriceChangePercentage24h),
			Labels:    LabelsFor(w, h, len(prices)),
		}
		if t.Labels.Sparkline {
			t.Sparkline = SparklinePoints(prices, w, h)
		}
		out.Tiles = append(out.Tiles, t)
	}
	return out
}

func fingerprint(assets []models.Asset, width, height float64) uint64 {
	h := fnv.New64a()
	buf := make([]byte, 0, 64)
	buf = strconv.AppendUint(buf, math.Float64bits(width), 16)
	buf = append(buf, '|')
	buf = strconv.AppendUint(buf, math.Float64bits(height), 16)
	_, _ = h.Write(buf)
	for _, a := range assets {
		buf = buf[:0]
		buf = append(buf, a.ID...)
		buf = append(buf, '|')
		buf = strconv.AppendUint(buf, math.Float64bits(a.MarketCap), 16)
		buf = append(buf, '|')
		buf = strconv.AppendUint(buf, math.Float64bits(a.CurrentPrice), 16)
		buf = append(buf, '|')
		buf = strconv.AppendUint(buf, math.Float64bits(a.PriceChangePercentage24h), 16)
		buf = append(buf, '|')
		for _, v := range a.SparklinePrices() {
			buf = strconv.AppendUint(buf, math.Float64bits(v), 16)
			buf = append(buf, ',')
		}
		buf = append(buf, ';')
		_, _ = h.Write(buf)
	}
	return h.Sum64()
}
