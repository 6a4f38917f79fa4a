package overlay

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"CryptoView/internal/domain/models"
)

// MaxTakeProfits is how many take-profit lines are drawn.
const MaxTakeProfits = 3

// Level kinds.
const (
	LevelEntry      = "entry"
	LevelStopLoss   = "stop_loss"
	LevelTakeProfit = "take_profit"
)

var numberRe = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)

// ParseLevel extracts the first decimal number from a free-text price
// expression such as "$64,250.5 - $64,900". Currency symbols and thousands
// separators are ignored.
func ParseLevel(expr string) (decimal.Decimal, bool) {
	cleaned := strings.NewReplacer(",", "", "$", "", " ", "").Replace(expr)
	m := numberRe.FindString(cleaned)
	if m == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(m)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// PriceLine is one horizontal reference line.
type PriceLine struct {
	Kind  string          `json:"kind"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
}

// LevelsFor parses the trade setup into lines. Unparseable expressions are omitted.
func LevelsFor(setup models.TradeSetup) []PriceLine {
	var out []PriceLine
	if p, ok := ParseLevel(setup.EntryZone); ok {
		out = append(out, PriceLine{Kind: LevelEntry, Title: "Entry", Price: p})
	}
	if p, ok := ParseLevel(setup.StopLoss); ok {
		out = append(out, PriceLine{Kind: LevelStopLoss, Title: "SL", Price: p})
	}
	for i, tp := range setup.TakeProfits {
		if i >= MaxTakeProfits {
			break
		}
		if p, ok := ParseLevel(tp); ok {
			out = append(out, PriceLine{Kind: LevelTakeProfit, Title: "TP" + strconv.Itoa(i+1), Price: p})
		}
	}
	return out
}

// PriceLineSurface is the chart series that owns drawn lines.
type PriceLineSurface interface {
	CreatePriceLine(l PriceLine) (handle any)
	RemovePriceLine(handle any)
}

// LevelController keeps the lines on a surface in step with the current analysis.
type LevelController struct {
	surface PriceLineSurface

	mu      sync.Mutex
	handles []any
}

func NewLevelController(surface PriceLineSurface) *LevelController {
	return &LevelController{surface: surface}
}

// Sync removes every drawn line and, when visible, redraws the setup levels of r.
// Call it whenever the analysis, the candle series or the visibility changes.
func (c *LevelController) Sync(r *models.AnalysisResult, visible bool) []PriceLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
	if !visible || r == nil {
		return nil
	}
	lines := LevelsFor(r.Setup)
	for _, l := range lines {
		c.handles = append(c.handles, c.surface.CreatePriceLine(l))
	}
	return lines
}

// Clear removes all lines.
func (c *LevelController) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Drawn is the number of lines currently on the surface.
func (c *LevelController) Drawn() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

func (c *LevelController) clearLocked() {
	for _, h := range c.handles {
		c.surface.RemovePriceLine(h)
	}
	c.handles = nil
}
