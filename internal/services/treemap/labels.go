package treemap

// Text size tiers, largest first.
const (
	TextXL = "xl"
	TextLG = "lg"
	TextMD = "md"
	TextSM = "sm"
	TextXS = "xs"
)

// Labels says which content fits inside a cell of a given size.
type Labels struct {
	Visible   bool   `json:"visible"`
	Symbol    bool   `json:"symbol"`
	Change    bool   `json:"change"`
	Price     bool   `json:"price"`
	Sparkline bool   `json:"sparkline"`
	TextSize  string `json:"text_size"`
}

// LabelsFor decides what a w x h cell can show. sparkPoints is the length of
// the asset's 7-day series.
func LabelsFor(w, h float64, sparkPoints int) Labels {
	if w < 24 || h < 16 {
		return Labels{}
	}
	tiny := w < 50 || h < 35
	small := w < 90 || h < 60

	l := Labels{Visible: true, Symbol: true}
	if tiny {
		l.TextSize = TextXS
		return l
	}
	l.Change = true
	l.Price = !small
	l.Sparkline = sparkPoints > 5 && w > 100 && h > 80

	switch {
	case w > 300 && h > 200:
		l.TextSize = TextXL
	case w > 200 && h > 150:
		l.TextSize = TextLG
	case w > 120 && h > 80:
		l.TextSize = TextMD
	default:
		l.TextSize = TextSM
	}
	return l
}
