package gemini

// schema helpers in the generateContent responseSchema dialect.
func object(props map[string]any, required ...string) map[string]any {
	s := map[string]any{"type": "OBJECT", "properties": props}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func str(desc string, enum ...string) map[string]any {
	s := map[string]any{"type": "STRING"}
	if desc != "" {
		s["description"] = desc
	}
	if len(enum) > 0 {
		s["enum"] = enum
	}
	return s
}

func num(desc string) map[string]any {
	return map[string]any{"type": "NUMBER", "description": desc}
}

func array(items map[string]any) map[string]any {
	return map[string]any{"type": "ARRAY", "items": items}
}

func technicalSchema() map[string]any {
	return object(map[string]any{
		"marketContext": object(map[string]any{
			"phase":      str("", "Accumulation", "Expansion", "Distribution", "Consolidation"),
			"bias":       str("", "Bullish", "Bearish", "Range-bound"),
			"volatility": str("", "Low", "Normal", "High"),
		}, "phase", "bias", "volatility"),
		"technicalStructure": object(map[string]any{
			"marketStructure": str("Market Structure (MSS, BOS, ChoCH)"),
			"keyLevels":       str("Key Levels text description"),
			"liquidityFocus":  str("Where is the draw on liquidity?"),
			"zones": array(object(map[string]any{
				"type":        str("", "Order Block", "FVG", "Resistance", "Support"),
				"priceLow":    num("Lower price of the zone"),
				"priceHigh":   num("Higher price of the zone"),
				"description": str("Short label e.g. '1H Bullish OB'"),
			}, "type", "priceLow", "priceHigh", "description")),
			"dealingRange": object(map[string]any{
				"high": num("Recent Swing High Price"),
				"low":  num("Recent Swing Low Price"),
			}, "high", "low"),
		}, "marketStructure", "keyLevels", "liquidityFocus", "zones"),
		"setup": object(map[string]any{
			"direction":            str("", "Long", "Short", "Neutral"),
			"entryZone":            str("Specific price area"),
			"stopLoss":             str("Specific price"),
			"takeProfits":          array(str("")),
			"invalidationCriteria": str("Technical reason for SL"),
			"riskRewardRatio":      str("e.g., 1:3"),
			"confidenceLevel":      str("", "High", "Medium", "Low"),
		}, "direction", "entryZone", "stopLoss", "takeProfits", "invalidationCriteria", "riskRewardRatio", "confidenceLevel"),
		"confluences": array(str("")),
		"management": object(map[string]any{
			"partialTakeProfit":  str("When to take partials"),
			"breakEvenCondition": str("When to move SL to Entry"),
		}, "partialTakeProfit", "breakEvenCondition"),
		"summary": str("Brief executive summary of the plan"),
	}, "marketContext", "technicalStructure", "setup", "confluences", "management", "summary")
}

func newsSchema() map[string]any {
	return object(map[string]any{
		"globalSentiment": str("", "Bullish", "Bearish", "Neutral"),
		"newsItems": array(object(map[string]any{
			"title":             str(""),
			"source":            str(""),
			"timeAgo":           str(""),
			"impactLevel":       str("", "High", "Medium", "Low"),
			"impactDescription": str("Short sentence on why this moves price."),
			"sentiment":         str("", "Positive", "Negative", "Neutral"),
			"url":               str(""),
		}, "title", "source", "impactLevel", "impactDescription", "sentiment")),
	}, "globalSentiment", "newsItems")
}

// CombinedSchema is the response schema for one technical plus news analysis.
func CombinedSchema() map[string]any {
	return object(map[string]any{
		"technicalAnalysis": technicalSchema(),
		"newsAnalysis":      newsSchema(),
	}, "technicalAnalysis", "newsAnalysis")
}
