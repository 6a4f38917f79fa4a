package gemini

import (
	"strconv"
	"strings"

	"CryptoView/internal/domain/models"
)

func money(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', -1, 64)
}

// Prompt builds the combined technical and news request for an asset snapshot.
func Prompt(a models.Asset) string {
	sym := strings.ToUpper(a.Symbol)
	var b strings.Builder
	b.WriteString("You are an elite Crypto Market Analyst specializing in both Smart Money Concepts (SMC) technical analysis AND Fundamental News Analysis.\n")
	b.WriteString("You must perform two distinct analyses for **" + a.Name + " (" + sym + ")** in a single execution.\n\n")

	b.WriteString("**Live Market Data:**\n")
	b.WriteString("- Price: " + money(a.CurrentPrice) + "\n")
	b.WriteString("- 24h Change: " + strconv.FormatFloat(a.PriceChangePercentage24h, 'f', 2, 64) + "%\n")
	b.WriteString("- ATH: " + money(a.ATH) + "\n")
	b.WriteString("- 24h Low/High: " + money(a.Low24h) + " / " + money(a.High24h) + "\n\n")

	b.WriteString("--- PART 1: SMC TECHNICAL ANALYSIS ---\n")
	b.WriteString("Focus strictly on Institutional Order Flow, Order Blocks (OB), Fair Value Gaps (FVG), and Liquidity Sweeps.\n")
	b.WriteString("1. Determine Market Phase & Bias.\n")
	b.WriteString("2. Identify specific price zones for Order Blocks and FVGs with exact low/high prices.\n")
	b.WriteString("3. Identify the current Dealing Range (Swing High to Swing Low) to define Premium vs Discount.\n")
	b.WriteString("4. Identify Setup: precise Entry Zone, hard Stop Loss, Take Profits (liquidity targets), R:R.\n")
	b.WriteString("5. List Confluences.\n\n")

	b.WriteString("--- PART 2: NEWS & FUNDAMENTAL ANALYSIS ---\n")
	b.WriteString("1. Find specific news for " + sym + " from the last 24h to 7 days.\n")
	b.WriteString("2. If no specific news exists, use general crypto market news and analyze correlation.\n")
	b.WriteString("3. Select exactly 3-5 distinct news items.\n")
	b.WriteString("4. For each, determine Title, Source, Time, Sentiment, and the impact on " + sym + "'s price.\n\n")

	b.WriteString("**OUTPUT:**\n")
	b.WriteString("Return a single JSON object containing both 'technicalAnalysis' and 'newsAnalysis' matching the schema.\n")
	return b.String()
}
