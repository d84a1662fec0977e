package report

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders a Summary as a Markdown string.
func RenderMarkdown(s *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Sale Report\n\n")
	sb.WriteString(fmt.Sprintf("Sale: `%s`\n\n", s.Sale))

	sb.WriteString("## Outcome\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Tokens sold | %d |\n", s.TokensSold))
	sb.WriteString(fmt.Sprintf("| Supply offered | %d |\n", s.MaxTokens))
	sb.WriteString(fmt.Sprintf("| Sell-through | %.2f%% |\n", s.SellThroughPct()))
	sb.WriteString(fmt.Sprintf("| Native raised | %d |\n", s.TotalRaised))
	sb.WriteString(fmt.Sprintf("| Average price | %.2f |\n", s.AveragePrice()))
	sb.WriteString(fmt.Sprintf("| Purchases | %d |\n", s.Purchases))
	sb.WriteString(fmt.Sprintf("| Unique buyers | %d |\n", len(s.Buyers)))
	sb.WriteString("\n")

	sb.WriteString("## Buyer Distribution\n\n")
	if len(s.Buyers) == 0 {
		sb.WriteString("No purchases recorded.\n\n")
	} else {
		sb.WriteString("| # | Buyer | Tokens | Native Paid | Purchases | Share |\n")
		sb.WriteString("|---|-------|--------|-------------|-----------|-------|\n")
		for i, b := range s.Buyers {
			share := 0.0
			if s.TokensSold > 0 {
				share = float64(b.Tokens) / float64(s.TokensSold) * 100
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %d | %d | %d | %.2f%% |\n",
				i+1, b.Buyer, b.Tokens, b.Native, b.Purchases, share))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Lifecycle\n\n")
	sb.WriteString(fmt.Sprintf("- Window: %d .. %d\n", s.StartTime, s.EndTime))
	sb.WriteString(fmt.Sprintf("- Parameter updates: %d\n", s.ParamsUpdates))
	sb.WriteString(fmt.Sprintf("- Pause toggles: %d\n", s.PauseToggles))
	if s.Ended {
		sb.WriteString("- Ended by authority\n")
	} else {
		sb.WriteString("- Ran to natural expiry\n")
	}
	sb.WriteString(fmt.Sprintf("- Unsold tokens withdrawn: %d\n", s.Withdrawn))

	return sb.String()
}
