package narrative

import (
	"strconv"
	"strings"

	"StockLens/internal/domain/service"
)

// BuildPrompt renders the analyst prompt for in. Unknown values print as "n/a".
func BuildPrompt(in service.AnalysisInput) string {
	f := in.Fundamentals
	var b strings.Builder
	b.WriteString("You are a financial analyst. Given the following data, provide a short summary of the stock's outlook for ")
	b.WriteString(in.Ticker)
	b.WriteString(":\n")
	line(&b, "PE Ratio", f.PERatio)
	line(&b, "PB Ratio", f.PBRatio)
	line(&b, "EV/EBITDA", f.EVToEBITDA)
	line(&b, "Debt to Equity", f.DebtToEquity)
	line(&b, "Free Cash Flow", f.FreeCashFlow)
	line(&b, "RSI", in.Indicators.RSI)
	line(&b, "MACD", in.Indicators.MACD)
	b.WriteString("\nEvaluate valuation, risk, and momentum. Provide 2-3 sentences.\n")
	b.WriteString("End with one of: Strong Buy, Buy, Sell, Strong Sell.\n")
	return b.String()
}

func line(b *strings.Builder, label string, v *float64) {
	b.WriteString("- ")
	b.WriteString(label)
	b.WriteString(": ")
	if v == nil {
		b.WriteString("n/a")
	} else {
		b.WriteString(strconv.FormatFloat(*v, 'f', -1, 64))
	}
	b.WriteByte('\n')
}
