package models

import "time"

// Quote is the latest close of a ticker with its daily change and category.
type Quote struct {
	Ticker         string         `json:"ticker"`
	LatestClose    float64        `json:"latest_close"`
	ChangePct      float64        `json:"change_pct"`
	Recommendation Recommendation `json:"recommendation"`
}

// Fundamentals are valuation ratios reported by the market data provider.
// Any of them may be unknown.
type Fundamentals struct {
	Ticker       string   `json:"ticker"`
	PERatio      *float64 `json:"pe_ratio"`
	PBRatio      *float64 `json:"pb_ratio"`
	EVToEBITDA   *float64 `json:"ev_to_ebitda"`
	DebtToEquity *float64 `json:"debt_to_equity"`
	FreeCashFlow *float64 `json:"free_cash_flow"`
}

// OptionVolumes is the summed contract volume of the nearest expiry.
type OptionVolumes struct {
	Expiry time.Time
	Calls  uint64
	Puts   uint64
}

// ShortStats are the inputs of the short interest percentage.
type ShortStats struct {
	SharesShort float64
	FloatShares float64
}

// NewsItem is a single company headline.
type NewsItem struct {
	Headline string    `json:"headline"`
	Source   string    `json:"source"`
	URL      string    `json:"url"`
	Summary  string    `json:"summary,omitempty"`
	Image    string    `json:"image,omitempty"`
	Datetime time.Time `json:"datetime"`
}

// AnalystTrend is one period of analyst recommendation counts.
type AnalystTrend struct {
	Period     string `json:"period,omitempty"`
	StrongBuy  int    `json:"strongBuy"`
	Buy        int    `json:"buy"`
	Hold       int    `json:"hold"`
	Sell       int    `json:"sell"`
	StrongSell int    `json:"strongSell"`
}

// Sentiment combines options, short interest, analyst and news signals.
type Sentiment struct {
	Ticker           string            `json:"ticker"`
	PutCallRatio     *float64          `json:"put_call_ratio"`
	ShortInterestPct *float64          `json:"short_interest_pct"`
	AnalystSummary   *AnalystTrend     `json:"analyst_summary"`
	News             []NewsItem        `json:"news"`
	Errors           map[string]string `json:"errors,omitempty"`
}

// Analysis is a generated narrative for a ticker.
type Analysis struct {
	Ticker   string `json:"ticker"`
	Analysis string `json:"analysis"`
}

// SignalEvent is emitted whenever a quote or indicator set is computed.
type SignalEvent struct {
	Ticker     string        `json:"ticker"`
	Kind       string        `json:"kind"`
	Quote      *Quote        `json:"quote,omitempty"`
	Indicators *IndicatorSet `json:"indicators,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}
