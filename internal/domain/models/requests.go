package models

// Requests for the stock HTTP endpoints.

type TickerRequest struct {
	Ticker string `param:"ticker" json:"ticker" validate:"required,ticker"`
}

// HistoryRequest keeps Interval free-form: unknown intervals fall back to
// the one-month daily window.
type HistoryRequest struct {
	Ticker   string `param:"ticker" json:"ticker" validate:"required,ticker"`
	Interval string `query:"interval" json:"interval" default:"1m" validate:"max=8"`
}
