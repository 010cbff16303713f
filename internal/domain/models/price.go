package models

import "time"

// PricePoint is one observation of a security: the close at Timestamp and the
// traded volume of that bar.
type PricePoint struct {
	Timestamp time.Time
	Close     float64
	Volume    uint64
}

// HistoryPoint is the chart-friendly projection of a PricePoint.
type HistoryPoint struct {
	Date  string  `json:"date"`
	Close float64 `json:"close"`
}

// HistoryDateLayout is the layout used for HistoryPoint.Date.
const HistoryDateLayout = "2006-01-02 15:04"
