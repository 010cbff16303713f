package models

// IndicatorSet holds the latest value of every indicator computed for a series.
// A nil field means the indicator could not be computed; it is never zero-filled.
type IndicatorSet struct {
	SMA          *float64 `json:"sma,omitempty"`
	EMA          *float64 `json:"ema,omitempty"`
	MACD         *float64 `json:"macd,omitempty"`
	MACDSignal   *float64 `json:"macd_signal,omitempty"`
	RSI          *float64 `json:"rsi,omitempty"`
	LatestVolume *uint64  `json:"volume,omitempty"`
}

// Empty reports whether no indicator is present.
func (s IndicatorSet) Empty() bool {
	return s.SMA == nil && s.EMA == nil && s.MACD == nil && s.MACDSignal == nil && s.RSI == nil && s.LatestVolume == nil
}
