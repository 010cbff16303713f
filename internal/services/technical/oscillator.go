package technical

import "fmt"

// MACDValue is the latest MACD line and its signal line.
type MACDValue struct {
	Line   float64
	Signal float64
}

// MACDSeries returns the full fast-minus-slow EMA difference series.
func MACDSeries(closes []float64, fast, slow int) ([]float64, error) {
	if fast < 1 || slow <= fast {
		return nil, fmt.Errorf("macd spans fast=%d slow=%d: %w", fast, slow, ErrInvalidParameter)
	}
	if len(closes) < slow+1 {
		return nil, insufficient("macd", slow+1, len(closes))
	}
	fastEMA, err := EMASeries(closes, fast)
	if err != nil {
		return nil, err
	}
	slowEMA, err := EMASeries(closes, slow)
	if err != nil {
		return nil, err
	}
	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	return line, nil
}

// MACD computes the latest MACD line and the signal EMA of the whole line.
// It needs slow+1 closes.
func MACD(closes []float64, fast, slow, signal int) (MACDValue, error) {
	if signal < 1 {
		return MACDValue{}, fmt.Errorf("macd signal span %d: %w", signal, ErrInvalidParameter)
	}
	line, err := MACDSeries(closes, fast, slow)
	if err != nil {
		return MACDValue{}, err
	}
	sig, err := EMASeries(line, signal)
	if err != nil {
		return MACDValue{}, err
	}
	v := MACDValue{Line: line[len(line)-1], Signal: sig[len(sig)-1]}
	if !finite(v.Line) {
		return MACDValue{}, nonFinite("macd", v.Line)
	}
	if !finite(v.Signal) {
		return MACDValue{}, nonFinite("macd_signal", v.Signal)
	}
	return v, nil
}

// RSI computes the relative strength index over the last window deltas using
// simple means of gains and losses. It needs window+1 closes.
//
// With no losses the index is 100 when there was any gain and 50 on a flat window.
func RSI(closes []float64, window int) (float64, error) {
	if window < 1 {
		return 0, fmt.Errorf("rsi window %d: %w", window, ErrInvalidParameter)
	}
	if len(closes) < window+1 {
		return 0, insufficient(fmt.Sprintf("rsi(%d)", window), window+1, len(closes))
	}
	var gain, loss float64
	for i := len(closes) - window; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if !finite(gain) || !finite(loss) {
		return 0, nonFinite("rsi", gain-loss)
	}
	avgGain := gain / float64(window)
	avgLoss := loss / float64(window)

	switch {
	case avgLoss == 0 && avgGain > 0:
		return 100, nil
	case avgLoss == 0:
		return 50, nil
	}
	rsi := 100 - 100/(1+avgGain/avgLoss)
	if !finite(rsi) {
		return 0, nonFinite("rsi", rsi)
	}
	return rsi, nil
}
