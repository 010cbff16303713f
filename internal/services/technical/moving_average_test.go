package technical

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// linear returns a, a+b, a+2b, ...
func linear(n int, a, b float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = a + b*float64(i)
	}
	return out
}

func TestSMA(t *testing.T) {
	v, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assert.InDelta(t, 4.0, v, tol)

	v, err = SMA(linear(20, 1, 1), 20)
	require.NoError(t, err)
	assert.InDelta(t, 10.5, v, tol)

}

func TestSMA_ConstantSeriesIsExact(t *testing.T) {
	for _, c := range []float64{0.1, 0.7, 7.25, 123.45, 1e-7} {
		for _, w := range []int{1, 3, 20, 26, 60} {
			v, err := SMA(constant(60, c), w)
			require.NoError(t, err)
			assert.Equal(t, c, v, "v=%v w=%d", c, w)
		}
	}
}

func TestSMA_InsufficientData(t *testing.T) {
	for n := 0; n < 20; n++ {
		_, err := SMA(linear(n, 1, 1), 20)
		var ide *InsufficientDataError
		require.True(t, errors.As(err, &ide), "n=%d", n)
		assert.Equal(t, 20, ide.Need)
		assert.Equal(t, n, ide.Have)
	}
}

func TestSMA_InvalidWindow(t *testing.T) {
	_, err := SMA([]float64{1}, 0)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSMA_LargeValuesDoNotOverflow(t *testing.T) {
	v, err := SMA([]float64{math.MaxFloat64, math.MaxFloat64}, 2)
	require.NoError(t, err)
	assert.Equal(t, math.MaxFloat64, v)

	_, err = SMA([]float64{1, math.Inf(1)}, 2)
	assert.ErrorIs(t, err, ErrNonFiniteResult)
}

func TestEMASeries_Recurrence(t *testing.T) {
	got, err := EMASeries([]float64{1, 2, 3}, 3)
	require.NoError(t, err)
	// alpha = 0.5
	assert.InDeltaSlice(t, []float64{1, 1.5, 2.25}, got, tol)
}

func TestEMASeries_ClosedFormOnLinearInput(t *testing.T) {
	// For c_t = a + b*t the adjust-free EMA lags by b*(s-1)/2*(1-(1-α)^t).
	const span = 12
	closes := linear(60, 10, 0.5)
	got, err := EMASeries(closes, span)
	require.NoError(t, err)

	alpha := 2.0 / (span + 1)
	for i, c := range closes {
		want := c - 0.5*(span-1)/2*(1-math.Pow(1-alpha, float64(i)))
		assert.InDelta(t, want, got[i], tol, "t=%d", i)
	}
}

func TestEMA_ConstantSeries(t *testing.T) {
	for _, c := range []float64{0.1, 0.7, 123.45} {
		for _, span := range []int{5, 9, 12, 20, 26} {
			series, err := EMASeries(constant(40, c), span)
			require.NoError(t, err)
			for i, got := range series {
				require.Equal(t, c, got, "v=%v span=%d t=%d", c, span, i)
			}

			v, err := EMA(constant(40, c), span)
			require.NoError(t, err)
			assert.Equal(t, c, v)
		}
	}
}

func TestEMA_InsufficientData(t *testing.T) {
	_, err := EMA(linear(19, 1, 1), 20)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = EMASeries(nil, 5)
	assert.ErrorIs(t, err, ErrInsufficientData)
}
