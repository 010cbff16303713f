package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockLens/internal/domain/models"
	"StockLens/internal/services/technical"
)

func TestPutCallRatio(t *testing.T) {
	r, err := PutCallRatio(models.OptionVolumes{Calls: 300, Puts: 200})
	require.NoError(t, err)
	assert.Equal(t, 0.67, r)

	_, err = PutCallRatio(models.OptionVolumes{Calls: 0, Puts: 10})
	assert.ErrorIs(t, err, technical.ErrDegenerateInput)
}

func TestShortInterestPct(t *testing.T) {
	pct, err := ShortInterestPct(models.ShortStats{SharesShort: 1_234_567, FloatShares: 50_000_000})
	require.NoError(t, err)
	assert.Equal(t, 2.47, pct)

	_, err = ShortInterestPct(models.ShortStats{SharesShort: 10})
	assert.ErrorIs(t, err, technical.ErrDegenerateInput)

	_, err = ShortInterestPct(models.ShortStats{SharesShort: math.MaxFloat64, FloatShares: 1e-300})
	assert.ErrorIs(t, err, technical.ErrNonFiniteResult)
}

func TestOptionalRatio(t *testing.T) {
	v, err := OptionalRatio(PutCallRatio(models.OptionVolumes{}))
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = OptionalRatio(PutCallRatio(models.OptionVolumes{Calls: 4, Puts: 1}))
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 0.25, *v)
}
