package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatBars(n int, open, high, low, close float64) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = Bar{Open: open, High: high, Low: low, Close: close}
	}
	return bars
}

func TestHistoricalVolatility(t *testing.T) {
	annualize := math.Sqrt(TradingDaysPerYear)
	hl := math.Log(101.0 / 99.0)

	t.Run("close to close", func(t *testing.T) {
		bars := []Bar{
			{Open: 100, High: 100, Low: 100, Close: 100},
			{Open: 110, High: 110, Low: 110, Close: 110},
			{Open: 99, High: 99, Low: 99, Close: 99},
		}
		vol, err := HistoricalVolatility(CloseToClose, bars)
		require.NoError(t, err)
		assert.InDelta(t, 2.252523, vol, 1e-5)
	})

	t.Run("parkinson", func(t *testing.T) {
		vol, err := HistoricalVolatility(Parkinson, flatBars(10, 100, 101, 99, 100))
		require.NoError(t, err)
		assert.InDelta(t, hl/math.Sqrt(4*math.Ln2)*annualize, vol, 1e-12)
	})

	t.Run("garman klass without drift", func(t *testing.T) {
		vol, err := HistoricalVolatility(GarmanKlass, flatBars(10, 100, 101, 99, 100))
		require.NoError(t, err)
		assert.InDelta(t, math.Sqrt(0.5)*hl*annualize, vol, 1e-12)
	})

	t.Run("rogers satchell", func(t *testing.T) {
		vol, err := HistoricalVolatility(RogersSatchell, flatBars(5, 100, 101, 99, 100))
		require.NoError(t, err)
		daily := math.Log(1.01)*math.Log(1.01) + math.Log(0.99)*math.Log(0.99)
		assert.InDelta(t, math.Sqrt(daily)*annualize, vol, 1e-12)
	})

	t.Run("yang zhang without overnight gaps", func(t *testing.T) {
		vol, err := HistoricalVolatility(YangZhang, flatBars(6, 100, 101, 99, 100))
		require.NoError(t, err)
		k := 0.34 / (1.34 + 6.0/4.0)
		daily := math.Log(1.01)*math.Log(1.01) + math.Log(0.99)*math.Log(0.99)
		assert.InDelta(t, math.Sqrt((1-k)*daily)*annualize, vol, 1e-12)
	})

	t.Run("rejects short or broken history", func(t *testing.T) {
		_, err := HistoricalVolatility(CloseToClose, flatBars(2, 100, 101, 99, 100))
		assert.ErrorIs(t, err, ErrDomain)

		_, err = HistoricalVolatility(Parkinson, nil)
		assert.ErrorIs(t, err, ErrDomain)

		_, err = HistoricalVolatility(Parkinson, flatBars(3, 100, 98, 99, 100))
		assert.ErrorIs(t, err, ErrDomain)

		_, err = HistoricalVolatility("ewma", flatBars(3, 100, 101, 99, 100))
		assert.ErrorIs(t, err, ErrDomain)
	})

	t.Run("rejects open or close outside the high low range", func(t *testing.T) {
		for _, estimator := range []VolatilityEstimator{Parkinson, GarmanKlass, RogersSatchell, YangZhang} {
			_, err := HistoricalVolatility(estimator, flatBars(3, 105, 101, 99, 100))
			assert.ErrorIs(t, err, ErrDomain, "%s open above high", estimator)

			_, err = HistoricalVolatility(estimator, flatBars(3, 100, 101, 99, 98))
			assert.ErrorIs(t, err, ErrDomain, "%s close below low", estimator)
		}
	})
}
