package positions

import (
	"testing"

	"github.com/bcdannyboy/optanalytics/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyGreeks(t *testing.T) {
	asOf := testExpiry.AddDate(0, 0, -73) // 0.2 years

	legGreeks := func(optionType models.OptionType, strike float64) models.Greeks {
		g, err := models.PriceAndGreeks(models.OptionSpec{Spot: 100, Strike: strike, TimeToExpiry: 0.2, Volatility: 0.25, RiskFreeRate: 0.05, Type: optionType})
		require.NoError(t, err)
		return g
	}

	t.Run("single long call scales by the multiplier", func(t *testing.T) {
		net, err := StrategyGreeks(LongCall(100, 4, testExpiry), 100, 0.25, 0.05, asOf)
		require.NoError(t, err)

		g := legGreeks(models.Call, 100)
		assert.InDelta(t, g.Price*100, net.Price, 1e-9)
		assert.InDelta(t, g.Delta*100, net.Delta, 1e-9)
		assert.InDelta(t, g.Vega*100, net.Vega, 1e-9)
	})

	t.Run("straddle is close to delta neutral", func(t *testing.T) {
		net, err := StrategyGreeks(LongStraddle(100, 4, 3, testExpiry), 100, 0.25, 0.05, asOf)
		require.NoError(t, err)

		call, put := legGreeks(models.Call, 100), legGreeks(models.Put, 100)
		assert.InDelta(t, (call.Delta+put.Delta)*100, net.Delta, 1e-9)
		assert.InDelta(t, 2*call.Gamma*100, net.Gamma, 1e-9)
		assert.Greater(t, net.Vega, 0.0)
		assert.Less(t, net.Theta, 0.0)
	})

	t.Run("short legs flip the sign", func(t *testing.T) {
		net, err := StrategyGreeks(BullCallSpread(100, 5, 110, 2, testExpiry), 100, 0.25, 0.05, asOf)
		require.NoError(t, err)

		lower, upper := legGreeks(models.Call, 100), legGreeks(models.Call, 110)
		assert.InDelta(t, (lower.Delta-upper.Delta)*100, net.Delta, 1e-9)
		assert.InDelta(t, (lower.Price-upper.Price)*100, net.Price, 1e-9)
	})

	t.Run("stock contributes one delta per share", func(t *testing.T) {
		net, err := StrategyGreeks(CoveredCall(100, 105, 3, testExpiry), 100, 0.25, 0.05, asOf)
		require.NoError(t, err)

		call := legGreeks(models.Call, 105)
		assert.InDelta(t, 100-call.Delta*100, net.Delta, 1e-9)
		assert.InDelta(t, -call.Gamma*100, net.Gamma, 1e-9)
	})

	t.Run("expired legs fall back to intrinsic value", func(t *testing.T) {
		net, err := StrategyGreeks(LongCall(90, 4, testExpiry), 100, 0.25, 0.05, testExpiry.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.Equal(t, models.Greeks{Price: 1000, Delta: 100}, net)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := StrategyGreeks(nil, 100, 0.25, 0.05, asOf)
		assert.ErrorIs(t, err, models.ErrDomain)

		_, err = StrategyGreeks(LongCall(100, 4, testExpiry), 100, 0, 0.05, asOf)
		assert.ErrorIs(t, err, models.ErrDomain)

		_, err = StrategyGreeks([]models.Position{{Kind: models.Option, OptionType: models.Call, Strike: 100, Quantity: 1}}, 100, 0.25, 0.05, asOf)
		assert.ErrorIs(t, err, models.ErrDomain)
	})
}
