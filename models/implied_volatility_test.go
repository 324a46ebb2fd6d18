package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImpliedVolatilityRoundTrip(t *testing.T) {
	for _, vol := range []float64{0.1, 0.25, 0.5, 1.0, 1.5, 1.9} {
		for _, strike := range []float64{95, 100, 105} {
			for _, optionType := range []OptionType{Call, Put} {
				spec := OptionSpec{Spot: 100, Strike: strike, TimeToExpiry: 0.5, Volatility: vol, RiskFreeRate: 0.05, Type: optionType}
				g, err := PriceAndGreeks(spec)
				require.NoError(t, err)

				spec.Volatility = 0
				res, err := SolveImpliedVolatility(g.Price, spec, DefaultIVConfig())
				require.NoError(t, err)

				assert.True(t, res.Converged, "vol=%v strike=%v type=%v", vol, strike, optionType)
				assert.InDelta(t, vol, res.Volatility, 1e-3, "vol=%v strike=%v type=%v", vol, strike, optionType)
			}
		}
	}
}

func TestImpliedVolatility(t *testing.T) {
	t.Run("published at the money fixture", func(t *testing.T) {
		iv, err := ImpliedVolatility(10.4506, OptionSpec{Spot: 100, Strike: 100, TimeToExpiry: 1, RiskFreeRate: 0.05, Type: Call})
		require.NoError(t, err)
		assert.Equal(t, 0.2, iv)
	})

	t.Run("unreachable price returns the last estimate", func(t *testing.T) {
		// a call can never be worth more than the underlying
		res, err := SolveImpliedVolatility(150, OptionSpec{Spot: 100, Strike: 100, TimeToExpiry: 0.25, RiskFreeRate: 0.05, Type: Call}, DefaultIVConfig())
		require.NoError(t, err)
		assert.False(t, res.Converged)
		assert.Equal(t, DefaultIVMaxIterations, res.Iterations)
		assert.Equal(t, 5.0, res.Volatility)
	})

	t.Run("estimate stays inside the clamp", func(t *testing.T) {
		res, err := SolveImpliedVolatility(0, OptionSpec{Spot: 100, Strike: 100, TimeToExpiry: 0.25, RiskFreeRate: 0.05, Type: Call}, DefaultIVConfig())
		require.NoError(t, err)
		assert.False(t, res.Converged)
		assert.Equal(t, 0.01, res.Volatility)
	})

	t.Run("zero vega at expiry stops immediately", func(t *testing.T) {
		res, err := SolveImpliedVolatility(3, OptionSpec{Spot: 100, Strike: 100, TimeToExpiry: 0, RiskFreeRate: 0.05, Type: Put}, DefaultIVConfig())
		require.NoError(t, err)
		assert.Equal(t, IVResult{Volatility: 0.2, Iterations: 1}, res)
	})

	t.Run("iteration budget is honored", func(t *testing.T) {
		res, err := SolveImpliedVolatility(3, OptionSpec{Spot: 100, Strike: 100, TimeToExpiry: 0.25, RiskFreeRate: 0.05, Type: Call}, IVConfig{MaxIterations: 3, Tolerance: 1e-4})
		require.NoError(t, err)
		assert.True(t, res.Converged)
		assert.Equal(t, 3, res.Iterations)
		assert.InDelta(t, 0.1174, res.Volatility, 1e-4)

		res, err = SolveImpliedVolatility(3, OptionSpec{Spot: 100, Strike: 100, TimeToExpiry: 0.25, RiskFreeRate: 0.05, Type: Call}, IVConfig{MaxIterations: 1, Tolerance: 1e-4})
		require.NoError(t, err)
		assert.False(t, res.Converged)
		assert.Equal(t, 1, res.Iterations)
	})
}

func TestImpliedVolatilityDomainErrors(t *testing.T) {
	spec := OptionSpec{Spot: 100, Strike: 100, TimeToExpiry: 0.5, RiskFreeRate: 0.05, Type: Call}

	_, err := ImpliedVolatility(5, OptionSpec{Spot: 0, Strike: 100, TimeToExpiry: 0.5, Type: Call})
	assert.ErrorIs(t, err, ErrDomain)

	_, err = SolveImpliedVolatility(5, spec, IVConfig{MaxIterations: 0, Tolerance: 1e-4})
	assert.ErrorIs(t, err, ErrDomain)

	_, err = SolveImpliedVolatility(5, spec, IVConfig{MaxIterations: 10, Tolerance: 0})
	assert.ErrorIs(t, err, ErrDomain)

	spec.TimeToExpiry = -1
	_, err = ImpliedVolatility(5, spec)
	assert.ErrorIs(t, err, ErrDomain)
}
