package probability

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/bcdannyboy/optanalytics/models"
	"github.com/bcdannyboy/optanalytics/positions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testExpiry = time.Date(2026, time.December, 18, 0, 0, 0, 0, time.UTC)
	testAsOf   = testExpiry.AddDate(0, 0, -146) // 0.4 years
)

func TestMonteCarloSimulation(t *testing.T) {
	t.Run("fairly priced call has no edge", func(t *testing.T) {
		g, err := models.PriceAndGreeks(models.OptionSpec{Spot: 100, Strike: 100, TimeToExpiry: 0.4, Volatility: 0.3, RiskFreeRate: 0.05, Type: models.Call})
		require.NoError(t, err)
		forwardPremium := g.Price * math.Exp(0.05*0.4)

		res, err := MonteCarloSimulation(context.Background(),
			positions.LongCall(100, forwardPremium, testExpiry),
			SimulationInput{Spot: 100, Volatility: 0.3, RiskFreeRate: 0.05, AsOf: testAsOf},
			SimulationConfig{Paths: 200000, Workers: 8, Seed: 42},
		)
		require.NoError(t, err)

		assert.InDelta(t, 0.4, res.Horizon, 1e-12)
		assert.Equal(t, 200000, res.Paths)
		assert.InDelta(t, 0, res.ExpectedPL, 15)
		assert.Greater(t, res.StdDevPL, 0.0)
		// a long option never loses more than its premium
		assert.InDelta(t, forwardPremium*100, res.VaR99, 1e-6)
		assert.InDelta(t, forwardPremium*100, res.ExpectedShortfall95, 1e-6)
		assert.Greater(t, res.ProbabilityOfProfit, 0.2)
		assert.Less(t, res.ProbabilityOfProfit, 0.5)
	})

	t.Run("straddle without movement always loses", func(t *testing.T) {
		res, err := MonteCarloSimulation(context.Background(),
			positions.LongStraddle(100, 3, 2, testExpiry),
			SimulationInput{Spot: 100, Volatility: 0.0001, AsOf: testAsOf},
			SimulationConfig{Paths: 1000, Workers: 3, Seed: 7},
		)
		require.NoError(t, err)

		assert.Equal(t, 0.0, res.ProbabilityOfProfit)
		assert.InDelta(t, -500, res.ExpectedPL, 1)
		assert.InDelta(t, 500, res.VaR95, 1)
	})

	t.Run("reproducible for a seed", func(t *testing.T) {
		legs := positions.BullCallSpread(100, 5, 110, 2, testExpiry)
		in := SimulationInput{Spot: 100, Volatility: 0.25, RiskFreeRate: 0.03, AsOf: testAsOf}
		cfg := SimulationConfig{Paths: 5000, Workers: 4, Seed: 99}

		a, err := MonteCarloSimulation(context.Background(), legs, in, cfg)
		require.NoError(t, err)
		b, err := MonteCarloSimulation(context.Background(), legs, in, cfg)
		require.NoError(t, err)
		assert.Equal(t, a, b)

		// a debit spread can lose at most its debit
		assert.LessOrEqual(t, a.VaR99, 300.0+1e-9)
	})

	t.Run("expired horizon pins the underlying at spot", func(t *testing.T) {
		res, err := MonteCarloSimulation(context.Background(),
			positions.LongCall(90, 4, testExpiry),
			SimulationInput{Spot: 100, Volatility: 0.3, AsOf: testExpiry.AddDate(0, 0, 1)},
			SimulationConfig{Paths: 10, Workers: 2, Seed: 1},
		)
		require.NoError(t, err)
		assert.Equal(t, 0.0, res.Horizon)
		assert.InDelta(t, 600, res.ExpectedPL, 1e-9)
		assert.Equal(t, 1.0, res.ProbabilityOfProfit)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := MonteCarloSimulation(ctx, positions.LongCall(100, 4, testExpiry),
			SimulationInput{Spot: 100, Volatility: 0.3, AsOf: testAsOf}, DefaultSimulationConfig())
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("domain errors", func(t *testing.T) {
		in := SimulationInput{Spot: 100, Volatility: 0.3, AsOf: testAsOf}
		cfg := DefaultSimulationConfig()

		_, err := MonteCarloSimulation(context.Background(), nil, in, cfg)
		assert.ErrorIs(t, err, models.ErrDomain)

		_, err = MonteCarloSimulation(context.Background(), []models.Position{{Kind: models.Stock, Premium: 100, Quantity: 100}}, in, cfg)
		assert.ErrorIs(t, err, models.ErrDomain)

		_, err = MonteCarloSimulation(context.Background(), positions.LongCall(100, 4, testExpiry), SimulationInput{Spot: 100, AsOf: testAsOf}, cfg)
		assert.ErrorIs(t, err, models.ErrDomain)

		_, err = MonteCarloSimulation(context.Background(), positions.LongCall(100, 4, testExpiry), in, SimulationConfig{Paths: 0, Workers: 1})
		assert.ErrorIs(t, err, models.ErrDomain)
	})
}

func TestValueAtRisk(t *testing.T) {
	samples := make([]float64, 100)
	for i := range samples {
		if i < 10 {
			samples[i] = -200
		} else {
			samples[i] = 100
		}
	}
	// order must not matter
	samples[0], samples[99] = samples[99], samples[0]

	v, err := CalculateVaR(samples, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 200.0, v)

	es, err := ExpectedShortfall(samples, 0.95)
	require.NoError(t, err)
	assert.Equal(t, 200.0, es)

	v, err = CalculateVaR(samples, 0.8)
	require.NoError(t, err)
	assert.Equal(t, -100.0, v)

	assert.Equal(t, 100.0, samples[0], "input is not reordered")

	_, err = CalculateVaR(nil, 0.95)
	assert.ErrorIs(t, err, models.ErrDomain)
	_, err = ExpectedShortfall(samples, 1)
	assert.ErrorIs(t, err, models.ErrDomain)
}
