package tools

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bcdannyboy/optanalytics/models"
	"github.com/bcdannyboy/optanalytics/positions"
	"github.com/bcdannyboy/optanalytics/probability"
	"github.com/bcdannyboy/optanalytics/tradier"
)

func (d *Dispatcher) rate(r *float64) float64 {
	if r != nil {
		return *r
	}
	return d.cfg.RiskFreeRate
}

func (d *Dispatcher) asOf(t Date) time.Time {
	if !t.IsZero() {
		return t.Time
	}
	return d.now()
}

func (d *Dispatcher) priceOption(req PriceOptionRequest) (models.Greeks, error) {
	g, err := models.PriceAndGreeks(models.OptionSpec{
		Spot:         req.Spot,
		Strike:       req.Strike,
		TimeToExpiry: req.TimeToExpiry,
		Volatility:   req.Volatility,
		RiskFreeRate: d.rate(req.RiskFreeRate),
		Type:         req.OptionType,
	})
	if err != nil {
		return models.Greeks{}, err
	}
	return g.Rounded(), nil
}

func (d *Dispatcher) impliedVolatility(log *logrus.Entry, req ImpliedVolatilityRequest) (models.IVResult, error) {
	res, err := models.SolveImpliedVolatility(req.MarketPrice, models.OptionSpec{
		Spot:         req.Spot,
		Strike:       req.Strike,
		TimeToExpiry: req.TimeToExpiry,
		RiskFreeRate: d.rate(req.RiskFreeRate),
		Type:         req.OptionType,
	}, d.cfg.IVSolver())
	if err != nil {
		return models.IVResult{}, err
	}
	if !res.Converged {
		log.WithFields(logrus.Fields{
			"marketPrice": req.MarketPrice,
			"volatility":  res.Volatility,
			"iterations":  res.Iterations,
		}).Warn("implied volatility did not converge")
	}
	return res, nil
}

type StrategyOutput struct {
	Strategy   positions.StrategyName `json:"strategy,omitempty"`
	Positions  []models.Position      `json:"positions"`
	NetPremium float64                `json:"netPremium"`
}

func (d *Dispatcher) buildStrategy(req StrategyRequest) (StrategyOutput, error) {
	legs, err := req.Positions()
	if err != nil {
		return StrategyOutput{}, err
	}
	return StrategyOutput{Strategy: req.Strategy, Positions: legs, NetPremium: positions.NetPremium(legs)}, nil
}

type PayoffOutput struct {
	Positions []models.Position   `json:"positions"`
	Curve     []models.PricePoint `json:"payoffCurve"`
}

func (d *Dispatcher) strategyPayoff(req StrategyPayoffRequest) (PayoffOutput, error) {
	legs, err := req.Positions()
	if err != nil {
		return PayoffOutput{}, err
	}
	asOf := d.asOf(req.AsOf)

	var curve []models.PricePoint
	if len(req.Prices) > 0 {
		curve, err = positions.StrategyPL(legs, req.Prices, asOf)
	} else {
		grid := d.cfg.Curve.Grid()
		if req.RangeFraction != nil {
			grid.RangeFraction = *req.RangeFraction
		}
		if req.Steps > 0 {
			grid.Steps = req.Steps
		}
		curve, err = positions.StrategyCurve(legs, req.Spot, grid, asOf)
	}
	if err != nil {
		return PayoffOutput{}, err
	}
	return PayoffOutput{Positions: legs, Curve: curve}, nil
}

func (d *Dispatcher) analyzeStrategy(req AnalyzeStrategyRequest) (models.StrategyMetrics, error) {
	legs, err := req.Positions()
	if err != nil {
		return models.StrategyMetrics{}, err
	}
	expiry := horizon(req.Expiry, legs)
	if expiry.IsZero() {
		return models.StrategyMetrics{}, fmt.Errorf("%w: expiry is required for a strategy without option legs", ErrInvalidParams)
	}
	return positions.AnalyzeWithGrid(legs, req.Spot, expiry, d.cfg.Analysis.Grid())
}

func (d *Dispatcher) strategyGreeks(req StrategyGreeksRequest) (models.Greeks, error) {
	legs, err := req.Positions()
	if err != nil {
		return models.Greeks{}, err
	}
	g, err := positions.StrategyGreeks(legs, req.Spot, req.Volatility, d.rate(req.RiskFreeRate), d.asOf(req.AsOf))
	if err != nil {
		return models.Greeks{}, err
	}
	return g.Rounded(), nil
}

func (d *Dispatcher) simulateStrategy(ctx context.Context, req SimulateStrategyRequest) (probability.SimulationResult, error) {
	legs, err := req.Positions()
	if err != nil {
		return probability.SimulationResult{}, err
	}

	cfg := d.cfg.Simulation.Sampler()
	if req.Paths > 0 {
		cfg.Paths = req.Paths
	}
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}

	res, err := probability.MonteCarloSimulation(ctx, legs, probability.SimulationInput{
		Spot:         req.Spot,
		Volatility:   req.Volatility,
		RiskFreeRate: d.rate(req.RiskFreeRate),
		AsOf:         d.asOf(req.AsOf),
	}, cfg)
	if err != nil {
		return probability.SimulationResult{}, err
	}

	res.Horizon = models.Round(res.Horizon, 4)
	res.ProbabilityOfProfit = models.Round(res.ProbabilityOfProfit, 4)
	res.ExpectedPL = models.Round(res.ExpectedPL, 2)
	res.StdDevPL = models.Round(res.StdDevPL, 2)
	res.VaR95 = models.Round(res.VaR95, 2)
	res.VaR99 = models.Round(res.VaR99, 2)
	res.ExpectedShortfall95 = models.Round(res.ExpectedShortfall95, 2)
	return res, nil
}

func (d *Dispatcher) chainImpliedVolatility(log *logrus.Entry, req ChainImpliedVolatilityRequest) ([]tradier.ContractIV, error) {
	chain, err := tradier.DecodeOptionChain(req.Chain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	rows := tradier.ChainImpliedVolatilities(chain, req.Spot, d.rate(req.RiskFreeRate), d.asOf(req.AsOf), d.cfg.IVSolver())
	failed, unconverged := 0, 0
	for _, row := range rows {
		switch {
		case row.Error != "":
			failed++
		case !row.Converged:
			unconverged++
		}
	}
	if failed > 0 || unconverged > 0 {
		log.WithFields(logrus.Fields{
			"contracts":   len(rows),
			"failed":      failed,
			"unconverged": unconverged,
		}).Warn("some contracts have no reliable implied volatility")
	}
	return rows, nil
}

type HistoricalVolatilityOutput struct {
	Estimator  models.VolatilityEstimator `json:"estimator"`
	Bars       int                        `json:"bars"`
	Volatility float64                    `json:"volatility"`
}

func (d *Dispatcher) historicalVolatility(req HistoricalVolatilityRequest) (HistoricalVolatilityOutput, error) {
	estimator := req.Estimator
	if estimator == "" {
		estimator = models.CloseToClose
	}

	bars := req.Bars
	if len(bytes.TrimSpace(req.History)) > 0 {
		history, err := tradier.DecodeQuoteHistory(req.History)
		if err != nil {
			return HistoricalVolatilityOutput{}, fmt.Errorf("%w: %v", ErrInvalidParams, err)
		}
		bars = history.Bars()
	}

	vol, err := models.HistoricalVolatility(estimator, bars)
	if err != nil {
		return HistoricalVolatilityOutput{}, err
	}
	return HistoricalVolatilityOutput{Estimator: estimator, Bars: len(bars), Volatility: models.Round(vol, 4)}, nil
}
