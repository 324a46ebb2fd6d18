package models

import "math"

const (
	DefaultIVMaxIterations = 100
	DefaultIVTolerance     = 1e-4

	initialVolatilityGuess = 0.2
	minVolatility          = 0.01
	maxVolatility          = 5.0
)

type IVConfig struct {
	MaxIterations int
	Tolerance     float64
}

func DefaultIVConfig() IVConfig {
	return IVConfig{MaxIterations: DefaultIVMaxIterations, Tolerance: DefaultIVTolerance}
}

// IVResult carries the solver estimate. Converged is false when the
// iteration budget ran out or vega vanished before the price matched.
type IVResult struct {
	Volatility float64 `json:"impliedVolatility"`
	Iterations int     `json:"iterations"`
	Converged  bool    `json:"converged"`
}

// ImpliedVolatility inverts marketPrice to a volatility with the default
// solver settings. spec.Volatility is ignored. Non-convergence is not an
// error: the last estimate is returned.
func ImpliedVolatility(marketPrice float64, spec OptionSpec) (float64, error) {
	res, err := SolveImpliedVolatility(marketPrice, spec, DefaultIVConfig())
	if err != nil {
		return 0, err
	}
	return res.Volatility, nil
}

// SolveImpliedVolatility runs Newton-Raphson from sigma = 0.2, clamping every
// step into [0.01, 5]. Both bounds are closed: a price below the 1% vol value
// settles at exactly 0.01.
func SolveImpliedVolatility(marketPrice float64, spec OptionSpec, cfg IVConfig) (IVResult, error) {
	if err := spec.validateInputs(); err != nil {
		return IVResult{}, err
	}
	if !isFinite(marketPrice) {
		return IVResult{}, domainErrorf("market price must be finite, got %v", marketPrice)
	}
	if cfg.MaxIterations < 1 {
		return IVResult{}, domainErrorf("max iterations must be at least 1, got %d", cfg.MaxIterations)
	}
	if !isFinite(cfg.Tolerance) || cfg.Tolerance <= 0 {
		return IVResult{}, domainErrorf("tolerance must be positive, got %v", cfg.Tolerance)
	}

	sigma := initialVolatilityGuess
	for i := 0; i < cfg.MaxIterations; i++ {
		spec.Volatility = sigma
		g, err := PriceAndGreeks(spec)
		if err != nil {
			return IVResult{}, err
		}

		diff := g.Price - marketPrice
		if math.Abs(diff) < cfg.Tolerance {
			return IVResult{Volatility: Round(sigma, 4), Iterations: i + 1, Converged: true}, nil
		}

		vegaPerUnit := g.Vega * 100
		if vegaPerUnit == 0 {
			return IVResult{Volatility: Round(sigma, 4), Iterations: i + 1}, nil
		}

		sigma = math.Min(maxVolatility, math.Max(minVolatility, sigma-diff/vegaPerUnit))
	}

	return IVResult{Volatility: Round(sigma, 4), Iterations: cfg.MaxIterations}, nil
}
