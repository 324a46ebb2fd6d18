package probability

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/bcdannyboy/optanalytics/models"
	"github.com/bcdannyboy/optanalytics/positions"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultPaths   = 20000
	DefaultWorkers = 4
)

type SimulationInput struct {
	Spot         float64
	Volatility   float64
	RiskFreeRate float64
	AsOf         time.Time
}

// SimulationConfig controls the sampler. Results are reproducible for a
// given Seed, Paths and Workers.
type SimulationConfig struct {
	Paths   int
	Workers int
	Seed    uint64
}

func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{Paths: DefaultPaths, Workers: DefaultWorkers, Seed: 1}
}

type SimulationResult struct {
	Horizon             float64 `json:"horizonYears"`
	Paths               int     `json:"paths"`
	ProbabilityOfProfit float64 `json:"probabilityOfProfit"`
	ExpectedPL          float64 `json:"expectedProfitLoss"`
	StdDevPL            float64 `json:"stdDevProfitLoss"`
	VaR95               float64 `json:"var95"`
	VaR99               float64 `json:"var99"`
	ExpectedShortfall95 float64 `json:"expectedShortfall95"`
}

// MonteCarloSimulation draws risk-neutral lognormal prices of the underlying
// at the strategy's last option expiry and values every leg there with the
// payoff evaluator.
func MonteCarloSimulation(ctx context.Context, legs []models.Position, in SimulationInput, cfg SimulationConfig) (SimulationResult, error) {
	if len(legs) == 0 {
		return SimulationResult{}, fmt.Errorf("%w: strategy has no legs", models.ErrDomain)
	}
	if !(in.Spot > 0) {
		return SimulationResult{}, fmt.Errorf("%w: spot price must be positive, got %v", models.ErrDomain, in.Spot)
	}
	if !(in.Volatility > 0) {
		return SimulationResult{}, fmt.Errorf("%w: volatility must be positive, got %v", models.ErrDomain, in.Volatility)
	}
	if cfg.Paths < 1 || cfg.Workers < 1 {
		return SimulationResult{}, fmt.Errorf("%w: paths and workers must be positive, got %d and %d", models.ErrDomain, cfg.Paths, cfg.Workers)
	}

	expiry, ok := lastExpiry(legs)
	if !ok {
		return SimulationResult{}, fmt.Errorf("%w: strategy has no option leg to set the horizon", models.ErrDomain)
	}
	horizon := models.Position{Kind: models.Option, Expiry: expiry}.TimeToExpiry(in.AsOf)

	// validate the legs once so workers cannot fail half way
	if _, err := positions.TotalPL(legs, in.Spot, expiry); err != nil {
		return SimulationResult{}, err
	}

	drift := (in.RiskFreeRate - 0.5*in.Volatility*in.Volatility) * horizon
	diffusion := in.Volatility * math.Sqrt(horizon)

	pl := make([]float64, cfg.Paths)
	chunk := (cfg.Paths + cfg.Workers - 1) / cfg.Workers

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < cfg.Workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, cfg.Paths)
		if lo >= hi {
			break
		}
		seed := cfg.Seed + uint64(w)
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seed))
			for i := lo; i < hi; i++ {
				if i%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				terminal := in.Spot * math.Exp(drift+diffusion*rng.NormFloat64())
				v, err := positions.TotalPL(legs, terminal, expiry)
				if err != nil {
					return err
				}
				pl[i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return SimulationResult{}, err
	}

	wins := 0
	for _, v := range pl {
		if v > 0 {
			wins++
		}
	}

	sort.Float64s(pl)
	mean, std := stat.MeanStdDev(pl, nil)

	return SimulationResult{
		Horizon:             horizon,
		Paths:               cfg.Paths,
		ProbabilityOfProfit: float64(wins) / float64(cfg.Paths),
		ExpectedPL:          mean,
		StdDevPL:            std,
		VaR95:               valueAtRisk(pl, 0.95),
		VaR99:               valueAtRisk(pl, 0.99),
		ExpectedShortfall95: expectedShortfall(pl, 0.95),
	}, nil
}

func lastExpiry(legs []models.Position) (time.Time, bool) {
	var last time.Time
	for _, leg := range legs {
		if leg.Kind == models.Option && leg.Expiry.After(last) {
			last = leg.Expiry
		}
	}
	return last, !last.IsZero()
}
