package positions

import (
	"math"
	"time"

	"github.com/bcdannyboy/optanalytics/models"
)

const (
	AnalysisRangeFraction = 0.3
	AnalysisSteps         = 100
)

func DefaultAnalysisGrid() GridConfig {
	return GridConfig{RangeFraction: AnalysisRangeFraction, Steps: AnalysisSteps}
}

// Analyze scans the strategy's expiry payoff over spot ±30% in 100 steps.
//
// MaxProfit and MaxLoss are the extremes found on the grid. A strategy with
// open-ended risk (a naked call, long stock) reports the grid edge value,
// not Unbounded; callers must not read them as exact bounds outside the
// scanned range. Breakevens are the first grid price past each sign change,
// so they are only as precise as the grid.
func Analyze(positions []models.Position, spot float64, expiry time.Time) (models.StrategyMetrics, error) {
	return AnalyzeWithGrid(positions, spot, expiry, DefaultAnalysisGrid())
}

func AnalyzeWithGrid(positions []models.Position, spot float64, expiry time.Time, grid GridConfig) (models.StrategyMetrics, error) {
	prices, err := GeneratePriceRange(spot, grid.RangeFraction, grid.Steps)
	if err != nil {
		return models.StrategyMetrics{}, err
	}
	curve, err := StrategyPL(positions, prices, expiry)
	if err != nil {
		return models.StrategyMetrics{}, err
	}

	maxProfit := math.Inf(-1)
	maxLoss := math.Inf(1)
	breakevens := []float64{}
	for i, point := range curve {
		maxProfit = math.Max(maxProfit, point.PL)
		maxLoss = math.Min(maxLoss, point.PL)

		if i == 0 {
			continue
		}
		prev := curve[i-1].PL
		if (prev < 0 && point.PL >= 0) || (prev > 0 && point.PL <= 0) {
			breakevens = append(breakevens, point.Price)
		}
	}

	return models.StrategyMetrics{
		MaxProfit:       newBound(maxProfit),
		MaxLoss:         newBound(maxLoss),
		BreakevenPoints: breakevens,
		NetPremium:      NetPremium(positions),
		Curve:           curve,
	}, nil
}

func newBound(v float64) models.Bound {
	if math.IsInf(v, 0) {
		return models.Bound{Unbounded: true}
	}
	return models.Bound{Value: v}
}

// NetPremium is the cash paid (positive) or received (negative) for the
// option legs. Stock legs are excluded. A debit is positive: a bull call
// spread bought for 3.00 nets +300, an iron condor sold for 3.00 nets -300.
func NetPremium(positions []models.Position) float64 {
	var net float64
	for _, p := range positions {
		if p.Kind != models.Option {
			continue
		}
		net += p.Premium * p.Quantity * models.ContractMultiplier
	}
	return models.Round(net, 2)
}
