package positions

import (
	"fmt"
	"time"

	"github.com/bcdannyboy/optanalytics/models"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultRangeFraction = 0.2
	DefaultSteps         = 50
)

// GridConfig describes a price grid centered on the spot price.
type GridConfig struct {
	RangeFraction float64
	Steps         int
}

// PositionPL returns the profit or loss of one leg if the underlying trades
// at price. Options are always valued at intrinsic value, whatever time is
// left until expiry.
func PositionPL(p models.Position, price float64, asOf time.Time) (float64, error) {
	switch p.Kind {
	case models.Stock:
		return (price - p.Premium) * p.Quantity, nil
	case models.Option:
		if !p.OptionType.Valid() {
			return 0, fmt.Errorf("%w: unknown option type %q", models.ErrDomain, p.OptionType)
		}
		if p.Expiry.IsZero() {
			return 0, fmt.Errorf("%w: option leg at strike %v has no expiry", models.ErrDomain, p.Strike)
		}
		intrinsic := models.IntrinsicValue(p.OptionType, price, p.Strike)
		return (intrinsic - p.Premium) * p.Quantity * models.ContractMultiplier, nil
	}
	return 0, fmt.Errorf("%w: unknown position kind %q", models.ErrDomain, p.Kind)
}

// TotalPL sums PositionPL over every leg without rounding.
func TotalPL(positions []models.Position, price float64, asOf time.Time) (float64, error) {
	if len(positions) == 0 {
		return 0, fmt.Errorf("%w: strategy has no legs", models.ErrDomain)
	}
	var total float64
	for _, p := range positions {
		pl, err := PositionPL(p, price, asOf)
		if err != nil {
			return 0, err
		}
		total += pl
	}
	return total, nil
}

// StrategyPL evaluates the strategy at every grid price. P&L is rounded to
// cents.
func StrategyPL(positions []models.Position, grid []float64, asOf time.Time) ([]models.PricePoint, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("%w: price grid is empty", models.ErrDomain)
	}
	curve := make([]models.PricePoint, 0, len(grid))
	for _, price := range grid {
		pl, err := TotalPL(positions, price, asOf)
		if err != nil {
			return nil, err
		}
		curve = append(curve, models.PricePoint{Price: price, PL: models.Round(pl, 2)})
	}
	return curve, nil
}

// GeneratePriceRange returns steps+1 evenly spaced prices from
// center*(1-rangeFraction) to center*(1+rangeFraction), rounded to cents.
func GeneratePriceRange(center, rangeFraction float64, steps int) ([]float64, error) {
	if !(center > 0) {
		return nil, fmt.Errorf("%w: center price must be positive, got %v", models.ErrDomain, center)
	}
	if !(rangeFraction >= 0 && rangeFraction < 1) {
		return nil, fmt.Errorf("%w: range fraction must be in [0, 1), got %v", models.ErrDomain, rangeFraction)
	}
	if steps < 1 {
		return nil, fmt.Errorf("%w: steps must be at least 1, got %d", models.ErrDomain, steps)
	}

	grid := floats.Span(make([]float64, steps+1), center*(1-rangeFraction), center*(1+rangeFraction))
	for i := range grid {
		grid[i] = models.Round(grid[i], 2)
	}
	return grid, nil
}

// StrategyCurve generates the default grid around center and evaluates it.
func StrategyCurve(positions []models.Position, center float64, grid GridConfig, asOf time.Time) ([]models.PricePoint, error) {
	prices, err := GeneratePriceRange(center, grid.RangeFraction, grid.Steps)
	if err != nil {
		return nil, err
	}
	return StrategyPL(positions, prices, asOf)
}
