package positions

import (
	"fmt"
	"time"

	"github.com/bcdannyboy/optanalytics/models"
)

// StrategyGreeks nets the Black-Scholes Greeks of every leg, scaled to the
// position size. Option legs contribute their kernel Greeks times quantity
// times the contract multiplier; stock legs contribute one delta per share.
// Price is the strategy's theoretical mark.
func StrategyGreeks(positions []models.Position, spot, volatility, riskFreeRate float64, asOf time.Time) (models.Greeks, error) {
	if len(positions) == 0 {
		return models.Greeks{}, fmt.Errorf("%w: strategy has no legs", models.ErrDomain)
	}

	var net models.Greeks
	for _, p := range positions {
		switch p.Kind {
		case models.Stock:
			net.Price += spot * p.Quantity
			net.Delta += p.Quantity
		case models.Option:
			if p.Expiry.IsZero() {
				return models.Greeks{}, fmt.Errorf("%w: option leg at strike %v has no expiry", models.ErrDomain, p.Strike)
			}
			g, err := models.PriceAndGreeks(models.OptionSpec{
				Spot:         spot,
				Strike:       p.Strike,
				TimeToExpiry: p.TimeToExpiry(asOf),
				Volatility:   volatility,
				RiskFreeRate: riskFreeRate,
				Type:         p.OptionType,
			})
			if err != nil {
				return models.Greeks{}, err
			}
			size := p.Quantity * models.ContractMultiplier
			net.Price += g.Price * size
			net.Delta += g.Delta * size
			net.Gamma += g.Gamma * size
			net.Theta += g.Theta * size
			net.Vega += g.Vega * size
			net.Rho += g.Rho * size
		default:
			return models.Greeks{}, fmt.Errorf("%w: unknown position kind %q", models.ErrDomain, p.Kind)
		}
	}
	return net, nil
}
