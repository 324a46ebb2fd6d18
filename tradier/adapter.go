package tradier

import (
	"fmt"
	"time"

	"github.com/bcdannyboy/optanalytics/models"
)

const dateLayout = "2006-01-02"

// ContractOptionType maps the broker's option_type onto the engine's enum.
func (o Option) ContractOptionType() (models.OptionType, error) {
	t := models.OptionType(o.OptionType)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %s has option type %q", models.ErrDomain, o.Symbol, o.OptionType)
	}
	return t, nil
}

// MidPrice is the bid/ask midpoint, or the last trade when the book is one
// sided.
func (o Option) MidPrice() (float64, error) {
	if o.Bid > 0 && o.Ask > 0 {
		return (o.Bid + o.Ask) / 2, nil
	}
	if o.Last != nil && *o.Last > 0 {
		return *o.Last, nil
	}
	return 0, fmt.Errorf("%w: %s has no usable quote", models.ErrDomain, o.Symbol)
}

// Expiry returns the expiration date at midnight UTC.
func (o Option) Expiry() (time.Time, error) {
	expiry, err := time.Parse(dateLayout, o.ExpirationDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s has expiration %q: %v", models.ErrDomain, o.Symbol, o.ExpirationDate, err)
	}
	return expiry, nil
}

// Spec builds kernel inputs for the contract. Volatility is left for the
// caller to fill or solve for.
func (o Option) Spec(spot, riskFreeRate float64, asOf time.Time) (models.OptionSpec, error) {
	optionType, err := o.ContractOptionType()
	if err != nil {
		return models.OptionSpec{}, err
	}
	expiry, err := o.Expiry()
	if err != nil {
		return models.OptionSpec{}, err
	}
	return models.OptionSpec{
		Spot:         spot,
		Strike:       o.Strike,
		TimeToExpiry: models.Position{Kind: models.Option, Expiry: expiry}.TimeToExpiry(asOf),
		RiskFreeRate: riskFreeRate,
		Type:         optionType,
	}, nil
}

// Position turns the contract into a strategy leg entered at the mid price.
func (o Option) Position(quantity float64) (models.Position, error) {
	optionType, err := o.ContractOptionType()
	if err != nil {
		return models.Position{}, err
	}
	expiry, err := o.Expiry()
	if err != nil {
		return models.Position{}, err
	}
	premium, err := o.MidPrice()
	if err != nil {
		return models.Position{}, err
	}
	return models.Position{
		Kind:       models.Option,
		OptionType: optionType,
		Strike:     o.Strike,
		Premium:    premium,
		Quantity:   quantity,
		Expiry:     expiry,
	}, nil
}

// Bars converts the history rows into OHLC bars for the volatility
// estimators.
func (q QuoteHistory) Bars() []models.Bar {
	days := q.Days()
	bars := make([]models.Bar, 0, len(days))
	for _, d := range days {
		bars = append(bars, models.Bar{Open: d.Open, High: d.High, Low: d.Low, Close: d.Close})
	}
	return bars
}

type ContractIV struct {
	Symbol     string            `json:"symbol"`
	OptionType models.OptionType `json:"optionType"`
	Strike     float64           `json:"strike"`
	Expiry     string            `json:"expiry"`
	MidPrice   float64           `json:"midPrice"`
	models.IVResult
	BrokerMidIV float64 `json:"brokerMidIv,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// ChainImpliedVolatilities solves for the implied volatility of every
// contract's mid price. Contracts that cannot be solved carry an Error and
// do not stop the rest of the chain.
func ChainImpliedVolatilities(chain OptionChain, spot, riskFreeRate float64, asOf time.Time, cfg models.IVConfig) []ContractIV {
	contracts := chain.Contracts()
	out := make([]ContractIV, 0, len(contracts))
	for _, o := range contracts {
		row := ContractIV{
			Symbol:     o.Symbol,
			OptionType: models.OptionType(o.OptionType),
			Strike:     o.Strike,
			Expiry:     o.ExpirationDate,
		}
		if o.Greeks != nil {
			row.BrokerMidIV = o.Greeks.MidIv
		}

		res, mid, err := solveContract(o, spot, riskFreeRate, asOf, cfg)
		row.MidPrice = mid
		if err != nil {
			row.Error = err.Error()
		} else {
			row.IVResult = res
		}
		out = append(out, row)
	}
	return out
}

func solveContract(o Option, spot, riskFreeRate float64, asOf time.Time, cfg models.IVConfig) (models.IVResult, float64, error) {
	spec, err := o.Spec(spot, riskFreeRate, asOf)
	if err != nil {
		return models.IVResult{}, 0, err
	}
	mid, err := o.MidPrice()
	if err != nil {
		return models.IVResult{}, 0, err
	}
	res, err := models.SolveImpliedVolatility(mid, spec, cfg)
	return res, mid, err
}
