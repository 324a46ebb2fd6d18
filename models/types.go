package models

import (
	"strconv"
	"time"
)

const (
	// DefaultRiskFreeRate is used when a caller does not supply a rate.
	DefaultRiskFreeRate = 0.05
	// ContractMultiplier is the number of shares per option contract.
	ContractMultiplier = 100.0
	// DaysPerYear converts calendar days into year fractions.
	DaysPerYear = 365.0
)

type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

func (t OptionType) Valid() bool {
	return t == Call || t == Put
}

// OptionSpec holds the Black-Scholes inputs for a single European option.
type OptionSpec struct {
	Spot         float64    `json:"spotPrice"`
	Strike       float64    `json:"strikePrice"`
	TimeToExpiry float64    `json:"timeToExpiry"` // years
	Volatility   float64    `json:"volatility"`   // annualized
	RiskFreeRate float64    `json:"riskFreeRate"`
	Type         OptionType `json:"optionType"`
}

// Greeks is the kernel output. Theta is per calendar day, vega and rho per
// one percentage point.
type Greeks struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// Rounded applies the presentation precision to every field.
func (g Greeks) Rounded() Greeks {
	return Greeks{
		Price: Round(g.Price, 2),
		Delta: Round(g.Delta, 3),
		Gamma: Round(g.Gamma, 4),
		Theta: Round(g.Theta, 2),
		Vega:  Round(g.Vega, 2),
		Rho:   Round(g.Rho, 2),
	}
}

type PositionKind string

const (
	Stock  PositionKind = "stock"
	Option PositionKind = "option"
)

// Position is one leg of a strategy. Quantity > 0 is long, < 0 is short.
// For options Quantity counts contracts, for stock it counts shares.
type Position struct {
	Kind       PositionKind `json:"kind"`
	OptionType OptionType   `json:"optionType,omitempty"`
	Strike     float64      `json:"strike,omitempty"`
	Premium    float64      `json:"premium"`
	Quantity   float64      `json:"quantity"`
	Expiry     time.Time    `json:"expiry"` // zero for stock
}

func (p Position) IsLong() bool {
	return p.Quantity > 0
}

func (p Position) IsShort() bool {
	return p.Quantity < 0
}

// TimeToExpiry returns the year fraction left until expiry, floored at zero.
func (p Position) TimeToExpiry(asOf time.Time) float64 {
	if p.Kind != Option {
		return 0
	}
	years := p.Expiry.Sub(asOf).Hours() / 24 / DaysPerYear
	if years < 0 {
		return 0
	}
	return years
}

type PricePoint struct {
	Price float64 `json:"price"`
	PL    float64 `json:"profitLoss"`
}

// Bound is a max profit or max loss. Unbounded is set when no finite
// extreme was observed.
type Bound struct {
	Value     float64 `json:"value"`
	Unbounded bool    `json:"unbounded"`
}

// MarshalJSON renders an unbounded extreme as the string "unbounded".
func (b Bound) MarshalJSON() ([]byte, error) {
	if b.Unbounded {
		return []byte(`"unbounded"`), nil
	}
	return strconv.AppendFloat(nil, b.Value, 'f', -1, 64), nil
}

type StrategyMetrics struct {
	MaxProfit       Bound        `json:"maxProfit"`
	MaxLoss         Bound        `json:"maxLoss"`
	BreakevenPoints []float64    `json:"breakevenPoints"`
	NetPremium      float64      `json:"netPremium"`
	Curve           []PricePoint `json:"payoffCurve"`
}
