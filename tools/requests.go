package tools

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xhhuango/json"

	"github.com/bcdannyboy/optanalytics/models"
	"github.com/bcdannyboy/optanalytics/positions"
)

const dateLayout = "2006-01-02"

// Date accepts either a calendar date or an RFC 3339 timestamp. Calendar
// dates are midnight UTC.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("date %q is neither YYYY-MM-DD nor RFC 3339", s)
	}
	d.Time = t
	return nil
}

type PriceOptionRequest struct {
	Spot         float64           `json:"spotPrice"    validate:"gt=0"`
	Strike       float64           `json:"strikePrice"  validate:"gt=0"`
	TimeToExpiry float64           `json:"timeToExpiry" validate:"gte=0"`
	Volatility   float64           `json:"volatility"   validate:"gte=0"`
	RiskFreeRate *float64          `json:"riskFreeRate"`
	OptionType   models.OptionType `json:"optionType"   validate:"required,oneof=call put"`
}

type ImpliedVolatilityRequest struct {
	MarketPrice  float64           `json:"marketPrice"  validate:"gte=0"`
	Spot         float64           `json:"spotPrice"    validate:"gt=0"`
	Strike       float64           `json:"strikePrice"  validate:"gt=0"`
	TimeToExpiry float64           `json:"timeToExpiry" validate:"gte=0"`
	RiskFreeRate *float64          `json:"riskFreeRate"`
	OptionType   models.OptionType `json:"optionType"   validate:"required,oneof=call put"`
}

// LegRequest is one hand-built position. Expiry falls back to the strategy
// expiry when omitted.
type LegRequest struct {
	Kind       models.PositionKind `json:"kind"       validate:"required,oneof=stock option"`
	OptionType models.OptionType   `json:"optionType" validate:"required_if=Kind option,omitempty,oneof=call put"`
	Strike     float64             `json:"strike"     validate:"gte=0"`
	Premium    float64             `json:"premium"    validate:"gte=0"`
	Quantity   float64             `json:"quantity"   validate:"required"`
	Expiry     Date                `json:"expiry"`
}

// StrategyRequest names a strategy from the composer or lists legs by hand.
type StrategyRequest struct {
	Strategy positions.StrategyName   `json:"strategy" validate:"required_without=Legs"`
	Params   positions.StrategyParams `json:"params"`
	Legs     []LegRequest             `json:"legs"     validate:"required_without=Strategy,dive"`
	Expiry   Date                     `json:"expiry"`
}

// Positions expands the request into legs.
func (r StrategyRequest) Positions() ([]models.Position, error) {
	if r.Strategy != "" {
		if r.Expiry.IsZero() {
			return nil, fmt.Errorf("%w: expiry is required for strategy %s", ErrInvalidParams, r.Strategy)
		}
		p := r.Params
		p.Expiry = r.Expiry.Time
		return positions.Build(r.Strategy, p)
	}

	if len(r.Legs) == 0 {
		return nil, fmt.Errorf("%w: strategy has no legs", models.ErrDomain)
	}

	legs := make([]models.Position, 0, len(r.Legs))
	for i, leg := range r.Legs {
		p := models.Position{
			Kind:       leg.Kind,
			OptionType: leg.OptionType,
			Strike:     leg.Strike,
			Premium:    leg.Premium,
			Quantity:   leg.Quantity,
		}
		if leg.Kind == models.Option {
			if !(leg.Strike > 0) {
				return nil, fmt.Errorf("%w: leg %d needs a positive strike", ErrInvalidParams, i)
			}
			p.Expiry = leg.Expiry.Time
			if p.Expiry.IsZero() {
				p.Expiry = r.Expiry.Time
			}
			if p.Expiry.IsZero() {
				return nil, fmt.Errorf("%w: leg %d has no expiry", ErrInvalidParams, i)
			}
		}
		legs = append(legs, p)
	}
	return legs, nil
}

// horizon is the explicit expiry, or the latest option expiry among legs.
func horizon(expiry Date, legs []models.Position) time.Time {
	if !expiry.IsZero() {
		return expiry.Time
	}
	var last time.Time
	for _, p := range legs {
		if p.Kind == models.Option && p.Expiry.After(last) {
			last = p.Expiry
		}
	}
	return last
}

type StrategyPayoffRequest struct {
	StrategyRequest
	Spot          float64   `json:"spotPrice"     validate:"gt=0"`
	RangeFraction *float64  `json:"rangeFraction" validate:"omitempty,gte=0,lt=1"`
	Steps         int       `json:"steps"         validate:"gte=0"`
	Prices        []float64 `json:"prices"        validate:"omitempty,dive,gt=0"`
	AsOf          Date      `json:"asOf"`
}

type AnalyzeStrategyRequest struct {
	StrategyRequest
	Spot float64 `json:"spotPrice" validate:"gt=0"`
}

type StrategyGreeksRequest struct {
	StrategyRequest
	Spot         float64  `json:"spotPrice"    validate:"gt=0"`
	Volatility   float64  `json:"volatility"   validate:"gt=0"`
	RiskFreeRate *float64 `json:"riskFreeRate"`
	AsOf         Date     `json:"asOf"`
}

type SimulateStrategyRequest struct {
	StrategyRequest
	Spot         float64  `json:"spotPrice"    validate:"gt=0"`
	Volatility   float64  `json:"volatility"   validate:"gt=0"`
	RiskFreeRate *float64 `json:"riskFreeRate"`
	AsOf         Date     `json:"asOf"`
	Paths        int      `json:"paths"        validate:"gte=0"`
	Seed         *uint64  `json:"seed"`
}

type ChainImpliedVolatilityRequest struct {
	Spot         float64         `json:"spotPrice"    validate:"gt=0"`
	RiskFreeRate *float64        `json:"riskFreeRate"`
	AsOf         Date            `json:"asOf"`
	Chain        json.RawMessage `json:"chain"        validate:"required"`
}

// HistoricalVolatilityRequest carries bars directly or a raw quote history
// payload.
type HistoricalVolatilityRequest struct {
	Estimator models.VolatilityEstimator `json:"estimator" validate:"omitempty,oneof=close_to_close parkinson garman_klass rogers_satchell yang_zhang"`
	Bars      []models.Bar               `json:"bars"      validate:"required_without=History"`
	History   json.RawMessage            `json:"history"   validate:"required_without=Bars"`
}
