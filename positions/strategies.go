package positions

import (
	"errors"
	"fmt"
	"time"

	"github.com/bcdannyboy/optanalytics/models"
)

// The constructors below do not check strike ordering. Strikes passed out of
// order produce a valid position list with inverted economics.

var ErrUnknownStrategy = errors.New("unknown strategy")

type StrategyName string

const (
	StrategyLongCall       StrategyName = "long_call"
	StrategyLongPut        StrategyName = "long_put"
	StrategyCoveredCall    StrategyName = "covered_call"
	StrategyBullCallSpread StrategyName = "bull_call_spread"
	StrategyBearPutSpread  StrategyName = "bear_put_spread"
	StrategyLongStraddle   StrategyName = "long_straddle"
	StrategyLongStrangle   StrategyName = "long_strangle"
	StrategyIronCondor     StrategyName = "iron_condor"
	StrategyButterfly      StrategyName = "butterfly"
)

// StrategyNames lists every strategy Build understands, in a fixed order.
var StrategyNames = []StrategyName{
	StrategyLongCall,
	StrategyLongPut,
	StrategyCoveredCall,
	StrategyBullCallSpread,
	StrategyBearPutSpread,
	StrategyLongStraddle,
	StrategyLongStrangle,
	StrategyIronCondor,
	StrategyButterfly,
}

func option(optionType models.OptionType, strike, premium, quantity float64, expiry time.Time) models.Position {
	return models.Position{
		Kind:       models.Option,
		OptionType: optionType,
		Strike:     strike,
		Premium:    premium,
		Quantity:   quantity,
		Expiry:     expiry,
	}
}

func stock(price, shares float64) models.Position {
	return models.Position{
		Kind:     models.Stock,
		Premium:  price,
		Quantity: shares,
	}
}

func LongCall(strike, premium float64, expiry time.Time) []models.Position {
	return []models.Position{option(models.Call, strike, premium, 1, expiry)}
}

func LongPut(strike, premium float64, expiry time.Time) []models.Position {
	return []models.Position{option(models.Put, strike, premium, 1, expiry)}
}

// CoveredCall owns 100 shares bought at stockPrice and writes one call.
func CoveredCall(stockPrice, callStrike, callPremium float64, expiry time.Time) []models.Position {
	return []models.Position{
		stock(stockPrice, models.ContractMultiplier),
		option(models.Call, callStrike, callPremium, -1, expiry),
	}
}

// BullCallSpread buys the lower strike call and sells the upper strike call.
func BullCallSpread(lowerStrike, lowerPremium, upperStrike, upperPremium float64, expiry time.Time) []models.Position {
	return []models.Position{
		option(models.Call, lowerStrike, lowerPremium, 1, expiry),
		option(models.Call, upperStrike, upperPremium, -1, expiry),
	}
}

// BearPutSpread buys the upper strike put and sells the lower strike put.
func BearPutSpread(lowerStrike, lowerPremium, upperStrike, upperPremium float64, expiry time.Time) []models.Position {
	return []models.Position{
		option(models.Put, upperStrike, upperPremium, 1, expiry),
		option(models.Put, lowerStrike, lowerPremium, -1, expiry),
	}
}

func LongStraddle(strike, callPremium, putPremium float64, expiry time.Time) []models.Position {
	return []models.Position{
		option(models.Call, strike, callPremium, 1, expiry),
		option(models.Put, strike, putPremium, 1, expiry),
	}
}

// LongStrangle buys the lower strike put and the upper strike call.
func LongStrangle(putStrike, putPremium, callStrike, callPremium float64, expiry time.Time) []models.Position {
	return []models.Position{
		option(models.Put, putStrike, putPremium, 1, expiry),
		option(models.Call, callStrike, callPremium, 1, expiry),
	}
}

type IronCondorParams struct {
	LongPutStrike    float64   `json:"longPutStrike"`
	LongPutPremium   float64   `json:"longPutPremium"`
	ShortPutStrike   float64   `json:"shortPutStrike"`
	ShortPutPremium  float64   `json:"shortPutPremium"`
	ShortCallStrike  float64   `json:"shortCallStrike"`
	ShortCallPremium float64   `json:"shortCallPremium"`
	LongCallStrike   float64   `json:"longCallStrike"`
	LongCallPremium  float64   `json:"longCallPremium"`
	Expiry           time.Time `json:"-"`
}

// IronCondor is a bull put spread below the market and a bear call spread
// above it. Legs are ordered by strike: long put, short put, short call,
// long call.
func IronCondor(p IronCondorParams) []models.Position {
	return []models.Position{
		option(models.Put, p.LongPutStrike, p.LongPutPremium, 1, p.Expiry),
		option(models.Put, p.ShortPutStrike, p.ShortPutPremium, -1, p.Expiry),
		option(models.Call, p.ShortCallStrike, p.ShortCallPremium, -1, p.Expiry),
		option(models.Call, p.LongCallStrike, p.LongCallPremium, 1, p.Expiry),
	}
}

type ButterflyParams struct {
	LowerStrike   float64
	LowerPremium  float64
	MiddleStrike  float64
	MiddlePremium float64
	UpperStrike   float64
	UpperPremium  float64
	OptionType    models.OptionType // call when empty
	Expiry        time.Time
}

// Butterfly buys the wings and sells two of the body.
func Butterfly(p ButterflyParams) []models.Position {
	optionType := p.OptionType
	if optionType == "" {
		optionType = models.Call
	}
	return []models.Position{
		option(optionType, p.LowerStrike, p.LowerPremium, 1, p.Expiry),
		option(optionType, p.MiddleStrike, p.MiddlePremium, -2, p.Expiry),
		option(optionType, p.UpperStrike, p.UpperPremium, 1, p.Expiry),
	}
}

// StrategyParams is the union of every constructor's arguments, keyed the way
// the tool layer receives them. Each strategy reads only the fields it needs.
type StrategyParams struct {
	StockPrice    float64           `json:"stockPrice"`
	Strike        float64           `json:"strike"`
	Premium       float64           `json:"premium"`
	CallStrike    float64           `json:"callStrike"`
	CallPremium   float64           `json:"callPremium"`
	PutStrike     float64           `json:"putStrike"`
	PutPremium    float64           `json:"putPremium"`
	LowerStrike   float64           `json:"lowerStrike"`
	LowerPremium  float64           `json:"lowerPremium"`
	MiddleStrike  float64           `json:"middleStrike"`
	MiddlePremium float64           `json:"middlePremium"`
	UpperStrike   float64           `json:"upperStrike"`
	UpperPremium  float64           `json:"upperPremium"`
	IronCondor    *IronCondorParams `json:"ironCondor,omitempty"`
	OptionType    models.OptionType `json:"optionType,omitempty"`
	Expiry        time.Time         `json:"-"`
}

// Build expands a named strategy into its legs.
func Build(name StrategyName, p StrategyParams) ([]models.Position, error) {
	switch name {
	case StrategyLongCall:
		return LongCall(p.Strike, p.Premium, p.Expiry), nil
	case StrategyLongPut:
		return LongPut(p.Strike, p.Premium, p.Expiry), nil
	case StrategyCoveredCall:
		return CoveredCall(p.StockPrice, p.CallStrike, p.CallPremium, p.Expiry), nil
	case StrategyBullCallSpread:
		return BullCallSpread(p.LowerStrike, p.LowerPremium, p.UpperStrike, p.UpperPremium, p.Expiry), nil
	case StrategyBearPutSpread:
		return BearPutSpread(p.LowerStrike, p.LowerPremium, p.UpperStrike, p.UpperPremium, p.Expiry), nil
	case StrategyLongStraddle:
		return LongStraddle(p.Strike, p.CallPremium, p.PutPremium, p.Expiry), nil
	case StrategyLongStrangle:
		return LongStrangle(p.PutStrike, p.PutPremium, p.CallStrike, p.CallPremium, p.Expiry), nil
	case StrategyIronCondor:
		if p.IronCondor == nil {
			return nil, fmt.Errorf("%w: iron condor legs are required", models.ErrDomain)
		}
		legs := *p.IronCondor
		legs.Expiry = p.Expiry
		return IronCondor(legs), nil
	case StrategyButterfly:
		return Butterfly(ButterflyParams{
			LowerStrike:   p.LowerStrike,
			LowerPremium:  p.LowerPremium,
			MiddleStrike:  p.MiddleStrike,
			MiddlePremium: p.MiddlePremium,
			UpperStrike:   p.UpperStrike,
			UpperPremium:  p.UpperPremium,
			OptionType:    p.OptionType,
			Expiry:        p.Expiry,
		}), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}
