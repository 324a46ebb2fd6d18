package models

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear annualizes daily volatility estimates.
const TradingDaysPerYear = 252

// Bar is one OHLC observation of the underlying.
type Bar struct {
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

type VolatilityEstimator string

const (
	CloseToClose   VolatilityEstimator = "close_to_close"
	Parkinson      VolatilityEstimator = "parkinson"
	GarmanKlass    VolatilityEstimator = "garman_klass"
	RogersSatchell VolatilityEstimator = "rogers_satchell"
	YangZhang      VolatilityEstimator = "yang_zhang"
)

// HistoricalVolatility estimates annualized volatility from daily bars. The
// result can be fed to the pricing kernel when no implied volatility is
// available.
func HistoricalVolatility(estimator VolatilityEstimator, bars []Bar) (float64, error) {
	minBars := 1
	if estimator == CloseToClose || estimator == YangZhang {
		minBars = 3
	}
	if len(bars) < minBars {
		return 0, domainErrorf("%s needs at least %d bars, got %d", estimator, minBars, len(bars))
	}
	for i, b := range bars {
		if !(b.Open > 0 && b.High > 0 && b.Low > 0 && b.Close > 0) || b.High < b.Low {
			return 0, domainErrorf("bar %d has invalid prices %+v", i, b)
		}
		if b.Open < b.Low || b.Open > b.High || b.Close < b.Low || b.Close > b.High {
			return 0, domainErrorf("bar %d opens or closes outside its range %+v", i, b)
		}
	}

	var daily float64
	switch estimator {
	case CloseToClose:
		daily = closeToClose(bars)
	case Parkinson:
		daily = parkinson(bars)
	case GarmanKlass:
		daily = garmanKlass(bars)
	case RogersSatchell:
		daily = math.Sqrt(rogersSatchellVariance(bars))
	case YangZhang:
		daily = yangZhang(bars)
	default:
		return 0, domainErrorf("unknown volatility estimator %q", estimator)
	}
	return daily * math.Sqrt(TradingDaysPerYear), nil
}

func closeToClose(bars []Bar) float64 {
	returns := make([]float64, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		returns[i-1] = math.Log(bars[i].Close / bars[i-1].Close)
	}
	return stat.StdDev(returns, nil)
}

func parkinson(bars []Bar) float64 {
	sum := 0.0
	for _, b := range bars {
		hl := math.Log(b.High / b.Low)
		sum += hl * hl
	}
	return math.Sqrt(sum / (4 * float64(len(bars)) * math.Ln2))
}

func garmanKlass(bars []Bar) float64 {
	sum := 0.0
	for _, b := range bars {
		hl := math.Log(b.High / b.Low)
		co := math.Log(b.Close / b.Open)
		sum += 0.5*hl*hl - (2*math.Ln2-1)*co*co
	}
	// the estimator can dip below zero on degenerate bars
	return math.Sqrt(math.Max(0, sum/float64(len(bars))))
}

func rogersSatchellVariance(bars []Bar) float64 {
	sum := 0.0
	for _, b := range bars {
		sum += math.Log(b.High/b.Close)*math.Log(b.High/b.Open) +
			math.Log(b.Low/b.Close)*math.Log(b.Low/b.Open)
	}
	return sum / float64(len(bars))
}

func yangZhang(bars []Bar) float64 {
	n := float64(len(bars) - 1)
	overnight := make([]float64, 0, len(bars)-1)
	openClose := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		overnight = append(overnight, math.Log(bars[i].Open/bars[i-1].Close))
		openClose = append(openClose, math.Log(bars[i].Close/bars[i].Open))
	}

	k := 0.34 / (1.34 + (n+1)/(n-1))
	variance := stat.Variance(overnight, nil) + k*stat.Variance(openClose, nil) + (1-k)*rogersSatchellVariance(bars[1:])
	return math.Sqrt(variance)
}
