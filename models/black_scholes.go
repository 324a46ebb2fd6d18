package models

import "math"

// PriceAndGreeks prices a European option with Black-Scholes and returns the
// Greeks at full precision. Use Greeks.Rounded for presentation.
//
// At TimeToExpiry == 0 the option is valued at intrinsic value and every
// sensitivity except delta is zero.
func PriceAndGreeks(spec OptionSpec) (Greeks, error) {
	if err := spec.Validate(); err != nil {
		return Greeks{}, err
	}
	if spec.TimeToExpiry == 0 {
		return expiredGreeks(spec), nil
	}
	return calculateBSM(spec.Spot, spec.Strike, spec.TimeToExpiry, spec.RiskFreeRate, spec.Volatility, spec.Type == Call), nil
}

func expiredGreeks(spec OptionSpec) Greeks {
	g := Greeks{Price: IntrinsicValue(spec.Type, spec.Spot, spec.Strike)}
	switch {
	case spec.Type == Call && spec.Spot > spec.Strike:
		g.Delta = 1
	case spec.Type == Put && spec.Spot < spec.Strike:
		g.Delta = -1
	}
	return g
}

// IntrinsicValue is the exercise value of an option at the given underlying price.
func IntrinsicValue(optionType OptionType, underlyingPrice, strike float64) float64 {
	if optionType == Call {
		return math.Max(0, underlyingPrice-strike)
	}
	return math.Max(0, strike-underlyingPrice)
}

func calculateBSM(S, K, T, r, sigma float64, isCall bool) Greeks {
	sqrtT := math.Sqrt(T)
	d1 := (math.Log(S/K) + (r+0.5*sigma*sigma)*T) / (sigma * sqrtT)
	d2 := d1 - sigma*sqrtT
	discount := K * math.Exp(-r*T)
	pdf := normalPDF(d1)

	var price, delta, theta, rho float64
	if isCall {
		price = S*normalCDF(d1) - discount*normalCDF(d2)
		delta = normalCDF(d1)
		theta = -(S*pdf*sigma)/(2*sqrtT) - r*discount*normalCDF(d2)
		rho = T * discount * normalCDF(d2)
	} else {
		price = discount*normalCDF(-d2) - S*normalCDF(-d1)
		delta = normalCDF(d1) - 1
		theta = -(S*pdf*sigma)/(2*sqrtT) + r*discount*normalCDF(-d2)
		rho = -T * discount * normalCDF(-d2)
	}

	return Greeks{
		Price: price,
		Delta: delta,
		Gamma: pdf / (S * sigma * sqrtT),
		Theta: theta / DaysPerYear,
		Vega:  S * sqrtT * pdf / 100,
		Rho:   rho / 100,
	}
}
