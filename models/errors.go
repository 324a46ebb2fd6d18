package models

import (
	"errors"
	"fmt"
	"math"
)

// ErrDomain is wrapped by every error caused by an out-of-domain numeric input.
var ErrDomain = errors.New("domain error")

func domainErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDomain, fmt.Sprintf(format, args...))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Validate reports whether the option can be priced. Volatility is only
// checked when there is time left to expiry.
func (s OptionSpec) Validate() error {
	if err := s.validateInputs(); err != nil {
		return err
	}
	if s.TimeToExpiry > 0 && (!isFinite(s.Volatility) || s.Volatility <= 0) {
		return domainErrorf("volatility must be positive when time to expiry is positive, got %v", s.Volatility)
	}
	return nil
}

// validateInputs checks everything but volatility.
func (s OptionSpec) validateInputs() error {
	if !s.Type.Valid() {
		return domainErrorf("unknown option type %q", s.Type)
	}
	if !isFinite(s.Spot) || s.Spot <= 0 {
		return domainErrorf("spot price must be positive, got %v", s.Spot)
	}
	if !isFinite(s.Strike) || s.Strike <= 0 {
		return domainErrorf("strike price must be positive, got %v", s.Strike)
	}
	if !isFinite(s.TimeToExpiry) || s.TimeToExpiry < 0 {
		return domainErrorf("time to expiry must be non-negative, got %v", s.TimeToExpiry)
	}
	if !isFinite(s.RiskFreeRate) {
		return domainErrorf("risk-free rate must be finite, got %v", s.RiskFreeRate)
	}
	return nil
}
