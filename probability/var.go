package probability

import (
	"fmt"
	"sort"

	"github.com/bcdannyboy/optanalytics/models"
	"gonum.org/v1/gonum/stat"
)

// CalculateVaR returns the loss, as a positive amount, that the P&L samples
// exceed with probability 1-confidence. A strategy that never loses at that
// quantile reports a negative VaR.
func CalculateVaR(pl []float64, confidence float64) (float64, error) {
	sorted, err := sortedSamples(pl, confidence)
	if err != nil {
		return 0, err
	}
	return valueAtRisk(sorted, confidence), nil
}

// ExpectedShortfall is the mean loss over the samples at or beyond VaR.
func ExpectedShortfall(pl []float64, confidence float64) (float64, error) {
	sorted, err := sortedSamples(pl, confidence)
	if err != nil {
		return 0, err
	}
	return expectedShortfall(sorted, confidence), nil
}

func sortedSamples(pl []float64, confidence float64) ([]float64, error) {
	if len(pl) == 0 {
		return nil, fmt.Errorf("%w: no samples", models.ErrDomain)
	}
	if !(confidence > 0 && confidence < 1) {
		return nil, fmt.Errorf("%w: confidence must be in (0, 1), got %v", models.ErrDomain, confidence)
	}
	sorted := append([]float64(nil), pl...)
	sort.Float64s(sorted)
	return sorted, nil
}

// valueAtRisk expects pl sorted ascending.
func valueAtRisk(pl []float64, confidence float64) float64 {
	return -stat.Quantile(1-confidence, stat.Empirical, pl, nil)
}

// expectedShortfall expects pl sorted ascending.
func expectedShortfall(pl []float64, confidence float64) float64 {
	cutoff := stat.Quantile(1-confidence, stat.Empirical, pl, nil)
	n := sort.Search(len(pl), func(i int) bool { return pl[i] > cutoff })
	return -stat.Mean(pl[:n], nil)
}
