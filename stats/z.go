package stats

import "gonum.org/v1/gonum/stat/distuv"

// ZVal returns the two-tailed Z-value associated with a specific confidence
// interval. The interval is a number from 0 to 100 percent.
func ZVal(confidenceInterval float64) float64 {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: 1,
	}
	area := (1 + (confidenceInterval / 100)) / 2
	return dist.Quantile(area)
}

// ConfidenceInterval returns the +/- half-width of the confidence interval
// around a Statistic's mean, using its standard error and ZVal.
func (s *Statistic) ConfidenceInterval(confidenceInterval float64) float64 {
	if s.totalIterations <= 1 {
		return 0
	}
	return ZVal(confidenceInterval) * s.StandardError()
}
