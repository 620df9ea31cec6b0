// Package stats provides a running statistic accumulator (Welford's
// algorithm) used by the benchmark runner to track node-count
// distributions without buffering every sample.
package stats

import "math"

const epsilon = 1e-6

// FuzzyEqual reports whether a and b are within epsilon of each other,
// for comparing floating-point statistics in tests.
func FuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

// Statistic accumulates mean and variance over a stream of values in
// one pass, without storing the values themselves.
type Statistic struct {
	totalIterations int
	last            float64

	oldM float64
	newM float64
	oldS float64
	newS float64
}

// Push folds val into the running statistic.
func (s *Statistic) Push(val float64) {
	s.last = val
	s.totalIterations++
	if s.totalIterations == 1 {
		s.oldM = val
		s.newM = val
		s.oldS = 0
	} else {
		s.newM = s.oldM + (val-s.oldM)/float64(s.totalIterations)
		s.newS = s.oldS + (val-s.oldM)*(val-s.newM)
		s.oldM = s.newM
		s.oldS = s.newS
	}
}

// Mean returns the running mean, or 0 if nothing has been pushed.
func (s *Statistic) Mean() float64 {
	if s.totalIterations > 0 {
		return s.newM
	}
	return 0.0
}

// Variance returns the running sample variance.
func (s *Statistic) Variance() float64 {
	if s.totalIterations <= 1 {
		return 0.0
	}
	return s.newS / float64(s.totalIterations-1)
}

// Stdev returns the running sample standard deviation.
func (s *Statistic) Stdev() float64 {
	return math.Sqrt(s.Variance())
}

// Last returns the most recently pushed value.
func (s *Statistic) Last() float64 {
	return s.last
}

// StandardError returns the standard error of the mean.
func (s *Statistic) StandardError() float64 {
	return math.Sqrt(s.Variance() / float64(s.totalIterations))
}

// Iterations returns the number of values pushed so far.
func (s *Statistic) Iterations() int {
	return s.totalIterations
}
