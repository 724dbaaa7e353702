package seeder

import (
	"math"
	"math/rand/v2"

	"github.com/Lumos-Labs-HQ/cohortgen/internal/types"
)

const (
	durationMean   = 60
	durationStddev = 15
	genericMean    = 100
	genericStddev  = 10
)

// SampleCount draws round(N(avg, stddev)) clamped at zero.
func SampleCount(r *rand.Rand, avg, stddev float64) int {
	if stddev < 0 || math.IsNaN(stddev) {
		stddev = 0
	}
	v := math.Round(avg + stddev*r.NormFloat64())
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

// distribution returns the column's mean and stddev, substituting defaults for
// whichever is missing.
func distribution(col *types.ColumnSpec, defaultMean, defaultStddev float64) (float64, float64) {
	mean, stddev := defaultMean, defaultStddev
	if col.AvgValue != nil {
		mean = *col.AvgValue
	}
	if col.StddevValue != nil {
		stddev = *col.StddevValue
	}
	return mean, stddev
}

// ApplyNull blanks value with probability pct/100.
func ApplyNull(r *rand.Rand, value interface{}, pct float64) interface{} {
	if pct <= 0 || math.IsNaN(pct) {
		return value
	}
	if r.Float64()*100 < pct {
		return nil
	}
	return value
}
