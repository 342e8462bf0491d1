// Package scoring holds the pure arithmetic of the veracity engine: signal
// fusion, submitter reputation and corroboration strength.
package scoring

import "math"

// Fusion weights. They sum to exactly 1 and only change together with Fuse.
const (
	WeightText    = 0.45
	WeightImage   = 0.45
	WeightUser    = 0.05
	WeightCluster = 0.05
)

// Signals are the four bounded sub-scores of one report. A missing
// modality is carried as 0, never dropped from the sum.
type Signals struct {
	Text    float64
	Image   float64
	User    float64
	Cluster float64
}

// Fuse returns the weighted veracity score rounded to 3 decimals.
func Fuse(s Signals) float64 {
	return Round3(WeightText*s.Text + WeightImage*s.Image + WeightUser*s.User + WeightCluster*s.Cluster)
}

// Round3 rounds half away from zero at the third decimal.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
