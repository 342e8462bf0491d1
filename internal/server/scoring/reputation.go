package scoring

import (
	"math"
	"time"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/models"
)

const (
	ageSaturationDays      = 365
	verifiedSaturation     = 20
	reputationAgeWeight    = 0.5
	reputationReportWeight = 0.4
	verifiedBonus          = 0.1
)

// Reputation derives a submitter's reputation from account age and verified
// history as of now. Nil users score 0. The result is not clamped: the bonus
// term sits on top of the weighted sum.
func Reputation(u *models.User, now time.Time) float64 {
	if u == nil {
		return 0
	}

	ageDays := math.Floor(now.Sub(u.CreatedAt).Hours() / 24)
	if ageDays < 0 {
		ageDays = 0
	}
	ageScore := math.Min(1, ageDays/ageSaturationDays)
	reportsScore := math.Min(1, float64(u.VerifiedReportCount)/verifiedSaturation)

	bonus := 0.0
	if u.VerifiedReportCount > 0 {
		bonus = verifiedBonus
	}

	return Round3(reputationAgeWeight*ageScore + reputationReportWeight*reportsScore + bonus)
}
