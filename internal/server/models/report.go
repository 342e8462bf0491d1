// Package models defines the records owned by the veracity service.
package models

import "time"

type ReportStatus string

const (
	StatusPending  ReportStatus = "pending"
	StatusVerified ReportStatus = "verified"
)

// Report is a scored citizen submission. Derived fields are written once at
// analysis time; afterwards only Status changes.
type Report struct {
	ID     string
	UserID string
	Text   *string
	Lat    float64
	Lon    float64

	TextLabel      *string
	TextConfidence float64

	ImageLabel      *string
	ImageConfidence float64
	// ImageKey is the object-storage key of the archived image, if any.
	ImageKey string

	CorroborationStrength      float64
	UserReputationAtSubmission float64
	VeracityScore              float64

	Status    ReportStatus
	CreatedAt time.Time
}

// HasText reports whether the submission carried non-empty text.
func (r *Report) HasText() bool {
	return r.Text != nil && *r.Text != ""
}
