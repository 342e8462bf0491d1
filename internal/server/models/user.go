package models

import "time"

// User is the per-submitter record the reputation formula reads. Counters
// only ever grow.
type User struct {
	ID                  string
	CreatedAt           time.Time
	ReportCount         int64
	VerifiedReportCount int64
	IsVerified          bool
}
