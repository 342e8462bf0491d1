package services

import (
	"time"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/models"
)

// AnalyzeRequest is one citizen submission. Text and Image are optional.
type AnalyzeRequest struct {
	ReportID string
	UserID   string
	Text     *string
	Lat      float64
	Lon      float64
	Image    []byte
}

// VeracityResult is the outcome of AnalyzeReport. The *_error fields are set
// only when the matching signal was zeroed because it could not be computed.
type VeracityResult struct {
	ReportID        string  `json:"report_id"`
	Status          string  `json:"status"`
	TextLabel       *string `json:"text_label"`
	TextConfidence  float64 `json:"text_confidence"`
	ImageLabel      *string `json:"image_label"`
	ImageConfidence float64 `json:"image_confidence"`
	UserReputation  float64 `json:"user_reputation"`
	ClusterStrength float64 `json:"cluster_strength"`
	VeracityScore   float64 `json:"veracity_score"`
	ImageError      string  `json:"image_error,omitempty"`
	TextError       string  `json:"text_error,omitempty"`
	ClusterError    string  `json:"cluster_error,omitempty"`
}

// VerificationResult is the outcome of VerifyReport.
type VerificationResult struct {
	ReportID       string  `json:"report_id"`
	Status         string  `json:"status"`
	UserID         string  `json:"user_id"`
	UserReputation float64 `json:"user_reputation"`
}

// ReportView is a stored report as returned by lookups.
type ReportView struct {
	ReportID        string    `json:"report_id"`
	UserID          string    `json:"user_id"`
	Text            *string   `json:"text"`
	Lat             float64   `json:"lat"`
	Lon             float64   `json:"lon"`
	TextLabel       *string   `json:"text_label"`
	TextConfidence  float64   `json:"text_confidence"`
	ImageLabel      *string   `json:"image_label"`
	ImageConfidence float64   `json:"image_confidence"`
	ClusterStrength float64   `json:"cluster_strength"`
	UserReputation  float64   `json:"user_reputation"`
	VeracityScore   float64   `json:"veracity_score"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	ImageURL        string    `json:"image_url,omitempty"`
}

// UserView is a submitter record with its current reputation.
type UserView struct {
	UserID              string    `json:"user_id"`
	CreatedAt           time.Time `json:"created_at"`
	ReportCount         int64     `json:"report_count"`
	VerifiedReportCount int64     `json:"verified_report_count"`
	IsVerified          bool      `json:"is_verified"`
	Reputation          float64   `json:"reputation"`
}

func newReportView(r *models.Report) ReportView {
	return ReportView{
		ReportID:        r.ID,
		UserID:          r.UserID,
		Text:            r.Text,
		Lat:             r.Lat,
		Lon:             r.Lon,
		TextLabel:       r.TextLabel,
		TextConfidence:  r.TextConfidence,
		ImageLabel:      r.ImageLabel,
		ImageConfidence: r.ImageConfidence,
		ClusterStrength: r.CorroborationStrength,
		UserReputation:  r.UserReputationAtSubmission,
		VeracityScore:   r.VeracityScore,
		Status:          wireStatus(r.Status),
		CreatedAt:       r.CreatedAt,
	}
}

// wireStatus spells a stored status the way every response does.
func wireStatus(st models.ReportStatus) string {
	if st == models.StatusVerified {
		return common.StatusVerified
	}
	return common.StatusPending
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
