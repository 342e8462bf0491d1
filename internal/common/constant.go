package common

// AccessTokenHeaderName is the gRPC metadata key carrying the verifier's
// access token. HTTP callers use the Authorization bearer header instead.
const AccessTokenHeaderName = "access_token"

// Wire statuses returned to callers. Stored statuses are lower case
// (see models.ReportStatus).
const (
	StatusPending  = "Pending"
	StatusVerified = "Verified"
)
