// Package httpapi exposes the report service as the JSON/form HTTP API used
// by the mobile and web clients.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/logging"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/auth"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/services"
)

// ReportService is the slice of services.ReportService the API uses.
type ReportService interface {
	AnalyzeReport(ctx context.Context, req services.AnalyzeRequest) (*services.VeracityResult, error)
	VerifyReport(ctx context.Context, reportID, verifiedBy string) (*services.VerificationResult, error)
	GetReport(ctx context.Context, reportID string) (*services.ReportView, error)
	ListUserReports(ctx context.Context, userID string) ([]services.ReportView, error)
	GetUser(ctx context.Context, userID string) (*services.UserView, error)
}

const (
	requestIDHeader = "X-Request-ID"
	subjectKey      = "subject"

	// maxUploadBytes bounds multipart bodies held in memory.
	maxUploadBytes = 16 << 20
)

// NewRouter builds the gin engine. driver is reported by the health check.
func NewRouter(rs ReportService, v *auth.Verifier, log logging.Logger, driver string) *gin.Engine {
	r := gin.New()
	r.MaxMultipartMemory = maxUploadBytes
	r.Use(gin.Recovery(), requestLogger(log))

	h := &handlers{reports: rs, log: log}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": driver})
	})
	r.POST("/analyze_report", h.analyze)
	r.GET("/reports/:id", h.getReport)
	r.GET("/reports/status/:user_id", h.listUserReports)
	r.GET("/users/:id", h.getUser)

	secured := r.Group("/", VerifierAuth(v))
	{
		secured.POST("/verify_report", h.verifyForm)
		secured.PUT("/reports/:id/verify", h.verifyPath)
	}
	return r
}

// VerifierAuth requires a bearer token with the verifier role. It passes
// everything through when v has no secret.
func VerifierAuth(v *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !v.Enabled() {
			c.Next()
			return
		}
		bearer := c.GetHeader("Authorization")
		if !strings.HasPrefix(bearer, "Bearer ") {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		subject, err := v.Authorize(bearer[len("Bearer "):])
		if err != nil {
			if errors.Is(err, common.ErrForbidden) {
				abort(c, http.StatusForbidden, "verifier role required")
				return
			}
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(subjectKey, subject)
		c.Next()
	}
}

func requestLogger(log logging.Logger) gin.HandlerFunc {
	log = log.With("module", "http_server")
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)

		start := time.Now()
		c.Next()
		log.Debug(c.Request.Context(), "http request",
			"request_id", id,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}

func abort(c *gin.Context, code int, detail string) {
	c.AbortWithStatusJSON(code, gin.H{"detail": detail})
}
