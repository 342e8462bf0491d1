package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/common"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/logging"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/services"
)

type handlers struct {
	reports ReportService
	log     logging.Logger
}

// analyze accepts the multipart form the mobile client posts: report_id,
// user_id, lat, lon, optional text and an optional image file.
func (h *handlers) analyze(c *gin.Context) {
	req, err := analyzeRequestFrom(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.reports.AnalyzeReport(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func analyzeRequestFrom(c *gin.Context) (services.AnalyzeRequest, error) {
	req := services.AnalyzeRequest{
		ReportID: c.PostForm("report_id"),
		UserID:   c.PostForm("user_id"),
	}
	if req.ReportID == "" || req.UserID == "" {
		return req, fmt.Errorf("%w: report_id and user_id are required", common.ErrorValidation)
	}

	var err error
	if req.Lat, err = floatForm(c, "lat"); err != nil {
		return req, err
	}
	if req.Lon, err = floatForm(c, "lon"); err != nil {
		return req, err
	}
	if text, ok := c.GetPostForm("text"); ok {
		req.Text = &text
	}

	fh, err := c.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	case err != nil:
		return req, fmt.Errorf("%w: image: %v", common.ErrorValidation, err)
	default:
		f, err := fh.Open()
		if err != nil {
			return req, fmt.Errorf("open upload: %w", err)
		}
		defer f.Close()
		if req.Image, err = io.ReadAll(f); err != nil {
			return req, fmt.Errorf("read upload: %w", err)
		}
	}
	return req, nil
}

func floatForm(c *gin.Context, name string) (float64, error) {
	raw, ok := c.GetPostForm(name)
	if !ok {
		return 0, fmt.Errorf("%w: %s is required", common.ErrorValidation, name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", common.ErrorValidation, name)
	}
	return v, nil
}

func (h *handlers) verifyForm(c *gin.Context) {
	h.verify(c, c.PostForm("report_id"))
}

func (h *handlers) verifyPath(c *gin.Context) {
	h.verify(c, c.Param("id"))
}

func (h *handlers) verify(c *gin.Context, reportID string) {
	res, err := h.reports.VerifyReport(c.Request.Context(), reportID, c.GetString(subjectKey))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) getReport(c *gin.Context) {
	res, err := h.reports.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handlers) listUserReports(c *gin.Context) {
	userID := c.Param("user_id")
	res, err := h.reports.ListUserReports(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "reports": res})
}

func (h *handlers) getUser(c *gin.Context) {
	res, err := h.reports.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// fail maps service errors onto status codes.
func (h *handlers) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		abort(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		abort(c, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrorAlreadyExists):
		abort(c, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		abort(c, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, common.ErrForbidden):
		abort(c, http.StatusForbidden, "forbidden")
	default:
		h.log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		abort(c, http.StatusInternalServerError, "internal error")
	}
}
