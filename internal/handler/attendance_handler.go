package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/attendify/attendify-api/internal/models"
	"github.com/attendify/attendify-api/internal/service"
	appErrors "github.com/attendify/attendify-api/pkg/errors"
	"github.com/attendify/attendify-api/pkg/response"
)

// AttendanceHandler exposes check-in and attendance views.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// CheckIn godoc
// @Summary Student check-in
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.CheckInRequest true "Check-in payload"
// @Success 201 {object} response.Envelope
// @Router /attendance/check-in [post]
func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req service.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.attendance.CheckIn(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param classCode query string false "Filter by classroom"
// @Param studentId query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Param from query string false "Range start (RFC3339)"
// @Param to query string false "Range end (RFC3339)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	var filter models.AttendanceFilter
	filter.ClassCode = c.Query("classCode")
	filter.StudentID = c.Query("studentId")
	if status := c.Query("status"); status != "" {
		st := models.AttendanceStatus(status)
		if !st.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status filter"))
			return
		}
		filter.Status = &st
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid 'from' value, expected RFC3339"))
			return
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid 'to' value, expected RFC3339"))
			return
		}
		filter.To = &t
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil {
		filter.PageSize = size
	}

	records, pagination, err := h.attendance.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// ClassReport godoc
// @Summary Classroom day report
// @Tags Attendance
// @Produce json
// @Param code path string true "Class code"
// @Param date query string false "Report date (YYYY-MM-DD, defaults to today)"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{code}/report [get]
func (h *AttendanceHandler) ClassReport(c *gin.Context) {
	date, err := reportDate(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.attendance.ClassReport(c.Request.Context(), c.Param("code"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportClassReport godoc
// @Summary Export a classroom day report
// @Tags Attendance
// @Produce text/csv,application/pdf
// @Param code path string true "Class code"
// @Param date query string false "Report date (YYYY-MM-DD, defaults to today)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} byte
// @Router /classrooms/{code}/report/export [get]
func (h *AttendanceHandler) ExportClassReport(c *gin.Context) {
	date, err := reportDate(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	code := c.Param("code")
	format := c.DefaultQuery("format", "csv")
	data, contentType, err := h.attendance.ExportClassReport(c.Request.Context(), code, date, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	ext := "csv"
	if contentType == "application/pdf" {
		ext = "pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="attendance-%s-%s.%s"`, code, date.Format("2006-01-02"), ext))
	c.Data(http.StatusOK, contentType, data)
}

// StudentHistory godoc
// @Summary Student attendance history
// @Tags Attendance
// @Produce json
// @Param code path string true "Class code"
// @Param id path string true "Student ID"
// @Param from query string false "Range start (RFC3339)"
// @Param to query string false "Range end (RFC3339)"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{code}/students/{id}/history [get]
func (h *AttendanceHandler) StudentHistory(c *gin.Context) {
	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid 'from' value, expected RFC3339"))
			return
		}
		from = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid 'to' value, expected RFC3339"))
			return
		}
		to = &t
	}
	records, err := h.attendance.StudentHistory(c.Request.Context(), c.Param("code"), c.Param("id"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

func reportDate(c *gin.Context) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Now(), nil
	}
	date, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	return date, nil
}
