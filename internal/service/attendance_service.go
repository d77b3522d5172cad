package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/attendify/attendify-api/internal/models"
	appErrors "github.com/attendify/attendify-api/pkg/errors"
	"github.com/attendify/attendify-api/pkg/export"
)

type classroomReader interface {
	FindByCode(ctx context.Context, code string) (*models.Classroom, error)
}

type studentReader interface {
	FindByID(ctx context.Context, classCode, studentID string) (*models.Student, error)
}

type attendanceRepository interface {
	ExistsBetween(ctx context.Context, classCode, studentID string, from, to time.Time) (bool, error)
	Insert(ctx context.Context, record *models.AttendanceRecord) (string, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	ClassReport(ctx context.Context, classCode string, from, to time.Time) ([]models.ClassReportRow, error)
}

// AttendanceService coordinates student check-ins and instructor views.
type AttendanceService struct {
	classrooms    classroomReader
	students      studentReader
	attendance    attendanceRepository
	cache         *CacheService
	reportTTL     time.Duration
	lateThreshold time.Duration
	validator     *validator.Validate
	clock         func() time.Time
	logger        *zap.Logger
}

// AttendanceServiceConfig bundles construction options.
type AttendanceServiceConfig struct {
	Cache         *CacheService
	ReportTTL     time.Duration
	LateThreshold time.Duration
	Clock         func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(classrooms classroomReader, students studentReader, attendance attendanceRepository, validate *validator.Validate, logger *zap.Logger, cfg AttendanceServiceConfig) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	lateThreshold := cfg.LateThreshold
	if lateThreshold <= 0 {
		lateThreshold = 10 * time.Minute
	}
	reportTTL := cfg.ReportTTL
	if reportTTL <= 0 {
		reportTTL = 5 * time.Minute
	}
	return &AttendanceService{
		classrooms:    classrooms,
		students:      students,
		attendance:    attendance,
		cache:         cfg.Cache,
		reportTTL:     reportTTL,
		lateThreshold: lateThreshold,
		validator:     validate,
		clock:         clock,
		logger:        logger,
	}
}

// CheckInRequest is the student check-in payload.
type CheckInRequest struct {
	ClassCode   string  `json:"class_code" validate:"required"`
	StudentID   string  `json:"student_id" validate:"required"`
	Geolocation *string `json:"geolocation"`
	ProofImage  *string `json:"proof_image"`
}

// CheckIn records attendance for the session currently in progress. The
// student is marked late when the check-in happens after the session's start
// time plus the configured threshold.
func (s *AttendanceService) CheckIn(ctx context.Context, req CheckInRequest) (*models.AttendanceRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}

	classroom, err := s.classrooms.FindByCode(ctx, req.ClassCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	if classroom.Archived {
		return nil, appErrors.Clone(appErrors.ErrValidation, "classroom is archived")
	}

	student, err := s.students.FindByID(ctx, req.ClassCode, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student is not enrolled in this classroom")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	now := s.clock()
	session, startedAt, ok := s.activeSession(*classroom, now)
	if !ok {
		return nil, appErrors.ErrNoActiveSession
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)
	exists, err := s.attendance.ExistsBetween(ctx, req.ClassCode, req.StudentID, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing attendance")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for today")
	}

	isLate := now.After(startedAt.Add(s.lateThreshold))
	status := models.AttendanceStatusPresent
	if isLate {
		status = models.AttendanceStatusLate
	}

	record := &models.AttendanceRecord{
		ClassCode:     req.ClassCode,
		StudentID:     student.StudentID,
		StudentName:   student.FullName,
		Subject:       session.Subject,
		Status:        status,
		IsLate:        isLate,
		Timestamp:     now,
		SubmittedTime: now,
		Geolocation:   req.Geolocation,
		ProofImage:    req.ProofImage,
	}
	if _, err := s.attendance.Insert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, fmt.Sprintf("report:%s:*", req.ClassCode)); err != nil {
			s.logger.Warn("failed to invalidate report cache", zap.String("class_code", req.ClassCode), zap.Error(err))
		}
	}

	return record, nil
}

// activeSession returns the classroom session covering now, along with its
// start instant on today's date.
func (s *AttendanceService) activeSession(classroom models.Classroom, now time.Time) (models.Session, time.Time, bool) {
	weekday := now.Weekday().String()
	for _, session := range classroom.Sessions {
		if !strings.EqualFold(session.Day, weekday) {
			continue
		}
		startHour, startMin, okStart := parseWallClock(session.StartTime)
		endHour, endMin, okEnd := parseWallClock(session.EndTime)
		if !okStart || !okEnd {
			s.logger.Warn("skipping session with malformed time",
				zap.String("class_code", classroom.Code),
				zap.String("start_time", session.StartTime),
				zap.String("end_time", session.EndTime),
			)
			continue
		}
		startedAt := time.Date(now.Year(), now.Month(), now.Day(), startHour, startMin, 0, 0, now.Location())
		endedAt := time.Date(now.Year(), now.Month(), now.Day(), endHour, endMin, 0, 0, now.Location())
		if !now.Before(startedAt) && !now.After(endedAt) {
			return session, startedAt, true
		}
	}
	return models.Session{}, time.Time{}, false
}

// List returns paginated attendance records.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, *models.Pagination, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	filter.Page = page
	filter.PageSize = size

	records, total, err := s.attendance.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return records, pagination, nil
}

// ClassReport returns a classroom's attendance for one calendar day,
// served from cache when possible.
func (s *AttendanceService) ClassReport(ctx context.Context, classCode string, date time.Time) ([]models.ClassReportRow, error) {
	cacheKey := fmt.Sprintf("report:%s:%s", classCode, date.Format("2006-01-02"))
	if s.cache != nil {
		var cached []models.ClassReportRow
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return cached, nil
		}
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)
	rows, err := s.attendance.ClassReport(ctx, classCode, dayStart, dayEnd)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class report")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, rows, s.reportTTL); err != nil {
			s.logger.Warn("failed to cache class report", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return rows, nil
}

// StudentHistory returns a student's attendance records within a range.
func (s *AttendanceService) StudentHistory(ctx context.Context, classCode, studentID string, from, to *time.Time) ([]models.AttendanceRecord, error) {
	records, _, err := s.attendance.List(ctx, models.AttendanceFilter{
		ClassCode: classCode,
		StudentID: studentID,
		From:      from,
		To:        to,
		Page:      1,
		PageSize:  200,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch attendance history")
	}
	return records, nil
}

// ExportClassReport renders a class day report as CSV or PDF bytes.
func (s *AttendanceService) ExportClassReport(ctx context.Context, classCode string, date time.Time, format string) ([]byte, string, error) {
	rows, err := s.ClassReport(ctx, classCode, date)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Title:   fmt.Sprintf("Attendance %s %s", classCode, date.Format("2006-01-02")),
		Headers: []string{"Student ID", "Name", "Status", "Late", "Time"},
	}
	for _, row := range rows {
		late := "no"
		if row.IsLate {
			late = "yes"
		}
		table.Rows = append(table.Rows, []string{
			row.StudentID, row.StudentName, string(row.Status), late, row.Timestamp.Format("15:04"),
		})
	}

	switch strings.ToLower(format) {
	case "csv", "":
		data, err := export.CSV(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	case "pdf":
		data, err := export.PDF(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format, expected csv or pdf")
	}
}
