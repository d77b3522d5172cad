package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/attendify/attendify-api/internal/models"
)

type studentLister interface {
	ListByClass(ctx context.Context, classCode string) ([]models.Student, error)
}

type attendanceWriter interface {
	ExistsBetween(ctx context.Context, classCode, studentID string, from, to time.Time) (bool, error)
	Insert(ctx context.Context, record *models.AttendanceRecord) (string, error)
}

// AbsenceNotifier is told about every synthetic absence record. Delivery is
// best-effort and must never fail the reconciliation.
type AbsenceNotifier interface {
	NotifyAbsence(ctx context.Context, student models.Student, classCode string, endedAt time.Time)
}

// AbsenceReconciler back-fills absent records for students without any
// attendance entry on the day a session ended.
type AbsenceReconciler struct {
	students   studentLister
	attendance attendanceWriter
	notifier   AbsenceNotifier
	clock      func() time.Time
	logger     *zap.Logger
}

// NewAbsenceReconciler constructs the reconciler. The notifier may be nil.
func NewAbsenceReconciler(students studentLister, attendance attendanceWriter, notifier AbsenceNotifier, clock func() time.Time, logger *zap.Logger) *AbsenceReconciler {
	if clock == nil {
		clock = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsenceReconciler{students: students, attendance: attendance, notifier: notifier, clock: clock, logger: logger}
}

// Reconcile inserts one synthetic absence record per enrolled student who has
// no attendance entry, of any status, on the calendar day of endedAt. It is
// idempotent per student per day: re-running after a record exists inserts
// nothing. Returns the number of absences inserted.
func (r *AbsenceReconciler) Reconcile(ctx context.Context, classCode string, session models.Session, endedAt time.Time) (int, error) {
	students, err := r.students.ListByClass(ctx, classCode)
	if err != nil {
		return 0, err
	}

	dayStart := time.Date(endedAt.Year(), endedAt.Month(), endedAt.Day(), 0, 0, 0, 0, endedAt.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Nanosecond)

	inserted := 0
	for _, student := range students {
		exists, err := r.attendance.ExistsBetween(ctx, classCode, student.StudentID, dayStart, dayEnd)
		if err != nil {
			// Skip rather than guess: inserting without a successful existence
			// check could duplicate a record the student already has.
			r.logger.Warn("attendance lookup failed, skipping student",
				zap.String("class_code", classCode),
				zap.String("student_id", student.StudentID),
				zap.Error(err),
			)
			continue
		}
		if exists {
			continue
		}

		record := &models.AttendanceRecord{
			ClassCode:     classCode,
			StudentID:     student.StudentID,
			StudentName:   student.FullName,
			Subject:       session.Subject,
			Status:        models.AttendanceStatusAbsent,
			IsLate:        false,
			Timestamp:     endedAt,
			SubmittedTime: r.clock(),
		}
		if _, err := r.attendance.Insert(ctx, record); err != nil {
			r.logger.Warn("failed to insert absence record",
				zap.String("class_code", classCode),
				zap.String("student_id", student.StudentID),
				zap.Error(err),
			)
			continue
		}
		inserted++
		if r.notifier != nil {
			r.notifier.NotifyAbsence(ctx, student, classCode, endedAt)
		}
	}
	return inserted, nil
}
