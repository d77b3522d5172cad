package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/attendify/attendify-api/internal/models"
	"github.com/attendify/attendify-api/pkg/mailer"
)

// NotifierService emails students when a synthetic absence record is written
// for them. Delivery failures are logged, never propagated.
type NotifierService struct {
	mailer mailer.Mailer
	logger *zap.Logger
}

// NewNotifierService constructs the notifier.
func NewNotifierService(m mailer.Mailer, logger *zap.Logger) *NotifierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotifierService{mailer: m, logger: logger}
}

// NotifyAbsence sends an absence notice to the student, when an email address
// is on file.
func (s *NotifierService) NotifyAbsence(ctx context.Context, student models.Student, classCode string, endedAt time.Time) {
	if s.mailer == nil || student.Email == nil || *student.Email == "" {
		return
	}
	msg := mailer.Message{
		ToName:  student.FullName,
		ToEmail: *student.Email,
		Subject: fmt.Sprintf("Marked absent in %s", classCode),
		Body: fmt.Sprintf(
			"Hi %s,\n\nYou were marked absent for the %s session that ended at %s because no check-in was recorded.\nIf this is a mistake, please contact your instructor.\n",
			student.FullName, classCode, endedAt.Format("Monday 15:04"),
		),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Warn("failed to send absence notification",
			zap.String("class_code", classCode),
			zap.String("student_id", student.StudentID),
			zap.Error(err),
		)
	}
}
