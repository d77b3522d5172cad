package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/attendify/attendify-api/internal/models"
	appErrors "github.com/attendify/attendify-api/pkg/errors"
)

type classroomRepository interface {
	ListActive(ctx context.Context) ([]models.Classroom, error)
	FindByCode(ctx context.Context, code string) (*models.Classroom, error)
}

type classStudentRepository interface {
	ListByClass(ctx context.Context, classCode string) ([]models.Student, error)
}

// ClassroomService exposes the instructor-facing classroom views.
type ClassroomService struct {
	classrooms classroomRepository
	students   classStudentRepository
	logger     *zap.Logger
}

// NewClassroomService constructs the service.
func NewClassroomService(classrooms classroomRepository, students classStudentRepository, logger *zap.Logger) *ClassroomService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomService{classrooms: classrooms, students: students, logger: logger}
}

// List returns all non-archived classrooms.
func (s *ClassroomService) List(ctx context.Context) ([]models.Classroom, error) {
	classrooms, err := s.classrooms.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classrooms")
	}
	return classrooms, nil
}

// Get returns one classroom by code.
func (s *ClassroomService) Get(ctx context.Context, code string) (*models.Classroom, error) {
	classroom, err := s.classrooms.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "classroom not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classroom")
	}
	return classroom, nil
}

// Students returns the roster of a classroom.
func (s *ClassroomService) Students(ctx context.Context, code string) ([]models.Student, error) {
	if _, err := s.Get(ctx, code); err != nil {
		return nil, err
	}
	students, err := s.students.ListByClass(ctx, code)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}
