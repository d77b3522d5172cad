package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/attendify/attendify-api/internal/models"
)

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListByClass returns every student enrolled in the given classroom.
func (r *StudentRepository) ListByClass(ctx context.Context, classCode string) ([]models.Student, error) {
	query := `SELECT student_id, class_code, full_name, email, created_at, updated_at
FROM students
WHERE class_code = $1
ORDER BY full_name`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, classCode); err != nil {
		return nil, fmt.Errorf("list students for class %s: %w", classCode, err)
	}
	return students, nil
}

// FindByID returns one student by its identifier within a classroom.
func (r *StudentRepository) FindByID(ctx context.Context, classCode, studentID string) (*models.Student, error) {
	query := `SELECT student_id, class_code, full_name, email, created_at, updated_at
FROM students
WHERE class_code = $1 AND student_id = $2`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, classCode, studentID); err != nil {
		return nil, err
	}
	return &student, nil
}
