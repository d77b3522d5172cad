package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/attendify/attendify-api/internal/models"
)

// ClassroomRepository handles persistence for classrooms and their embedded
// weekly session schedules.
type ClassroomRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewClassroomRepository constructs the repository.
func NewClassroomRepository(db *sqlx.DB, logger *zap.Logger) *ClassroomRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassroomRepository{db: db, logger: logger}
}

type classroomRow struct {
	Code       string          `db:"code"`
	Name       string          `db:"name"`
	Instructor string          `db:"instructor"`
	Archived   bool            `db:"archived"`
	Sessions   json.RawMessage `db:"sessions"`
	CreatedAt  sql.NullTime    `db:"created_at"`
	UpdatedAt  sql.NullTime    `db:"updated_at"`
}

func (r *ClassroomRepository) decode(row classroomRow) (models.Classroom, error) {
	c := models.Classroom{
		Code:       row.Code,
		Name:       row.Name,
		Instructor: row.Instructor,
		Archived:   row.Archived,
	}
	if row.CreatedAt.Valid {
		c.CreatedAt = row.CreatedAt.Time
	}
	if row.UpdatedAt.Valid {
		c.UpdatedAt = row.UpdatedAt.Time
	}
	if len(row.Sessions) > 0 {
		if err := json.Unmarshal(row.Sessions, &c.Sessions); err != nil {
			return models.Classroom{}, fmt.Errorf("decode sessions for class %s: %w", row.Code, err)
		}
	}
	return c, nil
}

// ListActive returns all non-archived classrooms. A classroom whose sessions
// column fails to decode is skipped with a log entry rather than failing the
// whole listing.
func (r *ClassroomRepository) ListActive(ctx context.Context) ([]models.Classroom, error) {
	query := `SELECT code, name, instructor, archived, sessions, created_at, updated_at
FROM classrooms
WHERE archived = FALSE
ORDER BY code`
	var rows []classroomRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list active classrooms: %w", err)
	}
	classrooms := make([]models.Classroom, 0, len(rows))
	for _, row := range rows {
		c, err := r.decode(row)
		if err != nil {
			r.logger.Warn("skipping classroom with malformed schedule", zap.String("class_code", row.Code), zap.Error(err))
			continue
		}
		classrooms = append(classrooms, c)
	}
	return classrooms, nil
}

// FindByCode returns one classroom including archived ones.
func (r *ClassroomRepository) FindByCode(ctx context.Context, code string) (*models.Classroom, error) {
	query := `SELECT code, name, instructor, archived, sessions, created_at, updated_at
FROM classrooms
WHERE code = $1`
	var row classroomRow
	if err := r.db.GetContext(ctx, &row, query, code); err != nil {
		return nil, err
	}
	c, err := r.decode(row)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
