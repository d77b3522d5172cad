package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/attendify/attendify-api/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ExistsBetween reports whether the student has any attendance record, of any
// status, with a timestamp inside the inclusive range.
func (r *AttendanceRepository) ExistsBetween(ctx context.Context, classCode, studentID string, from, to time.Time) (bool, error) {
	query := `SELECT EXISTS (
SELECT 1 FROM attendance_records
WHERE class_code = $1 AND student_id = $2 AND timestamp >= $3 AND timestamp <= $4)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, classCode, studentID, from, to); err != nil {
		return false, fmt.Errorf("attendance exists for %s/%s: %w", classCode, studentID, err)
	}
	return exists, nil
}

// Insert stores a new attendance record and returns its id.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	query := `INSERT INTO attendance_records
(id, class_code, student_id, student_name, subject, status, is_late, timestamp, submitted_time, proof_image, excuse, excuse_file, geolocation)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	if _, err := r.db.ExecContext(ctx, query,
		record.ID, record.ClassCode, record.StudentID, record.StudentName,
		record.Subject, record.Status, record.IsLate, record.Timestamp, record.SubmittedTime,
		record.ProofImage, record.Excuse, record.ExcuseFile, record.Geolocation,
	); err != nil {
		return "", fmt.Errorf("insert attendance record: %w", err)
	}
	return record.ID, nil
}

// List returns attendance records matching the filter, newest first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassCode != "" {
		where = append(where, fmt.Sprintf("class_code = $%d", len(args)+1))
		args = append(args, filter.ClassCode)
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("timestamp >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("timestamp <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, class_code, student_id, student_name, subject, status, is_late, timestamp, submitted_time, proof_image, excuse, excuse_file, geolocation
FROM attendance_records
WHERE %s
ORDER BY timestamp DESC
LIMIT %d OFFSET %d`, whereClause, size, offset)

	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance records: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM attendance_records WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance records: %w", err)
	}
	return records, total, nil
}

// ClassReport returns every record for a class within the inclusive day range.
func (r *AttendanceRepository) ClassReport(ctx context.Context, classCode string, from, to time.Time) ([]models.ClassReportRow, error) {
	query := `SELECT student_id, student_name, status, is_late, timestamp
FROM attendance_records
WHERE class_code = $1 AND timestamp >= $2 AND timestamp <= $3
ORDER BY student_name`
	var rows []models.ClassReportRow
	if err := r.db.SelectContext(ctx, &rows, query, classCode, from, to); err != nil {
		return nil, fmt.Errorf("class report for %s: %w", classCode, err)
	}
	return rows, nil
}
