package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendify/attendify-api/internal/models"
)

func TestAttendanceRepository_ExistsBetween(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	from := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Nanosecond)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs("CS101", "S1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsBetween(context.Background(), "CS101", "S1", from, to)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_InsertGeneratesID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance_records")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.AttendanceRecord{
		ClassCode: "CS101",
		StudentID: "S1",
		Status:    models.AttendanceStatusAbsent,
		Timestamp: time.Now(),
	}
	id, err := repo.Insert(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_ListFiltersAndCounts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	columns := []string{"id", "class_code", "student_id", "student_name", "subject", "status", "is_late", "timestamp", "submitted_time", "proof_image", "excuse", "excuse_file", "geolocation"}
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM attendance_records")).
		WithArgs("CS101", "S1").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow("id-1", "CS101", "S1", "Ada", nil, "present", false, now, now, nil, nil, nil, nil))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance_records")).
		WithArgs("CS101", "S1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	records, total, err := repo.List(context.Background(), models.AttendanceFilter{
		ClassCode: "CS101",
		StudentID: "S1",
		Page:      1,
		PageSize:  10,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ada", records[0].StudentName)
	assert.Equal(t, 7, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepository_ClassReport(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAttendanceRepository(db)

	from := time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Nanosecond)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY student_name")).
		WithArgs("CS101", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "student_name", "status", "is_late", "timestamp"}).
			AddRow("S1", "Ada", "late", true, from.Add(9*time.Hour)))

	rows, err := repo.ClassReport(context.Background(), "CS101", from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, models.AttendanceStatusLate, rows[0].Status)
	assert.True(t, rows[0].IsLate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
