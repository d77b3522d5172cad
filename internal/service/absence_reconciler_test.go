package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendify/attendify-api/internal/models"
)

type fakeStudentLister struct {
	students []models.Student
	err      error
}

func (f *fakeStudentLister) ListByClass(_ context.Context, _ string) ([]models.Student, error) {
	return f.students, f.err
}

type fakeAttendanceWriter struct {
	existing   map[string]bool
	existsErr  map[string]error
	insertErr  map[string]error
	inserted   []*models.AttendanceRecord
	existsArgs [][2]time.Time
}

func (f *fakeAttendanceWriter) ExistsBetween(_ context.Context, _, studentID string, from, to time.Time) (bool, error) {
	f.existsArgs = append(f.existsArgs, [2]time.Time{from, to})
	if err := f.existsErr[studentID]; err != nil {
		return false, err
	}
	return f.existing[studentID], nil
}

func (f *fakeAttendanceWriter) Insert(_ context.Context, record *models.AttendanceRecord) (string, error) {
	if err := f.insertErr[record.StudentID]; err != nil {
		return "", err
	}
	f.inserted = append(f.inserted, record)
	return "generated-id", nil
}

type fakeNotifier struct {
	notified []string
}

func (f *fakeNotifier) NotifyAbsence(_ context.Context, student models.Student, _ string, _ time.Time) {
	f.notified = append(f.notified, student.StudentID)
}

func TestAbsenceReconciler_MarksOnlyUnrecordedStudents(t *testing.T) {
	lister := &fakeStudentLister{students: []models.Student{
		{StudentID: "S1", FullName: "Ada"},
		{StudentID: "S2", FullName: "Ben"},
	}}
	writer := &fakeAttendanceWriter{existing: map[string]bool{"S2": true}}
	notifier := &fakeNotifier{}
	endedAt := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	submittedAt := endedAt.Add(12 * time.Minute)

	reconciler := NewAbsenceReconciler(lister, writer, notifier, func() time.Time { return submittedAt }, nil)
	subject := "Algorithms"
	count, err := reconciler.Reconcile(context.Background(), "CS101", models.Session{Day: "Monday", EndTime: "10:00", Subject: &subject}, endedAt)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, writer.inserted, 1)

	record := writer.inserted[0]
	assert.Equal(t, "S1", record.StudentID)
	assert.Equal(t, "Ada", record.StudentName)
	assert.Equal(t, models.AttendanceStatusAbsent, record.Status)
	assert.False(t, record.IsLate)
	assert.Equal(t, endedAt, record.Timestamp)
	assert.Equal(t, submittedAt, record.SubmittedTime)
	assert.Equal(t, []string{"S1"}, notifier.notified)
}

func TestAbsenceReconciler_IdempotentRerun(t *testing.T) {
	lister := &fakeStudentLister{students: []models.Student{{StudentID: "S1"}}}
	writer := &fakeAttendanceWriter{existing: map[string]bool{}}
	reconciler := NewAbsenceReconciler(lister, writer, nil, nil, nil)
	endedAt := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)
	session := models.Session{Day: "Monday", EndTime: "10:00"}

	count, err := reconciler.Reconcile(context.Background(), "CS101", session, endedAt)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The inserted record now exists, so the second run must do nothing.
	writer.existing["S1"] = true
	count, err = reconciler.Reconcile(context.Background(), "CS101", session, endedAt)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Len(t, writer.inserted, 1)
}

func TestAbsenceReconciler_DayBounds(t *testing.T) {
	lister := &fakeStudentLister{students: []models.Student{{StudentID: "S1"}}}
	writer := &fakeAttendanceWriter{}
	reconciler := NewAbsenceReconciler(lister, writer, nil, nil, nil)
	endedAt := time.Date(2026, time.August, 31, 23, 50, 0, 0, time.UTC)

	_, err := reconciler.Reconcile(context.Background(), "CS101", models.Session{Day: "Monday", EndTime: "23:50"}, endedAt)
	require.NoError(t, err)
	require.Len(t, writer.existsArgs, 1)

	from, to := writer.existsArgs[0][0], writer.existsArgs[0][1]
	assert.Equal(t, time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC), from)
	assert.True(t, to.Before(time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, to.After(time.Date(2026, time.August, 31, 23, 59, 59, 0, time.UTC)))
}

func TestAbsenceReconciler_ListFailureReturnsError(t *testing.T) {
	lister := &fakeStudentLister{err: errors.New("db down")}
	writer := &fakeAttendanceWriter{}
	reconciler := NewAbsenceReconciler(lister, writer, nil, nil, nil)

	count, err := reconciler.Reconcile(context.Background(), "CS101", models.Session{}, time.Now())
	assert.Error(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, writer.inserted)
}

func TestAbsenceReconciler_LookupFailureSkipsStudent(t *testing.T) {
	lister := &fakeStudentLister{students: []models.Student{
		{StudentID: "S1"},
		{StudentID: "S2"},
	}}
	writer := &fakeAttendanceWriter{existsErr: map[string]error{"S1": errors.New("timeout")}}
	reconciler := NewAbsenceReconciler(lister, writer, nil, nil, nil)
	endedAt := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)

	count, err := reconciler.Reconcile(context.Background(), "CS101", models.Session{Day: "Monday", EndTime: "10:00"}, endedAt)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, writer.inserted, 1)
	assert.Equal(t, "S2", writer.inserted[0].StudentID)
}

func TestAbsenceReconciler_InsertFailureDoesNotCount(t *testing.T) {
	lister := &fakeStudentLister{students: []models.Student{
		{StudentID: "S1"},
		{StudentID: "S2"},
	}}
	writer := &fakeAttendanceWriter{insertErr: map[string]error{"S1": errors.New("constraint")}}
	notifier := &fakeNotifier{}
	reconciler := NewAbsenceReconciler(lister, writer, notifier, nil, nil)
	endedAt := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)

	count, err := reconciler.Reconcile(context.Background(), "CS101", models.Session{Day: "Monday", EndTime: "10:00"}, endedAt)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []string{"S2"}, notifier.notified)
}
