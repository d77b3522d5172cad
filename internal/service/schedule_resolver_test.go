package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendify/attendify-api/internal/models"
)

func mondayAt(hour, minute int) time.Time {
	// 2026-08-31 is a Monday.
	return time.Date(2026, time.August, 31, hour, minute, 0, 0, time.UTC)
}

func TestScheduleResolver_FindEndedSessions_Window(t *testing.T) {
	classroom := models.Classroom{
		Code: "CS101",
		Sessions: []models.Session{
			{Day: "Monday", StartTime: "09:00", EndTime: "10:00"},
		},
	}
	resolver := NewScheduleResolver(30*time.Minute, nil)

	tests := []struct {
		name   string
		now    time.Time
		expect int
	}{
		{name: "just after end", now: mondayAt(10, 1), expect: 1},
		{name: "near window edge", now: mondayAt(10, 29), expect: 1},
		{name: "exactly at end", now: mondayAt(10, 0), expect: 0},
		{name: "exactly at window edge", now: mondayAt(10, 30), expect: 0},
		{name: "past the window", now: mondayAt(11, 0), expect: 0},
		{name: "before the session ends", now: mondayAt(9, 30), expect: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ended := resolver.FindEndedSessions(classroom, tt.now)
			assert.Len(t, ended, tt.expect)
		})
	}
}

func TestScheduleResolver_FindEndedSessions_DayMatching(t *testing.T) {
	classroom := models.Classroom{
		Code: "CS101",
		Sessions: []models.Session{
			{Day: "Tuesday", StartTime: "09:00", EndTime: "10:00"},
			{Day: "monday", StartTime: "09:00", EndTime: "10:00"},
		},
	}
	resolver := NewScheduleResolver(30*time.Minute, nil)

	ended := resolver.FindEndedSessions(classroom, mondayAt(10, 5))
	require.Len(t, ended, 1)
	assert.Equal(t, "monday", ended[0].Session.Day)
	assert.Equal(t, mondayAt(10, 0), ended[0].EndedAt)
}

func TestScheduleResolver_FindEndedSessions_MalformedEndTime(t *testing.T) {
	classroom := models.Classroom{
		Code: "CS101",
		Sessions: []models.Session{
			{Day: "Monday", StartTime: "09:00", EndTime: "banana"},
			{Day: "Monday", StartTime: "09:00", EndTime: "25:00"},
			{Day: "Monday", StartTime: "09:00", EndTime: "09:61"},
			{Day: "Monday", StartTime: "09:00", EndTime: "10:00"},
		},
	}
	resolver := NewScheduleResolver(30*time.Minute, nil)

	ended := resolver.FindEndedSessions(classroom, mondayAt(10, 5))
	require.Len(t, ended, 1)
	assert.Equal(t, "10:00", ended[0].Session.EndTime)
}

func TestScheduleResolver_FindEndedSessions_EmptySchedule(t *testing.T) {
	resolver := NewScheduleResolver(0, nil)
	assert.Empty(t, resolver.FindEndedSessions(models.Classroom{Code: "CS101"}, mondayAt(10, 5)))
}

func TestScheduleResolver_FindEndedSessions_MultipleMatches(t *testing.T) {
	classroom := models.Classroom{
		Code: "CS101",
		Sessions: []models.Session{
			{Day: "Monday", StartTime: "08:00", EndTime: "09:50"},
			{Day: "Monday", StartTime: "09:00", EndTime: "10:00"},
		},
	}
	resolver := NewScheduleResolver(30*time.Minute, nil)

	ended := resolver.FindEndedSessions(classroom, mondayAt(10, 10))
	assert.Len(t, ended, 2)
}
