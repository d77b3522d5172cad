package service

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/attendify/attendify-api/internal/models"
)

// DefaultGraceWindow bounds how long after a session ends the sweep may still
// retroactively mark absences. The sweep runs roughly every 15 minutes, so a
// 30 minute window still guarantees a hit when one run is missed.
const DefaultGraceWindow = 30 * time.Minute

// EndedSession pairs a session with the instant it ended on the current day.
type EndedSession struct {
	Session models.Session
	EndedAt time.Time
}

// ScheduleResolver decides which of a classroom's weekly sessions ended within
// the trailing grace window.
type ScheduleResolver struct {
	graceWindow time.Duration
	logger      *zap.Logger
}

// NewScheduleResolver constructs a resolver. A non-positive window falls back
// to DefaultGraceWindow.
func NewScheduleResolver(graceWindow time.Duration, logger *zap.Logger) *ScheduleResolver {
	if graceWindow <= 0 {
		graceWindow = DefaultGraceWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleResolver{graceWindow: graceWindow, logger: logger}
}

// FindEndedSessions returns the sessions of the classroom that ended after
// now-graceWindow and strictly before now. Sessions on another weekday or with
// a malformed end time are skipped; a malformed entry never aborts the rest of
// the classroom's schedule.
func (r *ScheduleResolver) FindEndedSessions(classroom models.Classroom, now time.Time) []EndedSession {
	if len(classroom.Sessions) == 0 {
		return nil
	}

	weekday := now.Weekday().String()
	var ended []EndedSession
	for _, session := range classroom.Sessions {
		if !strings.EqualFold(session.Day, weekday) {
			continue
		}
		hour, minute, ok := parseWallClock(session.EndTime)
		if !ok {
			r.logger.Warn("skipping session with malformed end time",
				zap.String("class_code", classroom.Code),
				zap.String("day", session.Day),
				zap.String("end_time", session.EndTime),
			)
			continue
		}
		endedAt := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if now.After(endedAt) && now.Sub(endedAt) < r.graceWindow {
			ended = append(ended, EndedSession{Session: session, EndedAt: endedAt})
		}
	}
	return ended
}

// parseWallClock parses an "HH:MM" wall-clock string.
func parseWallClock(value string) (hour, minute int, ok bool) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}
