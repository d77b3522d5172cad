package models

import "time"

// SweepSummary aggregates one invocation of the absence reconciliation sweep.
type SweepSummary struct {
	ClassroomsScanned    int       `json:"classrooms_scanned"`
	SessionsMatched      int       `json:"sessions_matched"`
	StudentsMarkedAbsent int       `json:"students_marked_absent"`
	RanAt                time.Time `json:"ran_at"`
}

// SweepSessionDetail describes one matched session, returned when the sweep
// trigger is invoked with the debug flag.
type SweepSessionDetail struct {
	ClassCode    string    `json:"class_code"`
	Day          string    `json:"day"`
	EndTime      string    `json:"end_time"`
	EndedAt      time.Time `json:"ended_at"`
	MarkedAbsent int       `json:"marked_absent"`
}
