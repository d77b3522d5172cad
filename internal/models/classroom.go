package models

import "time"

// Classroom is a named group of enrolled students following a weekly session
// schedule. The schedule is embedded in the classroom document rather than
// stored as standalone rows.
type Classroom struct {
	Code       string    `db:"code" json:"code"`
	Name       string    `db:"name" json:"name"`
	Instructor string    `db:"instructor" json:"instructor"`
	Archived   bool      `db:"archived" json:"archived"`
	Sessions   []Session `json:"sessions"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// Session is one weekly recurring time block within a classroom's schedule.
// Times are wall-clock "HH:MM" strings in the server's local convention.
type Session struct {
	Day       string  `json:"day"`
	StartTime string  `json:"startTime"`
	EndTime   string  `json:"endTime"`
	Subject   *string `json:"subject,omitempty"`
}
