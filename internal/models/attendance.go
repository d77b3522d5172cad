package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// AttendanceRecord is a single attendance entry, created either by a student
// check-in or synthetically by the absence sweep.
type AttendanceRecord struct {
	ID            string           `db:"id" json:"id"`
	ClassCode     string           `db:"class_code" json:"class_code"`
	StudentID     string           `db:"student_id" json:"student_id"`
	StudentName   string           `db:"student_name" json:"student_name"`
	Subject       *string          `db:"subject" json:"subject,omitempty"`
	Status        AttendanceStatus `db:"status" json:"status"`
	IsLate        bool             `db:"is_late" json:"is_late"`
	Timestamp     time.Time        `db:"timestamp" json:"timestamp"`
	SubmittedTime time.Time        `db:"submitted_time" json:"submitted_time"`
	ProofImage    *string          `db:"proof_image" json:"proof_image,omitempty"`
	Excuse        *string          `db:"excuse" json:"excuse,omitempty"`
	ExcuseFile    *string          `db:"excuse_file" json:"excuse_file,omitempty"`
	Geolocation   *string          `db:"geolocation" json:"geolocation,omitempty"`
}

// AttendanceFilter scopes attendance listing queries.
type AttendanceFilter struct {
	ClassCode string
	StudentID string
	Status    *AttendanceStatus
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// ClassReportRow is one student's line in a classroom day report.
type ClassReportRow struct {
	StudentID   string           `db:"student_id" json:"student_id"`
	StudentName string           `db:"student_name" json:"student_name"`
	Status      AttendanceStatus `db:"status" json:"status"`
	IsLate      bool             `db:"is_late" json:"is_late"`
	Timestamp   time.Time        `db:"timestamp" json:"timestamp"`
}
