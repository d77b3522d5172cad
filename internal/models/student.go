package models

import "time"

// Student is enrolled in exactly one classroom, identified by its class code.
type Student struct {
	StudentID string    `db:"student_id" json:"student_id"`
	ClassCode string    `db:"class_code" json:"class_code"`
	FullName  string    `db:"full_name" json:"full_name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter scopes student listing.
type StudentFilter struct {
	ClassCode string
	Search    string
	Page      int
	PageSize  int
}
