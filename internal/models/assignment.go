package models

import "time"

// Assignment is course-scoped work owned by the course instructor.
type Assignment struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Instructions string    `json:"instructions"`
	DueDate      time.Time `json:"dueDate"`
	MaxPoints    int       `json:"maxPoints"`
	Course       CourseRef `json:"course"`
	Teacher      UserRef   `json:"teacher"`
	DateCreated  time.Time `json:"dateCreated"`
	DateUpdated  time.Time `json:"dateUpdated"`
}

// AssignmentFilter narrows the upstream assignment query.
type AssignmentFilter struct {
	CourseID  string
	TeacherID string
	DueBefore *time.Time
	DueAfter  *time.Time
	PageQuery
}
