package models

import "time"

// Course is owned by its instructor; only the instructor or an admin may
// mutate it.
type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Syllabus    string    `json:"syllabus"`
	Category    string    `json:"category"`
	Duration    int       `json:"duration"`
	MaxStudents int       `json:"maxStudents"`
	Instructor  UserRef   `json:"instructor"`
	IsActive    bool      `json:"isActive"`
	DateCreated time.Time `json:"dateCreated"`
	DateUpdated time.Time `json:"dateUpdated"`
}

// CourseFilter narrows the upstream course query.
type CourseFilter struct {
	Category     string
	InstructorID string
	IsActive     *bool
	Search       string
	PageQuery
}

// Enrollment links a student to a course and tracks lesson progress.
type Enrollment struct {
	ID             string    `json:"id"`
	Student        UserRef   `json:"student"`
	Course         CourseRef `json:"course"`
	LessonProgress int       `json:"lessonProgress"`
	DateCreated    time.Time `json:"dateCreated"`
}

// CourseRef is the lightweight course reference embedded in other entities.
type CourseRef struct {
	ID    string `json:"id"`
	Title string `json:"title,omitempty"`
}
