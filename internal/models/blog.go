package models

import "time"

// BlogStatus is the lifecycle state of a post.
type BlogStatus string

const (
	BlogStatusDraft     BlogStatus = "DRAFT"
	BlogStatusPublished BlogStatus = "PUBLISHED"
	BlogStatusArchived  BlogStatus = "ARCHIVED"
)

// Valid reports whether the status is a known value.
func (s BlogStatus) Valid() bool {
	switch s {
	case BlogStatusDraft, BlogStatusPublished, BlogStatusArchived:
		return true
	}
	return false
}

// BlogPost mirrors the upstream blog entity.
type BlogPost struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt,omitempty"`
	Slug          string     `json:"slug"`
	Status        BlogStatus `json:"status"`
	Tags          []string   `json:"tags"`
	Category      string     `json:"category"`
	Likes         int        `json:"likes"`
	Views         int        `json:"views"`
	IsFeatured    bool       `json:"isFeatured"`
	AllowComments bool       `json:"allowComments"`
	Author        UserRef    `json:"author"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	DateCreated   time.Time  `json:"dateCreated"`
	DateUpdated   time.Time  `json:"dateUpdated"`
}

// BlogFilter narrows the upstream blog query.
type BlogFilter struct {
	Status     *BlogStatus
	Category   string
	Tag        string
	AuthorID   string
	IsFeatured *bool
	Search     string
	PageQuery
}
