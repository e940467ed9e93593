package models

import "time"

// ForumThread is a discussion thread. Lock and pin are admin operations.
type ForumThread struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Category    string    `json:"category"`
	IsPinned    bool      `json:"isPinned"`
	IsLocked    bool      `json:"isLocked"`
	IsActive    bool      `json:"isActive"`
	Likes       int       `json:"likes"`
	Views       int       `json:"views"`
	Author      UserRef   `json:"author"`
	DateCreated time.Time `json:"dateCreated"`
	DateUpdated time.Time `json:"dateUpdated"`
}

// ForumPost is a reply inside a thread. ParentPost supports exactly one
// nesting level; a post whose parent already has a parent is rejected.
type ForumPost struct {
	ID          string     `json:"id"`
	Body        string     `json:"body"`
	Author      UserRef    `json:"author"`
	Thread      ThreadRef  `json:"thread"`
	ParentPost  *ThreadRef `json:"parentPost,omitempty"`
	DateCreated time.Time  `json:"dateCreated"`
	DateUpdated time.Time  `json:"dateUpdated"`
}

// ThreadRef is a lightweight reference to a thread or post.
type ThreadRef struct {
	ID string `json:"id"`
}

// ThreadFilter narrows the upstream thread query.
type ThreadFilter struct {
	Category string
	AuthorID string
	IsPinned *bool
	IsActive *bool
	Search   string
	PageQuery
}

// PostFilter narrows the upstream post query.
type PostFilter struct {
	ThreadID string
	AuthorID string
	PageQuery
}
