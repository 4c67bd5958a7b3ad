package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category groups published content. Categories double as industries for
// case studies.
type Category struct {
	CategoryID      uuid.UUID `json:"id"` // UUIDv7
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description,omitempty"`
	Order           int       `json:"order"`
	IsActive        bool      `json:"is_active"`
	MetaTitle       string    `json:"meta_title,omitempty"`
	MetaDescription string    `json:"meta_description,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Tag labels published content.
type Tag struct {
	TagID       uuid.UUID `json:"id"` // UUIDv7
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Client is a customer referenced by case studies.
type Client struct {
	ClientID    uuid.UUID `json:"id"` // UUIDv7
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Website     string    `json:"website,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BlogPost is publishable content. Visibility for non-staff readers is a
// derived filter: IsPublished must be set and PublishedAt must be at or
// before now.
type BlogPost struct {
	PostID          uuid.UUID   `json:"id"` // UUIDv7
	Title           string      `json:"title"`
	Slug            string      `json:"slug"`
	Content         string      `json:"content"`
	Excerpt         string      `json:"excerpt,omitempty"`
	AuthorID        uuid.UUID   `json:"author"`
	CategoryIDs     []uuid.UUID `json:"categories,omitempty"`
	TagIDs          []uuid.UUID `json:"tags,omitempty"`
	ReadTime        int         `json:"read_time"`
	Views           int64       `json:"views"`
	Featured        bool        `json:"featured"`
	AllowComments   bool        `json:"allow_comments"`
	MetaTitle       string      `json:"meta_title,omitempty"`
	MetaDescription string      `json:"meta_description,omitempty"`
	IsPublished     bool        `json:"is_published"`
	PublishedAt     *time.Time  `json:"published_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// VisibleAt reports whether the post is publicly visible at t.
func (p *BlogPost) VisibleAt(t time.Time) bool {
	return p.IsPublished && p.PublishedAt != nil && !p.PublishedAt.After(t)
}

// CaseStudy is publishable content describing work for a client.
type CaseStudy struct {
	StudyID         uuid.UUID      `json:"id"` // UUIDv7
	Title           string         `json:"title"`
	Slug            string         `json:"slug"`
	Content         string         `json:"content"`
	Excerpt         string         `json:"excerpt,omitempty"`
	ClientID        uuid.UUID      `json:"client"`
	IndustryID      *uuid.UUID     `json:"industry,omitempty"`
	CategoryIDs     []uuid.UUID    `json:"categories,omitempty"`
	TagIDs          []uuid.UUID    `json:"tags,omitempty"`
	KeyResults      map[string]any `json:"key_results,omitempty"`
	Technologies    []string       `json:"technologies,omitempty"`
	Testimonial     string         `json:"testimonial,omitempty"`
	ReadTime        int            `json:"read_time"`
	Views           int64          `json:"views"`
	Featured        bool           `json:"featured"`
	AllowComments   bool           `json:"allow_comments"`
	MetaTitle       string         `json:"meta_title,omitempty"`
	MetaDescription string         `json:"meta_description,omitempty"`
	IsPublished     bool           `json:"is_published"`
	PublishedAt     *time.Time     `json:"published_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// VisibleAt reports whether the case study is publicly visible at t.
func (c *CaseStudy) VisibleAt(t time.Time) bool {
	return c.IsPublished && c.PublishedAt != nil && !c.PublishedAt.After(t)
}

// Comment is a reader comment on a blog post or case study. A comment is
// pending until approved; the approve and mark-spam actions keep IsApproved
// and IsSpam mutually exclusive even though the stored fields are
// independent.
type Comment struct {
	CommentID   uuid.UUID  `json:"id"` // UUIDv7
	Content     string     `json:"content"`
	AuthorID    uuid.UUID  `json:"author"`
	BlogPostID  *uuid.UUID `json:"blog_post,omitempty"`
	CaseStudyID *uuid.UUID `json:"case_study,omitempty"`
	ParentID    *uuid.UUID `json:"parent_comment,omitempty"`
	IsApproved  bool       `json:"is_approved"`
	IsSpam      bool       `json:"is_spam"`
	IPAddress   string     `json:"-"`
	UserAgent   string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify converts a title into a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
