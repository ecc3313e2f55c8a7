package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog entry owned by a single author. PublishedAt records the
// first transition to published and is never cleared by unpublishing.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:255;not null" json:"title"`
	Slug        string     `gorm:"size:255;uniqueIndex;not null" json:"slug"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	Published   bool       `gorm:"not null;default:false" json:"published"`
	PublishedAt *time.Time `json:"published_at"`
	AuthorID    uint       `gorm:"index;not null" json:"author_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Author      User       `gorm:"foreignKey:AuthorID" json:"author"`
	Comments    []Comment  `gorm:"foreignKey:PostID" json:"comments,omitempty"`

	// CommentCount is populated by list queries, not a column.
	CommentCount int64 `gorm:"-" json:"comment_count"`
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (p *Post) BeforeUpdate(tx *gorm.DB) error {
	p.UpdatedAt = time.Now()
	return nil
}

// MarkPublished flips the publish flag and stamps PublishedAt exactly once.
// Unpublishing leaves the timestamp untouched.
func (p *Post) MarkPublished(published bool, now time.Time) {
	p.Published = published
	if published && p.PublishedAt == nil {
		t := now
		p.PublishedAt = &t
	}
}
