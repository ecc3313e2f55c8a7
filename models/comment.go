package models

import (
	"sort"
	"time"

	"gorm.io/gorm"
)

// Comment is a reply to a post. Threads are one level deep: a comment either
// has ParentID == nil (top-level) or references a top-level comment.
// Anonymous comments carry a display Username and no UserID.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Username  string    `gorm:"size:64;not null" json:"username"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	ParentID  *uint     `gorm:"index" json:"parent_id"`
	UserID    *uint     `gorm:"index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	Post      *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`

	// UserSummary is the wire shape of the linked account; the full row
	// stays off public responses. Populated from User by SummarizeUser.
	UserSummary *CommentUser `gorm:"-" json:"user,omitempty"`

	// Replies is populated by BuildCommentTree, not preloaded by gorm.
	Replies []Comment `gorm:"-" json:"replies,omitempty"`
}

// CommentUser is the public shape of an identified commenter. It carries no
// email or provider linkage.
type CommentUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// SummarizeUser fills UserSummary from the preloaded User row.
func (c *Comment) SummarizeUser() {
	if c.User != nil {
		c.UserSummary = &CommentUser{ID: c.User.ID, Username: c.User.Username}
	}
}

// BeforeUpdate refreshes the UpdatedAt timestamp.
func (c *Comment) BeforeUpdate(tx *gorm.DB) error {
	c.UpdatedAt = time.Now()
	return nil
}

// CommentAuthor is the tagged view of comment authorship. Ownership checks
// consume this instead of chasing the nullable foreign key.
type CommentAuthor struct {
	Identified  bool
	UserID      uint   // valid only when Identified
	DisplayName string
	Email       string
}

// Author returns the tagged authorship of the comment.
func (c *Comment) Author() CommentAuthor {
	if c.UserID != nil {
		return CommentAuthor{Identified: true, UserID: *c.UserID, DisplayName: c.Username, Email: c.Email}
	}
	return CommentAuthor{DisplayName: c.Username, Email: c.Email}
}

// BuildCommentTree assembles a flat comment list into the one-level thread
// shape: top-level comments newest-first, each carrying its replies
// oldest-first. Top-level order surfaces fresh discussion; a thread itself
// reads front-to-back.
func BuildCommentTree(comments []Comment) []Comment {
	for i := range comments {
		comments[i].SummarizeUser()
	}

	var top []Comment
	replies := make(map[uint][]Comment)
	for _, c := range comments {
		if c.ParentID == nil {
			top = append(top, c)
		} else {
			replies[*c.ParentID] = append(replies[*c.ParentID], c)
		}
	}

	sort.SliceStable(top, func(i, j int) bool {
		return top[i].CreatedAt.After(top[j].CreatedAt)
	})
	for i := range top {
		rs := replies[top[i].ID]
		sort.SliceStable(rs, func(a, b int) bool {
			return rs[a].CreatedAt.Before(rs[b].CreatedAt)
		})
		top[i].Replies = rs
	}
	return top
}
