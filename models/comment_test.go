package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommentAuthor(t *testing.T) {
	ownerID := uint(3)
	identified := Comment{UserID: &ownerID, Username: "alice", Email: "alice@example.com"}
	anonymous := Comment{Username: "guest"}

	a := identified.Author()
	assert.True(t, a.Identified)
	assert.Equal(t, uint(3), a.UserID)
	assert.Equal(t, "alice", a.DisplayName)

	b := anonymous.Author()
	assert.False(t, b.Identified)
	assert.Equal(t, "guest", b.DisplayName)
}

func TestBuildCommentTree(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	parentA := uint(1)
	parentB := uint(2)

	comments := []Comment{
		{ID: 1, PostID: 9, CreatedAt: base},
		{ID: 2, PostID: 9, CreatedAt: base.Add(time.Hour)},
		{ID: 3, PostID: 9, ParentID: &parentA, CreatedAt: base.Add(3 * time.Hour)},
		{ID: 4, PostID: 9, ParentID: &parentA, CreatedAt: base.Add(2 * time.Hour)},
		{ID: 5, PostID: 9, ParentID: &parentB, CreatedAt: base.Add(4 * time.Hour)},
	}

	tree := BuildCommentTree(comments)

	// Top-level comments surface newest-first.
	assert.Len(t, tree, 2)
	assert.Equal(t, uint(2), tree[0].ID)
	assert.Equal(t, uint(1), tree[1].ID)

	// Replies read front-to-back, oldest-first.
	assert.Len(t, tree[0].Replies, 1)
	assert.Equal(t, uint(5), tree[0].Replies[0].ID)
	assert.Len(t, tree[1].Replies, 2)
	assert.Equal(t, uint(4), tree[1].Replies[0].ID)
	assert.Equal(t, uint(3), tree[1].Replies[1].ID)
}

func TestBuildCommentTreeEmpty(t *testing.T) {
	assert.Empty(t, BuildCommentTree(nil))
}

func TestCommentJSONHidesLinkedUserDetails(t *testing.T) {
	ownerID := uint(7)
	comments := []Comment{
		{
			ID:       1,
			PostID:   9,
			Content:  "nice post",
			Username: "alice",
			UserID:   &ownerID,
			User: &User{
				ID:       7,
				Username: "alice",
				Email:    "alice@private.example",
				Provider: "github",
			},
		},
	}

	b, err := json.Marshal(BuildCommentTree(comments))
	assert.NoError(t, err)

	// Identified commenters are exposed as id + username only.
	assert.Contains(t, string(b), `"user":{"id":7,"username":"alice"}`)
	assert.NotContains(t, string(b), "alice@private.example")
	assert.NotContains(t, string(b), "github")
}

func TestCommentJSONAnonymousHasNoUser(t *testing.T) {
	b, err := json.Marshal(BuildCommentTree([]Comment{
		{ID: 1, PostID: 9, Content: "hi", Username: "guest"},
	}))
	assert.NoError(t, err)
	assert.NotContains(t, string(b), `"user"`)
}
