package controllers

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quillpress/quillpress/models"
	"github.com/quillpress/quillpress/utils"
)

func TestCommentCachePrefixes(t *testing.T) {
	// Create and delete change per-post counts, so the cached post list
	// must go stale too.
	assert.Equal(t,
		[]string{utils.CachePostDetailPrefix, utils.CachePostListPrefix},
		commentCachePrefixes(true))

	// A content edit only touches the detail view.
	assert.Equal(t,
		[]string{utils.CachePostDetailPrefix},
		commentCachePrefixes(false))
}

func TestModerationView(t *testing.T) {
	ownerID := uint(7)
	comments := []models.Comment{
		{
			ID:       1,
			PostID:   3,
			Content:  "flagged",
			Username: "alice",
			UserID:   &ownerID,
			User: &models.User{
				ID:       7,
				Username: "alice",
				Email:    "alice@private.example",
				Role:     models.RoleUser,
			},
			Post: &models.Post{ID: 3, Title: "Hello", Slug: "hello", AuthorID: 2},
		},
		{ID: 2, PostID: 3, Content: "anon", Username: "guest"},
	}

	rows := moderationView(comments)
	assert.Len(t, rows, 2)

	b, err := json.Marshal(rows[0])
	assert.NoError(t, err)

	// Moderators see the full public user shape, email included.
	assert.Contains(t, string(b), "alice@private.example")

	// The post summary carries no empty author object or publish fields.
	assert.Contains(t, string(b), `"post":{"id":3,"title":"Hello","slug":"hello","author_id":2}`)
	assert.NotContains(t, string(b), `"author"`)
	assert.NotContains(t, string(b), "published_at")

	assert.Nil(t, rows[1].User)
	assert.Nil(t, rows[1].Post)
}
