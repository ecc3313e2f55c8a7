package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarkPublishedSetsTimestampOnce(t *testing.T) {
	post := Post{Title: "hello"}
	assert.Nil(t, post.PublishedAt)

	first := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	post.MarkPublished(true, first)
	assert.True(t, post.Published)
	assert.NotNil(t, post.PublishedAt)
	assert.Equal(t, first, *post.PublishedAt)

	// Unpublishing flips the flag but never clears the timestamp.
	post.MarkPublished(false, first.Add(time.Hour))
	assert.False(t, post.Published)
	assert.Equal(t, first, *post.PublishedAt)

	// Republishing keeps the original first-publish time.
	post.MarkPublished(true, first.Add(2*time.Hour))
	assert.True(t, post.Published)
	assert.Equal(t, first, *post.PublishedAt)
}

func TestMarkPublishedDraftStaysUnstamped(t *testing.T) {
	post := Post{Title: "draft"}
	post.MarkPublished(false, time.Now())
	assert.False(t, post.Published)
	assert.Nil(t, post.PublishedAt)
}
