package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"punctuation stripped", "Hello, World!", "hello-world"},
		{"multiple spaces collapsed", "a   b    c", "a-b-c"},
		{"existing hyphens kept", "pre-release notes", "pre-release-notes"},
		{"hyphen runs collapsed", "a -- b", "a-b"},
		{"leading and trailing trimmed", "  -hello-  ", "hello"},
		{"digits kept", "Top 10 Posts of 2024", "top-10-posts-of-2024"},
		{"non-latin dropped", "héllo wörld", "hllo-wrld"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.title))
		})
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	title := "The Same Title, Twice!"
	assert.Equal(t, Slugify(title), Slugify(title))
}

func TestUniqueSlug(t *testing.T) {
	got := UniqueSlug("hello-world")
	assert.True(t, strings.HasPrefix(got, "hello-world-"))
	assert.Greater(t, len(got), len("hello-world-"))
}
