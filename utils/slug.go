package utils

import (
	"fmt"
	"strings"
	"time"
)

// Slugify derives a URL-safe slug from a post title: lowercase, strip
// anything outside [a-z0-9 -], spaces to hyphens, runs of hyphens collapsed.
// Deriving twice from the same title yields the same slug.
func Slugify(title string) string {
	lowered := strings.ToLower(title)

	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		}
	}

	slug := strings.Join(strings.Fields(b.String()), "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// UniqueSlug appends a timestamp token to disambiguate a colliding slug.
func UniqueSlug(slug string) string {
	return fmt.Sprintf("%s-%d", slug, time.Now().UnixMilli())
}
