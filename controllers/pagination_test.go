package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", "", 1, 10},
		{"explicit", "3", "25", 3, 25},
		{"zero page falls back", "0", "5", 1, 5},
		{"negative page falls back", "-2", "5", 1, 5},
		{"oversized limit falls back", "2", "500", 2, 10},
		{"garbage falls back", "abc", "xyz", 1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := parsePagination(tt.page, tt.limit, 10)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}

func TestPaginate(t *testing.T) {
	p := paginate(2, 10, 35)
	assert.Equal(t, 2, p.Current)
	assert.Equal(t, 4, p.Pages)
	assert.Equal(t, int64(35), p.Total)

	empty := paginate(1, 10, 0)
	assert.Equal(t, 0, empty.Pages)
	assert.Equal(t, int64(0), empty.Total)
}
