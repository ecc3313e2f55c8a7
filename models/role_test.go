package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func user(id uint, role Role) *User {
	return &User{ID: id, Role: role}
}

func TestCanCreatePost(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"nil user", nil, false},
		{"reader", user(1, RoleUser), false},
		{"author", user(1, RoleAuthor), true},
		{"admin", user(1, RoleAdmin), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanCreatePost(tt.user))
		})
	}
}

func TestCanEditPost(t *testing.T) {
	post := &Post{ID: 10, AuthorID: 1}

	tests := []struct {
		name string
		user *User
		post *Post
		want bool
	}{
		{"nil user", nil, post, false},
		{"nil post", user(1, RoleAuthor), nil, false},
		{"owner", user(1, RoleAuthor), post, true},
		{"owner with reader role", user(1, RoleUser), post, true},
		{"other author", user(2, RoleAuthor), post, false},
		{"other reader", user(2, RoleUser), post, false},
		{"admin", user(3, RoleAdmin), post, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanEditPost(tt.user, tt.post))
			// Deletion follows the same ownership rule.
			assert.Equal(t, tt.want, CanDeletePost(tt.user, tt.post))
		})
	}
}

func TestCanModerateComment(t *testing.T) {
	ownerID := uint(7)
	owned := &Comment{ID: 1, UserID: &ownerID, Username: "writer"}
	anonymous := &Comment{ID: 2, Username: "visitor"}

	tests := []struct {
		name    string
		user    *User
		comment *Comment
		want    bool
	}{
		{"nil user", nil, owned, false},
		{"owner", user(7, RoleUser), owned, true},
		{"other user", user(8, RoleUser), owned, false},
		{"admin on owned", user(9, RoleAdmin), owned, true},
		{"admin on anonymous", user(9, RoleAdmin), anonymous, true},
		{"author on anonymous", user(7, RoleAuthor), anonymous, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModerateComment(tt.user, tt.comment))
		})
	}
}

func TestUserAdminCapabilities(t *testing.T) {
	admin := user(1, RoleAdmin)
	reader := user(2, RoleUser)

	assert.True(t, CanManageUsers(admin))
	assert.False(t, CanManageUsers(reader))
	assert.False(t, CanManageUsers(nil))

	assert.True(t, CanViewUser(admin, 2))
	assert.True(t, CanViewUser(reader, 2))
	assert.False(t, CanViewUser(reader, 1))
	assert.False(t, CanViewUser(nil, 1))

	assert.True(t, CanUpdateUser(admin, 2))
	assert.False(t, CanUpdateUser(reader, 1))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("USER"))
	assert.True(t, ValidRole("AUTHOR"))
	assert.True(t, ValidRole("ADMIN"))
	assert.False(t, ValidRole("user"))
	assert.False(t, ValidRole("ROOT"))
	assert.False(t, ValidRole(""))
}
