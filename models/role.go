package models

// Role governs coarse-grained capability. Stored uppercase in the users table.
type Role string

const (
	RoleUser   Role = "USER"
	RoleAuthor Role = "AUTHOR"
	RoleAdmin  Role = "ADMIN"
)

// ValidRole reports whether s names one of the three known roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleUser, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

// Capability checks below are pure functions over the requester and the
// resource. They are evaluated fresh on every mutating request; callers must
// not cache the result across requests.

// CanCreatePost reports whether the user may create posts.
// Only authors and admins publish content.
func CanCreatePost(u *User) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAuthor || u.Role == RoleAdmin
}

// CanEditPost reports whether the user may update the post:
// admin, or the owning author.
func CanEditPost(u *User, p *Post) bool {
	if u == nil || p == nil {
		return false
	}
	return u.Role == RoleAdmin || p.AuthorID == u.ID
}

// CanDeletePost mirrors CanEditPost; deletion has the same ownership rule.
func CanDeletePost(u *User, p *Post) bool {
	return CanEditPost(u, p)
}

// CanModerateComment reports whether the user may edit or delete the comment.
// Admins moderate everything; an identified author may touch their own
// comment; anonymous comments have no owner and are admin-only.
func CanModerateComment(u *User, c *Comment) bool {
	if u == nil || c == nil {
		return false
	}
	if u.Role == RoleAdmin {
		return true
	}
	author := c.Author()
	return author.Identified && author.UserID == u.ID
}

// CanManageUsers reports whether the user may list or delete other accounts.
func CanManageUsers(u *User) bool {
	return u != nil && u.Role == RoleAdmin
}

// CanViewUser reports whether the requester may read the target profile:
// admin or self.
func CanViewUser(u *User, targetID uint) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.ID == targetID
}

// CanUpdateUser mirrors CanViewUser; role changes carry an extra admin-only
// check in the handler.
func CanUpdateUser(u *User, targetID uint) bool {
	return CanViewUser(u, targetID)
}
