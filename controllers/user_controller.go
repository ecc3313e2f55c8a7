package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quillpress/quillpress/middleware"
	"github.com/quillpress/quillpress/models"
	"github.com/quillpress/quillpress/utils"
)

// UserController handles role-gated user administration.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a UserController.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// userWithCounts decorates the public user shape with content counts.
type userWithCounts struct {
	models.PublicUser
	PostCount    int64 `json:"post_count"`
	CommentCount int64 `json:"comment_count"`
}

// ListUsers returns a paginated user listing, optionally filtered by role.
// ADMIN only (enforced by routing).
func (u *UserController) ListUsers(ctx *gin.Context) {
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"), 10)

	query := u.db.Model(&models.User{})
	if role := strings.ToUpper(strings.TrimSpace(ctx.Query("role"))); role != "" {
		if !models.ValidRole(role) {
			utils.ValidationFailed(ctx, "role must be USER, AUTHOR, or ADMIN")
			return
		}
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count users")
		return
	}

	var users []models.User
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list users")
		return
	}

	decorated := make([]userWithCounts, 0, len(users))
	for i := range users {
		row, err := u.withCounts(&users[i])
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "failed to count user content")
			return
		}
		decorated = append(decorated, row)
	}

	utils.Success(ctx, gin.H{
		"users":      decorated,
		"pagination": paginate(page, limit, total),
	})
}

// GetUser returns a single profile. ADMIN or self.
func (u *UserController) GetUser(ctx *gin.Context) {
	requester, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := parseUserID(ctx.Param("id"))
	if err != nil {
		utils.ValidationFailed(ctx, "invalid user id")
		return
	}
	if !models.CanViewUser(requester, targetID) {
		utils.Error(ctx, http.StatusForbidden, "not authorized to view this profile")
		return
	}

	var user models.User
	if err := u.db.First(&user, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load user")
		return
	}

	row, err := u.withCounts(&user)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count user content")
		return
	}
	utils.Success(ctx, gin.H{"user": row})
}

// UpdateUser patches a profile. ADMIN or self; role changes are ADMIN-only
// and never self-service.
func (u *UserController) UpdateUser(ctx *gin.Context) {
	requester, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := parseUserID(ctx.Param("id"))
	if err != nil {
		utils.ValidationFailed(ctx, "invalid user id")
		return
	}
	if !models.CanUpdateUser(requester, targetID) {
		utils.Error(ctx, http.StatusForbidden, "not authorized to update this profile")
		return
	}

	var req struct {
		Email    *string `json:"email"`
		Username *string `json:"username"`
		Password *string `json:"password"`
		Role     *string `json:"role"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(ctx, "invalid request payload")
		return
	}

	if req.Role != nil && requester.Role != models.RoleAdmin {
		utils.Error(ctx, http.StatusForbidden, "not authorized to change user roles")
		return
	}

	var user models.User
	if err := u.db.First(&user, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load user")
		return
	}

	if req.Email != nil || req.Username != nil {
		var clauses []string
		var args []interface{}
		if req.Email != nil {
			clauses = append(clauses, "email = ?")
			args = append(args, strings.ToLower(strings.TrimSpace(*req.Email)))
		}
		if req.Username != nil {
			clauses = append(clauses, "username = ?")
			args = append(args, strings.ToLower(strings.TrimSpace(*req.Username)))
		}
		var count int64
		if err := u.db.Model(&models.User{}).
			Where("id <> ?", user.ID).
			Where(strings.Join(clauses, " OR "), args...).
			Count(&count).Error; err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "failed to check duplicates")
			return
		}
		if count > 0 {
			utils.Error(ctx, http.StatusConflict, "email or username already exists")
			return
		}
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email == "" || !strings.Contains(email, "@") {
			utils.ValidationFailed(ctx, "please provide a valid email")
			return
		}
		user.Email = email
	}
	if req.Username != nil {
		username := strings.ToLower(strings.TrimSpace(*req.Username))
		if !usernamePattern.MatchString(username) {
			utils.ValidationFailed(ctx, "username must be 3-20 characters and contain only letters, numbers, and underscores")
			return
		}
		user.Username = username
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			utils.ValidationFailed(ctx, "password must be at least 6 characters long")
			return
		}
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			utils.Error(ctx, http.StatusInternalServerError, "failed to hash password")
			return
		}
		user.PasswordHash = hash
	}
	if req.Role != nil {
		role := strings.ToUpper(strings.TrimSpace(*req.Role))
		if !models.ValidRole(role) {
			utils.ValidationFailed(ctx, "role must be USER, AUTHOR, or ADMIN")
			return
		}
		user.Role = models.Role(role)
	}

	if err := u.db.Save(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update user")
		return
	}

	utils.SuccessMessage(ctx, "User updated successfully", gin.H{"user": user.Public()})
}

// DeleteUser removes an account. ADMIN only; self-deletion is rejected. The
// user's posts (and those posts' comments) are deleted in the same
// transaction, and their comments elsewhere become anonymous.
func (u *UserController) DeleteUser(ctx *gin.Context) {
	requester, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := parseUserID(ctx.Param("id"))
	if err != nil {
		utils.ValidationFailed(ctx, "invalid user id")
		return
	}
	if requester.ID == targetID {
		utils.ValidationFailed(ctx, "cannot delete your own account")
		return
	}

	var user models.User
	if err := u.db.First(&user, targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load user")
		return
	}

	err = u.db.Transaction(func(tx *gorm.DB) error {
		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("author_id = ?", user.ID).Pluck("id", &postIDs).Error; err != nil {
			return err
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Comment{}).Where("user_id = ?", user.ID).Update("user_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete user")
		return
	}

	utils.InvalidateByPrefix(utils.CachePostListPrefix)
	utils.InvalidateByPrefix(utils.CachePostDetailPrefix)

	utils.SuccessMessage(ctx, "User deleted successfully", nil)
}

// GetUserStats returns content totals and the five most recent posts for a
// user. ADMIN or self.
func (u *UserController) GetUserStats(ctx *gin.Context) {
	requester, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "authentication required")
		return
	}

	targetID, err := parseUserID(ctx.Param("id"))
	if err != nil {
		utils.ValidationFailed(ctx, "invalid user id")
		return
	}
	if !models.CanViewUser(requester, targetID) {
		utils.Error(ctx, http.StatusForbidden, "not authorized to view this profile")
		return
	}

	var totalPosts, publishedPosts, totalComments int64
	if err := u.db.Model(&models.Post{}).Where("author_id = ?", targetID).Count(&totalPosts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count posts")
		return
	}
	if err := u.db.Model(&models.Post{}).Where("author_id = ? AND published = ?", targetID, true).Count(&publishedPosts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count published posts")
		return
	}
	if err := u.db.Model(&models.Comment{}).Where("user_id = ?", targetID).Count(&totalComments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count comments")
		return
	}

	var recent []models.Post
	if err := u.db.Where("author_id = ?", targetID).
		Order("created_at DESC").
		Limit(5).
		Find(&recent).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load recent posts")
		return
	}

	utils.Success(ctx, gin.H{
		"stats": gin.H{
			"totalPosts":     totalPosts,
			"publishedPosts": publishedPosts,
			"draftPosts":     totalPosts - publishedPosts,
			"totalComments":  totalComments,
		},
		"recentPosts": recent,
	})
}

func (u *UserController) withCounts(user *models.User) (userWithCounts, error) {
	var posts, comments int64
	if err := u.db.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&posts).Error; err != nil {
		return userWithCounts{}, err
	}
	if err := u.db.Model(&models.Comment{}).Where("user_id = ?", user.ID).Count(&comments).Error; err != nil {
		return userWithCounts{}, err
	}
	return userWithCounts{PublicUser: user.Public(), PostCount: posts, CommentCount: comments}, nil
}

func parseUserID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid user id")
	}
	return uint(id), nil
}
