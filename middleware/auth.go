package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quillpress/quillpress/models"
	"github.com/quillpress/quillpress/utils"
)

// ContextUserKey is the gin context key holding the resolved *models.User.
const ContextUserKey = "current_user"

// bearerToken extracts the token from the Authorization header. The second
// return reports whether a credential was presented at all.
func bearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}

// resolveUser validates the token and loads the user row. The row is loaded
// fresh on every request so role changes take effect immediately.
func resolveUser(ctx *gin.Context, db *gorm.DB, token string) (*models.User, error) {
	if token == "" {
		return nil, errors.New("empty bearer token")
	}
	if utils.IsTokenBlacklisted(token) {
		return nil, errors.New("token revoked")
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		return nil, errors.New("invalid token")
	}
	var user models.User
	if err := db.First(&user, claims.UserID).Error; err != nil {
		return nil, errors.New("user no longer exists")
	}
	return &user, nil
}

// AuthRequired rejects requests lacking a valid bearer credential with 401
// and stores the resolved user in the context.
func AuthRequired(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, present := bearerToken(ctx)
		if !present {
			utils.Error(ctx, http.StatusUnauthorized, "authorization header missing")
			ctx.Abort()
			return
		}
		user, err := resolveUser(ctx, db, token)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, err.Error())
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// OptionalAuth resolves a bearer credential when one is presented. An absent
// credential yields an anonymous identity, not an error; a credential that
// is present but invalid is still a 401.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, present := bearerToken(ctx)
		if !present {
			ctx.Next()
			return
		}
		user, err := resolveUser(ctx, db, token)
		if err != nil {
			utils.Error(ctx, http.StatusUnauthorized, err.Error())
			ctx.Abort()
			return
		}
		ctx.Set(ContextUserKey, user)
		ctx.Next()
	}
}

// AdminRequired runs after AuthRequired and rejects non-admin identities
// with 403.
func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := CurrentUser(ctx)
		if !ok {
			utils.Error(ctx, http.StatusUnauthorized, "authentication required")
			ctx.Abort()
			return
		}
		if !models.CanManageUsers(user) {
			utils.Error(ctx, http.StatusForbidden, "admin privileges required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// CurrentUser returns the identity resolved by the auth middleware, if any.
func CurrentUser(ctx *gin.Context) (*models.User, bool) {
	value, exists := ctx.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}
