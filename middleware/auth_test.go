package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/quillpress/quillpress/config"
	"github.com/quillpress/quillpress/models"
	"github.com/quillpress/quillpress/utils"
)

func protectedRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", handler, func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"ok": true})
	})
	return r
}

func TestAuthRequiredMissingHeader(t *testing.T) {
	r := protectedRouter(AuthRequired(nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authorization header missing")
}

func TestAuthRequiredMalformedHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no scheme", "abcdef"},
		{"wrong scheme", "Basic abcdef"},
		{"empty token", "Bearer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := protectedRouter(AuthRequired(nil))

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			req.Header.Set("Authorization", tt.header)
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthRequiredInvalidToken(t *testing.T) {
	config.Reset()
	t.Setenv("JWT_SECRET", "test-secret")

	r := protectedRouter(AuthRequired(nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.valid.token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "invalid token")
}

func TestOptionalAuthAnonymousPassesThrough(t *testing.T) {
	r := protectedRouter(OptionalAuth(nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuthRejectsPresentButInvalidCredential(t *testing.T) {
	config.Reset()
	t.Setenv("JWT_SECRET", "test-secret")

	r := protectedRouter(OptionalAuth(nil))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.valid.token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)

	asUser := func(u *models.User) gin.HandlerFunc {
		return func(ctx *gin.Context) {
			if u != nil {
				ctx.Set(ContextUserKey, u)
			}
			ctx.Next()
		}
	}

	tests := []struct {
		name string
		user *models.User
		want int
	}{
		{"unauthenticated", nil, http.StatusUnauthorized},
		{"reader", &models.User{ID: 1, Role: models.RoleUser}, http.StatusForbidden},
		{"author", &models.User{ID: 2, Role: models.RoleAuthor}, http.StatusForbidden},
		{"admin", &models.User{ID: 3, Role: models.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin", asUser(tt.user), AdminRequired(), func(ctx *gin.Context) {
				utils.Success(ctx, nil)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestCurrentUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := CurrentUser(ctx)
	assert.False(t, ok)

	u := &models.User{ID: 5, Role: models.RoleAuthor}
	ctx.Set(ContextUserKey, u)
	got, ok := CurrentUser(ctx)
	assert.True(t, ok)
	assert.Equal(t, u, got)
}
