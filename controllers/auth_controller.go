package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/quillpress/quillpress/config"
	"github.com/quillpress/quillpress/middleware"
	"github.com/quillpress/quillpress/models"
	"github.com/quillpress/quillpress/utils"
)

const tokenLifetime = 72 * time.Hour

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// AuthController handles registration, login and OAuth sign-in.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates an AuthController.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

// Register creates a local account with a bcrypt-hashed password and returns
// the user together with a fresh token.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(ctx, "email, username and a password of at least 6 characters are required")
		return
	}

	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if !usernamePattern.MatchString(username) {
		utils.ValidationFailed(ctx, "username must be 3-20 characters and contain only letters, numbers, and underscores")
		return
	}

	role := models.RoleUser
	if req.Role != "" {
		upper := strings.ToUpper(req.Role)
		if !models.ValidRole(upper) {
			utils.ValidationFailed(ctx, "role must be USER, AUTHOR, or ADMIN")
			return
		}
		role = models.Role(upper)
	}

	var existing models.User
	err := a.db.Where("email = ? OR username = ?", email, username).First(&existing).Error
	if err == nil {
		utils.Error(ctx, http.StatusConflict, "email or username already exists")
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, "failed to check existing users")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	if err := a.db.Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create user")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, string(user.Role), tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.Created(ctx, "User registered successfully", gin.H{
		"user":  user.Public(),
		"token": token,
	})
}

// Login authenticates by email and password. When the admin console asks
// (audience "admin"), identities with role USER are rejected before a token
// is issued; the reader site has no such restriction.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
		Audience string `json:"audience"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(ctx, "email and password are required")
		return
	}

	var user models.User
	if err := a.db.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, "invalid email or password")
		return
	}

	if req.Audience == "admin" && user.Role == models.RoleUser {
		utils.Error(ctx, http.StatusForbidden, "admin console requires an author or admin account")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, string(user.Role), tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"user":  user.Public(),
		"token": token,
	})
}

// Me returns the authenticated identity with its content counts.
func (a *AuthController) Me(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "authentication required")
		return
	}

	var posts, comments int64
	a.db.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&posts)
	a.db.Model(&models.Comment{}).Where("user_id = ?", user.ID).Count(&comments)

	utils.Success(ctx, gin.H{"user": userWithCounts{
		PublicUser:   user.Public(),
		PostCount:    posts,
		CommentCount: comments,
	}})
}

// Logout revokes the presented token until its natural expiration.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		utils.Error(ctx, http.StatusUnauthorized, "invalid authorization header")
		return
	}

	token := strings.TrimSpace(parts[1])
	claims, err := utils.ParseToken(token)
	if err != nil {
		utils.Error(ctx, http.StatusUnauthorized, "invalid token")
		return
	}

	expiresAt := time.Now().Add(tokenLifetime)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.SuccessMessage(ctx, "logged out", nil)
}

// OAuthRedirect returns the provider authorization URL with a single-use
// state token.
func (a *AuthController) OAuthRedirect(ctx *gin.Context) {
	cfg, err := oauthConfig(ctx.Param("provider"))
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)

	utils.Success(ctx, gin.H{
		"authorization_url": cfg.AuthCodeURL(state, oauth2.AccessTypeOffline),
		"state":             state,
	})
}

// OAuthCallback exchanges the authorization code for a provider identity and
// issues a JWT. Accounts created this way get role USER.
func (a *AuthController) OAuthCallback(ctx *gin.Context) {
	provider := ctx.Param("provider")
	code := ctx.Query("code")
	state := ctx.Query("state")

	if code == "" || state == "" {
		utils.ValidationFailed(ctx, "missing code or state")
		return
	}
	if !utils.ConsumeState(state) {
		utils.Error(ctx, http.StatusBadRequest, "invalid or expired state")
		return
	}

	cfg, err := oauthConfig(provider)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, err.Error())
		return
	}

	token, err := cfg.Exchange(context.Background(), code)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, "failed to exchange code")
		return
	}

	info, err := fetchOAuthUser(provider, token)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, err.Error())
		return
	}

	user, err := a.findOrCreateOAuthUser(provider, info)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to persist user")
		return
	}

	jwtToken, err := utils.GenerateToken(user.ID, user.Username, string(user.Role), tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to generate token")
		return
	}

	utils.Success(ctx, gin.H{
		"user":  user.Public(),
		"token": jwtToken,
	})
}

type oauthUser struct {
	ID       string
	Username string
	Email    string
}

func oauthConfig(provider string) (*oauth2.Config, error) {
	cfg := config.Get()
	switch strings.ToLower(provider) {
	case "github":
		if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
			return nil, fmt.Errorf("github oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/auth/oauth/github/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}, nil
	case "google":
		if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" {
			return nil, fmt.Errorf("google oauth not configured")
		}
		return &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/api/auth/oauth/google/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func fetchOAuthUser(provider string, token *oauth2.Token) (*oauthUser, error) {
	switch strings.ToLower(provider) {
	case "github":
		return fetchProviderUser("https://api.github.com/user", token, func(raw map[string]any) oauthUser {
			id, _ := raw["id"].(float64)
			login, _ := raw["login"].(string)
			email, _ := raw["email"].(string)
			return oauthUser{ID: fmt.Sprintf("%.0f", id), Username: login, Email: email}
		})
	case "google":
		return fetchProviderUser("https://www.googleapis.com/oauth2/v2/userinfo", token, func(raw map[string]any) oauthUser {
			id, _ := raw["id"].(string)
			email, _ := raw["email"].(string)
			name, _ := raw["name"].(string)
			return oauthUser{ID: id, Username: name, Email: email}
		})
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func fetchProviderUser(url string, token *oauth2.Token, extract func(map[string]any) oauthUser) (*oauthUser, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	client := http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}
	user := extract(raw)
	if user.ID == "" {
		return nil, errors.New("provider response missing user id")
	}
	return &user, nil
}

func (a *AuthController) findOrCreateOAuthUser(provider string, data *oauthUser) (*models.User, error) {
	var user models.User
	err := a.db.Where("provider = ? AND provider_id = ?", provider, data.ID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = models.User{
		Email:      strings.ToLower(strings.TrimSpace(data.Email)),
		Username:   a.ensureUniqueUsername(data.Username, provider, data.ID),
		Role:       models.RoleUser,
		Provider:   provider,
		ProviderID: data.ID,
	}
	if user.Email == "" {
		user.Email = fmt.Sprintf("%s-%s@users.noreply.%s", provider, data.ID, provider)
	}
	if err := a.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ensureUniqueUsername folds a provider display name into the local username
// rules and suffixes it until it is free.
func (a *AuthController) ensureUniqueUsername(base, provider, id string) string {
	cleaned := strings.ToLower(strings.TrimSpace(base))
	cleaned = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, cleaned)
	if len(cleaned) < 3 {
		cleaned = fmt.Sprintf("%s_%s", provider, id)
	}
	if len(cleaned) > 20 {
		cleaned = cleaned[:20]
	}

	candidate := cleaned
	for i := 1; i <= 50; i++ {
		var count int64
		a.db.Model(&models.User{}).Where("username = ?", candidate).Count(&count)
		if count == 0 {
			return candidate
		}
		candidate = fmt.Sprintf("%s%d", cleaned, i)
	}
	return fmt.Sprintf("%s_%s", provider, id)
}
