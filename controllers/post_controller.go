package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quillpress/quillpress/middleware"
	"github.com/quillpress/quillpress/models"
	"github.com/quillpress/quillpress/utils"
)

// PostController manages the draft/publish lifecycle of posts.
type PostController struct {
	db *gorm.DB
}

// NewPostController creates a PostController.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{db: db}
}

// ListPosts returns published posts ordered by publish time descending.
// Supports `page`, `limit` and a case-insensitive `search` over title and
// content. Responses without a search term are cached.
func (p *PostController) ListPosts(ctx *gin.Context) {
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"), 10)
	search := strings.TrimSpace(ctx.Query("search"))

	cacheKey := fmt.Sprintf("%spage=%d:limit=%d", utils.CachePostListPrefix, page, limit)
	if search == "" {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	query := p.db.Model(&models.Post{}).Where("published = ?", true)
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := query.Preload("Author").
		Order("published_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list posts")
		return
	}

	if err := p.attachCommentCounts(posts); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count comments")
		return
	}

	payload := gin.H{
		"posts":      posts,
		"pagination": paginate(page, limit, total),
	}
	if search == "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Success: true, Data: payload}, time.Hour)
	}
	utils.Success(ctx, payload)
}

// ListAllPosts returns every post including drafts for authenticated users,
// ordered by creation time descending, optionally filtered by status.
func (p *PostController) ListAllPosts(ctx *gin.Context) {
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"), 10)

	query := p.db.Model(&models.Post{})
	switch ctx.Query("status") {
	case "published":
		query = query.Where("published = ?", true)
	case "draft":
		query = query.Where("published = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count posts")
		return
	}

	var posts []models.Post
	if err := query.Preload("Author").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&posts).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list posts")
		return
	}

	if err := p.attachCommentCounts(posts); err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count comments")
		return
	}

	utils.Success(ctx, gin.H{
		"posts":      posts,
		"pagination": paginate(page, limit, total),
	})
}

// GetPost returns a single post by slug with its comment thread. Drafts are
// a 404 for anonymous requests and visible to any authenticated identity.
func (p *PostController) GetPost(ctx *gin.Context) {
	slug := ctx.Param("slug")

	_, authenticated := middleware.CurrentUser(ctx)
	cacheKey := utils.CachePostDetailPrefix + slug
	if !authenticated {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	var post models.Post
	if err := p.db.Preload("Author").Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load post")
		return
	}

	if !post.Published && !authenticated {
		// A draft looks like a missing post to the outside world.
		utils.Error(ctx, http.StatusNotFound, "post not found")
		return
	}

	var comments []models.Comment
	if err := p.db.Preload("User").Where("post_id = ?", post.ID).Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load comments")
		return
	}
	post.Comments = models.BuildCommentTree(comments)

	payload := gin.H{"post": post}
	if post.Published {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Success: true, Data: payload}, time.Hour)
	}
	utils.Success(ctx, payload)
}

// CreatePost creates a draft or published post. Requires role AUTHOR or
// ADMIN.
func (p *PostController) CreatePost(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "authentication required")
		return
	}
	if !models.CanCreatePost(user) {
		utils.Error(ctx, http.StatusForbidden, "author or admin role required to create posts")
		return
	}

	var req struct {
		Title     string `json:"title"`
		Content   string `json:"content"`
		Published bool   `json:"published"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(ctx, "invalid request payload")
		return
	}

	title := strings.TrimSpace(req.Title)
	content := utils.Sanitize(req.Content)
	if title == "" || strings.TrimSpace(content) == "" {
		utils.ValidationFailed(ctx, "title and content are required")
		return
	}

	post := models.Post{
		Title:    title,
		Slug:     p.uniqueSlug(title, 0),
		Content:  content,
		AuthorID: user.ID,
	}
	post.MarkPublished(req.Published, time.Now())

	if err := p.db.Create(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create post")
		return
	}
	post.Author = *user

	utils.InvalidateByPrefix(utils.CachePostListPrefix)

	msg := "Post saved as draft successfully"
	if post.Published {
		msg = "Post published successfully"
	}
	utils.Created(ctx, msg, gin.H{"post": post})
}

// UpdatePost applies a partial patch. Requires ADMIN or ownership. A title
// change re-derives the slug; publishing stamps PublishedAt exactly once and
// unpublishing never clears it.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "authentication required")
		return
	}

	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load post")
		return
	}

	if !models.CanEditPost(user, &post) {
		utils.Error(ctx, http.StatusForbidden, "you can only update your own posts")
		return
	}

	var req struct {
		Title     *string `json:"title"`
		Content   *string `json:"content"`
		Published *bool   `json:"published"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(ctx, "invalid request payload")
		return
	}

	oldSlug := post.Slug
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			utils.ValidationFailed(ctx, "title cannot be empty")
			return
		}
		if title != post.Title {
			post.Title = title
			post.Slug = p.uniqueSlug(title, post.ID)
		}
	}
	if req.Content != nil {
		content := utils.Sanitize(*req.Content)
		if strings.TrimSpace(content) == "" {
			utils.ValidationFailed(ctx, "content cannot be empty")
			return
		}
		post.Content = content
	}
	if req.Published != nil {
		post.MarkPublished(*req.Published, time.Now())
	}

	if err := p.db.Save(&post).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update post")
		return
	}

	utils.InvalidateByPrefix(utils.CachePostListPrefix)
	utils.InvalidateByPrefix(utils.CachePostDetailPrefix + oldSlug)
	if post.Slug != oldSlug {
		utils.InvalidateByPrefix(utils.CachePostDetailPrefix + post.Slug)
	}

	utils.SuccessMessage(ctx, "Post updated successfully", gin.H{"post": post})
}

// DeletePost removes a post and, in the same transaction, its comments.
// Requires ADMIN or ownership.
func (p *PostController) DeletePost(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "authentication required")
		return
	}

	var post models.Post
	if err := p.db.First(&post, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load post")
		return
	}

	if !models.CanDeletePost(user, &post) {
		utils.Error(ctx, http.StatusForbidden, "you can only delete your own posts")
		return
	}

	err := p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete post")
		return
	}

	utils.InvalidateByPrefix(utils.CachePostListPrefix)
	utils.InvalidateByPrefix(utils.CachePostDetailPrefix + post.Slug)

	utils.SuccessMessage(ctx, "Post deleted successfully", nil)
}

// uniqueSlug derives a slug from the title and disambiguates it when another
// post (excluding excludeID) already holds it.
func (p *PostController) uniqueSlug(title string, excludeID uint) string {
	slug := utils.Slugify(title)
	if slug == "" {
		slug = "post"
	}

	var count int64
	query := p.db.Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	query.Count(&count)
	if count > 0 {
		return utils.UniqueSlug(slug)
	}
	return slug
}

// attachCommentCounts fills CommentCount for a page of posts with one
// grouped query.
func (p *PostController) attachCommentCounts(posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
	}

	type row struct {
		PostID uint
		N      int64
	}
	var rows []row
	if err := p.db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) AS n").
		Where("post_id IN ?", ids).
		Group("post_id").
		Scan(&rows).Error; err != nil {
		return err
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.PostID] = r.N
	}
	for i := range posts {
		posts[i].CommentCount = counts[posts[i].ID]
	}
	return nil
}
