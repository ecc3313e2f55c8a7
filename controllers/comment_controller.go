package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/quillpress/quillpress/middleware"
	"github.com/quillpress/quillpress/models"
	"github.com/quillpress/quillpress/utils"
)

// CommentController manages the one-level comment tree.
type CommentController struct {
	db *gorm.DB
}

// NewCommentController creates a CommentController.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{db: db}
}

// commentCachePrefixes lists the cache prefixes a comment mutation must
// clear. Mutations that change the comment count also stale the cached
// post list, which carries per-post counts.
func commentCachePrefixes(countChanged bool) []string {
	prefixes := []string{utils.CachePostDetailPrefix}
	if countChanged {
		prefixes = append(prefixes, utils.CachePostListPrefix)
	}
	return prefixes
}

func invalidateCommentCaches(countChanged bool) {
	for _, prefix := range commentCachePrefixes(countChanged) {
		utils.InvalidateByPrefix(prefix)
	}
}

// ListComments returns the thread for a published post: top-level comments
// newest-first, replies oldest-first.
func (c *CommentController) ListComments(ctx *gin.Context) {
	postID := ctx.Param("postId")

	var post models.Post
	if err := c.db.Select("id", "published").First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load post")
		return
	}
	if !post.Published {
		utils.Error(ctx, http.StatusNotFound, "post not found")
		return
	}

	var comments []models.Comment
	if err := c.db.Preload("User").Where("post_id = ?", post.ID).Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to load comments")
		return
	}

	utils.Success(ctx, gin.H{"comments": models.BuildCommentTree(comments)})
}

// CreateComment adds a comment or reply to a published post. Authentication
// is optional: an authenticated requester is linked as the owning user,
// otherwise the comment is anonymous and owned by nobody. Drafts cannot be
// commented on, even by authenticated users.
func (c *CommentController) CreateComment(ctx *gin.Context) {
	var req struct {
		PostID   uint   `json:"post_id" binding:"required"`
		Content  string `json:"content" binding:"required"`
		Username string `json:"username" binding:"required,max=50"`
		Email    string `json:"email" binding:"omitempty,email"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(ctx, "post_id, content, and username are required")
		return
	}

	content := utils.Sanitize(strings.TrimSpace(req.Content))
	username := strings.TrimSpace(req.Username)
	if content == "" || username == "" {
		utils.ValidationFailed(ctx, "post_id, content, and username are required")
		return
	}

	var post models.Post
	if err := c.db.Select("id", "published").First(&post, req.PostID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "post not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load post")
		return
	}
	if !post.Published {
		utils.Error(ctx, http.StatusNotFound, "cannot comment on unpublished post")
		return
	}

	parentID := req.ParentID
	if parentID != nil {
		var parent models.Comment
		if err := c.db.Select("id", "post_id", "parent_id").First(&parent, *parentID).Error; err != nil || parent.PostID != post.ID {
			utils.Error(ctx, http.StatusNotFound, "parent comment not found")
			return
		}
		// Threads are one level deep: a reply to a reply attaches to the
		// thread's top-level comment.
		if parent.ParentID != nil {
			parentID = parent.ParentID
		}
	}

	comment := models.Comment{
		Content:  content,
		Username: username,
		Email:    strings.TrimSpace(req.Email),
		PostID:   post.ID,
		ParentID: parentID,
	}
	if user, ok := middleware.CurrentUser(ctx); ok {
		comment.UserID = &user.ID
		comment.User = user
	}

	if err := c.db.Create(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to create comment")
		return
	}
	comment.SummarizeUser()

	invalidateCommentCaches(true)

	utils.Created(ctx, "Comment created successfully", gin.H{"comment": comment})
}

// UpdateComment edits a comment's content. Permitted for ADMIN or the
// identified owner; anonymous comments can only be moderated by ADMIN.
func (c *CommentController) UpdateComment(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "authentication required")
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationFailed(ctx, "content is required")
		return
	}
	content := utils.Sanitize(strings.TrimSpace(req.Content))
	if content == "" {
		utils.ValidationFailed(ctx, "content is required")
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load comment")
		return
	}

	if !models.CanModerateComment(user, &comment) {
		utils.Error(ctx, http.StatusForbidden, "not authorized to edit this comment")
		return
	}

	comment.Content = content
	if err := c.db.Save(&comment).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to update comment")
		return
	}

	invalidateCommentCaches(false)

	utils.SuccessMessage(ctx, "Comment updated successfully", gin.H{"comment": comment})
}

// DeleteComment removes a comment and, in the same transaction, its replies.
// Permitted for ADMIN or the identified owner.
func (c *CommentController) DeleteComment(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, "authentication required")
		return
	}

	var comment models.Comment
	if err := c.db.First(&comment, ctx.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusNotFound, "comment not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, "failed to load comment")
		return
	}

	if !models.CanModerateComment(user, &comment) {
		utils.Error(ctx, http.StatusForbidden, "not authorized to delete this comment")
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("parent_id = ?", comment.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to delete comment")
		return
	}

	invalidateCommentCaches(true)

	utils.SuccessMessage(ctx, "Comment deleted successfully", nil)
}

// moderationComment is the ADMIN listing row: the comment with the full
// public user shape and a trimmed post summary.
type moderationComment struct {
	models.Comment
	User *models.PublicUser `json:"user,omitempty"`
	Post *postSummary       `json:"post,omitempty"`
}

type postSummary struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	AuthorID uint   `json:"author_id"`
}

func moderationView(comments []models.Comment) []moderationComment {
	rows := make([]moderationComment, 0, len(comments))
	for _, comment := range comments {
		row := moderationComment{Comment: comment}
		if comment.User != nil {
			pub := comment.User.Public()
			row.User = &pub
		}
		if comment.Post != nil {
			row.Post = &postSummary{
				ID:       comment.Post.ID,
				Title:    comment.Post.Title,
				Slug:     comment.Post.Slug,
				AuthorID: comment.Post.AuthorID,
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ListAllComments is the ADMIN moderation view across all posts, paginated
// newest-first.
func (c *CommentController) ListAllComments(ctx *gin.Context) {
	page, limit := parsePagination(ctx.Query("page"), ctx.Query("limit"), 20)

	var total int64
	if err := c.db.Model(&models.Comment{}).Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to count comments")
		return
	}

	var comments []models.Comment
	if err := c.db.Preload("User").
		Preload("Post", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "title", "slug", "author_id")
		}).
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&comments).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, "failed to list comments")
		return
	}

	utils.Success(ctx, gin.H{
		"comments":   moderationView(comments),
		"pagination": paginate(page, limit, total),
	})
}
