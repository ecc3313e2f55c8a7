package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quillpress/quillpress/utils"
)

// RequestID attaches a correlation id to every request. An inbound
// X-Request-ID header is honored; otherwise a fresh UUID is generated. The
// id is echoed in the response and picked up by the access log.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id := ctx.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Set(utils.ContextRequestIDKey, id)
		ctx.Header("X-Request-ID", id)
		ctx.Next()
	}
}
