package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kutechnest/backend/pkg/response"
)

// BodyLimit 请求体大小限制
// 超限时由 handler 的绑定错误映射为 413（见 handler.respondBindError）
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			if c.Request.ContentLength > maxBytes {
				c.Header("Connection", "close")
				abortTooLarge(c)
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

func abortTooLarge(c *gin.Context) {
	response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
	c.Abort()
}
