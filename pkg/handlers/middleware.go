package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader リクエストIDを受け渡すヘッダー
const RequestIDHeader = "X-Request-Id"

const requestIDKey = "request_id"

// RequestID は受信したX-Request-Idを引き継ぎ、なければUUIDを発行してレスポンスに付与します。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestIDFrom はコンテキストに格納されたリクエストIDを返します。
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
