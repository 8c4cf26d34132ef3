package handlers

import (
	"monopod-agents/pkg/errx"
	logx "monopod-agents/pkg/logger"

	"github.com/gin-gonic/gin"
)

// respondError はエラーをログに記録してから {"detail": ...} 形式で返します。
// ステータスはエラー種別から決まり、未知のエラーは500です。
func respondError(c *gin.Context, err error) {
	appErr := errx.From(err)

	event := logx.Error()
	if appErr.Kind == errx.KindValidation {
		event = logx.Warn()
	}
	event.Err(appErr.Err).
		Str("kind", string(appErr.Kind)).
		Str("request_id", RequestIDFrom(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", appErr.Status).
		Msg(appErr.Message)

	c.AbortWithStatusJSON(appErr.Status, gin.H{"detail": err.Error()})
}

// respondBindError はバインド・バリデーションの失敗を422として返します。
func respondBindError(c *gin.Context, err error) {
	respondError(c, errx.Validation(err))
}
