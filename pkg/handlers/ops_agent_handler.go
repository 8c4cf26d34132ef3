package handlers

import (
	"context"
	"net/http"

	config "monopod-agents/configs"
	"monopod-agents/pkg/models"
	"monopod-agents/pkg/services"

	"github.com/gin-gonic/gin"
)

// OpsAgentHandler 運用エージェントのハンドラー
type OpsAgentHandler struct {
	info       models.ServiceInfo
	opsService *services.OpsAgentService
}

// NewOpsAgentHandler 新しい運用エージェントのハンドラーを作成
func NewOpsAgentHandler(prompts *config.AgentPrompts, opsService *services.OpsAgentService) *OpsAgentHandler {
	return &OpsAgentHandler{
		info: models.ServiceInfo{
			Service:     prompts.OpsAgent.Service,
			Version:     prompts.Version,
			Description: prompts.OpsAgent.Description,
		},
		opsService: opsService,
	}
}

// Root サービス情報を返す
func (h *OpsAgentHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}

// AnalyzeLogs ログを分析し、重大度と推奨対応を返す
func (h *OpsAgentHandler) AnalyzeLogs(c *gin.Context) {
	var request models.LogAnalysisRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBindError(c, err)
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	result, err := h.opsService.AnalyzeLogs(ctx, request)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// TriggerRemediation 自動復旧アクションを受け付ける（コマンドは実行しない）
func (h *OpsAgentHandler) TriggerRemediation(c *gin.Context) {
	var request models.RemediationTriggerRequest
	if err := c.ShouldBindQuery(&request); err != nil {
		respondBindError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.opsService.TriggerRemediation(request.Service, request.Action))
}
