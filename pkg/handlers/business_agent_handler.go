package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	config "monopod-agents/configs"
	"monopod-agents/pkg/errx"
	"monopod-agents/pkg/models"
	"monopod-agents/pkg/services"

	"github.com/gin-gonic/gin"
)

// maxUploadSize アップロードファイルの上限（10MB）
const maxUploadSize = 10 << 20

// BusinessAgentHandler 需要予測エージェントのハンドラー
type BusinessAgentHandler struct {
	info            models.ServiceInfo
	forecastService *services.DemandForecastService
}

// NewBusinessAgentHandler 新しい需要予測エージェントのハンドラーを作成
func NewBusinessAgentHandler(prompts *config.AgentPrompts, forecastService *services.DemandForecastService) *BusinessAgentHandler {
	return &BusinessAgentHandler{
		info: models.ServiceInfo{
			Service:     prompts.BusinessAgent.Service,
			Version:     prompts.Version,
			Description: prompts.BusinessAgent.Description,
		},
		forecastService: forecastService,
	}
}

// Root サービス情報を返す
func (h *BusinessAgentHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, h.info)
}

// ForecastDemand 販売履歴から製品ごとの需要予測を返す
func (h *BusinessAgentHandler) ForecastDemand(c *gin.Context) {
	var request models.ForecastRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBindError(c, err)
		return
	}

	h.forecast(c, request)
}

// ForecastDemandFromFile アップロードされた販売実績ファイル（.xlsx/.csv）から需要予測を返す
func (h *BusinessAgentHandler) ForecastDemandFromFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBindError(c, fmt.Errorf("ファイルの取得に失敗しました: %w", err))
		return
	}

	forecastDays := 0
	if raw := c.PostForm("forecast_days"); raw != "" {
		forecastDays, err = strconv.Atoi(raw)
		if err != nil || forecastDays < 0 || forecastDays > 365 {
			respondBindError(c, fmt.Errorf("forecast_days は0〜365の整数で指定してください: %q", raw))
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, errx.Validation(fmt.Errorf("ファイルを開けませんでした: %w", err)))
		return
	}
	defer file.Close()

	salesData, err := services.ParseSalesFile(fileHeader.Filename, file)
	if err != nil {
		respondError(c, err)
		return
	}

	h.forecast(c, models.ForecastRequest{SalesData: salesData, ForecastDays: forecastDays})
}

func (h *BusinessAgentHandler) forecast(c *gin.Context, request models.ForecastRequest) {
	// クライアントが切断しても実行中の補完呼び出しは最後まで実行する
	ctx := context.WithoutCancel(c.Request.Context())

	results, err := h.forecastService.ForecastDemand(ctx, request)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, results)
}
