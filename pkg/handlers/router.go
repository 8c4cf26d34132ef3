package handlers

import (
	"fmt"

	config "monopod-agents/configs"
	"monopod-agents/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func newEngine(monitoringService *services.MonitoringService) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(gin.Recovery())
	r.Use(cors.Default())

	r.GET("/health", HealthCheck)
	r.GET("/monitoring/logs", NewMonitoringHandler(monitoringService).GetLogs)
	return r
}

// NewBusinessAgentRouter 需要予測エージェントのルーターを作成
func NewBusinessAgentRouter(cfg *config.Config, prompts *config.AgentPrompts, client services.CompletionClient) *gin.Engine {
	forecastService := services.NewDemandForecastService(client, &prompts.BusinessAgent.Forecast, cfg.ForecastConcurrency)
	handler := NewBusinessAgentHandler(prompts, forecastService)

	r := newEngine(services.NewMonitoringService(services.DefaultMonitoringCapacity))
	r.GET("/", handler.Root)
	r.POST("/forecast-demand", handler.ForecastDemand)
	r.POST("/forecast-demand/upload", handler.ForecastDemandFromFile)
	return r
}

// NewOpsAgentRouter 運用エージェントのルーターを作成
func NewOpsAgentRouter(prompts *config.AgentPrompts, client services.CompletionClient) *gin.Engine {
	handler := NewOpsAgentHandler(prompts, services.NewOpsAgentService(client, &prompts.OpsAgent.LogAnalysis))

	r := newEngine(services.NewMonitoringService(services.DefaultMonitoringCapacity))
	r.GET("/", handler.Root)
	r.POST("/analyze-logs", handler.AnalyzeLogs)
	r.POST("/trigger-remediation", handler.TriggerRemediation)
	return r
}

// NewRouter はエージェント種別（business/ops）に応じたルーターを作成します。
func NewRouter(cfg *config.Config, prompts *config.AgentPrompts, client services.CompletionClient) (*gin.Engine, error) {
	switch cfg.AgentKind {
	case config.AgentBusiness, "":
		return NewBusinessAgentRouter(cfg, prompts, client), nil
	case config.AgentOps:
		return NewOpsAgentRouter(prompts, client), nil
	default:
		return nil, fmt.Errorf("unknown AGENT_KIND %q (expected %q or %q)", cfg.AgentKind, config.AgentBusiness, config.AgentOps)
	}
}
