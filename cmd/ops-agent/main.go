package main

import (
	config "monopod-agents/configs"
	"monopod-agents/pkg/handlers"
	logx "monopod-agents/pkg/logger"
	"monopod-agents/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const defaultPort = "8000"

func main() {
	if err := godotenv.Load(); err != nil {
		logx.Warn().Err(err).Msg(".env file not found or could not be loaded")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to load config")
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Environment})
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	prompts, err := config.LoadAgentPrompts(cfg.PromptsFile)
	if err != nil {
		logx.Fatal().Err(err).Str("prompts_file", cfg.PromptsFile).Msg("failed to load agent prompts")
	}

	client, err := services.NewCompletionClient(cfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to initialize completion client")
	}

	r := handlers.NewOpsAgentRouter(prompts, client)

	addr := cfg.ListenAddr(defaultPort)
	logx.Info().
		Str("addr", addr).
		Str("environment", cfg.Environment.String()).
		Msg("starting " + prompts.OpsAgent.Service)
	if err := r.Run(addr); err != nil {
		logx.Fatal().Err(err).Msg("server stopped")
	}
}
