package services

import (
	"fmt"

	config "monopod-agents/configs"
	"monopod-agents/pkg/azure"
	logx "monopod-agents/pkg/logger"
)

// NewCompletionClient は設定に従って補完クライアントを作成し、レート制限でラップします。
// 認証情報はここでは検証しません。
func NewCompletionClient(cfg *config.Config) (CompletionClient, error) {
	var client CompletionClient

	switch cfg.LLMProvider {
	case config.ProviderAzure, "":
		if cfg.AzureOpenAIEndpoint == "" || cfg.AzureOpenAIAPIKey == "" {
			logx.Warn().Msg("Azure OpenAI の認証情報が未設定です。補完呼び出しは失敗します")
		}
		openAIClient := azure.NewOpenAIClient(
			cfg.AzureOpenAIEndpoint,
			cfg.AzureOpenAIAPIKey,
			cfg.AzureOpenAIAPIVersion,
			cfg.AzureOpenAIDeploymentName,
			azure.WithJSONMode(cfg.AzureOpenAIJSONMode),
		)
		client = NewAzureOpenAIService(openAIClient)
		logx.Info().
			Str("provider", config.ProviderAzure).
			Str("deployment", cfg.AzureOpenAIDeploymentName).
			Str("api_version", cfg.AzureOpenAIAPIVersion).
			Msg("completion client configured")

	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			logx.Warn().Msg("GEMINI_API_KEY が未設定です。補完呼び出しは失敗します")
		}
		client = NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel)
		logx.Info().
			Str("provider", config.ProviderGemini).
			Str("model", cfg.GeminiModel).
			Msg("completion client configured")

	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q (expected %q or %q)", cfg.LLMProvider, config.ProviderAzure, config.ProviderGemini)
	}

	return NewRateLimitedClient(client, cfg.CompletionRateLimitRPS, cfg.CompletionRateLimitBurst), nil
}
