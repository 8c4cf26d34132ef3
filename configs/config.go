package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
)

// LLMプロバイダー名
const (
	ProviderAzure  = "azure"
	ProviderGemini = "gemini"
)

// エージェント種別（サーバーレスエントリーポイント用）
const (
	AgentBusiness = "business"
	AgentOps      = "ops"
)

// Config holds the application configuration
type Config struct {
	Port        string      `envconfig:"PORT"`
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	AgentKind   string      `envconfig:"AGENT_KIND" default:"business"`

	LLMProvider string `envconfig:"LLM_PROVIDER" default:"azure"`

	AzureOpenAIEndpoint       string `envconfig:"AZURE_OPENAI_ENDPOINT"`
	AzureOpenAIAPIKey         string `envconfig:"AZURE_OPENAI_KEY"`
	AzureOpenAIAPIVersion     string `envconfig:"AZURE_OPENAI_API_VERSION" default:"2024-02-15-preview"`
	AzureOpenAIDeploymentName string `envconfig:"AZURE_OPENAI_DEPLOYMENT" default:"gpt-4"`
	AzureOpenAIJSONMode       bool   `envconfig:"AZURE_OPENAI_JSON_MODE" default:"false"`

	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`
	GeminiBaseURL string `envconfig:"GEMINI_BASE_URL"`
	GeminiModel   string `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`

	// 補完APIのレート制限。RPSが0以下の場合は無制限
	CompletionRateLimitRPS   float64 `envconfig:"COMPLETION_RATE_LIMIT_RPS" default:"0"`
	CompletionRateLimitBurst int     `envconfig:"COMPLETION_RATE_LIMIT_BURST" default:"1"`

	ForecastConcurrency int `envconfig:"FORECAST_CONCURRENCY" default:"4"`

	// 空の場合は埋め込みのプロンプト定義を使用
	PromptsFile string `envconfig:"PROMPTS_FILE"`
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("環境変数の読み込みに失敗: %w", err)
	}

	cfg.Environment = ParseEnvironment(cfg.Environment.String())

	// 旧名称のAPIキー変数も受け付ける
	if cfg.AzureOpenAIAPIKey == "" {
		cfg.AzureOpenAIAPIKey = getEnv("AZURE_OPENAI_API_KEY", "")
	}
	if cfg.ForecastConcurrency < 1 {
		cfg.ForecastConcurrency = 1
	}

	return &cfg, nil
}

// ListenAddr はPORTが未設定の場合にエージェント既定のポートを使ったアドレスを返します。
func (c *Config) ListenAddr(defaultPort string) string {
	if c.Port != "" {
		return ":" + c.Port
	}
	return ":" + defaultPort
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
