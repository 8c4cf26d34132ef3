package config

import (
	"os"
	"testing"
)

var configEnvVars = []string{
	"PORT", "ENVIRONMENT", "AGENT_KIND", "LLM_PROVIDER",
	"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_KEY", "AZURE_OPENAI_API_KEY",
	"AZURE_OPENAI_API_VERSION", "AZURE_OPENAI_DEPLOYMENT", "AZURE_OPENAI_JSON_MODE",
	"GEMINI_API_KEY", "GEMINI_BASE_URL", "GEMINI_MODEL",
	"COMPLETION_RATE_LIMIT_RPS", "COMPLETION_RATE_LIMIT_BURST",
	"FORECAST_CONCURRENCY", "PROMPTS_FILE",
}

// clearConfigEnv はテスト中だけ設定系の環境変数を未設定にします。
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, v := range configEnvVars {
		if old, ok := os.LookupEnv(v); ok {
			os.Unsetenv(v)
			t.Cleanup(func() { os.Setenv(v, old) })
		}
	}
}

func TestLoadConfig(t *testing.T) {
	clearConfigEnv(t)

	// テスト用の環境変数を設定
	testCases := map[string]string{
		"PORT":                      "9090",
		"ENVIRONMENT":               "production",
		"AZURE_OPENAI_ENDPOINT":     "https://test.openai.azure.com/",
		"AZURE_OPENAI_KEY":          "test-key",
		"AZURE_OPENAI_API_VERSION":  "2024-06-01",
		"AZURE_OPENAI_DEPLOYMENT":   "test-deployment",
		"FORECAST_CONCURRENCY":      "8",
		"COMPLETION_RATE_LIMIT_RPS": "2.5",
	}
	for key, value := range testCases {
		t.Setenv(key, value)
	}

	// 設定を読み込み
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	// 検証
	if cfg.Port != "9090" {
		t.Errorf("Expected Port to be '9090', got '%s'", cfg.Port)
	}
	if cfg.Environment != Production {
		t.Errorf("Expected Environment to be 'production', got '%s'", cfg.Environment)
	}
	if cfg.AzureOpenAIEndpoint != "https://test.openai.azure.com/" {
		t.Errorf("Expected AzureOpenAIEndpoint to be 'https://test.openai.azure.com/', got '%s'", cfg.AzureOpenAIEndpoint)
	}
	if cfg.AzureOpenAIAPIKey != "test-key" {
		t.Errorf("Expected AzureOpenAIAPIKey to be 'test-key', got '%s'", cfg.AzureOpenAIAPIKey)
	}
	if cfg.AzureOpenAIAPIVersion != "2024-06-01" {
		t.Errorf("Expected AzureOpenAIAPIVersion to be '2024-06-01', got '%s'", cfg.AzureOpenAIAPIVersion)
	}
	if cfg.AzureOpenAIDeploymentName != "test-deployment" {
		t.Errorf("Expected AzureOpenAIDeploymentName to be 'test-deployment', got '%s'", cfg.AzureOpenAIDeploymentName)
	}
	if cfg.ForecastConcurrency != 8 {
		t.Errorf("Expected ForecastConcurrency to be 8, got %d", cfg.ForecastConcurrency)
	}
	if cfg.CompletionRateLimitRPS != 2.5 {
		t.Errorf("Expected CompletionRateLimitRPS to be 2.5, got %v", cfg.CompletionRateLimitRPS)
	}
	if got := cfg.ListenAddr("8001"); got != ":9090" {
		t.Errorf("Expected ListenAddr to be ':9090', got '%s'", got)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	// デフォルト値の検証
	if cfg.Environment != Development {
		t.Errorf("Expected default Environment to be 'development', got '%s'", cfg.Environment)
	}
	if cfg.LLMProvider != ProviderAzure {
		t.Errorf("Expected default LLMProvider to be 'azure', got '%s'", cfg.LLMProvider)
	}
	if cfg.AzureOpenAIAPIVersion != "2024-02-15-preview" {
		t.Errorf("Expected default AzureOpenAIAPIVersion, got '%s'", cfg.AzureOpenAIAPIVersion)
	}
	if cfg.AzureOpenAIDeploymentName != "gpt-4" {
		t.Errorf("Expected default deployment 'gpt-4', got '%s'", cfg.AzureOpenAIDeploymentName)
	}
	if cfg.ForecastConcurrency != 4 {
		t.Errorf("Expected default ForecastConcurrency to be 4, got %d", cfg.ForecastConcurrency)
	}
	if cfg.AgentKind != AgentBusiness {
		t.Errorf("Expected default AgentKind to be 'business', got '%s'", cfg.AgentKind)
	}
	if got := cfg.ListenAddr("8001"); got != ":8001" {
		t.Errorf("Expected ListenAddr to fall back to ':8001', got '%s'", got)
	}
}

func TestLoadConfigLegacyAPIKey(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("AZURE_OPENAI_API_KEY", "legacy-key")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.AzureOpenAIAPIKey != "legacy-key" {
		t.Errorf("Expected AzureOpenAIAPIKey fallback 'legacy-key', got '%s'", cfg.AzureOpenAIAPIKey)
	}
}

func TestLoadConfigInvalidNumber(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("FORECAST_CONCURRENCY", "many")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error for non-numeric FORECAST_CONCURRENCY")
	}
}

func TestParseEnvironment(t *testing.T) {
	testCases := []struct {
		input    string
		expected Environment
	}{
		{"production", Production},
		{"staging", Staging},
		{"testing", Testing},
		{"development", Development},
		{"unknown", Development},
		{"", Development},
	}

	for _, tc := range testCases {
		if got := ParseEnvironment(tc.input); got != tc.expected {
			t.Errorf("ParseEnvironment(%q) = %s, expected %s", tc.input, got, tc.expected)
		}
	}
}
