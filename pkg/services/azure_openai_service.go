package services

import (
	"context"
	"time"

	"monopod-agents/pkg/azure"
	"monopod-agents/pkg/errx"
	logx "monopod-agents/pkg/logger"
)

// AzureOpenAIService Azure OpenAI を使ったCompletionClient実装
type AzureOpenAIService struct {
	client *azure.OpenAIClient
}

// NewAzureOpenAIService 新しいAzure OpenAI サービスを作成
func NewAzureOpenAIService(client *azure.OpenAIClient) *AzureOpenAIService {
	return &AzureOpenAIService{
		client: client,
	}
}

// Complete はsystem/userメッセージで補完を1回だけ呼び出し、最初の選択肢のテキストを返します。
func (aos *AzureOpenAIService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	messages := []azure.ChatMessage{
		{Role: "system", Content: req.SystemPrompt},
		{Role: "user", Content: req.UserPrompt},
	}

	start := time.Now()
	resp, err := aos.client.ChatCompletion(ctx, messages, req.Temperature)
	if err != nil {
		logx.Error().Err(err).
			Str("provider", "azure").
			Str("deployment", aos.client.DeploymentName()).
			Dur("latency", time.Since(start)).
			Msg("completion call failed")
		return "", errx.Upstream(err)
	}

	logx.Debug().
		Str("provider", "azure").
		Str("deployment", aos.client.DeploymentName()).
		Int("total_tokens", resp.Usage.TotalTokens).
		Dur("latency", time.Since(start)).
		Msg("completion call succeeded")

	return resp.Choices[0].Message.Content, nil
}
