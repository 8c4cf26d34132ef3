package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"monopod-agents/pkg/errx"
	logx "monopod-agents/pkg/logger"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"
)

// chatGenerator はEinoのチャットモデルのうち、ここで使うGenerateだけを抜き出したものです。
type chatGenerator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...einomodel.Option) (*schema.Message, error)
}

// GeminiService Gemini を使ったCompletionClient実装（LLM_PROVIDER=gemini）
// クライアントは最初のComplete呼び出しで作成します。認証情報の不足はその時点で上流エラーになります。
type GeminiService struct {
	apiKey    string
	baseURL   string
	modelName string

	once    sync.Once
	model   chatGenerator
	initErr error
}

// NewGeminiService 新しいGemini サービスを作成
func NewGeminiService(apiKey, baseURL, modelName string) *GeminiService {
	return &GeminiService{
		apiKey:    apiKey,
		baseURL:   baseURL,
		modelName: modelName,
	}
}

// chatModel はgenaiクライアントとEinoのGeminiチャットモデルを一度だけ初期化します。
func (gs *GeminiService) chatModel(ctx context.Context) (chatGenerator, error) {
	gs.once.Do(func() {
		if gs.model != nil {
			return
		}

		clientCfg := &genai.ClientConfig{
			APIKey:  gs.apiKey,
			Backend: genai.BackendGeminiAPI,
		}
		if gs.baseURL != "" {
			clientCfg.HTTPOptions.BaseURL = gs.baseURL
		}

		client, err := genai.NewClient(ctx, clientCfg)
		if err != nil {
			gs.initErr = fmt.Errorf("error creating Gemini client: %w", err)
			return
		}

		chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  gs.modelName,
		})
		if err != nil {
			gs.initErr = fmt.Errorf("error creating Gemini chat model: %w", err)
			return
		}
		gs.model = chatModel
	})
	return gs.model, gs.initErr
}

// Complete はsystem/userメッセージで補完を1回だけ呼び出します。
func (gs *GeminiService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	model, err := gs.chatModel(ctx)
	if err != nil {
		logx.Error().Err(err).
			Str("provider", "gemini").
			Str("model", gs.modelName).
			Msg("completion client unavailable")
		return "", errx.Upstream(err)
	}

	messages := []*schema.Message{
		schema.SystemMessage(req.SystemPrompt),
		schema.UserMessage(req.UserPrompt),
	}

	start := time.Now()
	out, err := model.Generate(ctx, messages, einomodel.WithTemperature(req.Temperature))
	if err != nil {
		logx.Error().Err(err).
			Str("provider", "gemini").
			Str("model", gs.modelName).
			Dur("latency", time.Since(start)).
			Msg("completion call failed")
		return "", errx.Upstream(err)
	}
	if out == nil {
		return "", errx.Upstream(fmt.Errorf("gemini returned no message"))
	}

	logx.Debug().
		Str("provider", "gemini").
		Str("model", gs.modelName).
		Dur("latency", time.Since(start)).
		Msg("completion call succeeded")

	return out.Content, nil
}
