package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCompletionRequest は補完リクエストが入力制約を満たさない場合に返されます。
var ErrInvalidCompletionRequest = errors.New("invalid completion request")

// CompletionRequest は補完APIへの1回分の入力です。
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
}

// Validate はsystem/userが空でないこと、temperatureが0〜1であることを確認します。
func (r CompletionRequest) Validate() error {
	if strings.TrimSpace(r.SystemPrompt) == "" {
		return fmt.Errorf("%w: system prompt is empty", ErrInvalidCompletionRequest)
	}
	if strings.TrimSpace(r.UserPrompt) == "" {
		return fmt.Errorf("%w: user prompt is empty", ErrInvalidCompletionRequest)
	}
	if r.Temperature < 0 || r.Temperature > 1 {
		return fmt.Errorf("%w: temperature %v out of range [0,1]", ErrInvalidCompletionRequest, r.Temperature)
	}
	return nil
}

// CompletionClient は言語モデルの補完呼び出しの境界です。
// 戻り値は生のテキストで、JSONである保証はありません。
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionFunc は関数をCompletionClientとして扱うためのアダプタです。
type CompletionFunc func(ctx context.Context, req CompletionRequest) (string, error)

func (f CompletionFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}
