package services

import (
	"context"

	"monopod-agents/pkg/errx"

	"golang.org/x/time/rate"
)

// RateLimitedClient は補完APIのレート制限を超えないよう呼び出しを待機させるデコレーターです。
type RateLimitedClient struct {
	next    CompletionClient
	limiter *rate.Limiter
}

// NewRateLimitedClient はトークンバケットでnextをラップします。
// rps が0以下の場合は制限なしで、nextをそのまま返します。
func NewRateLimitedClient(next CompletionClient, rps float64, burst int) CompletionClient {
	if rps <= 0 {
		return next
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedClient{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Complete はトークンを取得してから次のクライアントを呼び出します。
func (c *RateLimitedClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errx.Upstream(err)
	}
	return c.next.Complete(ctx, req)
}
