package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeCompletion は受け取ったリクエストを記録し、respondの結果を返すテスト用クライアントです。
type fakeCompletion struct {
	mu       sync.Mutex
	requests []CompletionRequest
	respond  func(req CompletionRequest) (string, error)
}

func (f *fakeCompletion) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.respond(req)
}

func (f *fakeCompletion) calls() []CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]CompletionRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func staticCompletion(text string) *fakeCompletion {
	return &fakeCompletion{respond: func(CompletionRequest) (string, error) { return text, nil }}
}

func TestCompletionRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CompletionRequest
		wantErr string
	}{
		{"valid", CompletionRequest{SystemPrompt: "sys", UserPrompt: "user", Temperature: 0.5}, ""},
		{"zero temperature", CompletionRequest{SystemPrompt: "sys", UserPrompt: "user"}, ""},
		{"empty system", CompletionRequest{SystemPrompt: " ", UserPrompt: "user"}, "system prompt is empty"},
		{"empty user", CompletionRequest{SystemPrompt: "sys"}, "user prompt is empty"},
		{"temperature too high", CompletionRequest{SystemPrompt: "sys", UserPrompt: "user", Temperature: 1.5}, "out of range"},
		{"negative temperature", CompletionRequest{SystemPrompt: "sys", UserPrompt: "user", Temperature: -0.1}, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidCompletionRequest)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCompletionFunc(t *testing.T) {
	var client CompletionClient = CompletionFunc(func(ctx context.Context, req CompletionRequest) (string, error) {
		if req.UserPrompt == "fail" {
			return "", errors.New("boom")
		}
		return strings.ToUpper(req.UserPrompt), nil
	})

	out, err := client.Complete(context.Background(), CompletionRequest{UserPrompt: "hello"})
	assert.NoError(t, err)
	assert.Equal(t, "HELLO", out)

	_, err = client.Complete(context.Background(), CompletionRequest{UserPrompt: "fail"})
	assert.EqualError(t, err, "boom")
}
