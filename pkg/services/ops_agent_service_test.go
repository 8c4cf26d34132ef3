package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	config "monopod-agents/configs"
	"monopod-agents/pkg/errx"
	"monopod-agents/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const remediationJSON = `{"issue_detected": true, "severity": "HIGH", "recommended_actions": ["restart_service", "scale_up"], "auto_remediation_available": true}`

func logAnalysisPrompt(t *testing.T) *config.PromptSpec {
	t.Helper()
	prompts, err := config.LoadAgentPrompts("")
	require.NoError(t, err)
	return &prompts.OpsAgent.LogAnalysis
}

func logLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line-%03d ERROR connection refused", i+1)
	}
	return lines
}

func TestRecentLogEntries(t *testing.T) {
	assert.Len(t, RecentLogEntries(logLines(10)), 10)

	recent := RecentLogEntries(logLines(120))
	require.Len(t, recent, 50)
	assert.True(t, strings.HasPrefix(recent[0], "line-071"))
	assert.True(t, strings.HasPrefix(recent[49], "line-120"))

	assert.Empty(t, RecentLogEntries(nil))
}

func TestAnalyzeLogs(t *testing.T) {
	fake := staticCompletion(remediationJSON)
	svc := NewOpsAgentService(fake, logAnalysisPrompt(t))

	result, err := svc.AnalyzeLogs(context.Background(), models.LogAnalysisRequest{
		ServiceName: "payment-api",
		LogEntries:  logLines(60),
	})
	require.NoError(t, err)

	assert.Equal(t, &models.RemediationResult{
		IssueDetected:            true,
		Severity:                 "HIGH",
		RecommendedActions:       []string{"restart_service", "scale_up"},
		AutoRemediationAvailable: true,
	}, result)

	calls := fake.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "You are an expert DevOps AI assistant.", calls[0].SystemPrompt)
	assert.Equal(t, float32(0.3), calls[0].Temperature)
	assert.Contains(t, calls[0].UserPrompt, "analyzing logs from payment-api")

	prompt := calls[0].UserPrompt
	assert.NotContains(t, prompt, "line-010 ")
	assert.Contains(t, prompt, "line-011 ERROR connection refused\nline-012 ERROR connection refused")
	assert.Contains(t, prompt, "line-060")
}

func TestAnalyzeLogs_EmptyLogs(t *testing.T) {
	fake := staticCompletion(`{"issue_detected": false, "severity": "low", "recommended_actions": [], "auto_remediation_available": false}`)
	svc := NewOpsAgentService(fake, logAnalysisPrompt(t))

	result, err := svc.AnalyzeLogs(context.Background(), models.LogAnalysisRequest{ServiceName: "idle", LogEntries: []string{}})
	require.NoError(t, err)
	assert.False(t, result.IssueDetected)
	assert.Equal(t, models.SeverityLow, result.Severity)
	assert.Empty(t, result.RecommendedActions)
	assert.Len(t, fake.calls(), 1)
}

func TestAnalyzeLogs_Failures(t *testing.T) {
	tests := []struct {
		name     string
		fake     *fakeCompletion
		wantKind errx.Kind
		wantMsg  string
	}{
		{
			name:     "missing severity",
			fake:     staticCompletion(`{"issue_detected": true, "recommended_actions": [], "auto_remediation_available": false}`),
			wantKind: errx.KindParse,
			wantMsg:  "missing key: severity",
		},
		{
			name:     "not json",
			fake:     staticCompletion("Everything looks fine."),
			wantKind: errx.KindParse,
			wantMsg:  "not a JSON object",
		},
		{
			name: "upstream",
			fake: &fakeCompletion{respond: func(CompletionRequest) (string, error) {
				return "", errx.Upstream(errors.New("401 unauthorized"))
			}},
			wantKind: errx.KindUpstream,
			wantMsg:  "401 unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewOpsAgentService(tt.fake, logAnalysisPrompt(t))
			result, err := svc.AnalyzeLogs(context.Background(), models.LogAnalysisRequest{
				ServiceName: "api",
				LogEntries:  []string{"ERROR"},
			})
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, errx.IsKind(err, tt.wantKind))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestTriggerRemediation(t *testing.T) {
	svc := NewOpsAgentService(staticCompletion(""), logAnalysisPrompt(t))

	tests := []struct {
		action string
		want   string
	}{
		{"restart_service", "kubectl rollout restart deployment/checkout"},
		{"scale_up", "kubectl scale deployment/checkout --replicas=5"},
		{"clear_cache", "redis-cli -h redis FLUSHDB"},
		{"reboot_datacenter", "echo 'Unknown action'"},
		{"", "echo 'Unknown action'"},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			got := svc.TriggerRemediation("checkout", tt.action)
			assert.Equal(t, models.RemediationTrigger{
				Status:  "queued",
				Service: "checkout",
				Action:  tt.action,
				Command: tt.want,
			}, got)
		})
	}
}
