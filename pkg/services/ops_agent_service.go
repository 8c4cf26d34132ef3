package services

import (
	"context"
	"fmt"
	"strings"

	config "monopod-agents/configs"
	logx "monopod-agents/pkg/logger"
	"monopod-agents/pkg/models"
)

// maxLogEntries 分析対象にする末尾のログ行数
const maxLogEntries = 50

// RemediationStatusQueued trigger-remediationが常に返すステータス
const RemediationStatusQueued = "queued"

// UnknownActionCommand 未知のアクションに対するプレースホルダーコマンド
const UnknownActionCommand = "echo 'Unknown action'"

var remediationSchema = Schema{
	{Name: "issue_detected", Kind: FieldBoolean},
	{Name: "severity", Kind: FieldEnum, Enum: []string{models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical}},
	{Name: "recommended_actions", Kind: FieldStringArray},
	{Name: "auto_remediation_available", Kind: FieldBoolean},
}

// logAnalysisPromptData ログ分析プロンプトのテンプレート変数
type logAnalysisPromptData struct {
	ServiceName string
	LogBlock    string
}

// OpsAgentService ログ分析と自動復旧アクションのサービス
type OpsAgentService struct {
	client CompletionClient
	prompt *config.PromptSpec
}

// NewOpsAgentService 新しい運用エージェントサービスを作成
func NewOpsAgentService(client CompletionClient, prompt *config.PromptSpec) *OpsAgentService {
	return &OpsAgentService{
		client: client,
		prompt: prompt,
	}
}

// RecentLogEntries はログの末尾maxLogEntries件（少なければ全件）を返します。
func RecentLogEntries(entries []string) []string {
	if len(entries) > maxLogEntries {
		return entries[len(entries)-maxLogEntries:]
	}
	return entries
}

// BuildLogAnalysisPrompt はサービス名と直近のログからユーザープロンプトを組み立てます。
func (s *OpsAgentService) BuildLogAnalysisPrompt(req models.LogAnalysisRequest) (string, error) {
	return s.prompt.Render(logAnalysisPromptData{
		ServiceName: req.ServiceName,
		LogBlock:    strings.Join(RecentLogEntries(req.LogEntries), "\n"),
	})
}

// AnalyzeLogs はログを補完APIで分析し、重大度と推奨対応を返します。
func (s *OpsAgentService) AnalyzeLogs(ctx context.Context, req models.LogAnalysisRequest) (*models.RemediationResult, error) {
	userPrompt, err := s.BuildLogAnalysisPrompt(req)
	if err != nil {
		return nil, err
	}

	text, err := s.client.Complete(ctx, CompletionRequest{
		SystemPrompt: s.prompt.SystemRole,
		UserPrompt:   userPrompt,
		Temperature:  s.prompt.Temperature,
	})
	if err != nil {
		return nil, err
	}

	var result models.RemediationResult
	if err := DecodeStructured(text, remediationSchema, &result); err != nil {
		logx.Warn().Err(err).
			Str("service_name", req.ServiceName).
			Str("raw_output", truncate(text, 500)).
			Msg("log analysis output did not match schema")
		return nil, err
	}

	logx.Info().
		Str("service_name", req.ServiceName).
		Bool("issue_detected", result.IssueDetected).
		Str("severity", result.Severity).
		Strs("recommended_actions", result.RecommendedActions).
		Bool("auto_remediation_available", result.AutoRemediationAvailable).
		Msg("log analysis complete")

	return &result, nil
}

// RemediationCommand はアクション名に対応する説明用のコマンド文字列を返します。
func RemediationCommand(service, action string) string {
	switch action {
	case "restart_service":
		return fmt.Sprintf("kubectl rollout restart deployment/%s", service)
	case "scale_up":
		return fmt.Sprintf("kubectl scale deployment/%s --replicas=5", service)
	case "clear_cache":
		return "redis-cli -h redis FLUSHDB"
	default:
		return UnknownActionCommand
	}
}

// TriggerRemediation はアクションを受け付けたことを返すだけで、コマンドは実行しません。
func (s *OpsAgentService) TriggerRemediation(service, action string) models.RemediationTrigger {
	logx.Info().Str("service", service).Str("action", action).Msg("triggering remediation")

	command := RemediationCommand(service, action)
	logx.Info().Str("service", service).Str("command", command).Msg("would execute remediation command")

	return models.RemediationTrigger{
		Status:  RemediationStatusQueued,
		Service: service,
		Action:  action,
		Command: command,
	}
}
