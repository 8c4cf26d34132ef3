package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed agent_prompts.yaml
var embeddedAgentPrompts []byte

// PromptSpec は1種類の補完呼び出しに使うシステムロール・温度・ユーザープロンプトを定義
type PromptSpec struct {
	SystemRole   string  `yaml:"system_role"`
	Temperature  float32 `yaml:"temperature"`
	UserTemplate string  `yaml:"user_template"`

	tmpl *template.Template
}

// Render はユーザープロンプトのテンプレートをdataで展開します。
func (p *PromptSpec) Render(data any) (string, error) {
	if p.tmpl == nil {
		return "", fmt.Errorf("プロンプトテンプレートが初期化されていません")
	}
	var sb strings.Builder
	if err := p.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("プロンプトの展開に失敗: %w", err)
	}
	return sb.String(), nil
}

func (p *PromptSpec) compile(name string) error {
	if strings.TrimSpace(p.SystemRole) == "" {
		return fmt.Errorf("%s: system_role が空です", name)
	}
	if strings.TrimSpace(p.UserTemplate) == "" {
		return fmt.Errorf("%s: user_template が空です", name)
	}
	if p.Temperature < 0 || p.Temperature > 1 {
		return fmt.Errorf("%s: temperature は0〜1の範囲で指定してください (got %v)", name, p.Temperature)
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(p.UserTemplate)
	if err != nil {
		return fmt.Errorf("%s: テンプレートの解析に失敗: %w", name, err)
	}
	p.tmpl = tmpl
	return nil
}

// AgentInfo はGET / で返すサービスメタデータです。
type AgentInfo struct {
	Service     string `yaml:"service"`
	Description string `yaml:"description"`
}

// BusinessAgentPrompts 需要予測エージェントの設定
type BusinessAgentPrompts struct {
	AgentInfo `yaml:",inline"`
	Forecast  PromptSpec `yaml:"forecast"`
}

// OpsAgentPrompts 運用エージェントの設定
type OpsAgentPrompts struct {
	AgentInfo   `yaml:",inline"`
	LogAnalysis PromptSpec `yaml:"log_analysis"`
}

// AgentPrompts はagent_prompts.yamlの構造を定義
type AgentPrompts struct {
	Version       string               `yaml:"version"`
	BusinessAgent BusinessAgentPrompts `yaml:"business_agent"`
	OpsAgent      OpsAgentPrompts      `yaml:"ops_agent"`
}

// LoadAgentPrompts はプロンプト定義を読み込みます。pathが空の場合は埋め込みの定義を使います。
func LoadAgentPrompts(path string) (*AgentPrompts, error) {
	data := embeddedAgentPrompts
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("プロンプト定義ファイルの読み込みに失敗: %w", err)
		}
	}
	return ParseAgentPrompts(data)
}

// MustLoadAgentPrompts は埋め込みのプロンプト定義を読み込み、失敗した場合はpanicします。
func MustLoadAgentPrompts() *AgentPrompts {
	prompts, err := LoadAgentPrompts("")
	if err != nil {
		panic(err)
	}
	return prompts
}

// ParseAgentPrompts はYAMLをパースし、各テンプレートを検証・コンパイルします。
func ParseAgentPrompts(data []byte) (*AgentPrompts, error) {
	var prompts AgentPrompts
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("YAMLのパースに失敗: %w", err)
	}
	if prompts.Version == "" {
		prompts.Version = "1.0.0"
	}

	if err := prompts.BusinessAgent.Forecast.compile("business_agent.forecast"); err != nil {
		return nil, err
	}
	if err := prompts.OpsAgent.LogAnalysis.compile("ops_agent.log_analysis"); err != nil {
		return nil, err
	}
	return &prompts, nil
}
