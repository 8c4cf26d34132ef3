package models

// DefaultForecastDays forecast_days未指定時の予測期間
const DefaultForecastDays = 30

// Confidence labels produced by the model for a forecast.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// Severity labels produced by the model for a log analysis.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// ServiceInfo GET / で返すサービスメタデータ
type ServiceInfo struct {
	Service     string `json:"service"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// SalesRecord 1期間分の販売実績
type SalesRecord struct {
	Date         string  `json:"date" binding:"required"`
	Quantity     float64 `json:"quantity"`
	Amount       float64 `json:"amount,omitempty"`
	CurrentStock *int    `json:"current_stock,omitempty"` // その時点の在庫数（任意）
}

// ProductSalesInput 製品ごとの販売履歴。sales_historyは時系列順で、末尾が最新
type ProductSalesInput struct {
	ProductID    string        `json:"product_id" binding:"required"`
	ProductName  string        `json:"product_name" binding:"required"`
	SalesHistory []SalesRecord `json:"sales_history" binding:"required,dive"`
}

// ForecastRequest 需要予測リクエスト
type ForecastRequest struct {
	SalesData    []ProductSalesInput `json:"sales_data" binding:"required,dive"`
	ForecastDays int                 `json:"forecast_days" binding:"gte=0,lte=365"`
}

// Horizon は予測期間を返します。未指定(0)の場合はDefaultForecastDaysです。
func (r ForecastRequest) Horizon() int {
	if r.ForecastDays == 0 {
		return DefaultForecastDays
	}
	return r.ForecastDays
}

// ForecastResult 製品ごとの需要予測結果
type ForecastResult struct {
	ProductID          string `json:"product_id"`
	ProductName        string `json:"product_name"`
	CurrentStock       int    `json:"current_stock"`
	ForecastedDemand   int    `json:"forecasted_demand"`
	ReorderRecommended bool   `json:"reorder_recommended"`
	SuggestedQuantity  int    `json:"suggested_quantity"`
	Confidence         string `json:"confidence"`
}

// LogAnalysisRequest ログ分析リクエスト
type LogAnalysisRequest struct {
	ServiceName string   `json:"service_name" binding:"required"`
	LogEntries  []string `json:"log_entries" binding:"required"`
}

// RemediationResult ログ分析の結果と推奨対応
type RemediationResult struct {
	IssueDetected            bool     `json:"issue_detected"`
	Severity                 string   `json:"severity"`
	RecommendedActions       []string `json:"recommended_actions"`
	AutoRemediationAvailable bool     `json:"auto_remediation_available"`
}

// RemediationTriggerRequest trigger-remediationのクエリパラメータ
type RemediationTriggerRequest struct {
	Service string `form:"service" binding:"required"`
	Action  string `form:"action" binding:"required"`
}

// RemediationTrigger 自動復旧アクションの受付結果。コマンドは実行されません
type RemediationTrigger struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Action  string `json:"action"`
	Command string `json:"command"`
}
