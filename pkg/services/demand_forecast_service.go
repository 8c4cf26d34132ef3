package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	config "monopod-agents/configs"
	logx "monopod-agents/pkg/logger"
	"monopod-agents/pkg/models"

	"golang.org/x/sync/errgroup"
)

// recentSalesWindow プロンプトに埋め込む直近の販売履歴の件数
const recentSalesWindow = 14

var forecastSchema = Schema{
	{Name: "forecasted_demand", Kind: FieldInteger},
	{Name: "confidence", Kind: FieldEnum, Enum: []string{models.ConfidenceHigh, models.ConfidenceMedium, models.ConfidenceLow}},
	{Name: "reorder_recommended", Kind: FieldBoolean},
	{Name: "suggested_quantity", Kind: FieldInteger},
	{Name: "reasoning", Kind: FieldString},
}

// forecastCompletion 補完出力のうち需要予測で使うキー
type forecastCompletion struct {
	ForecastedDemand   int    `json:"forecasted_demand"`
	Confidence         string `json:"confidence"`
	ReorderRecommended bool   `json:"reorder_recommended"`
	SuggestedQuantity  int    `json:"suggested_quantity"`
	Reasoning          string `json:"reasoning"`
}

// SalesSummary 販売履歴全体の集計
type SalesSummary struct {
	Periods      int
	TotalSales   float64
	AverageSales float64
}

// SummarizeSales は販売数量の合計と1期間あたりの平均を計算します。履歴が空なら平均は0です。
func SummarizeSales(history []models.SalesRecord) SalesSummary {
	summary := SalesSummary{Periods: len(history)}
	for _, record := range history {
		summary.TotalSales += record.Quantity
	}
	if summary.Periods > 0 {
		summary.AverageSales = summary.TotalSales / float64(summary.Periods)
	}
	return summary
}

// CurrentStock は最新の販売記録の在庫スナップショットを返します。履歴が空または未設定なら0です。
func CurrentStock(history []models.SalesRecord) int {
	if len(history) == 0 {
		return 0
	}
	if stock := history[len(history)-1].CurrentStock; stock != nil {
		return *stock
	}
	return 0
}

// forecastPromptData 需要予測プロンプトのテンプレート変数
type forecastPromptData struct {
	ProductName     string
	ForecastDays    int
	HistoryLength   int
	TotalSales      string // 指数表記にならないよう整形済み
	AverageSales    float64
	RecentSalesJSON string
}

// DemandForecastService 需要予測サービス
type DemandForecastService struct {
	client      CompletionClient
	prompt      *config.PromptSpec
	concurrency int
}

// NewDemandForecastService 新しい需要予測サービスを作成
// concurrency は製品ごとの補完呼び出しの同時実行数の上限です（1で逐次実行）。
func NewDemandForecastService(client CompletionClient, prompt *config.PromptSpec, concurrency int) *DemandForecastService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &DemandForecastService{
		client:      client,
		prompt:      prompt,
		concurrency: concurrency,
	}
}

// BuildForecastPrompt は1製品分のユーザープロンプトを組み立てます。
func (dfs *DemandForecastService) BuildForecastPrompt(product models.ProductSalesInput, forecastDays int) (string, SalesSummary, error) {
	summary := SummarizeSales(product.SalesHistory)

	recent := product.SalesHistory
	if len(recent) > recentSalesWindow {
		recent = recent[len(recent)-recentSalesWindow:]
	}
	if recent == nil {
		recent = []models.SalesRecord{}
	}
	recentJSON, err := json.MarshalIndent(recent, "", "  ")
	if err != nil {
		return "", summary, fmt.Errorf("販売履歴のJSON化に失敗: %w", err)
	}

	prompt, err := dfs.prompt.Render(forecastPromptData{
		ProductName:     product.ProductName,
		ForecastDays:    forecastDays,
		HistoryLength:   summary.Periods,
		TotalSales:      strconv.FormatFloat(summary.TotalSales, 'f', -1, 64),
		AverageSales:    summary.AverageSales,
		RecentSalesJSON: string(recentJSON),
	})
	if err != nil {
		return "", summary, err
	}
	return prompt, summary, nil
}

// ForecastDemand は製品ごとに補完APIを呼び出し、入力と同じ順序で予測結果を返します。
// いずれかの製品で失敗した場合はリクエスト全体を失敗とし、部分的な結果は返しません。
func (dfs *DemandForecastService) ForecastDemand(ctx context.Context, req models.ForecastRequest) ([]models.ForecastResult, error) {
	horizon := req.Horizon()
	results := make([]models.ForecastResult, len(req.SalesData))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dfs.concurrency)
	for i, product := range req.SalesData {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := dfs.forecastProduct(gctx, product, horizon)
			if err != nil {
				return fmt.Errorf("product %s: %w", product.ProductID, err)
			}
			results[i] = *result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (dfs *DemandForecastService) forecastProduct(ctx context.Context, product models.ProductSalesInput, horizon int) (*models.ForecastResult, error) {
	userPrompt, summary, err := dfs.BuildForecastPrompt(product, horizon)
	if err != nil {
		return nil, err
	}

	text, err := dfs.client.Complete(ctx, CompletionRequest{
		SystemPrompt: dfs.prompt.SystemRole,
		UserPrompt:   userPrompt,
		Temperature:  dfs.prompt.Temperature,
	})
	if err != nil {
		return nil, err
	}

	var completion forecastCompletion
	if err := DecodeStructured(text, forecastSchema, &completion); err != nil {
		logx.Warn().Err(err).
			Str("product_id", product.ProductID).
			Str("raw_output", truncate(text, 500)).
			Msg("forecast output did not match schema")
		return nil, err
	}

	logx.Info().
		Str("product_id", product.ProductID).
		Str("product_name", product.ProductName).
		Float64("total_sales", summary.TotalSales).
		Float64("average_sales", summary.AverageSales).
		Str("reasoning", completion.Reasoning).
		Msg("forecast generated")

	return &models.ForecastResult{
		ProductID:          product.ProductID,
		ProductName:        product.ProductName,
		CurrentStock:       CurrentStock(product.SalesHistory),
		ForecastedDemand:   completion.ForecastedDemand,
		ReorderRecommended: completion.ReorderRecommended,
		SuggestedQuantity:  completion.SuggestedQuantity,
		Confidence:         completion.Confidence,
	}, nil
}

// truncate はsを最大nバイトに切り詰めます。マルチバイト文字の途中では切りません。
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
