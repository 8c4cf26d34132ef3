package services

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"monopod-agents/pkg/errx"
	"monopod-agents/pkg/models"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFileType .xlsx/.csv以外のファイル
var ErrUnsupportedFileType = errors.New("サポートされていないファイル形式です。.xlsxまたは.csvをアップロードしてください")

// findIndex finds the index of the first candidate in a slice
func findIndex(slice []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, item := range slice {
			if strings.EqualFold(strings.TrimSpace(item), candidate) {
				return i
			}
		}
	}
	return -1
}

// ParseSalesFile はアップロードされた販売実績ファイル（.xlsx/.csv）を製品ごとの販売履歴に変換します。
// 製品は初出順、各製品の履歴はファイルの行順です。
func ParseSalesFile(filename string, r io.Reader) ([]models.ProductSalesInput, error) {
	var rows [][]string
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, errx.Validation(fmt.Errorf("Excelファイルの読み込みに失敗: %w", err))
		}
		defer f.Close()
		rows, err = f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, errx.Validation(fmt.Errorf("Excelシートの行取得に失敗: %w", err))
		}
	case ".csv":
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		var err error
		rows, err = reader.ReadAll()
		if err != nil {
			return nil, errx.Validation(fmt.Errorf("CSVファイルの解析に失敗: %w", err))
		}
	default:
		return nil, errx.Validation(ErrUnsupportedFileType)
	}
	return parseSalesRows(rows)
}

func parseSalesRows(rows [][]string) ([]models.ProductSalesInput, error) {
	if len(rows) < 2 {
		return nil, errx.Validation(errors.New("ファイルにはヘッダー行と少なくとも1行のデータが必要です"))
	}

	header := rows[0]
	dateIdx := findIndex(header, "date")
	idIdx := findIndex(header, "product_id", "product_code", "sku")
	nameIdx := findIndex(header, "product_name", "product", "name")
	qtyIdx := findIndex(header, "quantity", "sales", "qty")
	amountIdx := findIndex(header, "amount", "sales_amount", "revenue")
	stockIdx := findIndex(header, "current_stock", "stock")

	var missing []string
	if dateIdx == -1 {
		missing = append(missing, "date")
	}
	if idIdx == -1 {
		missing = append(missing, "product_id")
	}
	if nameIdx == -1 {
		missing = append(missing, "product_name")
	}
	if qtyIdx == -1 {
		missing = append(missing, "quantity")
	}
	if len(missing) > 0 {
		return nil, errx.Validation(fmt.Errorf("必要な列が見つかりませんでした: %s (ヘッダー: %v)", strings.Join(missing, ", "), header))
	}

	var products []models.ProductSalesInput
	positions := make(map[string]int)

	for i, row := range rows[1:] {
		line := i + 2
		if isBlankRow(row) {
			continue
		}

		productID := cell(row, idIdx)
		if productID == "" {
			return nil, errx.Validation(fmt.Errorf("%d行目: product_id が空です", line))
		}
		date := cell(row, dateIdx)
		if date == "" {
			return nil, errx.Validation(fmt.Errorf("%d行目: date が空です", line))
		}
		quantity, err := parseNumber(cell(row, qtyIdx))
		if err != nil {
			return nil, errx.Validation(fmt.Errorf("%d行目: quantity が数値ではありません: %w", line, err))
		}

		record := models.SalesRecord{Date: date, Quantity: quantity}
		if amountIdx != -1 && cell(row, amountIdx) != "" {
			if record.Amount, err = parseNumber(cell(row, amountIdx)); err != nil {
				return nil, errx.Validation(fmt.Errorf("%d行目: amount が数値ではありません: %w", line, err))
			}
		}
		if stockIdx != -1 && cell(row, stockIdx) != "" {
			stock, err := strconv.Atoi(strings.ReplaceAll(cell(row, stockIdx), ",", ""))
			if err != nil {
				return nil, errx.Validation(fmt.Errorf("%d行目: current_stock が整数ではありません: %w", line, err))
			}
			record.CurrentStock = &stock
		}

		pos, ok := positions[productID]
		if !ok {
			pos = len(products)
			positions[productID] = pos
			products = append(products, models.ProductSalesInput{
				ProductID:    productID,
				ProductName:  cell(row, nameIdx),
				SalesHistory: []models.SalesRecord{},
			})
		}
		products[pos].SalesHistory = append(products[pos].SalesHistory, record)
	}

	if len(products) == 0 {
		return nil, errx.Validation(errors.New("ファイルに有効なデータ行がありません"))
	}
	return products, nil
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}
