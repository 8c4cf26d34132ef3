package services

import (
	"bytes"
	"strings"
	"testing"

	"monopod-agents/pkg/errx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseSalesFile_CSV(t *testing.T) {
	csvData := strings.Join([]string{
		"Date,SKU,Product,Qty,Revenue,Stock",
		"2024-01-01,P-002,Gadget,5,500,40",
		"2024-01-01,P-001,Widget,\"1,200\",12000,",
		"",
		"2024-01-02,P-002,Gadget,7,700,33",
		"2024-01-02,P-001,Widget,900,9000,300",
	}, "\n")

	products, err := ParseSalesFile("sales.CSV", strings.NewReader(csvData))
	require.NoError(t, err)
	require.Len(t, products, 2)

	// 初出順
	assert.Equal(t, "P-002", products[0].ProductID)
	assert.Equal(t, "Gadget", products[0].ProductName)
	assert.Equal(t, "P-001", products[1].ProductID)

	gadget := products[0].SalesHistory
	require.Len(t, gadget, 2)
	assert.Equal(t, "2024-01-01", gadget[0].Date)
	assert.Equal(t, 5.0, gadget[0].Quantity)
	assert.Equal(t, 500.0, gadget[0].Amount)
	require.NotNil(t, gadget[1].CurrentStock)
	assert.Equal(t, 33, *gadget[1].CurrentStock)

	widget := products[1].SalesHistory
	require.Len(t, widget, 2)
	assert.Equal(t, 1200.0, widget[0].Quantity)
	assert.Nil(t, widget[0].CurrentStock)
	assert.Equal(t, 300, CurrentStock(widget))
}

func TestParseSalesFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"date", "product_id", "product_name", "quantity"},
		{"2024-02-01", "A", "Apple", 10},
		{"2024-02-02", "A", "Apple", 12},
		{"2024-02-01", "B", "Banana", 3},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	products, err := ParseSalesFile("sales.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].ProductID)
	assert.Len(t, products[0].SalesHistory, 2)
	assert.Equal(t, 12.0, products[0].SalesHistory[1].Quantity)
	assert.Equal(t, 0.0, products[0].SalesHistory[1].Amount)
	assert.Equal(t, "Banana", products[1].ProductName)
}

func TestParseSalesFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		wantMsg  string
	}{
		{"unsupported type", "sales.txt", "date,product_id", "サポートされていない"},
		{"header only", "sales.csv", "date,product_id,product_name,quantity", "ヘッダー行"},
		{"missing columns", "sales.csv", "date,product_name\n2024-01-01,Widget", "product_id, quantity"},
		{"bad quantity", "sales.csv", "date,product_id,product_name,quantity\n2024-01-01,P,Widget,many", "2行目: quantity"},
		{"bad stock", "sales.csv", "date,product_id,product_name,quantity,stock\n2024-01-01,P,Widget,1,1.5", "2行目: current_stock"},
		{"empty product id", "sales.csv", "date,product_id,product_name,quantity\n2024-01-01,,Widget,1", "product_id が空"},
		{"broken xlsx", "sales.xlsx", "not a zip", "Excelファイル"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, err := ParseSalesFile(tt.filename, strings.NewReader(tt.content))
			require.Error(t, err)
			assert.Nil(t, products)
			assert.True(t, errx.IsKind(err, errx.KindValidation))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFindIndex(t *testing.T) {
	header := []string{" Date ", "SKU", "Name"}
	assert.Equal(t, 0, findIndex(header, "date"))
	assert.Equal(t, 1, findIndex(header, "product_id", "product_code", "sku"))
	assert.Equal(t, 2, findIndex(header, "product_name", "product", "name"))
	assert.Equal(t, -1, findIndex(header, "quantity"))
}
