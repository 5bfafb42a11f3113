// Package report renders an analysis table into the Excel workbook (or
// CSV fallback) that ends up in the output directory.
package report

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/aggregate"
)

const (
	sheetFinancial = "财经分析"
	sheetAll       = "全部帖子"

	timeFormat = "2006-01-02 15:04"
)

var header = []string{
	"时间", "作者", "类型", "内容", "产品类型", "标的", "观点", "置信度", "原因", "总结",
}

// Writer writes reports under a fixed output directory.
type Writer struct {
	outputDir string
}

func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// WriteExcel writes the two-sheet workbook for one run. Label becomes
// part of the filename, typically the analysis date. Returns the path
// of the file written.
func (w *Writer) WriteExcel(table aggregate.Table, label string) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.fillSheet(f, sheetFinancial, financialRows(table.Rows)); err != nil {
		return "", err
	}
	if err := w.fillSheet(f, sheetAll, table.Rows); err != nil {
		return "", err
	}
	// excelize 默认创建 Sheet1
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", err
	}
	if idx, err := f.GetSheetIndex(sheetFinancial); err == nil {
		f.SetActiveSheet(idx)
	}

	path := filepath.Join(w.outputDir, fmt.Sprintf("舆情分析_%s.xlsx", label))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %v", err)
	}
	slog.Info("report written", "path", path, "rows", len(table.Rows))
	return path, nil
}

// WriteCSV is the fallback format for environments without Excel. Only
// the combined view is written.
func (w *Writer) WriteCSV(table aggregate.Table, label string) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %v", err)
	}

	path := filepath.Join(w.outputDir, fmt.Sprintf("舆情分析_%s.csv", label))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("failed to write headers: %v", err)
	}
	for _, row := range table.Rows {
		if err := writer.Write(record(row)); err != nil {
			return "", fmt.Errorf("failed to write row: %v", err)
		}
	}

	slog.Info("csv report written", "path", path, "rows", len(table.Rows))
	return path, nil
}

func (w *Writer) fillSheet(f *excelize.File, name string, rows []aggregate.Row) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	for col, title := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(name, cell, title); err != nil {
			return err
		}
	}

	for i, row := range rows {
		for col, value := range record(row) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(name, cell, value); err != nil {
				return err
			}
		}
	}

	// 内容列要宽一些，其余保持默认
	if err := f.SetColWidth(name, "D", "D", 60); err != nil {
		return err
	}
	return f.SetColWidth(name, "I", "J", 40)
}

// record renders one row in header order.
func record(row aggregate.Row) []string {
	confidence := ""
	if row.Confidence > 0 {
		confidence = strconv.FormatFloat(row.Confidence, 'f', 2, 64)
	}
	created := ""
	if !row.CreateTime.IsZero() {
		created = row.CreateTime.Format(timeFormat)
	}
	return []string{
		created,
		row.Author,
		string(row.Kind),
		row.Text,
		row.ProductType,
		strings.Join(row.Targets, "、"),
		row.Outlook,
		confidence,
		row.Reason,
		row.Summary,
	}
}

func financialRows(rows []aggregate.Row) []aggregate.Row {
	out := make([]aggregate.Row, 0, len(rows))
	for _, r := range rows {
		if r.IsFinancial {
			out = append(out, r)
		}
	}
	return out
}
