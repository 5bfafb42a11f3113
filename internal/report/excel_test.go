package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/aggregate"
	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
)

func sampleTable() aggregate.Table {
	return aggregate.Table{
		Rows: []aggregate.Row{
			{
				TopicID:     "1",
				Kind:        models.KindPost,
				Author:      "张三",
				CreateTime:  time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
				Text:        "茅台大涨",
				IsFinancial: true,
				ProductType: models.ProductEquity,
				Targets:     []string{"贵州茅台", "600519"},
				Outlook:     models.OutlookBullish,
				Confidence:  0.9,
				Summary:     "看好",
			},
			{
				TopicID: "2",
				Kind:    models.KindPost,
				Author:  "李四",
				Text:    "今天爬山",
				Outlook: models.OutlookNone,
				Summary: "非财经内容",
			},
		},
	}
}

func TestWriteExcel(t *testing.T) {
	w := NewWriter(t.TempDir())
	path, err := w.WriteExcel(sampleTable(), "2024-06-01")
	if err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}
	if filepath.Base(path) != "舆情分析_2024-06-01.xlsx" {
		t.Fatalf("filename = %q", filepath.Base(path))
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	finRows, err := f.GetRows(sheetFinancial)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", sheetFinancial, err)
	}
	// header + 1 financial row
	if len(finRows) != 2 {
		t.Fatalf("financial sheet rows = %d, want 2", len(finRows))
	}
	if finRows[1][5] != "贵州茅台、600519" {
		t.Fatalf("targets cell = %q", finRows[1][5])
	}

	allRows, err := f.GetRows(sheetAll)
	if err != nil {
		t.Fatalf("GetRows(%s): %v", sheetAll, err)
	}
	if len(allRows) != 3 {
		t.Fatalf("overview sheet rows = %d, want 3", len(allRows))
	}
}

func TestWriteExcelEmptyTable(t *testing.T) {
	w := NewWriter(t.TempDir())
	path, err := w.WriteExcel(aggregate.Table{}, "empty")
	if err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetFinancial)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("empty table should still carry the header row, got %d", len(rows))
	}
}

func TestWriteCSV(t *testing.T) {
	w := NewWriter(t.TempDir())
	path, err := w.WriteCSV(sampleTable(), "2024-06-01")
	if err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2 rows", len(records))
	}
	if records[0][0] != "时间" {
		t.Fatalf("header = %v", records[0])
	}
	if records[1][6] != models.OutlookBullish {
		t.Fatalf("outlook cell = %q", records[1][6])
	}
}

func TestWriterCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "output")
	w := NewWriter(dir)
	if _, err := w.WriteCSV(aggregate.Table{}, "x"); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("output dir missing: %v", err)
	}
}
