package analyzer

import (
	"reflect"
	"testing"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
)

func TestParseClassificationEmbeddedInProse(t *testing.T) {
	raw := `好的，以下是分析结果：
{"is_financial": true, "product_type": "股票", "targets": ["贵州茅台", "600519"],
 "outlook": "看多", "reason": "业绩超预期", "summary": "白酒龙头持续走强"}
希望对你有帮助！`

	got := parseClassification(raw)
	if !got.IsFinancial {
		t.Fatal("expected financial classification")
	}
	if got.ProductType != models.ProductEquity {
		t.Fatalf("product_type = %q", got.ProductType)
	}
	if len(got.Targets) != 2 || got.Targets[0] != "贵州茅台" {
		t.Fatalf("targets = %v", got.Targets)
	}
	if got.Outlook != models.OutlookBullish {
		t.Fatalf("outlook = %q", got.Outlook)
	}
	if got.ParseFailed {
		t.Fatal("unexpected parse failure flag")
	}
}

func TestParseClassificationIgnoresSurroundingNoise(t *testing.T) {
	clean := `{"is_financial": false, "product_type": "无", "targets": [], "outlook": "无", "reason": "", "summary": "日常闲聊"}`
	noisy := "```json\n" + clean + "\n```\n以上就是全部内容。"

	if !reflect.DeepEqual(parseClassification(clean), parseClassification(noisy)) {
		t.Fatal("prefix/suffix noise changed the decoded result")
	}
}

func TestParseClassificationBracesInsideStrings(t *testing.T) {
	raw := `{"is_financial": true, "product_type": "股票", "targets": ["ST{测试}"], "outlook": "中性", "reason": "提到了{括号}", "summary": "ok"}`
	got := parseClassification(raw)
	if got.ParseFailed {
		t.Fatal("braces inside string values broke extraction")
	}
	if got.Targets[0] != "ST{测试}" {
		t.Fatalf("targets = %v", got.Targets)
	}
}

func TestParseClassificationNoJSON(t *testing.T) {
	got := parseClassification("抱歉，我无法完成这个请求。")
	if !got.ParseFailed {
		t.Fatal("expected parse failure flag")
	}
	if got.IsFinancial {
		t.Fatal("safe default must be non-financial")
	}
	if got.ProductType != models.ProductNone || got.Outlook != models.OutlookNone {
		t.Fatalf("defaults = %q/%q", got.ProductType, got.Outlook)
	}
	if got.Targets == nil || len(got.Targets) != 0 {
		t.Fatalf("targets = %v, want empty non-nil", got.Targets)
	}
}

func TestParseClassificationDefaultFillsMissingFields(t *testing.T) {
	got := parseClassification(`{"is_financial": true}`)
	if got.ProductType != models.ProductNone {
		t.Fatalf("product_type = %q, want default", got.ProductType)
	}
	if got.Outlook != models.OutlookNone {
		t.Fatalf("outlook = %q, want default", got.Outlook)
	}
	if got.ParseFailed {
		t.Fatal("missing fields are not a parse failure")
	}
}

func TestParseClassificationNumericTargets(t *testing.T) {
	got := parseClassification(`{"is_financial": true, "targets": ["茅台", 600519]}`)
	if len(got.Targets) != 2 || got.Targets[1] != "600519" {
		t.Fatalf("targets = %v", got.Targets)
	}
}

func TestParseBatchArrayInProse(t *testing.T) {
	raw := `分析如下：
[{"index": 1, "security": "贵州茅台", "sentiment": "看多", "confidence": 0.9, "reason": "大涨"},
 {"index": 1, "security": "五粮液", "sentiment": "看空", "confidence": 1.7, "reason": "回调"}]`

	entries, ok := parseBatch(raw)
	if !ok {
		t.Fatal("expected array to decode")
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[1].Confidence != 1.0 {
		t.Fatalf("confidence = %v, want clamped to 1.0", entries[1].Confidence)
	}
}

func TestParseBatchNoArray(t *testing.T) {
	if _, ok := parseBatch("没有发现金融标的。"); ok {
		t.Fatal("expected parse failure for prose-only response")
	}
}

func TestExtractJSONSkipsInvalidCandidate(t *testing.T) {
	raw := `{broken json} 然后是 {"is_financial": true}`
	obj, ok := extractJSON(raw, '{', '}')
	if !ok {
		t.Fatal("expected extraction to recover after invalid candidate")
	}
	if obj != `{"is_financial": true}` {
		t.Fatalf("extracted %q", obj)
	}
}
