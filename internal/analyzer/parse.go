package analyzer

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/GJHUB/zsxq-sentiment-prd/internal/models"
)

const parseFailure = "解析失败"

// parseClassification extracts the first JSON object embedded in the
// model's raw text and decodes it into a Classification. Any failure
// yields the safe default tagged as a parse failure; this never
// returns an error past the classifier boundary.
func parseClassification(raw string) models.Classification {
	obj, ok := extractJSON(raw, '{', '}')
	if !ok {
		slog.Warn("model response carried no JSON object")
		return parseFailedResult()
	}

	var aux struct {
		IsFinancial bool   `json:"is_financial"`
		ProductType string `json:"product_type"`
		Targets     []any  `json:"targets"`
		Outlook     string `json:"outlook"`
		Reason      string `json:"reason"`
		Summary     string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(obj), &aux); err != nil {
		slog.Warn("model JSON did not decode", "error", err)
		return parseFailedResult()
	}

	result := models.Classification{
		IsFinancial: aux.IsFinancial,
		ProductType: defaultString(aux.ProductType, models.ProductNone),
		Targets:     stringify(aux.Targets),
		Outlook:     defaultString(aux.Outlook, models.OutlookNone),
		Reason:      aux.Reason,
		Summary:     aux.Summary,
	}
	return result
}

// SecuritySentiment is one (text, security) pair from a batch response.
type SecuritySentiment struct {
	Index      int     `json:"index"`
	Security   string  `json:"security"`
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// parseBatch extracts the first JSON array from the raw response. The
// ok result is false when no decodable array is present, which callers
// treat as a batch failure worth degrading on.
func parseBatch(raw string) ([]SecuritySentiment, bool) {
	arr, found := extractJSON(raw, '[', ']')
	if !found {
		return nil, false
	}

	var entries []SecuritySentiment
	if err := json.Unmarshal([]byte(arr), &entries); err != nil {
		slog.Warn("batch JSON did not decode", "error", err)
		return nil, false
	}

	for i := range entries {
		entries[i].Sentiment = defaultString(entries[i].Sentiment, models.OutlookNeutral)
		entries[i].Confidence = clamp01(entries[i].Confidence)
	}
	return entries, true
}

// extractJSON returns the first balanced opener..closer span that
// decodes as JSON. Bracket matching skips quoted strings and escapes,
// so braces inside string values do not end the span early.
func extractJSON(s string, opener, closer byte) (string, bool) {
	data := []byte(s)
	for from := 0; from < len(data); from++ {
		if data[from] != opener {
			continue
		}

		depth := 0
		inString := false
		escaped := false
		for i := from; i < len(data); i++ {
			c := data[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case c == '\\':
					escaped = true
				case c == '"':
					inString = false
				}
				continue
			}
			switch c {
			case '"':
				inString = true
			case opener:
				depth++
			case closer:
				depth--
				if depth == 0 {
					candidate := data[from : i+1]
					if json.Valid(candidate) {
						return string(candidate), true
					}
					i = len(data) // 无效则从下一个起始符重试
				}
			}
		}
	}
	return "", false
}

func parseFailedResult() models.Classification {
	result := models.NonFinancial(parseFailure)
	result.Reason = parseFailure
	result.ParseFailed = true
	return result
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// stringify coerces target entries to strings; models occasionally
// return bare stock codes as numbers.
func stringify(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprintf("%v", v))
	}
	return out
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
