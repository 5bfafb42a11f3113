package analyzer

import "strings"

// financeKeywords is the fixed prefilter vocabulary: equities, funds,
// futures, crypto and macro terms. Matching is a plain case-sensitive
// substring check so the prefilter stays deterministic and free.
var financeKeywords = []string{
	"股", "基金", "期货", "债券", "涨", "跌", "买入", "卖出",
	"仓", "多", "空", "牛", "熊", "板块", "行情", "大盘",
	"指数", "K线", "均线", "macd", "ETF", "A股", "港股", "美股",
	"比特币", "BTC", "ETH", "币", "区块链", "加密", "合约",
	"原油", "黄金", "白银", "铜", "螺纹", "豆粕",
	"利率", "降息", "加息", "通胀", "GDP", "CPI",
}

// MatchesFinanceKeyword reports whether text mentions any financial
// keyword. Content that does not match never reaches a model call.
func MatchesFinanceKeyword(text string) bool {
	for _, kw := range financeKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
