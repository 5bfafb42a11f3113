package models

// Outlook labels, kept in the report language so model output maps onto
// them directly.
const (
	OutlookBullish = "看多"
	OutlookBearish = "看空"
	OutlookNeutral = "中性"
	OutlookMixed   = "分歧"
	OutlookNone    = "无"
)

// Product type labels returned by the classifier.
const (
	ProductEquity  = "股票"
	ProductFutures = "期货"
	ProductCrypto  = "区块链"
	ProductFund    = "基金"
	ProductBond    = "债券"
	ProductOther   = "其他"
	ProductNone    = "无"
)

// Classification is the fixed-shape result produced for every topic that
// enters the classifier. Missing model fields are default-filled at the
// parsing boundary so downstream code never branches on field presence.
type Classification struct {
	IsFinancial bool     `json:"is_financial"`
	ProductType string   `json:"product_type"`
	Targets     []string `json:"targets"`
	Outlook     string   `json:"outlook"`
	Reason      string   `json:"reason"`
	Summary     string   `json:"summary"`

	// ParseFailed marks results that fell back to safe defaults because
	// the model response carried no decodable JSON.
	ParseFailed bool `json:"-"`
}

// NonFinancial returns the deterministic result for content that never
// reaches a model call.
func NonFinancial(summary string) Classification {
	return Classification{
		IsFinancial: false,
		ProductType: ProductNone,
		Targets:     []string{},
		Outlook:     OutlookNone,
		Summary:     summary,
	}
}
