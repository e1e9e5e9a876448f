package model

import "time"

// PricePoint is one normalized row of an instrument's price history.
// High, Low and Volume are nil when the source row did not carry a usable value.
type PricePoint struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	High   *float64  `json:"high,omitempty"`
	Low    *float64  `json:"low,omitempty"`
	Volume *float64  `json:"volume,omitempty"`
}

// HighOrClose returns High, falling back to Close.
func (p PricePoint) HighOrClose() float64 {
	if p.High != nil {
		return *p.High
	}
	return p.Close
}

// LowOrClose returns Low, falling back to Close.
func (p PricePoint) LowOrClose() float64 {
	if p.Low != nil {
		return *p.Low
	}
	return p.Close
}

// FundamentalSnapshot holds the ratios published for one reporting date.
// ROE, ROA and DividendYield are expressed in percent (6 means 6%).
type FundamentalSnapshot struct {
	PER           *float64  `json:"per,omitempty"`
	PBR           *float64  `json:"pbr,omitempty"`
	ROE           *float64  `json:"roe,omitempty"`
	ROA           *float64  `json:"roa,omitempty"`
	DividendYield *float64  `json:"dividend_yield,omitempty"`
	ReportDate    time.Time `json:"report_date"`
}

// IsEmpty reports whether the snapshot carries no usable ratio.
func (f *FundamentalSnapshot) IsEmpty() bool {
	return f == nil || (f.PER == nil && f.PBR == nil && f.ROE == nil && f.ROA == nil && f.DividendYield == nil)
}

// Float returns a pointer to v, for building optional fields.
func Float(v float64) *float64 { return &v }
