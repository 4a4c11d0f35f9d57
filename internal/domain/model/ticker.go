package model

import "github.com/shopspring/decimal"

// TickerRecord is one stored row of the current snapshot.
type TickerRecord struct {
	ID       int64           `json:"id"` // assigned by the store
	Name     string          `json:"name"`
	Last     decimal.Decimal `json:"last"`
	Buy      decimal.Decimal `json:"buy"`
	Sell     decimal.Decimal `json:"sell"`
	Volume   decimal.Decimal `json:"volume"`
	BaseUnit string          `json:"base_unit"`
}

// RawTicker is a source entry before parsing. Numeric fields keep the
// exchange's string encoding.
type RawTicker struct {
	Symbol    string
	Name      string
	BaseUnit  string
	QuoteUnit string
	Type      string
	Last      string
	Buy       string
	Sell      string
	Volume    string
	Low       string
	High      string
	Open      string
	At        int64 // unix seconds
}
