package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"cryptofeed/internal/domain/model"
)

// DefaultTopN is how many source tickers make up a snapshot.
const DefaultTopN = 10

var errEmpty = errors.New("empty value")

// SelectTop returns the first n tickers in source order.
func SelectTop(tickers []model.RawTicker, n int) []model.RawTicker {
	if n < 0 {
		n = 0
	}
	if len(tickers) <= n {
		return tickers
	}
	return tickers[:n]
}

// ParseTicker converts a raw source entry into a storable record. The
// returned error is always a *RowParseError.
func ParseTicker(raw model.RawTicker) (model.TickerRecord, error) {
	rec := model.TickerRecord{
		Name:     raw.Symbol,
		BaseUnit: strings.TrimSpace(raw.BaseUnit),
	}

	fields := []struct {
		name string
		in   string
		out  *decimal.Decimal
	}{
		{"last", raw.Last, &rec.Last},
		{"buy", raw.Buy, &rec.Buy},
		{"sell", raw.Sell, &rec.Sell},
		{"volume", raw.Volume, &rec.Volume},
	}
	for _, f := range fields {
		d, err := parseDecimal(f.in)
		if err != nil {
			return model.TickerRecord{}, &RowParseError{Symbol: raw.Symbol, Field: f.name, Value: f.in, Err: err}
		}
		*f.out = d
	}

	if rec.BaseUnit == "" {
		return model.TickerRecord{}, &RowParseError{Symbol: raw.Symbol, Field: "base_unit", Value: raw.BaseUnit, Err: errEmpty}
	}
	return rec, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, errEmpty
	}
	return decimal.NewFromString(s)
}
