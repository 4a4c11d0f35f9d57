package port

import (
	"context"

	"cryptofeed/internal/domain/model"
)

type TickerSource interface {
	Name() string
	// FetchTickers returns the source's tickers in response order.
	FetchTickers(ctx context.Context) ([]model.RawTicker, error)
}
