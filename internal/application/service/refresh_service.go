package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptofeed/internal/application/port"
	"cryptofeed/internal/domain"
	"cryptofeed/internal/domain/model"

	"github.com/rs/zerolog/log"
)

// RefreshResult 一次刷新的统计结果
type RefreshResult struct {
	Fetched  int
	Selected int
	Skipped  int
	Stored   int
	Duration time.Duration
}

// RefreshService 用数据源前 N 个行情替换存储中的快照
type RefreshService struct {
	source    port.TickerSource
	store     port.SnapshotStore
	publisher port.SnapshotPublisher
	topN      int
}

// NewRefreshService 创建刷新服务，publisher 可为 nil
func NewRefreshService(
	source port.TickerSource,
	store port.SnapshotStore,
	publisher port.SnapshotPublisher,
	topN int,
) *RefreshService {
	if topN <= 0 {
		topN = domain.DefaultTopN
	}
	return &RefreshService{
		source:    source,
		store:     store,
		publisher: publisher,
		topN:      topN,
	}
}

// Refresh 执行一次刷新：拉取、截取、解析、替换、发布
// 拉取失败时直接返回，不触碰存储
func (s *RefreshService) Refresh(ctx context.Context) (RefreshResult, error) {
	start := time.Now()
	var res RefreshResult

	tickers, err := s.source.FetchTickers(ctx)
	if err != nil {
		log.Error().Err(err).Str("source", s.source.Name()).Msg("fetch tickers failed, keeping previous snapshot")
		return res, fmt.Errorf("refresh: %w", err)
	}
	res.Fetched = len(tickers)

	selected := domain.SelectTop(tickers, s.topN)
	res.Selected = len(selected)

	rows := make([]model.TickerRecord, 0, len(selected))
	for _, raw := range selected {
		rec, err := domain.ParseTicker(raw)
		if err != nil {
			log.Warn().Err(err).Str("symbol", raw.Symbol).Msg("skipping ticker")
			res.Skipped++
			continue
		}
		rows = append(rows, rec)
	}

	stored, err := s.store.ReplaceAll(ctx, rows)
	res.Stored = stored
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			res.Duration = time.Since(start)
			log.Error().Err(err).Int("stored", stored).Msg("replace snapshot failed")
			return res, fmt.Errorf("refresh: %w", err)
		}
		logFailedRows(err)
		res.Skipped += res.Selected - res.Skipped - stored
	}

	if s.publisher != nil {
		s.publish(ctx)
	}

	res.Duration = time.Since(start)
	log.Info().
		Str("source", s.source.Name()).
		Int("fetched", res.Fetched).
		Int("selected", res.Selected).
		Int("skipped", res.Skipped).
		Int("stored", res.Stored).
		Dur("took", res.Duration).
		Msg("snapshot refreshed")

	return res, nil
}

// publish 读回存储中的快照（带存储分配的 id）并发布
func (s *RefreshService) publish(ctx context.Context) {
	stored, err := s.store.ReadAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read back snapshot failed, not publishing")
		return
	}
	if err := s.publisher.PublishSnapshot(ctx, stored); err != nil {
		log.Warn().Err(err).Msg("publish snapshot failed")
	}
}

// logFailedRows 记录 err 中每一行的插入失败
func logFailedRows(err error) {
	for _, e := range flatten(err) {
		var ierr *domain.RowInsertError
		if errors.As(e, &ierr) {
			log.Warn().Err(ierr.Err).Str("symbol", ierr.Name).Int("row", ierr.Index).Msg("skipping ticker, insert failed")
		}
	}
}

func flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
