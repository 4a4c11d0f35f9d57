package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const DefaultInterval = 60 * time.Second

// Job 一次调度执行的任务
type Job func(ctx context.Context)

type Options struct {
	Interval time.Duration
	// SkipIfRunning 上一次仍在运行时跳过本次触发
	// 默认关闭：每次触发独立运行，可能重叠
	SkipIfRunning bool
}

// Scheduler 先立即执行一次任务，然后按固定周期执行
// 每次周期执行在独立 goroutine 中，无抖动、无补偿
type Scheduler struct {
	opts Options
	cron *cron.Cron
}

func New(opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	logger := cronLogger{}
	wrappers := []cron.JobWrapper{cron.Recover(logger)}
	if opts.SkipIfRunning {
		wrappers = append(wrappers, cron.SkipIfStillRunning(logger))
	}

	return &Scheduler{
		opts: opts,
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(wrappers...)),
	}
}

// Start 同步执行一次任务，然后每隔 Interval 调度
func (s *Scheduler) Start(ctx context.Context, name string, job Job) {
	job(ctx)

	s.cron.Schedule(cron.Every(s.opts.Interval), cron.FuncJob(func() {
		if ctx.Err() != nil {
			return
		}
		job(ctx)
	}))
	s.cron.Start()

	log.Info().
		Str("job", name).
		Dur("interval", s.opts.Interval).
		Bool("skip_if_running", s.opts.SkipIfRunning).
		Msg("job scheduled")
}

// Stop 停止调度，返回的 context 在运行中的任务结束后完成
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// cronLogger 将 cron 日志转到 zerolog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
