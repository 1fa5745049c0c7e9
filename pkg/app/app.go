package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/lk2023060901/petlink/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var ErrAppAlreadyRunning = errors.New("application is already running")

// Runner 随应用生命周期运行的组件（HTTP 服务、定时任务），ctx 取消后应返回
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerFunc 函数式 Runner
type RunnerFunc func(ctx context.Context) error

func (f RunnerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Closer 资源清理接口（Redis, DB, Tracer）
type Closer interface {
	Close() error
}

// CloserFunc 适配无返回值的关闭函数，如 pgxpool.Pool.Close
type CloserFunc func()

func (f CloserFunc) Close() error {
	f()
	return nil
}

// App 应用生命周期管理
type App struct {
	opts    Options
	logger  logger.Logger
	mu      sync.Mutex
	runners []Runner
	closers []Closer
	started atomic.Bool
}

// New 创建应用
func New(opts ...Option) *App {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &App{
		opts:   o,
		logger: o.Logger.Named(o.Name),
	}
}

// AppendRunner 添加运行组件
func (a *App) AppendRunner(r ...Runner) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runners = append(a.runners, r...)
}

// AppendCloser 添加资源清理组件，关闭顺序与添加顺序相反
func (a *App) AppendCloser(c ...Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, c...)
}

// Run 启动所有 Runner 并阻塞，直到收到退出信号、ctx 取消或任一 Runner 出错
func (a *App) Run(ctx context.Context) error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAppAlreadyRunning
	}

	info := GetInfo()
	a.logger.Info("application starting",
		"name", a.opts.Name,
		"version", info.Version,
		"commit", info.GitCommit,
		"build_date", info.BuildDate,
		"go_version", info.GoVersion,
		"id", a.opts.ID,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.mu.Lock()
	runners := append([]Runner(nil), a.runners...)
	a.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, r := range runners {
		r := r
		g.Go(func() error {
			return r.Run(gctx)
		})
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var runErr error
	select {
	case runErr = <-done:
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
		select {
		case runErr = <-done:
		case <-time.After(a.opts.StopTimeout):
			a.logger.Warn("shutdown timeout, forcing exit")
		}
	}
	if runErr != nil {
		a.logger.Error("runner exited with error", "error", runErr)
	}

	a.close()
	a.logger.Info("application exited")
	_ = a.logger.Sync()
	if runErr != nil {
		return fmt.Errorf("application run: %w", runErr)
	}
	return nil
}

func (a *App) close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Error("failed to close component", "error", err)
		}
	}
	a.closers = nil
}
