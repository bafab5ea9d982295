package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/fuguang-next/internal/config"
	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/service"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSpec 默认每分钟巡检一次（带秒字段）
const DefaultSweepSpec = "0 * * * * *"

const sweepTimeout = 5 * time.Minute

// Sweeper 待支付订单巡检
type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepStats, error)
}

// Service 定时任务服务
type Service struct {
	name    string
	spec    string
	cron    *cron.Cron
	sweeper Sweeper

	mu      sync.Mutex
	running bool
}

// NewService 创建定时任务服务
func NewService(cfg config.ReconcileConfig, sweeper Sweeper) (*Service, error) {
	if !cfg.Enabled {
		return nil, errors.New("reconcile disabled")
	}
	if sweeper == nil {
		return nil, errors.New("sweeper is nil")
	}
	spec := strings.TrimSpace(cfg.Spec)
	if spec == "" {
		spec = DefaultSweepSpec
	}
	s := &Service{
		name:    "scheduler",
		spec:    spec,
		cron:    cron.New(cron.WithSeconds()),
		sweeper: sweeper,
	}
	if _, err := s.cron.AddFunc(spec, s.runSweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "scheduler"
	}
	return s.name
}

// Start 启动定时任务，阻塞到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return errors.New("scheduler not initialized")
	}
	logger.Infow("scheduler_started", "spec", s.spec)
	s.cron.Start()
	<-ctx.Done()
	return nil
}

// Stop 停止定时任务并等待正在执行的巡检结束
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runSweep 上一轮未结束时跳过本轮
func (s *Service) runSweep() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Debugw("reconcile_sweep_skip_running")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	if _, err := s.sweeper.Sweep(ctx); err != nil {
		logger.Warnw("reconcile_sweep_failed", "error", err)
	}
}
