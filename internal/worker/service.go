package worker

import (
	"context"
	"errors"

	"github.com/fuguang-next/internal/config"
	"github.com/fuguang-next/internal/logger"
	"github.com/fuguang-next/internal/metrics"
	"github.com/fuguang-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 异步队列消费服务（超时取消、入账重试）
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService 创建异步队列服务，队列未启用时报错
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = logger.S().Named("asynq")
	serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(reportTaskFailure)

	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server: asynq.NewServer(opt, serverCfg),
		mux:    mux,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动消费并阻塞到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	<-ctx.Done()
	return nil
}

// Stop 停止拉取新任务并等待在途任务结束
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}

func reportTaskFailure(ctx context.Context, task *asynq.Task, err error) {
	taskType := "unknown"
	if task != nil {
		taskType = task.Type()
	}
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	metrics.TaskFailures.WithLabelValues(taskType).Inc()
	logger.Warnw("worker_task_failed",
		"task", taskType,
		"retried", retried,
		"max_retry", maxRetry,
		"error", err,
	)
}
