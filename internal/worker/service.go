package worker

import (
	"context"
	"errors"

	"github.com/greencart/internal/config"
	"github.com/greencart/internal/logger"
	"github.com/greencart/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	orderExpireSweepSpec  = "@every 1m"
	blacklistPurgeSpec    = "@every 1h"
	schedulerDefaultQueue = queue.DefaultQueue
)

// Service 异步队列服务
type Service struct {
	name      string
	server    *asynq.Server
	mux       *asynq.ServeMux
	scheduler *asynq.Scheduler
	consumer  *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	scheduler := queue.NewScheduler(cfg)
	if err := registerPeriodicTasks(scheduler); err != nil {
		return nil, err
	}
	return &Service{
		name:      "worker",
		server:    server,
		mux:       mux,
		scheduler: scheduler,
		consumer:  consumer,
	}, nil
}

// periodicRegistrar 由 asynq.Scheduler 实现
type periodicRegistrar interface {
	Register(cronspec string, task *asynq.Task, opts ...asynq.Option) (string, error)
}

func registerPeriodicTasks(scheduler periodicRegistrar) error {
	entries := []struct {
		spec string
		task *asynq.Task
	}{
		{spec: orderExpireSweepSpec, task: queue.NewOrderExpireSweepTask()},
		{spec: blacklistPurgeSpec, task: queue.NewTokenBlacklistPurgeTask()},
	}
	for _, entry := range entries {
		if _, err := scheduler.Register(entry.spec, entry.task, asynq.Queue(schedulerDefaultQueue)); err != nil {
			return err
		}
	}
	return nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.scheduler != nil {
		if err := s.scheduler.Start(); err != nil {
			logger.Warnw("worker_scheduler_start_failed", "error", err)
		}
	}
	_ = ctx
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	if s.scheduler != nil {
		s.scheduler.Shutdown()
	}
	s.server.Shutdown()
	return nil
}
