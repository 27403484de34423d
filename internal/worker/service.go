package worker

import (
	"context"
	"errors"
	"time"

	"github.com/morimall/morimall/internal/config"
	"github.com/morimall/morimall/internal/logger"
	"github.com/morimall/morimall/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultGdexSyncInterval = 30 * time.Minute
	redeemReverseInterval   = time.Minute
	sweepBatchSize          = 200
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
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
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
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
	if s.consumer != nil && s.consumer.GdexService != nil {
		go s.runGdexSyncLoop(ctx)
	}
	if s.consumer != nil && s.consumer.LoyaltyService != nil {
		go s.runRedeemReverseLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) gdexSyncInterval() time.Duration {
	if s == nil || s.consumer == nil || s.consumer.Config == nil {
		return defaultGdexSyncInterval
	}
	minutes := s.consumer.Config.Gdex.SyncIntervalMinutes
	if minutes <= 0 {
		return defaultGdexSyncInterval
	}
	return time.Duration(minutes) * time.Minute
}

func (s *Service) runGdexSyncLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.GdexService == nil {
		return
	}
	runOnce := func() {
		pickings, err := s.consumer.GdexService.ListSyncPending(sweepBatchSize)
		if err != nil {
			logger.Warnw("worker_gdex_sweep_list_failed", "error", err)
			return
		}
		for _, picking := range pickings {
			err := s.consumer.QueueClient.EnqueueGdexStatusSync(queue.GdexStatusSyncPayload{PickingID: picking.ID})
			if err != nil {
				logger.Warnw("worker_gdex_sweep_enqueue_failed", "picking_id", picking.ID, "error", err)
			}
		}
		if len(pickings) > 0 {
			logger.Infow("worker_gdex_sweep_enqueued", "count", len(pickings))
		}
	}
	runOnce()

	ticker := time.NewTicker(s.gdexSyncInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}

func (s *Service) runRedeemReverseLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.LoyaltyService == nil || s.consumer.OrderRepo == nil {
		return
	}
	runOnce := func() {
		orders, err := s.consumer.OrderRepo.ListCanceledUnreversed(sweepBatchSize)
		if err != nil {
			logger.Warnw("worker_redeem_reverse_sweep_list_failed", "error", err)
			return
		}
		for _, order := range orders {
			err := s.consumer.QueueClient.EnqueueLoyaltyRedeemReverse(queue.LoyaltyRedeemReversePayload{OrderID: order.ID})
			if err != nil {
				logger.Warnw("worker_redeem_reverse_sweep_enqueue_failed", "order_id", order.ID, "error", err)
			}
		}
	}
	runOnce()

	ticker := time.NewTicker(redeemReverseInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
