package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/morimall/morimall/internal/logger"
	"github.com/morimall/morimall/internal/provider"
	"github.com/morimall/morimall/internal/queue"
	"github.com/morimall/morimall/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskGdexStatusSync, c.handleGdexStatusSync)
	mux.HandleFunc(queue.TaskLoyaltyRedeemReverse, c.handleLoyaltyRedeemReverse)
}

func (c *Consumer) handleGdexStatusSync(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_gdex_sync_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.GdexStatusSyncPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_gdex_sync_unmarshal_failed", "error", err)
		return err
	}
	if payload.PickingID == 0 {
		logger.Debugw("worker_gdex_sync_skip_invalid_payload", "picking_id", payload.PickingID)
		return nil
	}
	if c.GdexService == nil {
		logger.Warnw("worker_gdex_sync_skip_gdex_service_nil", "picking_id", payload.PickingID)
		return nil
	}
	_, err := c.GdexService.SyncStatus(ctx, payload.PickingID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPickingNotFound):
			logger.Debugw("worker_gdex_sync_skip_picking_not_found", "picking_id", payload.PickingID)
			return nil
		case errors.Is(err, service.ErrPickingNoCN):
			logger.Debugw("worker_gdex_sync_skip_no_cn", "picking_id", payload.PickingID)
			return nil
		case errors.Is(err, service.ErrGdexNotConfigured):
			logger.Warnw("worker_gdex_sync_skip_not_configured", "picking_id", payload.PickingID)
			return nil
		default:
			logger.Warnw("worker_gdex_sync_failed", "picking_id", payload.PickingID, "error", err)
			return err
		}
	}
	return nil
}

func (c *Consumer) handleLoyaltyRedeemReverse(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_loyalty_reverse_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.LoyaltyRedeemReversePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_loyalty_reverse_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_loyalty_reverse_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.LoyaltyService == nil {
		logger.Warnw("worker_loyalty_reverse_skip_loyalty_service_nil", "order_id", payload.OrderID)
		return nil
	}
	if err := c.LoyaltyService.ReverseOrderRedemption(payload.OrderID); err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			logger.Debugw("worker_loyalty_reverse_skip_order_not_found", "order_id", payload.OrderID)
			return nil
		default:
			logger.Warnw("worker_loyalty_reverse_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	return nil
}
