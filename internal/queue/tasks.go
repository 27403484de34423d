package queue

import (
	"encoding/json"

	"github.com/morimall/morimall/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskGdexStatusSync GDEX 物流状态同步任务
	TaskGdexStatusSync = constants.TaskGdexStatusSync
	// TaskLoyaltyRedeemReverse 积分抵扣回冲任务
	TaskLoyaltyRedeemReverse = constants.TaskLoyaltyRedeemReverse
)

// GdexStatusSyncPayload GDEX 状态同步任务载荷
type GdexStatusSyncPayload struct {
	PickingID uint `json:"picking_id"`
}

// LoyaltyRedeemReversePayload 积分抵扣回冲任务载荷
type LoyaltyRedeemReversePayload struct {
	OrderID uint `json:"order_id"`
}

// NewGdexStatusSyncTask 创建 GDEX 状态同步任务
func NewGdexStatusSyncTask(payload GdexStatusSyncPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGdexStatusSync, body), nil
}

// NewLoyaltyRedeemReverseTask 创建积分抵扣回冲任务
func NewLoyaltyRedeemReverseTask(payload LoyaltyRedeemReversePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLoyaltyRedeemReverse, body), nil
}
