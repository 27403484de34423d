package constants

// 订单状态常量
const (
	OrderStatusDraft     = "draft"
	OrderStatusConfirmed = "sale"
	OrderStatusDone      = "done"
	OrderStatusCanceled  = "cancel"
)

// 发货单作业类型常量
const (
	PickingTypeOutgoing = "outgoing"
	PickingTypeIncoming = "incoming"
	PickingTypeInternal = "internal"
)

// 发货单状态常量
const (
	PickingStatusDraft     = "draft"
	PickingStatusConfirmed = "confirmed"
	PickingStatusAssigned  = "assigned"
	PickingStatusDone      = "done"
	PickingStatusCanceled  = "cancel"
)

// GDEX 托运单状态常量
const (
	GdexStateDraft     = "draft"
	GdexStateCreated   = "created"
	GdexStateError     = "error"
	GdexStateDelivered = "delivered"
)

// 积分流水类型常量
const (
	LoyaltyEntryTypeEarn   = "earn"
	LoyaltyEntryTypeRedeem = "redeem"
	LoyaltyEntryTypeRevert = "revert"
	LoyaltyEntryTypeAdjust = "adjust"
)

// 积分计划类型常量
const (
	LoyaltyProgramTypeLoyalty = "loyalty"
)

// 抵扣商品检索常量
const (
	RedeemProductCode = "Loyalty Point Redemption"
	RedeemProductName = "loyalty point redemption"
)

// 客户状态常量
const (
	CustomerStatusActive   = "active"
	CustomerStatusDisabled = "disabled"
)

// 队列名称常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskGdexStatusSync       = "gdex:status_sync"
	TaskLoyaltyRedeemReverse = "loyalty:redeem_reverse"
)
