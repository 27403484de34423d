package service

import "errors"

// 服务层业务错误，handler 层负责映射为响应码与多语言文案
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrAdminNotFound      = errors.New("admin not found")

	ErrCustomerNotFound   = errors.New("customer not found")
	ErrCustomerEmailTaken = errors.New("customer email already registered")
	ErrCustomerDisabled   = errors.New("customer disabled")

	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderNotModifiable   = errors.New("order not modifiable")
	ErrOrderAlreadyCancel   = errors.New("order already canceled")
	ErrOrderInvalidLines    = errors.New("order has no valid lines")
	ErrOrderAlreadyRedeemed = errors.New("order already has a redemption line")

	ErrLoyaltyCardNotFound       = errors.New("loyalty card not found")
	ErrLoyaltyProgramNotFound    = errors.New("loyalty program not found")
	ErrLoyaltyPointsInvalid      = errors.New("loyalty points amount invalid")
	ErrLoyaltyPointsInsufficient = errors.New("loyalty points insufficient")
	ErrRedeemProductNotFound     = errors.New("loyalty redemption product not found")

	ErrPickingNotFound     = errors.New("delivery order not found")
	ErrPickingNotOutbound  = errors.New("delivery order is not an outbound shipment")
	ErrPickingInvalidState = errors.New("delivery order state invalid")
	ErrPickingHasCN        = errors.New("delivery order already has consignment note")
	ErrPickingNoCN         = errors.New("delivery order has no consignment note")
	ErrReceiverIncomplete  = errors.New("receiver information incomplete")

	ErrGdexNotConfigured = errors.New("gdex integration not configured")
)
