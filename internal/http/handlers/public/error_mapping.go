package public

import (
	"errors"

	"github.com/morimall/morimall/internal/http/response"
	"github.com/morimall/morimall/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, key: "error.order_not_found"},
	{target: service.ErrOrderNotModifiable, code: response.CodeBadRequest, key: "error.order_not_modifiable"},
	{target: service.ErrOrderAlreadyCancel, code: response.CodeBadRequest, key: "error.order_already_canceled"},
	{target: service.ErrOrderInvalidLines, code: response.CodeBadRequest, key: "error.bad_request"},
	{target: service.ErrCustomerNotFound, code: response.CodeNotFound, key: "error.customer_not_found"},
}

var loyaltyErrorRules = []mappedHandlerError{
	{target: service.ErrOrderAlreadyRedeemed, code: response.CodeConflict, key: "error.order_already_redeemed"},
	{target: service.ErrLoyaltyCardNotFound, code: response.CodeNotFound, key: "error.loyalty_card_not_found"},
	{target: service.ErrLoyaltyProgramNotFound, code: response.CodeNotFound, key: "error.loyalty_card_not_found"},
	{target: service.ErrLoyaltyPointsInvalid, code: response.CodeBadRequest, key: "error.loyalty_amount_invalid"},
	{target: service.ErrLoyaltyPointsInsufficient, code: response.CodeBadRequest, key: "error.loyalty_points_insufficient"},
	{target: service.ErrRedeemProductNotFound, code: response.CodeInternal, key: "error.loyalty_redeem_product_missing"},
}

func respondOrderError(c *gin.Context, err error) {
	respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "error.internal")
}

func respondRedeemError(c *gin.Context, err error) {
	rules := make([]mappedHandlerError, 0, len(orderErrorRules)+len(loyaltyErrorRules))
	rules = append(rules, orderErrorRules...)
	rules = append(rules, loyaltyErrorRules...)
	respondWithMappedError(c, err, rules, response.CodeInternal, "error.internal")
}
