package i18n

var messages = map[string]map[string]string{
	"en-US": {
		"error.bad_request":                    "Invalid request",
		"error.internal":                       "Internal server error",
		"error.not_found":                      "Resource not found",
		"error.unauthorized":                   "Unauthorized",
		"error.rate_limited":                   "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":         "Rate limiting is temporarily unavailable",
		"error.jwt_secret_missing":             "Server authentication is not configured",
		"error.auth_header_missing":            "Authorization header is missing",
		"error.auth_header_invalid":            "Authorization header is invalid",
		"error.token_invalid":                  "Token is invalid or expired",
		"error.token_revoked":                  "Token has been revoked",
		"error.invalid_credentials":            "Invalid username or password",
		"error.login_rate_limited":             "Too many login attempts, please retry in %d seconds",
		"error.customer_not_found":             "Customer not found",
		"error.customer_disabled":              "Account is disabled",
		"error.customer_id_invalid":            "Customer identity is invalid",
		"error.customer_id_type_invalid":       "Customer identity type is invalid",
		"error.admin_id_invalid":               "Admin identity is invalid",
		"error.admin_id_type_invalid":          "Admin identity type is invalid",
		"error.email_taken":                    "Email is already registered",
		"error.password_old_invalid":           "Current password is incorrect",
		"error.order_not_found":                "Order not found",
		"error.order_not_modifiable":           "Order can no longer be modified",
		"error.order_already_canceled":         "Order has already been canceled",
		"error.order_already_redeemed":         "Order already has a points redemption",
		"error.loyalty_card_not_found":         "Loyalty card not found",
		"error.loyalty_points_insufficient":    "Not enough loyalty points",
		"error.loyalty_amount_invalid":         "Redemption amount is invalid",
		"error.loyalty_redeem_product_missing": "Loyalty redemption product is not configured",
		"error.picking_not_found":              "Delivery order not found",
		"error.picking_not_outbound":           "Consignments can only be created for outbound deliveries",
		"error.picking_invalid_state":          "Delivery order state does not allow this operation",
		"error.gdex_not_configured":            "GDEX integration is not configured",
		"error.gdex_access_denied":             "Access Denied",
		"error.gdex_missing_fields":            "Consignment is missing required fields",
		"error.gdex_already_created":           "Consignment has already been created",
		"error.gdex_request_failed":            "GDEX request failed",
		"error.gdex_no_consignment":            "Delivery order has no consignment note",
	},
	"zh-CN": {
		"error.bad_request":                    "请求参数无效",
		"error.internal":                       "服务器内部错误",
		"error.not_found":                      "资源不存在",
		"error.unauthorized":                   "未授权",
		"error.rate_limited":                   "请求过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable":         "限流服务暂不可用",
		"error.jwt_secret_missing":             "服务端未配置鉴权密钥",
		"error.auth_header_missing":            "缺少 Authorization 请求头",
		"error.auth_header_invalid":            "Authorization 请求头格式错误",
		"error.token_invalid":                  "Token 无效或已过期",
		"error.token_revoked":                  "Token 已被吊销",
		"error.invalid_credentials":            "用户名或密码错误",
		"error.login_rate_limited":             "登录尝试过于频繁，请 %d 秒后再试",
		"error.customer_not_found":             "客户不存在",
		"error.customer_disabled":              "账户已停用",
		"error.customer_id_invalid":            "客户身份无效",
		"error.customer_id_type_invalid":       "客户身份类型无效",
		"error.admin_id_invalid":               "管理员身份无效",
		"error.admin_id_type_invalid":          "管理员身份类型无效",
		"error.email_taken":                    "邮箱已被注册",
		"error.password_old_invalid":           "当前密码不正确",
		"error.order_not_found":                "订单不存在",
		"error.order_not_modifiable":           "订单当前状态不可修改",
		"error.order_already_canceled":         "订单已取消",
		"error.order_already_redeemed":         "订单已存在积分抵扣",
		"error.loyalty_card_not_found":         "积分卡不存在",
		"error.loyalty_points_insufficient":    "积分余额不足",
		"error.loyalty_amount_invalid":         "抵扣金额无效",
		"error.loyalty_redeem_product_missing": "未配置积分抵扣商品",
		"error.picking_not_found":              "发货单不存在",
		"error.picking_not_outbound":           "仅出库发货单可创建托运单",
		"error.picking_invalid_state":          "发货单状态不允许该操作",
		"error.gdex_not_configured":            "GDEX 集成未配置",
		"error.gdex_access_denied":             "Access Denied",
		"error.gdex_missing_fields":            "托运信息缺少必填字段",
		"error.gdex_already_created":           "托运单已创建",
		"error.gdex_request_failed":            "GDEX 请求失败",
		"error.gdex_no_consignment":            "发货单尚无托运单号",
	},
	"ms-MY": {
		"error.bad_request":                 "Permintaan tidak sah",
		"error.internal":                    "Ralat pelayan dalaman",
		"error.not_found":                   "Sumber tidak dijumpai",
		"error.unauthorized":                "Tidak dibenarkan",
		"error.rate_limited":                "Terlalu banyak permintaan, sila cuba lagi dalam %d saat",
		"error.rate_limit_unavailable":      "Pengehadan kadar tidak tersedia buat sementara",
		"error.customer_not_found":          "Pelanggan tidak dijumpai",
		"error.order_not_found":             "Pesanan tidak dijumpai",
		"error.loyalty_points_insufficient": "Mata ganjaran tidak mencukupi",
		"error.loyalty_amount_invalid":      "Jumlah penebusan tidak sah",
		"error.picking_not_found":           "Pesanan penghantaran tidak dijumpai",
	},
}
