package i18n

var catalog = map[string]map[string]string{
	LocaleZhCN: {
		"error.bad_request":            "请求参数错误",
		"error.unauthorized":           "未登录或登录已失效",
		"error.forbidden":              "没有权限",
		"error.internal":               "服务器内部错误",
		"error.jwt_secret_missing":     "服务未配置签名密钥",
		"error.auth_header_missing":    "缺少 Authorization 请求头",
		"error.auth_header_invalid":    "Authorization 格式错误",
		"error.token_invalid":          "登录凭证无效",
		"error.token_revoked":          "登录凭证已失效，请重新登录",
		"error.user_disabled":          "账号已被禁用",
		"error.user_not_found":         "用户不存在",
		"error.user_id_invalid":        "用户 ID 无效",
		"error.user_id_type_invalid":   "用户 ID 类型错误",
		"error.admin_id_invalid":       "管理员 ID 无效",
		"error.admin_id_type_invalid":  "管理员 ID 类型错误",
		"error.rate_limited":           "操作过于频繁，请 %d 秒后再试",
		"error.checkout_rate_limited":  "下单过于频繁，请 %d 秒后再试",
		"error.rate_limit_unavailable": "限流服务不可用",
		"error.course_not_found":       "课程不存在或已下架",
		"error.course_already_owned":   "已购买该课程",
		"error.course_id_invalid":      "课程 ID 无效",
		"error.cart_empty":             "购物车为空",
		"error.cart_item_not_found":    "购物车中没有该课程",
		"error.cart_update_failed":     "购物车更新失败",
		"error.cart_fetch_failed":      "获取购物车失败",
		"error.coupon_invalid":         "优惠券不可用",
		"error.coupon_not_found":       "优惠券不存在",
		"error.coupon_expired":         "优惠券已过期",
		"error.coupon_issuance_not_found": "用户优惠券不存在",
		"error.coupon_issuance_in_use":    "优惠券已锁定到待支付订单",
		"error.coupon_fetch_failed":       "获取优惠券失败",
		"error.coupon_update_failed":      "优惠券操作失败",
		"error.credit_insufficient":       "积分不足",
		"error.credit_exceeds_earnable":   "积分超过本单可抵扣上限",
		"error.credit_amount_invalid":     "积分数量无效",
		"error.credit_adjust_invalid":     "积分调整参数错误",
		"error.credit_fetch_failed":       "获取积分失败",
		"error.credit_update_failed":      "积分调整失败",
		"error.pay_type_invalid":          "不支持的支付方式",
		"error.order_not_found":           "订单不存在",
		"error.order_create_failed":       "下单失败，请稍后再试",
		"error.checkout_in_progress":      "订单正在提交，请勿重复下单",
		"error.order_fetch_failed":        "获取订单失败",
		"error.order_already_finalized":   "订单已支付或已取消",
		"error.order_already_paid":        "订单已支付",
		"error.order_closed":              "订单已关闭",
		"error.order_not_paid":            "订单尚未支付",
		"error.order_id_invalid":          "订单 ID 无效",
		"error.order_cancel_failed":       "取消订单失败",
		"error.payment_signature_invalid": "支付结果验签失败",
		"error.payment_gateway_unavailable": "支付服务暂不可用，请稍后再试",
		"error.payment_gateway_request_failed": "支付网关请求失败",
		"error.payment_settlement_failed":      "支付处理未完成，请稍后刷新",
		"error.payment_review_not_found":       "待处理记录不存在",
		"error.payment_fetch_failed":           "获取支付信息失败",
	},
	LocaleEnUS: {
		"error.bad_request":            "Invalid request parameters",
		"error.unauthorized":           "Not signed in or session expired",
		"error.forbidden":              "Permission denied",
		"error.internal":               "Internal server error",
		"error.jwt_secret_missing":     "Signing secret is not configured",
		"error.auth_header_missing":    "Missing Authorization header",
		"error.auth_header_invalid":    "Malformed Authorization header",
		"error.token_invalid":          "Invalid token",
		"error.token_revoked":          "Token has been revoked, please sign in again",
		"error.user_disabled":          "Account is disabled",
		"error.user_not_found":         "User not found",
		"error.user_id_invalid":        "Invalid user id",
		"error.user_id_type_invalid":   "Invalid user id type",
		"error.admin_id_invalid":       "Invalid admin id",
		"error.admin_id_type_invalid":  "Invalid admin id type",
		"error.rate_limited":           "Too many requests, retry in %d seconds",
		"error.checkout_rate_limited":  "Too many orders, retry in %d seconds",
		"error.rate_limit_unavailable": "Rate limiter unavailable",
		"error.course_not_found":       "Course not found or unpublished",
		"error.course_already_owned":   "Course already purchased",
		"error.course_id_invalid":      "Invalid course id",
		"error.cart_empty":             "Cart is empty",
		"error.cart_item_not_found":    "Course is not in the cart",
		"error.cart_update_failed":     "Failed to update cart",
		"error.cart_fetch_failed":      "Failed to load cart",
		"error.coupon_invalid":         "Coupon cannot be used",
		"error.coupon_not_found":       "Coupon not found",
		"error.coupon_expired":         "Coupon has expired",
		"error.coupon_issuance_not_found": "User coupon not found",
		"error.coupon_issuance_in_use":    "Coupon is locked by a pending order",
		"error.coupon_fetch_failed":       "Failed to load coupons",
		"error.coupon_update_failed":      "Coupon operation failed",
		"error.credit_insufficient":       "Insufficient credit",
		"error.credit_exceeds_earnable":   "Credit exceeds the limit for this order",
		"error.credit_amount_invalid":     "Invalid credit amount",
		"error.credit_adjust_invalid":     "Invalid credit adjustment",
		"error.credit_fetch_failed":       "Failed to load credit",
		"error.credit_update_failed":      "Failed to adjust credit",
		"error.pay_type_invalid":          "Unsupported payment type",
		"error.order_not_found":           "Order not found",
		"error.order_create_failed":       "Failed to create order, please retry later",
		"error.checkout_in_progress":      "Checkout already in progress",
		"error.order_fetch_failed":        "Failed to load order",
		"error.order_already_finalized":   "Order is already paid or cancelled",
		"error.order_already_paid":        "Order is already paid",
		"error.order_closed":              "Order is closed",
		"error.order_not_paid":            "Order is not paid yet",
		"error.order_id_invalid":          "Invalid order id",
		"error.order_cancel_failed":       "Failed to cancel order",
		"error.payment_signature_invalid": "Payment signature verification failed",
		"error.payment_gateway_unavailable": "Payment service unavailable, please retry later",
		"error.payment_gateway_request_failed": "Payment gateway request failed",
		"error.payment_settlement_failed":      "Payment processing incomplete, please refresh later",
		"error.payment_review_not_found":       "Review record not found",
		"error.payment_fetch_failed":           "Failed to load payment",
	},
}
