package cqe

// SubscriptionReq 订阅/取消订阅请求。
type SubscriptionReq struct {
	UserID string `json:"userId" form:"userId"`
	ShopID string `json:"shopId" form:"shopId"`
}

// Validate 校验必填字段是否完整。
func (r *SubscriptionReq) Validate() error {
	if r == nil {
		return required(nil, "userId")
	}
	return required(map[string]string{"userId": r.UserID, "shopId": r.ShopID}, "userId", "shopId")
}

// SubscriptionQuery 查询订阅；ShopID 为空时返回全部订阅。
type SubscriptionQuery struct {
	UserID string `form:"userId"`
	ShopID string `form:"shopId"`
}

func (q *SubscriptionQuery) Validate() error {
	if q == nil {
		return required(nil, "userId")
	}
	return required(map[string]string{"userId": q.UserID}, "userId")
}
