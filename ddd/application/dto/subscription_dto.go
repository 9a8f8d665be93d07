package dto

// SubscriptionStatus 单个店铺的订阅状态。
type SubscriptionStatus struct {
	IsSubscribed bool `json:"isSubscribed"`
}

// SubscriptionList 用户订阅的全部店铺。
type SubscriptionList struct {
	Subscriptions []string `json:"subscriptions"`
}
