package dto

// FanoutResult 店铺事件扇出结果。
type FanoutResult struct {
	TotalSubscribers  int `json:"totalSubscribers"`
	NotificationsSent int `json:"notificationsSent"`
}
