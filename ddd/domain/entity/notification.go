package entity

import "time"

// NotificationType 通知类型，取值封闭。
type NotificationType string

const (
	TypeReservationRequested NotificationType = "RESERVATION_REQUESTED"
	TypeReservationApproved  NotificationType = "RESERVATION_APPROVED"
	TypeReservationRejected  NotificationType = "RESERVATION_REJECTED"
	TypeReservationCompleted NotificationType = "RESERVATION_COMPLETED"
	TypeInventoryUpdated     NotificationType = "INVENTORY_UPDATED"
	TypeInventoryLowStock    NotificationType = "INVENTORY_LOW_STOCK"
)

var knownTypes = map[NotificationType]struct{}{
	TypeReservationRequested: {},
	TypeReservationApproved:  {},
	TypeReservationRejected:  {},
	TypeReservationCompleted: {},
	TypeInventoryUpdated:     {},
	TypeInventoryLowStock:    {},
}

// Valid reports whether t is one of the known notification types.
func (t NotificationType) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// Notification 推送给在线用户的一条通知。isRead 只在客户端变更。
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"isRead"`
	CreatedAt time.Time              `json:"createdAt"`
}

// NewNotification 创建一条新的未读通知。
func NewNotification(id, userID string, typ NotificationType, title, message string, data map[string]interface{}, now time.Time) *Notification {
	return &Notification{
		ID:        id,
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Data:      data,
		IsRead:    false,
		CreatedAt: now,
	}
}
