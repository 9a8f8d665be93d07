package cqe

import (
	"strings"

	"regreen-notification-service/ddd/domain/entity"
	"regreen-notification-service/pkg/errno"
)

// SendNotificationReq 定向推送请求（内部接口使用）。
type SendNotificationReq struct {
	UserID         string                 `json:"userId"`
	Type           string                 `json:"type"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	AdditionalData map[string]interface{} `json:"additionalData,omitempty"`
}

// Validate 校验必填字段是否完整，以及类型是否合法。
func (r *SendNotificationReq) Validate() error {
	if r == nil {
		return errno.NewSimpleBizError(errno.ErrParameterInvalid, nil, "body")
	}
	if err := required(map[string]string{
		"userId":  r.UserID,
		"type":    r.Type,
		"title":   r.Title,
		"message": r.Message,
	}, "userId", "type", "title", "message"); err != nil {
		return err
	}
	if !entity.NotificationType(r.Type).Valid() {
		return errno.NewSimpleBizError(errno.ErrParameterInvalid, nil, "type")
	}
	return nil
}

// InventoryEventReq 店铺库存变化事件。
type InventoryEventReq struct {
	ShopID        string   `json:"shopId"`
	ShopName      string   `json:"shopName"`
	ProductID     string   `json:"productId"`
	ProductName   string   `json:"productName"`
	Action        string   `json:"action"`
	Price         *float64 `json:"price,omitempty"`
	DiscountPrice *float64 `json:"discountPrice,omitempty"`
	ExpiryDate    string   `json:"expiryDate,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
}

// Validate 校验必填字段是否完整。action 不做枚举校验，未知取值走通用模板。
func (r *InventoryEventReq) Validate() error {
	if r == nil {
		return errno.NewSimpleBizError(errno.ErrParameterInvalid, nil, "body")
	}
	return required(map[string]string{
		"shopId":      r.ShopID,
		"shopName":    r.ShopName,
		"productName": r.ProductName,
		"action":      r.Action,
	}, "shopId", "shopName", "productName", "action")
}

// Event converts the request into the domain event.
func (r *InventoryEventReq) Event() entity.InventoryEvent {
	return entity.InventoryEvent{
		ShopID:        r.ShopID,
		ShopName:      r.ShopName,
		ProductID:     r.ProductID,
		ProductName:   r.ProductName,
		Action:        entity.InventoryAction(r.Action),
		Price:         r.Price,
		DiscountPrice: r.DiscountPrice,
		ExpiryDate:    r.ExpiryDate,
		ImageURL:      r.ImageURL,
	}
}

// required reports the first empty field, checked in order.
func required(values map[string]string, order ...string) error {
	for _, name := range order {
		if strings.TrimSpace(values[name]) == "" {
			return errno.NewSimpleBizError(errno.ErrParameterInvalid, nil, name)
		}
	}
	return nil
}
