package entity

import (
	"fmt"
	"strings"
)

// InventoryAction names the kind of change carried by an InventoryEvent.
type InventoryAction string

const (
	ActionAdd      InventoryAction = "add"
	ActionUpdate   InventoryAction = "update"
	ActionLowStock InventoryAction = "low_stock"
	ActionExpired  InventoryAction = "expired"
	ActionDiscount InventoryAction = "discount"
)

// InventoryEvent 店铺库存变化事件，按店铺订阅关系扇出。
type InventoryEvent struct {
	ShopID        string
	ShopName      string
	ProductID     string
	ProductName   string
	Action        InventoryAction
	Price         *float64
	DiscountPrice *float64
	ExpiryDate    string
	ImageURL      string
}

// Template is the rendered type, title and message for an event.
type Template struct {
	Type    NotificationType
	Title   string
	Message string
}

// Render maps the event action onto fixed phrasing. Unknown actions get a
// generic template instead of an error.
func (e InventoryEvent) Render() Template {
	shop := e.ShopName
	if shop == "" {
		shop = "a shop you follow"
	}
	product := e.ProductName
	if product == "" {
		product = "an item"
	}

	switch InventoryAction(strings.ToLower(string(e.Action))) {
	case ActionAdd:
		msg := fmt.Sprintf("%s just added %s.", shop, product)
		if e.Price != nil {
			msg = fmt.Sprintf("%s just added %s for %s.", shop, product, formatPrice(*e.Price))
		}
		return Template{Type: TypeInventoryUpdated, Title: "New item at " + shop, Message: msg}
	case ActionUpdate:
		return Template{
			Type:    TypeInventoryUpdated,
			Title:   "Item updated at " + shop,
			Message: fmt.Sprintf("%s at %s has been updated.", product, shop),
		}
	case ActionLowStock:
		return Template{
			Type:    TypeInventoryLowStock,
			Title:   "Low stock at " + shop,
			Message: fmt.Sprintf("Only a few %s left at %s. Reserve yours before it's gone!", product, shop),
		}
	case ActionExpired, ActionDiscount:
		msg := fmt.Sprintf("%s at %s is now discounted.", product, shop)
		if e.DiscountPrice != nil {
			msg = fmt.Sprintf("%s at %s is now discounted to %s.", product, shop, formatPrice(*e.DiscountPrice))
		}
		return Template{Type: TypeInventoryUpdated, Title: "Price drop at " + shop, Message: msg}
	default:
		return Template{
			Type:    TypeInventoryUpdated,
			Title:   "Inventory changed at " + shop,
			Message: fmt.Sprintf("%s at %s has changed.", product, shop),
		}
	}
}

// Payload is the structured data attached to each fanned-out notification.
func (e InventoryEvent) Payload() map[string]interface{} {
	data := map[string]interface{}{
		"shopId":      e.ShopID,
		"shopName":    e.ShopName,
		"productId":   e.ProductID,
		"productName": e.ProductName,
		"action":      string(e.Action),
	}
	if e.Price != nil {
		data["price"] = *e.Price
	}
	if e.DiscountPrice != nil {
		data["discountPrice"] = *e.DiscountPrice
	}
	if e.ExpiryDate != "" {
		data["expiryDate"] = e.ExpiryDate
	}
	if e.ImageURL != "" {
		data["imageUrl"] = e.ImageURL
	}
	return data
}

func formatPrice(p float64) string {
	return fmt.Sprintf("$%.2f", p)
}
