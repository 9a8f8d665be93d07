package entity

import (
	"strings"
	"testing"
)

func ptr(f float64) *float64 { return &f }

func TestInventoryEvent_Render(t *testing.T) {
	tests := []struct {
		name     string
		event    InventoryEvent
		wantType NotificationType
		contains []string
	}{
		{
			name:     "add with price",
			event:    InventoryEvent{ShopName: "Corner Bakery", ProductName: "Bread", Action: ActionAdd, Price: ptr(3.5)},
			wantType: TypeInventoryUpdated,
			contains: []string{"Corner Bakery", "Bread", "$3.50"},
		},
		{
			name:     "update",
			event:    InventoryEvent{ShopName: "Corner Bakery", ProductName: "Bread", Action: ActionUpdate},
			wantType: TypeInventoryUpdated,
			contains: []string{"Bread", "updated"},
		},
		{
			name:     "low stock",
			event:    InventoryEvent{ShopName: "Corner Bakery", ProductName: "Bread", Action: ActionLowStock},
			wantType: TypeInventoryLowStock,
			contains: []string{"Bread", "Corner Bakery"},
		},
		{
			name:     "discount with price",
			event:    InventoryEvent{ShopName: "Deli", ProductName: "Salad", Action: ActionDiscount, DiscountPrice: ptr(1)},
			wantType: TypeInventoryUpdated,
			contains: []string{"Salad", "$1.00"},
		},
		{
			name:     "expired behaves like discount",
			event:    InventoryEvent{ShopName: "Deli", ProductName: "Salad", Action: ActionExpired},
			wantType: TypeInventoryUpdated,
			contains: []string{"discounted"},
		},
		{
			name:     "action is case-insensitive",
			event:    InventoryEvent{ShopName: "Deli", ProductName: "Soup", Action: "LOW_STOCK"},
			wantType: TypeInventoryLowStock,
			contains: []string{"Soup"},
		},
		{
			name:     "unknown action falls back",
			event:    InventoryEvent{ShopName: "Deli", ProductName: "Soup", Action: "teleported"},
			wantType: TypeInventoryUpdated,
			contains: []string{"Soup", "changed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.Render()
			if got.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", got.Type, tt.wantType)
			}
			if got.Title == "" {
				t.Error("Title is empty")
			}
			for _, s := range tt.contains {
				if !strings.Contains(got.Message, s) {
					t.Errorf("Message %q does not contain %q", got.Message, s)
				}
			}
		})
	}
}

func TestInventoryEvent_PayloadOmitsEmptyOptionals(t *testing.T) {
	data := InventoryEvent{ShopID: "s1", ProductName: "Bread", Action: ActionAdd}.Payload()
	for _, k := range []string{"price", "discountPrice", "expiryDate", "imageUrl"} {
		if _, ok := data[k]; ok {
			t.Errorf("payload unexpectedly has %q", k)
		}
	}
	if data["shopId"] != "s1" || data["action"] != "add" {
		t.Errorf("payload = %v", data)
	}
}

func TestNotificationType_Valid(t *testing.T) {
	if !TypeReservationApproved.Valid() {
		t.Error("RESERVATION_APPROVED should be valid")
	}
	if NotificationType("CONNECTED").Valid() {
		t.Error("handshake type must not be a notification type")
	}
}
