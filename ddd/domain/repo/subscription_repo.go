package repo

import "context"

// SubscriptionRepository 订阅仓储接口。(userID, shopID) 具有集合语义。
type SubscriptionRepository interface {
	// Subscribe is idempotent.
	Subscribe(ctx context.Context, userID, shopID string) error
	// Unsubscribe is idempotent; absent pairs are a no-op.
	Unsubscribe(ctx context.Context, userID, shopID string) error
	IsSubscribed(ctx context.Context, userID, shopID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]string, error)
	// SubscribersOf scans every user; fine for the subscriber counts we expect.
	SubscribersOf(ctx context.Context, shopID string) ([]string, error)
}
