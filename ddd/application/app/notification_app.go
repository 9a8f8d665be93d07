package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"regreen-notification-service/ddd/application/cqe"
	"regreen-notification-service/ddd/application/dto"
	"regreen-notification-service/ddd/domain/entity"
	drepo "regreen-notification-service/ddd/domain/repo"
	"regreen-notification-service/pkg/errno"
	"regreen-notification-service/pkg/logger"
)

// Sender delivers one serialized notification to a user's live stream.
type Sender interface {
	Send(userID string, payload []byte) bool
}

// NotificationApp 应用服务接口，负责把领域事件转换为通知并推送给在线用户。
type NotificationApp interface {
	// Send validates req and dispatches it directly to one user.
	Send(ctx context.Context, req *cqe.SendNotificationReq) error
	// PublishInventoryEvent validates req and fans it out to the shop's subscribers.
	PublishInventoryEvent(ctx context.Context, req *cqe.InventoryEventReq) (*dto.FanoutResult, error)

	DispatchDirect(ctx context.Context, userID string, typ entity.NotificationType, title, message string, data map[string]interface{}) bool
	DispatchToShopSubscribers(ctx context.Context, shopID string, ev entity.InventoryEvent) dto.FanoutResult
}

type notificationAppImpl struct {
	sender Sender
	subs   drepo.SubscriptionRepository
	newID  func() string
	now    func() time.Time
}

// NewNotificationApp 返回默认的应用服务实现。
func NewNotificationApp(sender Sender, subs drepo.SubscriptionRepository) NotificationApp {
	return &notificationAppImpl{
		sender: sender,
		subs:   subs,
		newID:  uuid.NewString,
		now:    time.Now,
	}
}

func (a *notificationAppImpl) Send(ctx context.Context, req *cqe.SendNotificationReq) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !a.DispatchDirect(ctx, req.UserID, entity.NotificationType(req.Type), req.Title, req.Message, req.AdditionalData) {
		return errno.ErrNotConnected
	}
	return nil
}

func (a *notificationAppImpl) PublishInventoryEvent(ctx context.Context, req *cqe.InventoryEventReq) (*dto.FanoutResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	res := a.DispatchToShopSubscribers(ctx, req.ShopID, req.Event())
	return &res, nil
}

// DispatchDirect builds a fresh notification and pushes it to userID. A user
// without a live stream misses it; nothing is queued.
func (a *notificationAppImpl) DispatchDirect(ctx context.Context, userID string, typ entity.NotificationType, title, message string, data map[string]interface{}) bool {
	n := entity.NewNotification(a.newID(), userID, typ, title, message, data, a.now().UTC())
	payload, err := json.Marshal(n)
	if err != nil {
		logger.WithContext(ctx).Errorf("notification: encode failed user_id=%s type=%s error=%v", userID, typ, err)
		return false
	}
	delivered := a.sender.Send(userID, payload)
	logger.WithContext(ctx).Debugf("notification: dispatched id=%s user_id=%s type=%s delivered=%t", n.ID, userID, typ, delivered)
	return delivered
}

// DispatchToShopSubscribers renders ev once and dispatches it to every
// subscriber of shopID.
func (a *notificationAppImpl) DispatchToShopSubscribers(ctx context.Context, shopID string, ev entity.InventoryEvent) dto.FanoutResult {
	subscribers, err := a.subs.SubscribersOf(ctx, shopID)
	if err != nil {
		logger.WithContext(ctx).Warnf("notification: subscriber lookup failed shop_id=%s error=%v", shopID, err)
		return dto.FanoutResult{}
	}
	if len(subscribers) == 0 {
		return dto.FanoutResult{}
	}

	tpl := ev.Render()
	payload := ev.Payload()
	res := dto.FanoutResult{TotalSubscribers: len(subscribers)}
	for _, userID := range subscribers {
		if a.DispatchDirect(ctx, userID, tpl.Type, tpl.Title, tpl.Message, payload) {
			res.NotificationsSent++
		}
	}
	logger.WithContext(ctx).Infof("notification: shop fanout shop_id=%s action=%s subscribers=%d sent=%d",
		shopID, ev.Action, res.TotalSubscribers, res.NotificationsSent)
	return res
}
