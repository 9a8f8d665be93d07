package app

import (
	"context"

	"regreen-notification-service/ddd/application/cqe"
	"regreen-notification-service/ddd/application/dto"
	drepo "regreen-notification-service/ddd/domain/repo"
)

// SubscriptionApp 编排店铺订阅用例。
type SubscriptionApp interface {
	Subscribe(ctx context.Context, req *cqe.SubscriptionReq) (*dto.SubscriptionStatus, error)
	Unsubscribe(ctx context.Context, req *cqe.SubscriptionReq) (*dto.SubscriptionStatus, error)
	IsSubscribed(ctx context.Context, q *cqe.SubscriptionQuery) (*dto.SubscriptionStatus, error)
	List(ctx context.Context, q *cqe.SubscriptionQuery) (*dto.SubscriptionList, error)
}

type subscriptionAppImpl struct {
	repo drepo.SubscriptionRepository
}

func NewSubscriptionApp(repo drepo.SubscriptionRepository) SubscriptionApp {
	return &subscriptionAppImpl{repo: repo}
}

func (a *subscriptionAppImpl) Subscribe(ctx context.Context, req *cqe.SubscriptionReq) (*dto.SubscriptionStatus, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := a.repo.Subscribe(ctx, req.UserID, req.ShopID); err != nil {
		return nil, err
	}
	return &dto.SubscriptionStatus{IsSubscribed: true}, nil
}

func (a *subscriptionAppImpl) Unsubscribe(ctx context.Context, req *cqe.SubscriptionReq) (*dto.SubscriptionStatus, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := a.repo.Unsubscribe(ctx, req.UserID, req.ShopID); err != nil {
		return nil, err
	}
	return &dto.SubscriptionStatus{IsSubscribed: false}, nil
}

func (a *subscriptionAppImpl) IsSubscribed(ctx context.Context, q *cqe.SubscriptionQuery) (*dto.SubscriptionStatus, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	ok, err := a.repo.IsSubscribed(ctx, q.UserID, q.ShopID)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionStatus{IsSubscribed: ok}, nil
}

func (a *subscriptionAppImpl) List(ctx context.Context, q *cqe.SubscriptionQuery) (*dto.SubscriptionList, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	shops, err := a.repo.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionList{Subscriptions: shops}, nil
}
