package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	drepo "regreen-notification-service/ddd/domain/repo"
	"regreen-notification-service/pkg/errno"
)

// subscriptionRepositoryImpl keeps user -> set of shop ids for the lifetime
// of the process.
type subscriptionRepositoryImpl struct {
	mu     sync.RWMutex
	byUser map[string]map[string]struct{}
}

// NewSubscriptionRepository returns an empty in-memory repository.
func NewSubscriptionRepository() drepo.SubscriptionRepository {
	return &subscriptionRepositoryImpl{byUser: make(map[string]map[string]struct{})}
}

func validate(userID, shopID string) error {
	if strings.TrimSpace(userID) == "" {
		return errno.NewSimpleBizError(errno.ErrParameterInvalid, nil, "userId")
	}
	if strings.TrimSpace(shopID) == "" {
		return errno.NewSimpleBizError(errno.ErrParameterInvalid, nil, "shopId")
	}
	return nil
}

func (r *subscriptionRepositoryImpl) Subscribe(_ context.Context, userID, shopID string) error {
	if err := validate(userID, shopID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	shops, ok := r.byUser[userID]
	if !ok {
		shops = make(map[string]struct{})
		r.byUser[userID] = shops
	}
	shops[shopID] = struct{}{}
	return nil
}

func (r *subscriptionRepositoryImpl) Unsubscribe(_ context.Context, userID, shopID string) error {
	if err := validate(userID, shopID); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	shops, ok := r.byUser[userID]
	if !ok {
		return nil
	}
	delete(shops, shopID)
	if len(shops) == 0 {
		delete(r.byUser, userID)
	}
	return nil
}

func (r *subscriptionRepositoryImpl) IsSubscribed(_ context.Context, userID, shopID string) (bool, error) {
	if err := validate(userID, shopID); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byUser[userID][shopID]
	return ok, nil
}

func (r *subscriptionRepositoryImpl) ListByUser(_ context.Context, userID string) ([]string, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, errno.NewSimpleBizError(errno.ErrParameterInvalid, nil, "userId")
	}
	r.mu.RLock()
	shops := r.byUser[userID]
	res := make([]string, 0, len(shops))
	for id := range shops {
		res = append(res, id)
	}
	r.mu.RUnlock()
	sort.Strings(res)
	return res, nil
}

func (r *subscriptionRepositoryImpl) SubscribersOf(_ context.Context, shopID string) ([]string, error) {
	if strings.TrimSpace(shopID) == "" {
		return nil, errno.NewSimpleBizError(errno.ErrParameterInvalid, nil, "shopId")
	}
	r.mu.RLock()
	var res []string
	for userID, shops := range r.byUser {
		if _, ok := shops[shopID]; ok {
			res = append(res, userID)
		}
	}
	r.mu.RUnlock()
	sort.Strings(res)
	return res, nil
}
