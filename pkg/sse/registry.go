package sse

import (
	"sync"

	"regreen-notification-service/pkg/encode"
	"regreen-notification-service/pkg/logger"
)

const defaultShards = 32

// Registry maps a user id to its single live stream. Keys are spread over
// shards; every mutation for a key happens under that key's shard lock.
type Registry struct {
	shards []*shard
}

type shard struct {
	mu      sync.RWMutex
	handles map[string]Handle
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return NewRegistryWithShards(defaultShards)
}

// NewRegistryWithShards is NewRegistry with an explicit shard count.
func NewRegistryWithShards(n int) *Registry {
	if n <= 0 {
		n = 1
	}
	r := &Registry{shards: make([]*shard, n)}
	for i := range r.shards {
		r.shards[i] = &shard{handles: make(map[string]Handle)}
	}
	return r
}

func (r *Registry) shardFor(userID string) *shard {
	return r.shards[encode.ShardIndex(userID, len(r.shards))]
}

// Register stores h for userID. A previous handle is closed first; a close
// failure is logged and does not prevent the replacement.
func (r *Registry) Register(userID string, h Handle) {
	s := r.shardFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.handles[userID]; ok && old != h {
		if err := old.Close(); err != nil {
			logger.Warnf("sse: failed to close superseded stream user_id=%s error=%v", userID, err)
		}
		logger.Infof("sse: superseded previous stream user_id=%s", userID)
	}
	s.handles[userID] = h
}

// Unregister removes whatever handle userID has. Absent keys are a no-op.
func (r *Registry) Unregister(userID string) {
	s := r.shardFor(userID)
	s.mu.Lock()
	delete(s.handles, userID)
	s.mu.Unlock()
}

// UnregisterHandle removes userID only while h is still its current handle,
// so a superseded stream cannot remove its successor.
func (r *Registry) UnregisterHandle(userID string, h Handle) bool {
	s := r.shardFor(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.handles[userID]; ok && cur == h {
		delete(s.handles, userID)
		return true
	}
	return false
}

// Lookup returns the live handle for userID, if any.
func (r *Registry) Lookup(userID string) (Handle, bool) {
	s := r.shardFor(userID)
	s.mu.RLock()
	h, ok := s.handles[userID]
	s.mu.RUnlock()
	return h, ok
}

// Send writes payload to userID's stream. It reports false when the user has
// no stream or the write failed; a failed handle is evicted and closed.
//
// The write itself happens outside the shard lock. A concurrent Register
// closes the old handle, which then refuses the write, so a payload never
// reaches a superseded stream after its replacement is visible.
func (r *Registry) Send(userID string, payload []byte) bool {
	h, ok := r.Lookup(userID)
	if !ok {
		return false
	}
	if err := h.Send(payload); err != nil {
		if r.UnregisterHandle(userID, h) {
			logger.Warnf("sse: evicted stream after write failure user_id=%s error=%v", userID, err)
		}
		_ = h.Close()
		return false
	}
	return true
}

// Count returns the number of live streams.
func (r *Registry) Count() int {
	n := 0
	for _, s := range r.shards {
		s.mu.RLock()
		n += len(s.handles)
		s.mu.RUnlock()
	}
	return n
}

// CloseAll evicts and closes every stream.
func (r *Registry) CloseAll() {
	for _, s := range r.shards {
		s.mu.Lock()
		handles := s.handles
		s.handles = make(map[string]Handle)
		s.mu.Unlock()
		for _, h := range handles {
			_ = h.Close()
		}
	}
}
