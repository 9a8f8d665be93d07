package sse

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

// fakeHandle records payloads and can be told to fail.
type fakeHandle struct {
	mu       sync.Mutex
	payloads [][]byte
	closed   int
	sendErr  error
	closeErr error
}

func (f *fakeHandle) Send(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	if f.closed > 0 {
		return ErrStreamClosed
	}
	f.payloads = append(f.payloads, append([]byte(nil), p...))
	return nil
}

func (f *fakeHandle) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return f.closeErr
}

func (f *fakeHandle) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func (f *fakeHandle) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func TestRegistry_ReplaceClosesPrevious(t *testing.T) {
	r := NewRegistry()
	h1, h2 := &fakeHandle{}, &fakeHandle{}

	r.Register("u1", h1)
	r.Register("u1", h2)

	if !r.Send("u1", []byte("m")) {
		t.Fatal("Send() = false, want true")
	}
	if h1.closeCount() != 1 {
		t.Errorf("h1 closed %d times, want 1", h1.closeCount())
	}
	if h1.received() != 0 {
		t.Errorf("h1 received %d payloads, want 0", h1.received())
	}
	if h2.received() != 1 {
		t.Errorf("h2 received %d payloads, want 1", h2.received())
	}
	if h2.closeCount() != 0 {
		t.Error("h2 must stay open")
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistry_ReplaceToleratesCloseFailure(t *testing.T) {
	r := NewRegistry()
	h1 := &fakeHandle{closeErr: errors.New("already gone")}
	h2 := &fakeHandle{}

	r.Register("u1", h1)
	r.Register("u1", h2)

	got, ok := r.Lookup("u1")
	if !ok || got != Handle(h2) {
		t.Fatal("expected h2 to be registered despite close failure")
	}
}

func TestRegistry_ReRegisterSameHandle(t *testing.T) {
	r := NewRegistry()
	h := &fakeHandle{}
	r.Register("u1", h)
	r.Register("u1", h)
	if h.closeCount() != 0 {
		t.Fatal("re-registering the same handle must not close it")
	}
}

func TestRegistry_SendWithoutHandle(t *testing.T) {
	r := NewRegistry()
	if r.Send("nobody", []byte("m")) {
		t.Fatal("Send() = true for unknown user")
	}
}

func TestRegistry_SendFailureEvicts(t *testing.T) {
	r := NewRegistry()
	h := &fakeHandle{sendErr: errors.New("broken pipe")}
	r.Register("u1", h)

	if r.Send("u1", []byte("m")) {
		t.Fatal("Send() = true, want false on write failure")
	}
	if _, ok := r.Lookup("u1"); ok {
		t.Fatal("stale handle still registered")
	}
	if h.closeCount() == 0 {
		t.Fatal("stale handle was not closed")
	}
}

func TestRegistry_UnregisterAbsentIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Unregister("ghost")
	r.Register("u1", &fakeHandle{})
	r.Unregister("u1")
	r.Unregister("u1")
	if r.Count() != 0 {
		t.Fatalf("Count() = %d, want 0", r.Count())
	}
}

func TestRegistry_UnregisterHandleKeepsSuccessor(t *testing.T) {
	r := NewRegistry()
	h1, h2 := &fakeHandle{}, &fakeHandle{}
	r.Register("u1", h1)
	r.Register("u1", h2)

	if r.UnregisterHandle("u1", h1) {
		t.Fatal("superseded handle removed its successor")
	}
	if !r.UnregisterHandle("u1", h2) {
		t.Fatal("current handle was not removed")
	}
	if r.UnregisterHandle("u1", h2) {
		t.Fatal("second removal should report false")
	}
}

func TestRegistry_ConcurrentUsers(t *testing.T) {
	r := NewRegistryWithShards(4)
	const users = 64

	var wg sync.WaitGroup
	handles := make([]*fakeHandle, users)
	for i := 0; i < users; i++ {
		handles[i] = &fakeHandle{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("user-%d", i)
			r.Register(id, &fakeHandle{})
			r.Register(id, handles[i])
			for j := 0; j < 10; j++ {
				r.Send(id, []byte("x"))
			}
		}(i)
	}
	wg.Wait()

	if r.Count() != users {
		t.Fatalf("Count() = %d, want %d", r.Count(), users)
	}
	for i, h := range handles {
		if h.received() != 10 {
			t.Errorf("user-%d received %d, want 10", i, h.received())
		}
	}
}

func TestRegistry_ConcurrentReplaceSingleUser(t *testing.T) {
	r := NewRegistry()
	const rounds = 100

	var wg sync.WaitGroup
	all := make([]*fakeHandle, rounds)
	for i := range all {
		all[i] = &fakeHandle{}
	}
	for i := 0; i < rounds; i++ {
		wg.Add(2)
		go func(h *fakeHandle) {
			defer wg.Done()
			r.Register("u1", h)
		}(all[i])
		go func() {
			defer wg.Done()
			r.Send("u1", []byte("x"))
		}()
	}
	wg.Wait()

	cur, ok := r.Lookup("u1")
	if !ok {
		t.Fatal("expected a live handle")
	}
	open := 0
	for _, h := range all {
		if h.closeCount() == 0 {
			open++
			if Handle(h) != cur {
				t.Error("an unclosed handle is not the current one")
			}
		}
	}
	if open != 1 {
		t.Fatalf("open handles = %d, want 1", open)
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	r := NewRegistryWithShards(4)
	handles := make([]*fakeHandle, 10)
	for i := range handles {
		handles[i] = &fakeHandle{}
		r.Register(fmt.Sprintf("u%d", i), handles[i])
	}

	r.CloseAll()

	if r.Count() != 0 {
		t.Fatalf("Count() = %d after CloseAll, want 0", r.Count())
	}
	for i, h := range handles {
		if h.closeCount() != 1 {
			t.Errorf("handle %d closed %d times, want 1", i, h.closeCount())
		}
	}
}
