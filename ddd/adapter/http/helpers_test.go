package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"regreen-notification-service/ddd/infrastructure/memory"
	"regreen-notification-service/pkg/config"
	"regreen-notification-service/pkg/manager"
	"regreen-notification-service/pkg/sse"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) (*httptest.Server, *manager.Dependencies) {
	t.Helper()
	return newTestServerWithConfig(t, &config.Config{})
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) (*httptest.Server, *manager.Dependencies) {
	t.Helper()
	deps := &manager.Dependencies{
		Config:        cfg,
		Registry:      sse.NewRegistry(),
		Subscriptions: memory.NewSubscriptionRepository(),
	}
	router := gin.New()
	manager.RegisterAllRoutes(router, deps)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, deps
}

// testStream is an open SSE response whose data frames are decoded on a
// background goroutine. frames is closed when the body ends.
type testStream struct {
	resp   *http.Response
	frames chan map[string]interface{}
	cancel context.CancelFunc
}

func openStream(t *testing.T, srv *httptest.Server, userID string) *testStream {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/notifications/stream?userId="+userID, nil)
	if err != nil {
		cancel()
		t.Fatalf("new request: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		cancel()
		t.Fatalf("open stream: %v", err)
	}
	s := &testStream{resp: resp, frames: make(chan map[string]interface{}, 16), cancel: cancel}
	go s.read()
	t.Cleanup(s.close)
	return s
}

func (s *testStream) read() {
	defer close(s.frames)
	sc := bufio.NewScanner(s.resp.Body)
	var data []string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if len(data) == 0 {
				continue
			}
			var v map[string]interface{}
			if err := json.Unmarshal([]byte(strings.Join(data, "\n")), &v); err == nil {
				s.frames <- v
			}
			data = data[:0]
		case strings.HasPrefix(line, "data: "):
			data = append(data, strings.TrimPrefix(line, "data: "))
		}
	}
}

func (s *testStream) close() {
	s.cancel()
	_ = s.resp.Body.Close()
}

func (s *testStream) next(t *testing.T) map[string]interface{} {
	t.Helper()
	select {
	case f, ok := <-s.frames:
		if !ok {
			t.Fatal("stream ended before next frame")
		}
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
	}
	return nil
}

func (s *testStream) expectNone(t *testing.T) {
	t.Helper()
	select {
	case f, ok := <-s.frames:
		if ok {
			t.Fatalf("unexpected frame %v", f)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func (s *testStream) expectEnded(t *testing.T) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-s.frames:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("stream did not end")
		}
	}
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
