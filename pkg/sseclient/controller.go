package sseclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"regreen-notification-service/ddd/application/cqe"
	"regreen-notification-service/ddd/domain/entity"
	"regreen-notification-service/pkg/logger"
	"regreen-notification-service/pkg/sse"
)

// State of the controller's connection.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	default:
		return "disconnected"
	}
}

const (
	DefaultBaseDelay        = time.Second
	DefaultMaxDelay         = 10 * time.Second
	DefaultMaxRetries       = 3
	DefaultMaxNotifications = 100
	DefaultStreamPath       = "/api/notifications/stream"
	DefaultSendPath         = "/api/inner/notifications/send"
)

// Config describes where to connect and how to retry.
type Config struct {
	BaseURL    string
	UserID     string
	StreamPath string
	SendPath   string

	BaseDelay  time.Duration
	MaxDelay   time.Duration
	MaxRetries int
	// MaxNotifications bounds the in-memory list; older entries are dropped.
	MaxNotifications int
}

func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.StreamPath == "" {
		c.StreamPath = DefaultStreamPath
	}
	if c.SendPath == "" {
		c.SendPath = DefaultSendPath
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	} else if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.MaxNotifications <= 0 {
		c.MaxNotifications = DefaultMaxNotifications
	}
}

// DesktopNotifier surfaces a notification outside the application.
type DesktopNotifier interface {
	Permitted() bool
	Show(n entity.Notification)
}

// Option customizes a Controller.
type Option func(*Controller)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) { c.client = client }
}

func WithDesktopNotifier(d DesktopNotifier) Option {
	return func(c *Controller) { c.desktop = d }
}

// WithOnNotification registers a callback run for every received notification.
func WithOnNotification(fn func(entity.Notification)) Option {
	return func(c *Controller) { c.onNotification = fn }
}

// Controller consumes a user's notification stream, reconnects with bounded
// exponential backoff and keeps the received notifications with their read
// state.
type Controller struct {
	cfg            Config
	client         *http.Client
	desktop        DesktopNotifier
	onNotification func(entity.Notification)
	afterFunc      func(time.Duration, func()) func() bool

	mu            sync.Mutex
	state         State
	retries       int
	lost          bool
	closed        bool
	gen           uint64
	cancel        context.CancelFunc
	stopRetry     func() bool
	notifications []entity.Notification
}

// New builds a disconnected Controller.
func New(cfg Config, opts ...Option) *Controller {
	cfg.normalize()
	c := &Controller{
		cfg:    cfg,
		client: &http.Client{},
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func validUserID(id string) bool {
	switch strings.TrimSpace(id) {
	case "", "undefined", "null":
		return false
	}
	return true
}

// Connect opens the stream. It returns false when the user id is invalid,
// the controller is closed, or a stream is already open or opening.
func (c *Controller) Connect() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !validUserID(c.cfg.UserID) {
		return false
	}
	if c.state == StateConnecting || c.state == StateConnected {
		return false
	}
	if c.stopRetry != nil {
		c.stopRetry()
		c.stopRetry = nil
	}
	c.retries = 0
	c.lost = false
	c.startLocked()
	return true
}

// Disconnect drops the stream and any pending retry.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// Close disconnects and prevents further connects.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.stopRetry != nil {
		c.stopRetry()
		c.stopRetry = nil
	}
	c.state = StateDisconnected
}

func (c *Controller) startLocked() {
	c.gen++
	gen := c.gen
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = StateConnecting
	go c.run(ctx, gen)
}

func (c *Controller) streamURL() string {
	return c.cfg.BaseURL + c.cfg.StreamPath + "?userId=" + url.QueryEscape(c.cfg.UserID)
}

func (c *Controller) run(ctx context.Context, gen uint64) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.streamURL(), nil)
	if err != nil {
		c.fail(gen, err)
		return
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		c.fail(gen, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.fail(gen, fmt.Errorf("sseclient: unexpected status %d", resp.StatusCode))
		return
	}

	if !c.opened(gen) {
		return
	}
	rd := NewReader(resp.Body)
	for {
		f, err := rd.Next()
		if err != nil {
			c.fail(gen, err)
			return
		}
		c.handleFrame(f)
	}
}

func (c *Controller) opened(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.state = StateConnected
	c.retries = 0
	c.lost = false
	return true
}

// fail handles a transport error of connection gen. Errors from connections
// that were already replaced or dropped on purpose are ignored.
func (c *Controller) fail(gen uint64, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	logger.WithFields(map[string]interface{}{"user_id": c.cfg.UserID, "retries": c.retries}).
		Warnf("sseclient: stream error: %v", err)
	c.state = StateDisconnected
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.scheduleRetryLocked()
}

// scheduleRetryLocked is the only place retries are scheduled.
func (c *Controller) scheduleRetryLocked() {
	if c.closed {
		return
	}
	if c.retries >= c.cfg.MaxRetries {
		c.lost = true
		logger.WithFields(map[string]interface{}{"user_id": c.cfg.UserID}).Warnf("sseclient: connection lost after %d retries", c.retries)
		return
	}
	delay := Backoff(c.cfg.BaseDelay, c.cfg.MaxDelay, c.retries)
	c.retries++
	c.state = StateReconnecting
	gen := c.gen
	c.stopRetry = c.afterFunc(delay, func() { c.retry(gen) })
}

func (c *Controller) retry(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.state != StateReconnecting {
		return
	}
	c.stopRetry = nil
	c.startLocked()
}

func (c *Controller) handleFrame(f Frame) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(f.Data, &head); err != nil {
		logger.Warnf("sseclient: dropping undecodable frame: %v", err)
		return
	}
	if head.Type == sse.HandshakeType {
		logger.Debugf("sseclient: handshake received user_id=%s", c.cfg.UserID)
		return
	}

	var n entity.Notification
	if err := json.Unmarshal(f.Data, &n); err != nil {
		logger.Warnf("sseclient: dropping undecodable notification: %v", err)
		return
	}

	c.mu.Lock()
	c.notifications = append([]entity.Notification{n}, c.notifications...)
	if len(c.notifications) > c.cfg.MaxNotifications {
		c.notifications = c.notifications[:c.cfg.MaxNotifications]
	}
	c.mu.Unlock()

	if c.desktop != nil && c.desktop.Permitted() {
		c.desktop.Show(n)
	}
	if c.onNotification != nil {
		c.onNotification(n)
	}
}

// State reports the current connection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ConnectionLost reports whether retries ran out.
func (c *Controller) ConnectionLost() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lost
}

// Retries reports the consecutive retry count.
func (c *Controller) Retries() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.retries
}

// Notifications returns the received notifications, newest first.
func (c *Controller) Notifications() []entity.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]entity.Notification(nil), c.notifications...)
}

// UnreadCount counts notifications not yet marked read.
func (c *Controller) UnreadCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, item := range c.notifications {
		if !item.IsRead {
			n++
		}
	}
	return n
}

// MarkAsRead marks one notification read locally.
func (c *Controller) MarkAsRead(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.notifications {
		if c.notifications[i].ID == id {
			c.notifications[i].IsRead = true
			return true
		}
	}
	return false
}

// MarkAllAsRead marks every notification read locally.
func (c *Controller) MarkAllAsRead() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.notifications {
		c.notifications[i].IsRead = true
	}
}

// ErrSendFailed wraps a non-200 answer from the send endpoint.
var ErrSendFailed = errors.New("sseclient: send failed")

// SendTestNotification posts a direct notification for this controller's
// user through the server's send endpoint.
func (c *Controller) SendTestNotification(ctx context.Context, typ entity.NotificationType, title, message string, data map[string]interface{}) error {
	body, err := json.Marshal(&cqe.SendNotificationReq{
		UserID:         c.cfg.UserID,
		Type:           string(typ),
		Title:          title,
		Message:        message,
		AdditionalData: data,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.SendPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	var out struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return fmt.Errorf("%w: status=%d message=%s", ErrSendFailed, resp.StatusCode, out.Message)
}
