package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"regreen-notification-service/ddd/application/app"
	"regreen-notification-service/ddd/application/cqe"
	"regreen-notification-service/pkg/errno"
	"regreen-notification-service/pkg/logger"
	"regreen-notification-service/pkg/manager"
	"regreen-notification-service/pkg/restapi"
	"regreen-notification-service/pkg/sse"
)

func init() {
	manager.RegisterControllerPlugin(&NotificationControllerPlugin{})
}

const handshakeMessage = "Connected to notification stream"

// NotificationControllerPlugin 将通知控制器注册到共享的 manager 中。
type NotificationControllerPlugin struct{}

func (p *NotificationControllerPlugin) Name() string {
	return "notificationController"
}

func (p *NotificationControllerPlugin) MustCreateController(deps *manager.Dependencies) manager.Controller {
	return NewNotificationController(
		app.NewNotificationApp(deps.Registry, deps.Subscriptions),
		deps.Registry,
		deps.Config.SSE.HeartbeatInterval,
	)
}

// NotificationController 控制器接口。
type NotificationController interface {
	manager.Controller
	Stream(ctx *gin.Context)
	Send(ctx *gin.Context)
	InventoryEvent(ctx *gin.Context)
	Stats(ctx *gin.Context)
}

type notificationControllerImpl struct {
	app       app.NotificationApp
	registry  *sse.Registry
	heartbeat time.Duration
}

// NewNotificationController wires the controller to its dispatcher and the
// registry streams are registered in. A zero heartbeat disables pings.
func NewNotificationController(notificationApp app.NotificationApp, registry *sse.Registry, heartbeat time.Duration) NotificationController {
	return &notificationControllerImpl{
		app:       notificationApp,
		registry:  registry,
		heartbeat: heartbeat,
	}
}

// RegisterOpenApi 注册浏览器侧的 SSE 接口。
func (c *notificationControllerImpl) RegisterOpenApi(group *gin.RouterGroup) {
	group.GET("/notifications/stream", c.Stream)
}

// RegisterInnerApi 注册内部推送接口，由 BFF/后端服务调用。
func (c *notificationControllerImpl) RegisterInnerApi(group *gin.RouterGroup) {
	group.POST("/notifications/send", c.Send)
	group.POST("/notifications/inventory-event", c.InventoryEvent)
}

func (c *notificationControllerImpl) RegisterDebugApi(group *gin.RouterGroup) {}

func (c *notificationControllerImpl) RegisterOpsApi(group *gin.RouterGroup) {
	group.GET("/notifications/stats", c.Stats)
}

func extractUserID(ctx *gin.Context) (string, error) {
	userID := ctx.GetHeader("X-User-ID")
	if userID == "" {
		// EventSource 无法设置请求头，回退到 query。
		userID = ctx.Query("userId")
	}
	if userID == "" {
		return "", errno.NewSimpleBizError(errno.ErrParameterInvalid, nil, "userId")
	}
	return userID, nil
}

// Stream holds an SSE connection open for one user until the client goes away
// or a newer connection for the same user supersedes it. Once the handshake
// has been read the stream is registered.
func (c *notificationControllerImpl) Stream(ctx *gin.Context) {
	userID, err := extractUserID(ctx)
	if err != nil {
		restapi.FailedWithStatus(ctx, err, http.StatusBadRequest)
		return
	}
	reqCtx := ctx.Request.Context()
	log := logger.WithContext(reqCtx).WithField("user_id", userID)

	w := ctx.Writer
	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Errorf("notification: SSE stream does not support flushing")
		restapi.FailedWithStatus(ctx, errno.ErrStreamUnsupported, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	ctx.Status(http.StatusOK)

	stream := sse.NewStream(w, flusher)
	c.registry.Register(userID, stream)
	defer func() {
		c.registry.UnregisterHandle(userID, stream)
		stream.Finish()
		log.Infof("notification: stream closed")
	}()

	if err := stream.SendJSON(sse.Handshake{Type: sse.HandshakeType, Message: handshakeMessage}); err != nil {
		log.Warnf("notification: handshake failed error=%v", err)
		return
	}
	log.Infof("notification: stream opened")

	var heartbeat <-chan time.Time
	if c.heartbeat > 0 {
		ticker := time.NewTicker(c.heartbeat)
		defer ticker.Stop()
		heartbeat = ticker.C
	}

	for {
		select {
		case <-reqCtx.Done():
			return
		case <-stream.Done():
			return
		case <-heartbeat:
			if err := stream.Comment("ping"); err != nil {
				return
			}
		}
	}
}

// Send 定向推送一条通知；用户不在线返回 404。
func (c *notificationControllerImpl) Send(ctx *gin.Context) {
	var req cqe.SendNotificationReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewSimpleBizError(errno.ErrParameterInvalid, err, "body"))
		return
	}
	if err := c.app.Send(ctx.Request.Context(), &req); err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, gin.H{"message": "Notification sent"})
}

// InventoryEvent 将店铺库存事件扇出给订阅者。
func (c *notificationControllerImpl) InventoryEvent(ctx *gin.Context) {
	var req cqe.InventoryEventReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewSimpleBizError(errno.ErrParameterInvalid, err, "body"))
		return
	}
	res, err := c.app.PublishInventoryEvent(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, gin.H{
		"totalSubscribers":  res.TotalSubscribers,
		"notificationsSent": res.NotificationsSent,
	})
}

// Stats reports the number of live streams.
func (c *notificationControllerImpl) Stats(ctx *gin.Context) {
	restapi.Success(ctx, gin.H{"connections": c.registry.Count()})
}
