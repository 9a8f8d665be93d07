package http

import (
	"github.com/gin-gonic/gin"

	"regreen-notification-service/ddd/application/app"
	"regreen-notification-service/ddd/application/cqe"
	"regreen-notification-service/pkg/errno"
	"regreen-notification-service/pkg/manager"
	"regreen-notification-service/pkg/restapi"
)

func init() {
	manager.RegisterControllerPlugin(&SubscriptionControllerPlugin{})
}

// SubscriptionControllerPlugin 注册店铺订阅控制器。
type SubscriptionControllerPlugin struct{}

func (p *SubscriptionControllerPlugin) Name() string {
	return "subscriptionController"
}

func (p *SubscriptionControllerPlugin) MustCreateController(deps *manager.Dependencies) manager.Controller {
	return NewSubscriptionController(app.NewSubscriptionApp(deps.Subscriptions))
}

type SubscriptionController interface {
	manager.Controller
	Subscribe(ctx *gin.Context)
	Unsubscribe(ctx *gin.Context)
	Query(ctx *gin.Context)
}

type subscriptionControllerImpl struct {
	app app.SubscriptionApp
}

func NewSubscriptionController(subscriptionApp app.SubscriptionApp) SubscriptionController {
	return &subscriptionControllerImpl{app: subscriptionApp}
}

func (c *subscriptionControllerImpl) RegisterOpenApi(group *gin.RouterGroup) {
	group.POST("/subscriptions", c.Subscribe)
	group.DELETE("/subscriptions", c.Unsubscribe)
	group.GET("/subscriptions", c.Query)
}

func (c *subscriptionControllerImpl) RegisterInnerApi(group *gin.RouterGroup) {}
func (c *subscriptionControllerImpl) RegisterDebugApi(group *gin.RouterGroup) {}
func (c *subscriptionControllerImpl) RegisterOpsApi(group *gin.RouterGroup)   {}

// Subscribe 订阅店铺，重复订阅视为成功。
func (c *subscriptionControllerImpl) Subscribe(ctx *gin.Context) {
	var req cqe.SubscriptionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		restapi.Failed(ctx, errno.NewSimpleBizError(errno.ErrParameterInvalid, err, "body"))
		return
	}
	st, err := c.app.Subscribe(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, gin.H{"isSubscribed": st.IsSubscribed})
}

// Unsubscribe 取消订阅，未订阅时同样返回成功。
func (c *subscriptionControllerImpl) Unsubscribe(ctx *gin.Context) {
	var req cqe.SubscriptionReq
	if err := ctx.ShouldBindQuery(&req); err != nil {
		restapi.Failed(ctx, errno.NewSimpleBizError(errno.ErrParameterInvalid, err, "query"))
		return
	}
	st, err := c.app.Unsubscribe(ctx.Request.Context(), &req)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, gin.H{"isSubscribed": st.IsSubscribed})
}

// Query 带 shopId 时返回订阅状态，否则返回全部订阅店铺。
func (c *subscriptionControllerImpl) Query(ctx *gin.Context) {
	var q cqe.SubscriptionQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		restapi.Failed(ctx, errno.NewSimpleBizError(errno.ErrParameterInvalid, err, "query"))
		return
	}
	if q.ShopID != "" {
		st, err := c.app.IsSubscribed(ctx.Request.Context(), &q)
		if err != nil {
			restapi.Failed(ctx, err)
			return
		}
		restapi.Success(ctx, gin.H{"isSubscribed": st.IsSubscribed})
		return
	}
	list, err := c.app.List(ctx.Request.Context(), &q)
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, gin.H{"subscriptions": list.Subscriptions})
}
