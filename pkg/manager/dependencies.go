package manager

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	drepo "regreen-notification-service/ddd/domain/repo"
	"regreen-notification-service/pkg/config"
	"regreen-notification-service/pkg/middleware"
	"regreen-notification-service/pkg/sse"
)

// Dependencies 依赖注入容器，进程启动时构造一次并传给所有控制器。
type Dependencies struct {
	Config        *config.Config
	Registry      *sse.Registry
	Subscriptions drepo.SubscriptionRepository
}

// RegisterAllRoutes 注册所有路由。inner 路由按配置启用限流。
func RegisterAllRoutes(router *gin.Engine, deps *Dependencies) {
	groups := Groups{
		Open:  router.Group("/api"),
		Inner: router.Group("/api/inner"),
		Debug: router.Group("/debug"),
		Ops:   router.Group("/ops"),
	}

	if rl := deps.Config.RateLimit; rl.Enabled {
		groups.Inner.Use(middleware.RateLimitMiddleware(rate.NewLimiter(rate.Limit(rl.RPS), rl.Burst)))
	}

	MustInitControllers(deps, groups)
}
