package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"regreen-notification-service/pkg/errno"
)

// Success writes body with 200 and success=true merged in.
func Success(ctx *gin.Context, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	ctx.JSON(http.StatusOK, body)
}

// Failed maps err to an HTTP status through its business code.
func Failed(ctx *gin.Context, err error) {
	FailedWithStatus(ctx, err, statusOf(errno.Code(err)))
}

// FailedWithStatus writes err with a forced HTTP status.
func FailedWithStatus(ctx *gin.Context, err error, status int) {
	ctx.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": errno.Message(err),
	})
}

func statusOf(code int) int {
	switch {
	case code >= 400 && code < 500:
		return code
	case code == errno.OK.Code:
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}
