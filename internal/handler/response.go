package handler

import (
	"errors"
	"net/http"

	"github.com/blues/mes/internal/engine"
	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// EngineErrorResponse 按引擎错误类型映射HTTP状态码
func EngineErrorResponse(c *gin.Context, err error) {
	ErrorResponse(c, statusFromError(err), err.Error())
}

// statusFromError 引擎错误到HTTP状态码
func statusFromError(err error) int {
	switch {
	case errors.Is(err, engine.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrDuplicateIdentifier):
		return http.StatusConflict
	case errors.Is(err, engine.ErrInvalidParameters),
		errors.Is(err, engine.ErrInvalidProof):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrInvalidSignature):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrInvalidStatus),
		errors.Is(err, engine.ErrInvalidStage),
		errors.Is(err, engine.ErrIncorrectAmount),
		errors.Is(err, engine.ErrInsufficientRemaining),
		errors.Is(err, engine.ErrCooldownNotMet),
		errors.Is(err, engine.ErrMilestonePassed),
		errors.Is(err, engine.ErrMilestoneFinished),
		errors.Is(err, engine.ErrMilestoneExpired):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
