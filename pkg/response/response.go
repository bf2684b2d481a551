// Package response 提供统一的 HTTP 响应处理
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"lunaura/pkg/logger"
)

// 预定义响应状态
const (
	Success = "success" // 成功状态
	Failure = "error"   // 错误状态
)

/* 标准响应结构
{
    "status": "success",
    "data": {},     // 成功时返回的数据
    "error": "",    // 错误时返回的信息
    "message": "",  // 提示信息
}
*/

// Response 统一响应结构体
type Response struct {
	Status  string      `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ------------------ 🎯 成功响应系列 ------------------

// Data 响应 200 和数据
func Data(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: Success,
		Data:   data,
	})
}

// JSON 直接返回 JSON 数据
func JSON(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 成功创建的响应
func Created(c *gin.Context, data interface{}, msg ...string) {
	c.JSON(http.StatusCreated, Response{
		Status:  Success,
		Message: getMsg("Created", msg...),
		Data:    data,
	})
}

//  ------------------ 错误响应系列 ------------------

// Abort400 响应 400 错误
func Abort400(c *gin.Context, msg ...string) {
	abort(c, http.StatusBadRequest, getMsg("Bad request", msg...))
}

// Abort403 响应 403 错误
func Abort403(c *gin.Context, msg ...string) {
	abort(c, http.StatusForbidden, getMsg("Forbidden", msg...))
}

// Abort404 响应 404 错误
func Abort404(c *gin.Context, msg ...string) {
	abort(c, http.StatusNotFound, getMsg("Not found", msg...))
}

// Abort429 响应 429 错误
func Abort429(c *gin.Context, msg ...string) {
	abort(c, http.StatusTooManyRequests, getMsg("Too many requests, please try again later", msg...))
}

// Abort500 响应 500 错误
func Abort500(c *gin.Context, msg ...string) {
	abort(c, http.StatusInternalServerError, getMsg("Internal server error", msg...))
}

// Abort503 响应 503 错误
func Abort503(c *gin.Context, msg ...string) {
	abort(c, http.StatusServiceUnavailable, getMsg("Service unavailable", msg...))
}

// BadRequest 响应 400 错误（带错误信息）
func BadRequest(c *gin.Context, err error, msg ...string) {
	logger.LogIf(err)
	c.AbortWithStatusJSON(http.StatusBadRequest, Response{
		Status:  Failure,
		Message: getMsg("Invalid request format", msg...),
		Error:   err.Error(),
	})
}

// ValidationError 响应 422 表单验证错误
func ValidationError(c *gin.Context, errors map[string][]string) {
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Response{
		Status:  Failure,
		Message: "Validation failed",
		Data:    errors,
	})
}

// statusError 业务错误自带 HTTP 状态码和对外提示
type statusError interface {
	HTTPStatus() int
	PublicMessage() string
}

// Error 按错误类型响应，未知错误一律 500 且不暴露细节
func Error(c *gin.Context, err error) {
	var se statusError
	if errors.As(err, &se) {
		status := se.HTTPStatus()
		if status >= http.StatusInternalServerError {
			logger.LogIf(err)
		} else {
			logger.LogInfoIf(err)
		}
		abort(c, status, se.PublicMessage())
		return
	}
	logger.LogIf(err)
	abort(c, http.StatusInternalServerError, "Internal server error")
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Response{
		Status:  Failure,
		Message: message,
	})
}

// getMsg 获取消息内容
func getMsg(defaultMsg string, msg ...string) string {
	if len(msg) > 0 {
		return msg[0]
	}
	return defaultMsg
}
