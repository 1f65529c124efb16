package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "schoolfest/backend/pkg/errors"
)

// CodeOK 成功响应的固定码
const CodeOK = "OK"

// Response 统一响应结构
// code 为稳定的字符串错误码，客户端据此分支；message 为本地化文案
type Response struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Details string      `json:"details,omitempty"`
}

// Pagination limit/offset 分页元数据
type Pagination struct {
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
	Total  int64 `json:"total"`
}

// PageData 分页响应数据
type PageData struct {
	List       interface{} `json:"list"`
	Pagination Pagination  `json:"pagination"`
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// Created 201 创建成功
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// OKPage 200 分页成功
func OKPage(c *gin.Context, list interface{}, total int64, limit, offset int) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data: PageData{
			List: list,
			Pagination: Pagination{
				Limit:  limit,
				Offset: offset,
				Total:  total,
			},
		},
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, kind pkgerrors.Kind, message string) {
	c.JSON(httpStatus, Response{
		Code:    string(kind),
		Message: message,
	})
}

// ErrorWithDetails 带详情的错误响应
func ErrorWithDetails(c *gin.Context, httpStatus int, kind pkgerrors.Kind, message, details string) {
	c.JSON(httpStatus, Response{
		Code:    string(kind),
		Message: message,
		Details: details,
	})
}

// ErrorWithData 携带数据的错误响应（如导入的逐行错误）
func ErrorWithData(c *gin.Context, httpStatus int, kind pkgerrors.Kind, message string, data interface{}) {
	c.JSON(httpStatus, Response{
		Code:    string(kind),
		Message: message,
		Data:    data,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, kind pkgerrors.Kind, message string) {
	Error(c, http.StatusBadRequest, kind, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, pkgerrors.KindUnauthorized, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, pkgerrors.KindForbidden, message)
}

// NotFound 404
func NotFound(c *gin.Context, kind pkgerrors.Kind, message string) {
	Error(c, http.StatusNotFound, kind, message)
}

// Conflict 409
func Conflict(c *gin.Context, kind pkgerrors.Kind, message string) {
	Error(c, http.StatusConflict, kind, message)
}

// TooManyRequests 429
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, pkgerrors.KindRateLimited, message)
}

// InternalError 500，details 携带底层错误信息（仅面向内部管理端）
func InternalError(c *gin.Context, message, details string) {
	ErrorWithDetails(c, http.StatusInternalServerError, pkgerrors.KindInternal, message, details)
}
