package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pkgerrors "schoolfest/backend/pkg/errors"
	"schoolfest/backend/pkg/i18n"
	"schoolfest/backend/pkg/response"
)

// kindStatus 业务错误码 → HTTP 状态码
var kindStatus = map[pkgerrors.Kind]int{
	pkgerrors.KindValidation:            http.StatusBadRequest,
	pkgerrors.KindInvalidStudentNum:     http.StatusBadRequest,
	pkgerrors.KindImportInvalid:         http.StatusBadRequest,
	pkgerrors.KindStudentNotFound:       http.StatusNotFound,
	pkgerrors.KindRecreationNotFound:    http.StatusNotFound,
	pkgerrors.KindParticipationNotFound: http.StatusNotFound,
	pkgerrors.KindEventNotFound:         http.StatusNotFound,
	pkgerrors.KindEntryNotFound:         http.StatusNotFound,
	pkgerrors.KindAlreadyRegistered:     http.StatusConflict,
	pkgerrors.KindRecreationFull:        http.StatusConflict,
	pkgerrors.KindAlreadyEntered:        http.StatusConflict,
	pkgerrors.KindCapacityBelowActive:   http.StatusConflict,
	pkgerrors.KindInvalidCredentials:    http.StatusUnauthorized,
	pkgerrors.KindUnauthorized:          http.StatusUnauthorized,
	pkgerrors.KindForbidden:             http.StatusForbidden,
	pkgerrors.KindRateLimited:           http.StatusTooManyRequests,
	pkgerrors.KindPayloadTooLarge:       http.StatusRequestEntityTooLarge,
}

func statusOf(kind pkgerrors.Kind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// errorRenderer 把 Service 错误写成统一响应，文案按 Accept-Language 本地化
type errorRenderer struct {
	tr     *i18n.Translator
	logger *zap.Logger
}

func newErrorRenderer(tr *i18n.Translator, logger *zap.Logger) errorRenderer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return errorRenderer{tr: tr, logger: logger}
}

func (r errorRenderer) message(c *gin.Context, kind pkgerrors.Kind) string {
	if r.tr == nil {
		return string(kind)
	}
	return r.tr.T(c.GetHeader("Accept-Language"), string(kind), nil)
}

// fail 按错误码写响应
func (r errorRenderer) fail(c *gin.Context, err error) {
	r.failWithStatus(c, err, 0)
}

// failWithStatus status 为 0 时使用默认映射；非业务错误一律 500
func (r errorRenderer) failWithStatus(c *gin.Context, err error, status int) {
	kind := pkgerrors.KindOf(err)
	if kind == pkgerrors.KindInternal {
		r.logger.Error("请求处理失败",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
		response.InternalError(c, r.message(c, kind), err.Error())
		return
	}
	if status == 0 {
		status = statusOf(kind)
	}
	response.Error(c, status, kind, r.message(c, kind))
}

// invalid 参数绑定失败
func (r errorRenderer) invalid(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, pkgerrors.KindValidation, r.message(c, pkgerrors.KindValidation), err.Error())
}
