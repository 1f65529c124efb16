package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/service"
	"schoolfest/backend/pkg/response"
)

// ParticipationHandler 参加模块 HTTP 处理器
//
// 登録、取消与列表查询结束后（无论成败）写入一条审计记录；
// 审计写入失败不影响响应。
type ParticipationHandler struct {
	partSvc    service.ParticipationService
	studentSvc service.StudentService
	logSvc     service.DownloadLogService
	errs       errorRenderer
}

// NewParticipationHandler 创建 ParticipationHandler
func NewParticipationHandler(
	partSvc service.ParticipationService,
	studentSvc service.StudentService,
	logSvc service.DownloadLogService,
	errs errorRenderer,
) *ParticipationHandler {
	return &ParticipationHandler{partSvc: partSvc, studentSvc: studentSvc, logSvc: logSvc, errs: errs}
}

// Register 参加登録
// POST /api/v1/participations
func (h *ParticipationHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateParticipationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logSvc.Record(ctx, anonymousStudentNum, model.FuncParticipationCreate, false, nil)
		h.errs.invalid(c, err)
		return
	}

	result, err := h.partSvc.Register(ctx, &req)
	if err != nil {
		h.logSvc.Record(ctx, h.studentNumOf(ctx, req.StudentID), model.FuncParticipationCreate, false, nil)
		h.handleRegisterError(c, err)
		return
	}

	num := anonymousStudentNum
	if result.Student != nil {
		num = result.Student.StudentNum
	}
	h.logSvc.Record(ctx, num, model.FuncParticipationCreate, true, nil)
	response.Created(c, result)
}

// handleRegisterError 请求中引用的生徒/レクリエーション不存在属于请求错误（400）
func (h *ParticipationHandler) handleRegisterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound), errors.Is(err, service.ErrRecreationNotFound):
		h.errs.failWithStatus(c, err, http.StatusBadRequest)
	default:
		h.errs.fail(c, err)
	}
}

// Cancel 参加取消（已取消时幂等成功）
// POST /api/v1/participations/:id/cancel
func (h *ParticipationHandler) Cancel(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}
	ctx := c.Request.Context()

	result, err := h.partSvc.Cancel(ctx, id)
	if err != nil {
		h.logSvc.Record(ctx, anonymousStudentNum, model.FuncParticipationCancel, false, nil)
		h.errs.fail(c, err)
		return
	}

	num := anonymousStudentNum
	if result.Student != nil {
		num = result.Student.StudentNum
	}
	h.logSvc.Record(ctx, num, model.FuncParticipationCancel, true, nil)
	response.OK(c, result)
}

// Delete 删除参加记录（管理员）
// DELETE /api/v1/participations/:id
func (h *ParticipationHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	if err := h.partSvc.Delete(c.Request.Context(), id); err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, nil)
}

// ListByStudent 生徒参加状況（按开始时刻升序）
// GET /api/v1/students/:id/participations?status=&from=&to=
func (h *ParticipationHandler) ListByStudent(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	var req dto.ParticipationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.errs.invalid(c, err)
		return
	}
	ctx := c.Request.Context()

	list, err := h.partSvc.ListByStudent(ctx, id, &req)
	if err != nil {
		h.logSvc.Record(ctx, h.studentNumOf(ctx, id), model.FuncParticipationList, false, nil)
		h.errs.fail(c, err)
		return
	}

	h.logSvc.Record(ctx, h.studentNumOf(ctx, id), model.FuncParticipationList, true, intPtr(len(list)))
	response.OK(c, list)
}

// ListByRecreation レクリエーション参加者（含已取消，按登録时刻升序）
// GET /api/v1/recreations/:id/participants
func (h *ParticipationHandler) ListByRecreation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	list, err := h.partSvc.ListByRecreation(c.Request.Context(), id)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, list)
}

// studentNumOf 审计记录使用学籍番号；生徒不存在时记为占位符
func (h *ParticipationHandler) studentNumOf(ctx context.Context, studentID uint) string {
	if st, err := h.studentSvc.GetByID(ctx, studentID); err == nil {
		return st.StudentNum
	}
	return anonymousStudentNum
}
