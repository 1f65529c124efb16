package handler

import (
	"github.com/gin-gonic/gin"

	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/service"
	"schoolfest/backend/pkg/response"
)

// RecreationHandler レクリエーション模块 HTTP 处理器
type RecreationHandler struct {
	recSvc service.RecreationService
	errs   errorRenderer
}

// NewRecreationHandler 创建 RecreationHandler
func NewRecreationHandler(recSvc service.RecreationService, errs errorRenderer) *RecreationHandler {
	return &RecreationHandler{recSvc: recSvc, errs: errs}
}

// ListRecreations レクリエーション列表
// GET /api/v1/recreations?status=
func (h *RecreationHandler) ListRecreations(c *gin.Context) {
	var req dto.RecreationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.errs.invalid(c, err)
		return
	}

	list, err := h.recSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, list)
}

// GetRecreation レクリエーション详情（含当前有效人数）
// GET /api/v1/recreations/:id
func (h *RecreationHandler) GetRecreation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	rec, err := h.recSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, rec)
}

// CreateRecreation 创建レクリエーション（管理员）
// POST /api/v1/recreations
func (h *RecreationHandler) CreateRecreation(c *gin.Context) {
	var req dto.CreateRecreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.invalid(c, err)
		return
	}

	rec, err := h.recSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.Created(c, rec)
}

// UpdateRecreation 更新レクリエーション（管理员）
// PUT /api/v1/recreations/:id
func (h *RecreationHandler) UpdateRecreation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	var req dto.UpdateRecreationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.invalid(c, err)
		return
	}

	rec, err := h.recSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, rec)
}

// DeleteRecreation 删除レクリエーション及其参加记录（管理员）
// DELETE /api/v1/recreations/:id
func (h *RecreationHandler) DeleteRecreation(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	if err := h.recSvc.Delete(c.Request.Context(), id); err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, nil)
}
