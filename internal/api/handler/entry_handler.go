package handler

import (
	"github.com/gin-gonic/gin"

	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/service"
	"schoolfest/backend/pkg/response"
)

// EntryHandler 出場登録模块 HTTP 处理器
type EntryHandler struct {
	entrySvc service.EntryService
	logSvc   service.DownloadLogService
	errs     errorRenderer
}

// NewEntryHandler 创建 EntryHandler
func NewEntryHandler(entrySvc service.EntryService, logSvc service.DownloadLogService, errs errorRenderer) *EntryHandler {
	return &EntryHandler{entrySvc: entrySvc, logSvc: logSvc, errs: errs}
}

// ListByStudentNum 出場情報取得（写入审计，count 为返回条数）
// GET /api/v1/students/number/:num/entries
func (h *EntryHandler) ListByStudentNum(c *gin.Context) {
	num := c.Param("num")

	list, err := h.entrySvc.ListByStudentNum(c.Request.Context(), num)
	if err != nil {
		h.logSvc.Record(c.Request.Context(), num, model.FuncEntryInfo, false, nil)
		h.errs.fail(c, err)
		return
	}

	h.logSvc.Record(c.Request.Context(), num, model.FuncEntryInfo, true, intPtr(len(list)))
	response.OK(c, list)
}

// CreateEntry 出場登録（管理员）
// POST /api/v1/entries
func (h *EntryHandler) CreateEntry(c *gin.Context) {
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.invalid(c, err)
		return
	}

	entry, err := h.entrySvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.Created(c, entry)
}

// DeleteEntry 删除出場登録（管理员）
// DELETE /api/v1/entries/:id
func (h *EntryHandler) DeleteEntry(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	if err := h.entrySvc.Delete(c.Request.Context(), id); err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, nil)
}
