package handler

import (
	"github.com/gin-gonic/gin"

	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/service"
	"schoolfest/backend/pkg/response"
)

// 未携带学籍番号的审计记录
const anonymousStudentNum = "-"

// EventHandler イベント模块 HTTP 处理器
type EventHandler struct {
	eventSvc service.EventService
	logSvc   service.DownloadLogService
	errs     errorRenderer
}

// NewEventHandler 创建 EventHandler
func NewEventHandler(eventSvc service.EventService, logSvc service.DownloadLogService, errs errorRenderer) *EventHandler {
	return &EventHandler{eventSvc: eventSvc, logSvc: logSvc, errs: errs}
}

// ListEvents イベント一覧（写入审计）
// GET /api/v1/events?student_num=
func (h *EventHandler) ListEvents(c *gin.Context) {
	var req dto.EventListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.errs.invalid(c, err)
		return
	}
	num := req.StudentNum
	if num == "" {
		num = anonymousStudentNum
	}

	list, err := h.eventSvc.List(c.Request.Context())
	if err != nil {
		h.logSvc.Record(c.Request.Context(), num, model.FuncEventList, false, nil)
		h.errs.fail(c, err)
		return
	}

	h.logSvc.Record(c.Request.Context(), num, model.FuncEventList, true, intPtr(len(list)))
	response.OK(c, list)
}

// GetEvent イベント详情
// GET /api/v1/events/:id
func (h *EventHandler) GetEvent(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	event, err := h.eventSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, event)
}

// CreateEvent 创建イベント（管理员）
// POST /api/v1/events
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.invalid(c, err)
		return
	}

	event, err := h.eventSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.Created(c, event)
}

// UpdateEvent 更新イベント（管理员）
// PUT /api/v1/events/:id
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errs.invalid(c, err)
		return
	}

	event, err := h.eventSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, event)
}

// DeleteEvent 删除イベント及其出場登録（管理员）
// DELETE /api/v1/events/:id
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	if err := h.eventSvc.Delete(c.Request.Context(), id); err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, nil)
}
