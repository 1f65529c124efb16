package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolfest/backend/internal/service"
)

// CalendarHandler 日历导出 HTTP 处理器
type CalendarHandler struct {
	calSvc service.CalendarService
	errs   errorRenderer
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(calSvc service.CalendarService, errs errorRenderer) *CalendarHandler {
	return &CalendarHandler{calSvc: calSvc, errs: errs}
}

// StudentCalendar 生徒当日参加日程（iCalendar）
// GET /api/v1/students/:id/calendar.ics?date=YYYY-MM-DD
func (h *CalendarHandler) StudentCalendar(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	day, err := parseDay(c.Query("date"))
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	content, err := h.calSvc.StudentCalendar(c.Request.Context(), id, day)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=student-%d.ics", id))
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(content))
}
