package handler

import (
	"github.com/gin-gonic/gin"

	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/service"
	"schoolfest/backend/pkg/response"
)

// DownloadLogHandler 审计日志查询 HTTP 处理器（管理员）
type DownloadLogHandler struct {
	logSvc service.DownloadLogService
	errs   errorRenderer
}

// NewDownloadLogHandler 创建 DownloadLogHandler
func NewDownloadLogHandler(logSvc service.DownloadLogService, errs errorRenderer) *DownloadLogHandler {
	return &DownloadLogHandler{logSvc: logSvc, errs: errs}
}

// ListLogs 审计日志列表
// GET /api/v1/logs?student_num=&function_name=&success=&limit=&offset=
func (h *DownloadLogHandler) ListLogs(c *gin.Context) {
	var req dto.DownloadLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.errs.invalid(c, err)
		return
	}

	list, total, err := h.logSvc.FindAll(c.Request.Context(), &req)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetLimit(), req.GetOffset())
}

// ListByStudentNum 指定学籍番号的审计日志（新→旧）
// GET /api/v1/logs/student/:num
func (h *DownloadLogHandler) ListByStudentNum(c *gin.Context) {
	list, err := h.logSvc.FindByStudentNum(c.Request.Context(), c.Param("num"))
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, list)
}

// Stats 审计统计
// GET /api/v1/logs/stats
func (h *DownloadLogHandler) Stats(c *gin.Context) {
	stats, err := h.logSvc.GetStats(c.Request.Context())
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, stats)
}
