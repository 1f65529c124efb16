package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"schoolfest/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	errs      errorRenderer
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, errs errorRenderer) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, errs: errs}
}

// ExportRoster 导出参加者名簿
// GET /api/v1/recreations/:id/participants/export
func (h *ExportHandler) ExportRoster(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), id)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.PathEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
