package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/service"
	pkgerrors "schoolfest/backend/pkg/errors"
	"schoolfest/backend/pkg/response"
)

// 导入文件大小上限
const maxImportFileSize = 5 << 20

var errImportTooLarge = pkgerrors.New(pkgerrors.KindPayloadTooLarge, "导入文件过大")

// StudentHandler 生徒模块 HTTP 处理器
type StudentHandler struct {
	studentSvc service.StudentService
	logSvc     service.DownloadLogService
	errs       errorRenderer
	logger     *zap.Logger
}

// NewStudentHandler 创建 StudentHandler
func NewStudentHandler(studentSvc service.StudentService, logSvc service.DownloadLogService, errs errorRenderer, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc, logSvc: logSvc, errs: errs, logger: logger}
}

// ListStudents 生徒列表（管理员）
// GET /api/v1/students?class_code=&limit=&offset=
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var req dto.StudentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.errs.invalid(c, err)
		return
	}

	list, total, err := h.studentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetLimit(), req.GetOffset())
}

// GetStudent 生徒详情（管理员）
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.errs.invalid(c, err)
		return
	}

	student, err := h.studentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.errs.fail(c, err)
		return
	}

	response.OK(c, student)
}

// GetStudentByNum 按学籍番号查询，成功与失败均写入审计
// GET /api/v1/students/number/:num
func (h *StudentHandler) GetStudentByNum(c *gin.Context) {
	num := c.Param("num")

	student, err := h.studentSvc.GetByNum(c.Request.Context(), num)
	if err != nil {
		h.logSvc.Record(c.Request.Context(), num, model.FuncStudentInfo, false, nil)
		h.errs.fail(c, err)
		return
	}

	h.logSvc.Record(c.Request.Context(), num, model.FuncStudentInfo, true, intPtr(1))
	response.OK(c, student)
}

// ImportStudents 批量导入生徒（.xlsx / .csv）
// POST /api/v1/students/import (multipart, 字段 file)
func (h *StudentHandler) ImportStudents(c *gin.Context) {
	operator, ok := MustGetUsername(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errs.fail(c, errImportTooLarge)
			return
		}
		h.errs.invalid(c, err)
		return
	}
	if fileHeader.Size > maxImportFileSize {
		h.errs.fail(c, errImportTooLarge)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.errs.fail(c, err)
		return
	}
	defer file.Close()

	rows, err := h.studentSvc.ParseImportFile(fileHeader.Filename, file)
	if err != nil {
		h.handleImportError(c, err, nil)
		return
	}

	result, err := h.studentSvc.Import(c.Request.Context(), rows)
	if err != nil {
		h.handleImportError(c, err, result)
		return
	}

	h.logger.Info("生徒导入完成",
		zap.String("operator", operator),
		zap.String("file", fileHeader.Filename),
		zap.Int("imported", result.Imported),
	)
	response.Created(c, result)
}

func (h *StudentHandler) handleImportError(c *gin.Context, err error, result *dto.ImportStudentsResponse) {
	var appErr *pkgerrors.AppError
	if errors.As(err, &appErr) && appErr.Kind == pkgerrors.KindImportInvalid {
		// 逐行错误随响应返回；文件级错误给出具体原因
		if result != nil && len(result.Errors) > 0 {
			response.ErrorWithData(c, http.StatusBadRequest, appErr.Kind, h.errs.message(c, appErr.Kind), result)
			return
		}
		response.ErrorWithDetails(c, http.StatusBadRequest, appErr.Kind, h.errs.message(c, appErr.Kind), appErr.Message)
		return
	}
	h.errs.fail(c, err)
}
