package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolfest/backend/internal/repository"
	pkgerrors "schoolfest/backend/pkg/errors"
	"schoolfest/backend/pkg/hhmm"
)

var ErrExportGenerateFail = pkgerrors.New(pkgerrors.KindInternal, "生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportRoster 导出レクリエーション参加者名簿为 Excel
	ExportRoster(ctx context.Context, recreationID uint) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportRoster — 参加者名簿
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "参加者名簿"
//   - 第 1 行：标题（レクリエーション名 + 时间 + 场所）
//   - 第 2 行：表头
//   - 数据行按登録时刻升序，包含已取消记录

var rosterHeaders = []string{"No", "学籍番号", "クラス", "出席番号", "氏名", "状態", "登録日時"}

var statusLabels = map[string]string{
	"registered": "登録済",
	"confirmed":  "確定",
	"cancelled":  "取消",
}

func (s *exportService) ExportRoster(ctx context.Context, recreationID uint) (*bytes.Buffer, string, error) {
	rec, err := s.repo.Recreation.GetByID(ctx, recreationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrRecreationNotFound
		}
		s.logger.Error("查询レクリエーション失败", zap.Uint("id", recreationID), zap.Error(err))
		return nil, "", err
	}

	list, err := s.repo.Participation.ListByRecreation(ctx, recreationID)
	if err != nil {
		s.logger.Error("查询参加者失败", zap.Uint("id", recreationID), zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "参加者名簿"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "D", 12)
	f.SetColWidth(sheetName, "E", "E", 18)
	f.SetColWidth(sheetName, "F", "F", 10)
	f.SetColWidth(sheetName, "G", "G", 20)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	title := fmt.Sprintf("%s %s-%s %s", rec.Title, hhmm.Format(rec.StartTime), hhmm.Format(rec.EndTime), rec.Location)
	f.SetCellValue(sheetName, "A1", title)
	f.MergeCell(sheetName, "A1", cell(colName(len(rosterHeaders)-1), 1))

	// 表头
	for i, h := range rosterHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(rosterHeaders)-1), 2), headerStyle)

	// 数据行
	row := 3
	for i, p := range list {
		f.SetCellValue(sheetName, cell("A", row), i+1)
		if p.Student != nil {
			f.SetCellValue(sheetName, cell("B", row), p.Student.StudentNum)
			f.SetCellValue(sheetName, cell("C", row), p.Student.ClassCode)
			f.SetCellValue(sheetName, cell("D", row), p.Student.AttendanceNum)
			f.SetCellValue(sheetName, cell("E", row), p.Student.Name)
		}
		f.SetCellValue(sheetName, cell("F", row), statusLabels[string(p.Status)])
		f.SetCellValue(sheetName, cell("G", row), p.RegisteredAt.Format("2006-01-02 15:04"))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("参加者名簿_%s.xlsx", rec.Title)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
