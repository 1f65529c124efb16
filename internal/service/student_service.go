package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/repository"
	pkgerrors "schoolfest/backend/pkg/errors"
)

// ── 生徒模块业务错误 ──

const maxImportRows = 2000

var (
	ErrStudentNotFound   = pkgerrors.New(pkgerrors.KindStudentNotFound, "生徒不存在")
	ErrInvalidStudentNum = pkgerrors.New(pkgerrors.KindInvalidStudentNum, "学籍番号格式无效")
	ErrImportInvalid     = pkgerrors.New(pkgerrors.KindImportInvalid, "导入数据校验失败")
	ErrImportNoData      = pkgerrors.New(pkgerrors.KindImportInvalid, "导入文件无数据行（第一行为表头）")
	ErrImportBadHeader   = pkgerrors.New(pkgerrors.KindImportInvalid, "表头缺少必要列（学籍番号/クラス/出席番号/氏名）")
	ErrImportTooManyRows = pkgerrors.New(pkgerrors.KindImportInvalid, fmt.Sprintf("数据行数超过上限 %d 行", maxImportRows))
	ErrImportFormat      = pkgerrors.New(pkgerrors.KindImportInvalid, "仅支持 .xlsx 与 .csv 文件")
)

// 学籍番号：5-10 位数字
var studentNumPattern = regexp.MustCompile(`^[0-9]{5,10}$`)

// ValidStudentNum 校验学籍番号格式
func ValidStudentNum(num string) bool {
	return studentNumPattern.MatchString(num)
}

// ImportStudentRow 导入文件中的一行
type ImportStudentRow struct {
	Row           int
	StudentNum    string
	ClassCode     string
	AttendanceNum string
	Name          string
}

// StudentService 生徒业务接口
type StudentService interface {
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	GetByID(ctx context.Context, id uint) (*dto.StudentResponse, error)
	GetByNum(ctx context.Context, studentNum string) (*dto.StudentResponse, error)
	ParseImportFile(filename string, reader io.Reader) ([]ImportStudentRow, error)
	Import(ctx context.Context, rows []ImportStudentRow) (*dto.ImportStudentsResponse, error)
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	students, total, err := s.repo.Student.List(ctx, req.ClassCode, req.GetOffset(), req.GetLimit())
	if err != nil {
		s.logger.Error("列出生徒失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *toStudentResponse(&students[i]))
	}
	return result, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *studentService) GetByID(ctx context.Context, id uint) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询生徒失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}

// ────────────────────── GetByNum ──────────────────────

func (s *studentService) GetByNum(ctx context.Context, studentNum string) (*dto.StudentResponse, error) {
	if !ValidStudentNum(studentNum) {
		return nil, ErrInvalidStudentNum
	}

	student, err := s.repo.Student.GetByNum(ctx, studentNum)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("按学籍番号查询生徒失败", zap.String("student_num", studentNum), zap.Error(err))
		return nil, err
	}
	return toStudentResponse(student), nil
}

// ────────────────────── ParseImportFile ──────────────────────

// ParseImportFile 按扩展名解析 .xlsx 或 .csv，第一行为表头
func (s *studentService) ParseImportFile(filename string, reader io.Reader) ([]ImportStudentRow, error) {
	var records [][]string
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		records, err = readXLSXRecords(reader)
	case ".csv":
		records, err = readCSVRecords(reader)
	default:
		return nil, ErrImportFormat
	}
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseStudentHeader(records[0])
	for _, key := range []string{"student_num", "class_code", "attendance_num", "name"} {
		if colIndex[key] < 0 {
			return nil, ErrImportBadHeader
		}
	}

	var rows []ImportStudentRow
	for i := 1; i < len(records); i++ {
		rec := records[i]
		item := ImportStudentRow{
			Row:           i + 1,
			StudentNum:    cellAt(rec, colIndex["student_num"]),
			ClassCode:     cellAt(rec, colIndex["class_code"]),
			AttendanceNum: cellAt(rec, colIndex["attendance_num"]),
			Name:          cellAt(rec, colIndex["name"]),
		}

		// 跳过全空行
		if item.StudentNum == "" && item.ClassCode == "" && item.AttendanceNum == "" && item.Name == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

func readXLSXRecords(reader io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	return rows, nil
}

func readCSVRecords(reader io.Reader) ([][]string, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("无法解析CSV文件: %w", err)
	}
	// 去掉 Excel 导出 CSV 时的 UTF-8 BOM
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}
	return rows, nil
}

// parseStudentHeader 解析表头，返回列名 -> 列索引映射
func parseStudentHeader(header []string) map[string]int {
	idx := map[string]int{
		"student_num":    -1,
		"class_code":     -1,
		"attendance_num": -1,
		"name":           -1,
	}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "学籍番号", "student_num":
			idx["student_num"] = i
		case "クラス", "class_code", "class":
			idx["class_code"] = i
		case "出席番号", "attendance_num":
			idx["attendance_num"] = i
		case "氏名", "name":
			idx["name"] = i
		}
	}
	return idx
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// ────────────────────── Import ──────────────────────

// Import 逐行校验后在单个事务内写入；任一行不合法则不写入任何数据
func (s *studentService) Import(ctx context.Context, rows []ImportStudentRow) (*dto.ImportStudentsResponse, error) {
	resp := &dto.ImportStudentsResponse{}

	nums := make([]string, 0, len(rows))
	for _, r := range rows {
		nums = append(nums, r.StudentNum)
	}
	existing, err := s.repo.Student.ExistingNums(ctx, nums)
	if err != nil {
		s.logger.Error("查询已存在学籍番号失败", zap.Error(err))
		return nil, err
	}
	taken := make(map[string]bool, len(existing))
	for _, n := range existing {
		taken[n] = true
	}

	seen := make(map[string]int, len(rows))
	students := make([]model.Student, 0, len(rows))
	for _, r := range rows {
		reason := ""
		attendance, convErr := strconv.Atoi(r.AttendanceNum)
		switch {
		case !ValidStudentNum(r.StudentNum):
			reason = "学籍番号格式无效"
		case r.ClassCode == "":
			reason = "クラス不能为空"
		case r.Name == "":
			reason = "氏名不能为空"
		case convErr != nil || attendance < 0:
			reason = "出席番号必须为非负整数"
		case taken[r.StudentNum]:
			reason = "学籍番号已存在"
		case seen[r.StudentNum] > 0:
			reason = fmt.Sprintf("与第 %d 行学籍番号重复", seen[r.StudentNum])
		}
		if reason != "" {
			resp.Errors = append(resp.Errors, dto.ImportRowError{Row: r.Row, Reason: reason})
			continue
		}

		seen[r.StudentNum] = r.Row
		students = append(students, model.Student{
			StudentNum:    r.StudentNum,
			ClassCode:     r.ClassCode,
			AttendanceNum: attendance,
			Name:          r.Name,
		})
	}

	if len(resp.Errors) > 0 {
		return resp, ErrImportInvalid
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	if err := s.repo.WithTx(tx).Student.CreateBatch(ctx, students); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrImportInvalid
		}
		s.logger.Error("批量写入生徒失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	resp.Imported = len(students)
	s.logger.Info("生徒导入完成", zap.Int("imported", resp.Imported))
	return resp, nil
}

func toStudentResponse(st *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		ID:            st.StudentID,
		StudentNum:    st.StudentNum,
		ClassCode:     st.ClassCode,
		AttendanceNum: st.AttendanceNum,
		Name:          st.Name,
		CreatedAt:     st.CreatedAt.Format(timeLayout),
		UpdatedAt:     st.UpdatedAt.Format(timeLayout),
	}
}
