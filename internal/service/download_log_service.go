package service

import (
	"context"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/repository"
	pkgerrors "schoolfest/backend/pkg/errors"
)

var ErrInvalidSuccessFilter = pkgerrors.New(pkgerrors.KindValidation, "结果标记过滤条件无效")

// DownloadLogService 敏感数据访问审计接口
//
// CreateLog 只在存储不可用时返回错误；Record 供 Handler 在主操作完成后调用，
// 失败只写日志，不影响主操作的返回结果。
type DownloadLogService interface {
	CreateLog(ctx context.Context, studentNum, functionName string, success bool, count *int) error
	Record(ctx context.Context, studentNum, functionName string, success bool, count *int)
	FindAll(ctx context.Context, req *dto.DownloadLogListRequest) ([]dto.DownloadLogResponse, int64, error)
	FindByStudentNum(ctx context.Context, studentNum string) ([]dto.DownloadLogResponse, error)
	GetStats(ctx context.Context) (*dto.DownloadStatsResponse, error)
}

type downloadLogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDownloadLogService 创建 DownloadLogService 实例
func NewDownloadLogService(repo *repository.Repository, logger *zap.Logger) DownloadLogService {
	return &downloadLogService{repo: repo, logger: logger}
}

// ────────────────────── CreateLog ──────────────────────

// CreateLog 超出列宽的学籍番号按字符截断，保证失败查询也能落库
func (s *downloadLogService) CreateLog(ctx context.Context, studentNum, functionName string, success bool, count *int) error {
	entry := &model.DownloadLog{
		StudentNum:   truncateRunes(studentNum, model.LogStudentNumMaxLen),
		Timestamp:    time.Now(),
		FunctionName: functionName,
		Success:      model.FlagOf(success),
		Count:        count,
	}
	return s.repo.DownloadLog.Create(ctx, entry)
}

// ────────────────────── Record ──────────────────────

func (s *downloadLogService) Record(ctx context.Context, studentNum, functionName string, success bool, count *int) {
	// 请求取消后仍需落库
	ctx = context.WithoutCancel(ctx)
	if err := s.CreateLog(ctx, studentNum, functionName, success, count); err != nil {
		s.logger.Error("写入审计日志失败",
			zap.String("student_num", studentNum),
			zap.String("function_name", functionName),
			zap.Bool("success", success),
			zap.Error(err),
		)
	}
}

// ────────────────────── FindAll ──────────────────────

func (s *downloadLogService) FindAll(ctx context.Context, req *dto.DownloadLogListRequest) ([]dto.DownloadLogResponse, int64, error) {
	filter := repository.DownloadLogFilter{
		StudentNum:   req.StudentNum,
		FunctionName: req.FunctionName,
		Limit:        req.GetLimit(),
		Offset:       req.GetOffset(),
	}
	if req.Success != "" {
		flag, err := model.ParseSuccessFlag(req.Success)
		if err != nil {
			return nil, 0, ErrInvalidSuccessFilter
		}
		filter.Success = &flag
	}

	logs, total, err := s.repo.DownloadLog.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("查询审计日志失败", zap.Error(err))
		return nil, 0, err
	}

	return toDownloadLogResponses(logs), total, nil
}

// ────────────────────── FindByStudentNum ──────────────────────

func (s *downloadLogService) FindByStudentNum(ctx context.Context, studentNum string) ([]dto.DownloadLogResponse, error) {
	logs, err := s.repo.DownloadLog.FindByStudentNum(ctx, studentNum)
	if err != nil {
		s.logger.Error("查询生徒审计日志失败", zap.String("student_num", studentNum), zap.Error(err))
		return nil, err
	}
	return toDownloadLogResponses(logs), nil
}

// ────────────────────── GetStats ──────────────────────

func (s *downloadLogService) GetStats(ctx context.Context) (*dto.DownloadStatsResponse, error) {
	stats, err := s.repo.DownloadLog.Stats(ctx)
	if err != nil {
		s.logger.Error("统计审计日志失败", zap.Error(err))
		return nil, err
	}
	return &dto.DownloadStatsResponse{
		UniqueStudents:       stats.UniqueStudents,
		SuccessCount:         stats.SuccessCount,
		FailureCount:         stats.FailureCount,
		EntryFetchedStudents: stats.EntryFetchedStudents,
	}, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func toDownloadLogResponses(logs []model.DownloadLog) []dto.DownloadLogResponse {
	result := make([]dto.DownloadLogResponse, 0, len(logs))
	for _, l := range logs {
		result = append(result, dto.DownloadLogResponse{
			ID:           l.LogID,
			StudentNum:   l.StudentNum,
			Timestamp:    l.Timestamp.Format(timeLayout),
			FunctionName: l.FunctionName,
			Success:      string(l.Success),
			Count:        l.Count,
		})
	}
	return result
}
