package repository

import (
	"context"

	"gorm.io/gorm"

	"schoolfest/backend/internal/model"
)

// DownloadLogFilter 审计日志查询条件，零值字段不参与过滤
type DownloadLogFilter struct {
	StudentNum   string
	FunctionName string
	Success      *model.SuccessFlag
	Limit        int
	Offset       int
}

// DownloadStats 审计统计结果
type DownloadStats struct {
	UniqueStudents       int64
	SuccessCount         int64
	FailureCount         int64
	EntryFetchedStudents int64
}

// DownloadLogRepository 审计日志数据访问接口（只追加）
type DownloadLogRepository interface {
	Create(ctx context.Context, log *model.DownloadLog) error
	FindAll(ctx context.Context, filter DownloadLogFilter) ([]model.DownloadLog, int64, error)
	FindByStudentNum(ctx context.Context, studentNum string) ([]model.DownloadLog, error)
	Stats(ctx context.Context) (*DownloadStats, error)
}

type downloadLogRepo struct {
	db *gorm.DB
}

// NewDownloadLogRepo 创建 DownloadLogRepository 实例
func NewDownloadLogRepo(db *gorm.DB) DownloadLogRepository {
	return &downloadLogRepo{db: db}
}

func (r *downloadLogRepo) Create(ctx context.Context, log *model.DownloadLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindAll 按 log_id 降序分页返回，total 不受分页影响
func (r *downloadLogRepo) FindAll(ctx context.Context, filter DownloadLogFilter) ([]model.DownloadLog, int64, error) {
	var logs []model.DownloadLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.DownloadLog{})
	if filter.StudentNum != "" {
		db = db.Where("student_num = ?", filter.StudentNum)
	}
	if filter.FunctionName != "" {
		db = db.Where("function_name = ?", filter.FunctionName)
	}
	if filter.Success != nil {
		db = db.Where("success = ?", *filter.Success)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(filter.Offset).Limit(filter.Limit).
		Order("log_id DESC").
		Find(&logs).Error
	return logs, total, err
}

func (r *downloadLogRepo) FindByStudentNum(ctx context.Context, studentNum string) ([]model.DownloadLog, error) {
	var logs []model.DownloadLog
	err := r.db.WithContext(ctx).
		Where("student_num = ?", studentNum).
		Order("log_id DESC").
		Find(&logs).Error
	return logs, err
}

// unique_students 只计已登记的学籍番号，占位符与无效查询值不计入
const statsQuery = `SELECT
	COUNT(DISTINCT CASE WHEN student_num IN (SELECT student_num FROM students) THEN student_num END) AS unique_students,
	COALESCE(SUM(CASE WHEN success = ? THEN 1 ELSE 0 END), 0) AS success_count,
	COALESCE(SUM(CASE WHEN success = ? THEN 1 ELSE 0 END), 0) AS failure_count,
	COUNT(DISTINCT CASE WHEN function_name = ? AND success = ? AND "count" > 0 THEN student_num END) AS entry_fetched_students
FROM download_logs`

// Stats 单条聚合查询，四项计数来自同一快照
func (r *downloadLogRepo) Stats(ctx context.Context) (*DownloadStats, error) {
	var stats DownloadStats
	err := r.db.WithContext(ctx).
		Raw(statsQuery, model.Success, model.Failure, model.FuncEntryInfo, model.Success).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
