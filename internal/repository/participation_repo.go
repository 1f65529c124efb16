package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"schoolfest/backend/internal/model"
)

// ParticipationFilter 生徒参加列表过滤条件
// FromMinutes/ToMinutes 为当日分钟数（闭区间），与レクリエーション开始时刻比较
type ParticipationFilter struct {
	Status      *model.ParticipationStatus
	FromMinutes *int
	ToMinutes   *int
}

// HHMM 整数换算为分钟数的 SQL 表达式，PostgreSQL 与 SQLite 整数除法语义一致
const startMinutesExpr = "(recreations.start_time / 100) * 60 + (recreations.start_time % 100)"

// ParticipationRepository 参加数据访问接口
type ParticipationRepository interface {
	Create(ctx context.Context, p *model.Participation) error
	GetByID(ctx context.Context, id uint) (*model.Participation, error)
	GetByPair(ctx context.Context, studentID, recreationID uint) (*model.Participation, error)
	CountActive(ctx context.Context, recreationID uint) (int64, error)
	ListByStudent(ctx context.Context, studentID uint, filter ParticipationFilter) ([]model.Participation, error)
	ListByRecreation(ctx context.Context, recreationID uint) ([]model.Participation, error)
	Update(ctx context.Context, p *model.Participation) error
	Delete(ctx context.Context, id uint) error
}

type participationRepo struct {
	db *gorm.DB
}

// NewParticipationRepo 创建 ParticipationRepository 实例
func NewParticipationRepo(db *gorm.DB) ParticipationRepository {
	return &participationRepo{db: db}
}

func (r *participationRepo) Create(ctx context.Context, p *model.Participation) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// GetByID 附带 Student 与 Recreation
func (r *participationRepo) GetByID(ctx context.Context, id uint) (*model.Participation, error) {
	var p model.Participation
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Recreation").
		Where("participation_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByPair 查询 (student, recreation) 的唯一记录，不区分状态
func (r *participationRepo) GetByPair(ctx context.Context, studentID, recreationID uint) (*model.Participation, error) {
	var p model.Participation
	res := r.db.WithContext(ctx).
		Where("student_id = ? AND recreation_id = ?", studentID, recreationID).
		Limit(1).Find(&p)
	if res.Error != nil {
		return nil, res.Error
	}
	// 首次报名时不存在是常态，不走 First 以免 GORM 打印 record not found
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

// CountActive 统计 registered 与 confirmed 的参加数
func (r *participationRepo) CountActive(ctx context.Context, recreationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Participation{}).
		Where("recreation_id = ? AND status IN ?", recreationID, model.ActiveStatuses).
		Count(&count).Error
	return count, err
}

// ListByStudent 按レクリエーション开始时刻升序返回
func (r *participationRepo) ListByStudent(ctx context.Context, studentID uint, filter ParticipationFilter) ([]model.Participation, error) {
	var list []model.Participation

	db := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Recreation").
		Joins("JOIN recreations ON recreations.recreation_id = participations.recreation_id").
		Where("participations.student_id = ?", studentID)

	if filter.Status != nil {
		db = db.Where("participations.status = ?", *filter.Status)
	}
	if filter.FromMinutes != nil {
		db = db.Where(startMinutesExpr+" >= ?", *filter.FromMinutes)
	}
	if filter.ToMinutes != nil {
		db = db.Where(startMinutesExpr+" <= ?", *filter.ToMinutes)
	}

	err := db.Order("recreations.start_time ASC, participations.participation_id ASC").
		Find(&list).Error
	return list, err
}

// ListByRecreation 全部状态，按登録时刻升序
func (r *participationRepo) ListByRecreation(ctx context.Context, recreationID uint) ([]model.Participation, error) {
	var list []model.Participation
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("recreation_id = ?", recreationID).
		Order("registered_at ASC, participation_id ASC").
		Find(&list).Error
	return list, err
}

// Update 仅更新状态与登録时刻
// Update 写回状态与登録时刻，并把新的 updated_at 回填到 p
func (r *participationRepo) Update(ctx context.Context, p *model.Participation) error {
	p.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).
		Model(&model.Participation{}).
		Where("participation_id = ?", p.ParticipationID).
		Updates(map[string]interface{}{
			"status":        p.Status,
			"registered_at": p.RegisteredAt,
			"updated_at":    p.UpdatedAt,
		}).Error
}

func (r *participationRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("participation_id = ?", id).
		Delete(&model.Participation{}).Error
}
