package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"schoolfest/backend/internal/model"
)

// RecreationRepository レクリエーション数据访问接口
type RecreationRepository interface {
	Create(ctx context.Context, rec *model.Recreation) error
	GetByID(ctx context.Context, id uint) (*model.Recreation, error)
	LockByID(ctx context.Context, id uint) (*model.Recreation, error)
	List(ctx context.Context, status string) ([]model.Recreation, error)
	ListStartingAt(ctx context.Context, startTime int, status string) ([]model.Recreation, error)
	Update(ctx context.Context, rec *model.Recreation) error
	Delete(ctx context.Context, id uint) error
}

type recreationRepo struct {
	db *gorm.DB
}

// NewRecreationRepo 创建 RecreationRepository 实例
func NewRecreationRepo(db *gorm.DB) RecreationRepository {
	return &recreationRepo{db: db}
}

func (r *recreationRepo) Create(ctx context.Context, rec *model.Recreation) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *recreationRepo) GetByID(ctx context.Context, id uint) (*model.Recreation, error) {
	var rec model.Recreation
	err := r.db.WithContext(ctx).
		Where("recreation_id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// LockByID 读取并行锁定レクリエーション，须在事务连接上调用
// PostgreSQL 下为 SELECT ... FOR UPDATE；SQLite 方言忽略锁子句，由单连接串行化事务
func (r *recreationRepo) LockByID(ctx context.Context, id uint) (*model.Recreation, error) {
	var rec model.Recreation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("recreation_id = ?", id).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *recreationRepo) List(ctx context.Context, status string) ([]model.Recreation, error) {
	var recs []model.Recreation
	db := r.db.WithContext(ctx)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Order("start_time ASC, recreation_id ASC").Find(&recs).Error
	return recs, err
}

// ListStartingAt 查询在指定 HHMM 时刻开始的レクリエーション
func (r *recreationRepo) ListStartingAt(ctx context.Context, startTime int, status string) ([]model.Recreation, error) {
	var recs []model.Recreation
	err := r.db.WithContext(ctx).
		Where("start_time = ? AND status = ?", startTime, status).
		Order("recreation_id ASC").
		Find(&recs).Error
	return recs, err
}

func (r *recreationRepo) Update(ctx context.Context, rec *model.Recreation) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

// Delete 同时删除其参加记录
func (r *recreationRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recreation_id = ?", id).Delete(&model.Participation{}).Error; err != nil {
			return err
		}
		return tx.Where("recreation_id = ?", id).Delete(&model.Recreation{}).Error
	})
}
