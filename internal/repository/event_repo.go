package repository

import (
	"context"

	"gorm.io/gorm"

	"schoolfest/backend/internal/model"
)

// EventRepository イベント数据访问接口
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id uint) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id uint) error
}

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo 创建 EventRepository 实例
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *eventRepo) GetByID(ctx context.Context, id uint) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Where("event_id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) List(ctx context.Context) ([]model.Event, error) {
	var events []model.Event
	err := r.db.WithContext(ctx).
		Order("start_time ASC, event_id ASC").
		Find(&events).Error
	return events, err
}

func (r *eventRepo) Update(ctx context.Context, event *model.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// Delete 同时删除该イベント的出場登録
func (r *eventRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&model.Entry{}).Error; err != nil {
			return err
		}
		return tx.Where("event_id = ?", id).Delete(&model.Event{}).Error
	})
}

// EntryRepository 出場登録数据访问接口
type EntryRepository interface {
	Create(ctx context.Context, entry *model.Entry) error
	GetByID(ctx context.Context, id uint) (*model.Entry, error)
	GetByPair(ctx context.Context, studentID, eventID uint) (*model.Entry, error)
	ListByStudent(ctx context.Context, studentID uint) ([]model.Entry, error)
	Delete(ctx context.Context, id uint) error
}

type entryRepo struct {
	db *gorm.DB
}

// NewEntryRepo 创建 EntryRepository 实例
func NewEntryRepo(db *gorm.DB) EntryRepository {
	return &entryRepo{db: db}
}

func (r *entryRepo) Create(ctx context.Context, entry *model.Entry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *entryRepo) GetByID(ctx context.Context, id uint) (*model.Entry, error) {
	var entry model.Entry
	err := r.db.WithContext(ctx).
		Preload("Event").
		Where("entry_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *entryRepo) GetByPair(ctx context.Context, studentID, eventID uint) (*model.Entry, error) {
	var entry model.Entry
	res := r.db.WithContext(ctx).
		Where("student_id = ? AND event_id = ?", studentID, eventID).
		Limit(1).Find(&entry)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &entry, nil
}

// ListByStudent 按イベント开始时刻升序返回
func (r *entryRepo) ListByStudent(ctx context.Context, studentID uint) ([]model.Entry, error) {
	var entries []model.Entry
	err := r.db.WithContext(ctx).
		Preload("Event").
		Joins("JOIN events ON events.event_id = entries.event_id").
		Where("entries.student_id = ?", studentID).
		Order("events.start_time ASC, entries.entry_id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *entryRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("entry_id = ?", id).
		Delete(&model.Entry{}).Error
}
