package repository

import (
	"context"

	"gorm.io/gorm"

	"schoolfest/backend/internal/model"
)

// StudentRepository 生徒数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	CreateBatch(ctx context.Context, students []model.Student) error
	GetByID(ctx context.Context, id uint) (*model.Student, error)
	GetByNum(ctx context.Context, studentNum string) (*model.Student, error)
	List(ctx context.Context, classCode string, offset, limit int) ([]model.Student, int64, error)
	ExistingNums(ctx context.Context, nums []string) ([]string, error)
}

type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

// CreateBatch 分批插入，须在事务连接上调用才能保证全部成功或全部失败
func (r *studentRepo) CreateBatch(ctx context.Context, students []model.Student) error {
	if len(students) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&students, 200).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id uint) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByNum(ctx context.Context, studentNum string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_num = ?", studentNum).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) List(ctx context.Context, classCode string, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{})
	if classCode != "" {
		db = db.Where("class_code = ?", classCode)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("class_code ASC, attendance_num ASC").
		Find(&students).Error
	return students, total, err
}

// ExistingNums 返回 nums 中已存在的学籍番号
func (r *studentRepo) ExistingNums(ctx context.Context, nums []string) ([]string, error) {
	var existing []string
	if len(nums) == 0 {
		return existing, nil
	}
	err := r.db.WithContext(ctx).
		Model(&model.Student{}).
		Where("student_num IN ?", nums).
		Pluck("student_num", &existing).Error
	return existing, err
}
