package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/repository"
	pkgerrors "schoolfest/backend/pkg/errors"
	"schoolfest/backend/pkg/hhmm"
)

// ── 参加模块业务错误 ──

var (
	ErrParticipationNotFound = pkgerrors.New(pkgerrors.KindParticipationNotFound, "参加记录不存在")
	ErrAlreadyRegistered     = pkgerrors.New(pkgerrors.KindAlreadyRegistered, "该生徒已报名此レクリエーション")
	ErrRecreationFull        = pkgerrors.New(pkgerrors.KindRecreationFull, "レクリエーション已满员")
	ErrInvalidTimeFilter     = pkgerrors.New(pkgerrors.KindValidation, "时间过滤条件格式无效")
	ErrInvalidStatusFilter   = pkgerrors.New(pkgerrors.KindValidation, "参加状态过滤条件无效")
)

// ParticipationService 参加登録业务接口
//
// Register 在单个事务内按固定顺序检查：生徒 → レクリエーション（加锁）→ 重复 → 定員，
// 全部通过后写入或恢复参加记录。容量检查与写入处于同一把行锁之下。
type ParticipationService interface {
	Register(ctx context.Context, req *dto.CreateParticipationRequest) (*dto.ParticipationResponse, error)
	Cancel(ctx context.Context, id uint) (*dto.ParticipationResponse, error)
	Delete(ctx context.Context, id uint) error
	ListByStudent(ctx context.Context, studentID uint, req *dto.ParticipationListRequest) ([]dto.ParticipationResponse, error)
	ListByRecreation(ctx context.Context, recreationID uint) ([]dto.ParticipationResponse, error)
}

type participationService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewParticipationService 创建 ParticipationService 实例
// loc 用于将 RFC3339 时间过滤条件换算为当地 HHMM
func NewParticipationService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) ParticipationService {
	if loc == nil {
		loc = time.Local
	}
	return &participationService{repo: repo, loc: loc, logger: logger}
}

// ────────────────────── Register ──────────────────────

func (s *participationService) Register(ctx context.Context, req *dto.CreateParticipationRequest) (*dto.ParticipationResponse, error) {
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

	p, err := s.register(ctx, s.repo.WithTx(tx), req)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	s.logger.Info("参加登録成功",
		zap.Uint("student_id", p.StudentID),
		zap.Uint("recreation_id", p.RecreationID),
		zap.Uint("participation_id", p.ParticipationID),
	)
	return toParticipationResponse(p), nil
}

// register 事务内的检查与写入，txRepo 须绑定事务连接
func (s *participationService) register(ctx context.Context, txRepo *repository.Repository, req *dto.CreateParticipationRequest) (*model.Participation, error) {
	// 1. 生徒存在
	student, err := txRepo.Student.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询生徒失败", zap.Uint("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}

	// 2. レクリエーション存在并加锁，直到事务结束
	rec, err := txRepo.Recreation.LockByID(ctx, req.RecreationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecreationNotFound
		}
		s.logger.Error("锁定レクリエーション失败", zap.Uint("recreation_id", req.RecreationID), zap.Error(err))
		return nil, err
	}

	// 3. 重复报名
	existing, err := txRepo.Participation.GetByPair(ctx, student.StudentID, rec.RecreationID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询参加记录失败", zap.Error(err))
		return nil, err
	}
	if existing != nil && existing.Status.IsActive() {
		return nil, ErrAlreadyRegistered
	}

	// 4. 定員
	active, err := txRepo.Participation.CountActive(ctx, rec.RecreationID)
	if err != nil {
		s.logger.Error("统计参加人数失败", zap.Uint("recreation_id", rec.RecreationID), zap.Error(err))
		return nil, err
	}
	if active >= int64(rec.MaxParticipants) {
		return nil, ErrRecreationFull
	}

	// 5. 写入；已取消的记录直接恢复，保持每对 (生徒, レクリエーション) 仅一行
	now := time.Now()
	var p *model.Participation
	if existing != nil {
		existing.Status = model.StatusRegistered
		existing.RegisteredAt = now
		if err := txRepo.Participation.Update(ctx, existing); err != nil {
			s.logger.Error("恢复参加记录失败", zap.Uint("participation_id", existing.ParticipationID), zap.Error(err))
			return nil, err
		}
		p = existing
	} else {
		p = &model.Participation{
			StudentID:    student.StudentID,
			RecreationID: rec.RecreationID,
			Status:       model.StatusRegistered,
			RegisteredAt: now,
		}
		if err := txRepo.Participation.Create(ctx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrAlreadyRegistered
			}
			s.logger.Error("创建参加记录失败", zap.Error(err))
			return nil, err
		}
	}

	p.Student = student
	p.Recreation = rec
	return p, nil
}

// ────────────────────── Cancel ──────────────────────

// Cancel 已取消的记录再次取消视为成功
func (s *participationService) Cancel(ctx context.Context, id uint) (*dto.ParticipationResponse, error) {
	p, err := s.repo.Participation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParticipationNotFound
		}
		s.logger.Error("查询参加记录失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	if p.Status == model.StatusCancelled {
		return toParticipationResponse(p), nil
	}

	p.Status = model.StatusCancelled
	if err := s.repo.Participation.Update(ctx, p); err != nil {
		s.logger.Error("取消参加失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("参加已取消", zap.Uint("participation_id", id))
	return toParticipationResponse(p), nil
}

// ────────────────────── Delete ──────────────────────

func (s *participationService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Participation.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrParticipationNotFound
		}
		s.logger.Error("查询参加记录失败", zap.Uint("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Participation.Delete(ctx, id); err != nil {
		s.logger.Error("删除参加记录失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ListByStudent ──────────────────────

func (s *participationService) ListByStudent(ctx context.Context, studentID uint, req *dto.ParticipationListRequest) ([]dto.ParticipationResponse, error) {
	filter, err := s.buildFilter(req)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询生徒失败", zap.Uint("student_id", studentID), zap.Error(err))
		return nil, err
	}

	list, err := s.repo.Participation.ListByStudent(ctx, studentID, filter)
	if err != nil {
		s.logger.Error("查询生徒参加列表失败", zap.Uint("student_id", studentID), zap.Error(err))
		return nil, err
	}

	return toParticipationResponses(list), nil
}

// ────────────────────── ListByRecreation ──────────────────────

func (s *participationService) ListByRecreation(ctx context.Context, recreationID uint) ([]dto.ParticipationResponse, error) {
	if _, err := s.repo.Recreation.GetByID(ctx, recreationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecreationNotFound
		}
		s.logger.Error("查询レクリエーション失败", zap.Uint("recreation_id", recreationID), zap.Error(err))
		return nil, err
	}

	list, err := s.repo.Participation.ListByRecreation(ctx, recreationID)
	if err != nil {
		s.logger.Error("查询レクリエーション参加者失败", zap.Uint("recreation_id", recreationID), zap.Error(err))
		return nil, err
	}

	return toParticipationResponses(list), nil
}

// ── 内部辅助方法 ──

func (s *participationService) buildFilter(req *dto.ParticipationListRequest) (repository.ParticipationFilter, error) {
	var filter repository.ParticipationFilter
	if req == nil {
		return filter, nil
	}

	if req.Status != "" {
		st, err := model.ParseParticipationStatus(req.Status)
		if err != nil {
			return filter, ErrInvalidStatusFilter
		}
		filter.Status = &st
	}
	if req.From != "" {
		m, err := s.boundMinutes(req.From)
		if err != nil {
			return filter, ErrInvalidTimeFilter
		}
		filter.FromMinutes = &m
	}
	if req.To != "" {
		m, err := s.boundMinutes(req.To)
		if err != nil {
			return filter, ErrInvalidTimeFilter
		}
		filter.ToMinutes = &m
	}
	return filter, nil
}

// boundMinutes 将 "HH:MM" / "HHMM" / RFC3339 转为当日分钟数
func (s *participationService) boundMinutes(raw string) (int, error) {
	if t, err := hhmm.Parse(raw); err == nil {
		return hhmm.ToMinutes(t), nil
	}
	tm, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 0, err
	}
	return hhmm.ToMinutes(hhmm.FromTime(tm.In(s.loc))), nil
}

const timeLayout = time.RFC3339

func toParticipationResponse(p *model.Participation) *dto.ParticipationResponse {
	resp := &dto.ParticipationResponse{
		ID:              p.ParticipationID,
		StudentID:       p.StudentID,
		RecreationID:    p.RecreationID,
		Status:          string(p.Status),
		IsParticipating: p.Status.IsActive(),
		RegisteredAt:    p.RegisteredAt.Format(timeLayout),
		CreatedAt:       p.CreatedAt.Format(timeLayout),
		UpdatedAt:       p.UpdatedAt.Format(timeLayout),
	}
	if p.Student != nil {
		resp.Student = &dto.StudentBrief{
			ID:         p.Student.StudentID,
			StudentNum: p.Student.StudentNum,
			ClassCode:  p.Student.ClassCode,
			Name:       p.Student.Name,
		}
	}
	if p.Recreation != nil {
		resp.Recreation = &dto.RecreationBrief{
			ID:        p.Recreation.RecreationID,
			Title:     p.Recreation.Title,
			Location:  p.Recreation.Location,
			StartTime: p.Recreation.StartTime,
			EndTime:   p.Recreation.EndTime,
			Status:    p.Recreation.Status,
		}
	}
	return resp
}

func toParticipationResponses(list []model.Participation) []dto.ParticipationResponse {
	result := make([]dto.ParticipationResponse, 0, len(list))
	for i := range list {
		result = append(result, *toParticipationResponse(&list[i]))
	}
	return result
}
