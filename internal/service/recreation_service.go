package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/repository"
	pkgerrors "schoolfest/backend/pkg/errors"
	"schoolfest/backend/pkg/hhmm"
)

// ── レクリエーション模块业务错误 ──

var (
	ErrRecreationNotFound  = pkgerrors.New(pkgerrors.KindRecreationNotFound, "レクリエーション不存在")
	ErrCapacityBelowActive = pkgerrors.New(pkgerrors.KindCapacityBelowActive, "定員不能低于当前参加人数")
	ErrInvalidCapacity     = pkgerrors.New(pkgerrors.KindValidation, "定員不能为负数")
)

// RecreationService レクリエーション业务接口
type RecreationService interface {
	Create(ctx context.Context, req *dto.CreateRecreationRequest) (*dto.RecreationResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.RecreationResponse, error)
	List(ctx context.Context, req *dto.RecreationListRequest) ([]dto.RecreationResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateRecreationRequest) (*dto.RecreationResponse, error)
	Delete(ctx context.Context, id uint) error
}

type recreationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewRecreationService 创建 RecreationService 实例
func NewRecreationService(repo *repository.Repository, logger *zap.Logger) RecreationService {
	return &recreationService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *recreationService) Create(ctx context.Context, req *dto.CreateRecreationRequest) (*dto.RecreationResponse, error) {
	if !validTimeRange(req.StartTime, req.EndTime) {
		return nil, ErrInvalidTimeRange
	}
	if req.MaxParticipants < 0 {
		return nil, ErrInvalidCapacity
	}

	rec := &model.Recreation{
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		MaxParticipants: req.MaxParticipants,
		Status:          req.Status,
	}
	if rec.Status == "" {
		rec.Status = model.RecreationStatusScheduled
	}

	if err := s.repo.Recreation.Create(ctx, rec); err != nil {
		s.logger.Error("创建レクリエーション失败", zap.Error(err))
		return nil, err
	}
	return toRecreationResponse(rec, 0), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *recreationService) GetByID(ctx context.Context, id uint) (*dto.RecreationResponse, error) {
	rec, err := s.repo.Recreation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecreationNotFound
		}
		s.logger.Error("查询レクリエーション失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	active, err := s.repo.Participation.CountActive(ctx, id)
	if err != nil {
		s.logger.Error("统计参加人数失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return toRecreationResponse(rec, active), nil
}

// ────────────────────── List ──────────────────────

func (s *recreationService) List(ctx context.Context, req *dto.RecreationListRequest) ([]dto.RecreationResponse, error) {
	recs, err := s.repo.Recreation.List(ctx, req.Status)
	if err != nil {
		s.logger.Error("列出レクリエーション失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.RecreationResponse, 0, len(recs))
	for i := range recs {
		active, err := s.repo.Participation.CountActive(ctx, recs[i].RecreationID)
		if err != nil {
			s.logger.Error("统计参加人数失败", zap.Uint("id", recs[i].RecreationID), zap.Error(err))
			return nil, err
		}
		result = append(result, *toRecreationResponse(&recs[i], active))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

// Update 锁定行后修改；调整定員时与参加登録互斥，避免定員被压到当前人数以下
func (s *recreationService) Update(ctx context.Context, id uint, req *dto.UpdateRecreationRequest) (*dto.RecreationResponse, error) {
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
	txRepo := s.repo.WithTx(tx)

	rollback := func() {
		if tx != nil {
			tx.Rollback()
		}
	}

	rec, err := txRepo.Recreation.LockByID(ctx, id)
	if err != nil {
		rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecreationNotFound
		}
		s.logger.Error("锁定レクリエーション失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	if req.Title != nil {
		rec.Title = *req.Title
	}
	if req.Description != nil {
		rec.Description = req.Description
	}
	if req.Location != nil {
		rec.Location = *req.Location
	}
	if req.StartTime != nil {
		rec.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		rec.EndTime = *req.EndTime
	}
	if req.Status != nil {
		rec.Status = *req.Status
	}
	if !validTimeRange(rec.StartTime, rec.EndTime) {
		rollback()
		return nil, ErrInvalidTimeRange
	}

	active, err := txRepo.Participation.CountActive(ctx, id)
	if err != nil {
		rollback()
		s.logger.Error("统计参加人数失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	if req.MaxParticipants != nil {
		if *req.MaxParticipants < 0 {
			rollback()
			return nil, ErrInvalidCapacity
		}
		if int64(*req.MaxParticipants) < active {
			rollback()
			return nil, ErrCapacityBelowActive
		}
		rec.MaxParticipants = *req.MaxParticipants
	}

	if err := txRepo.Recreation.Update(ctx, rec); err != nil {
		rollback()
		s.logger.Error("更新レクリエーション失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}
	return toRecreationResponse(rec, active), nil
}

// ────────────────────── Delete ──────────────────────

func (s *recreationService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Recreation.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRecreationNotFound
		}
		s.logger.Error("查询レクリエーション失败", zap.Uint("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Recreation.Delete(ctx, id); err != nil {
		s.logger.Error("删除レクリエーション失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toRecreationResponse(r *model.Recreation, active int64) *dto.RecreationResponse {
	return &dto.RecreationResponse{
		ID:              r.RecreationID,
		Title:           r.Title,
		Description:     r.Description,
		Location:        r.Location,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		StartLabel:      hhmm.Format(r.StartTime),
		EndLabel:        hhmm.Format(r.EndTime),
		MaxParticipants: r.MaxParticipants,
		ActiveCount:     active,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt.Format(timeLayout),
		UpdatedAt:       r.UpdatedAt.Format(timeLayout),
	}
}
