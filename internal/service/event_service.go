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

// ── イベント・出場模块业务错误 ──

var (
	ErrEventNotFound    = pkgerrors.New(pkgerrors.KindEventNotFound, "イベント不存在")
	ErrEntryNotFound    = pkgerrors.New(pkgerrors.KindEntryNotFound, "出場登録不存在")
	ErrAlreadyEntered   = pkgerrors.New(pkgerrors.KindAlreadyEntered, "该生徒已登録此イベント")
	ErrInvalidTimeRange = pkgerrors.New(pkgerrors.KindValidation, "时间须为有效的 HHMM 且结束晚于开始")
)

// validTimeRange 开始与结束均为合法 HHMM，且结束晚于开始（按分钟比较）
func validTimeRange(start, end int) bool {
	if !hhmm.Valid(start) || !hhmm.Valid(end) {
		return false
	}
	return hhmm.ToMinutes(end) > hhmm.ToMinutes(start)
}

// EventService イベント业务接口
type EventService interface {
	Create(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.EventResponse, error)
	List(ctx context.Context) ([]dto.EventResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateEventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, id uint) error
}

type eventService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEventService 创建 EventService 实例
func NewEventService(repo *repository.Repository, logger *zap.Logger) EventService {
	return &eventService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *eventService) Create(ctx context.Context, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	if !validTimeRange(req.StartTime, req.EndTime) {
		return nil, ErrInvalidTimeRange
	}

	event := &model.Event{
		Name:        req.Name,
		Description: req.Description,
		Place:       req.Place,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.logger.Error("创建イベント失败", zap.Error(err))
		return nil, err
	}
	return toEventResponse(event), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *eventService) GetByID(ctx context.Context, id uint) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询イベント失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return toEventResponse(event), nil
}

// ────────────────────── List ──────────────────────

func (s *eventService) List(ctx context.Context) ([]dto.EventResponse, error) {
	events, err := s.repo.Event.List(ctx)
	if err != nil {
		s.logger.Error("列出イベント失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		result = append(result, *toEventResponse(&events[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *eventService) Update(ctx context.Context, id uint, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询イベント失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Place != nil {
		event.Place = *req.Place
	}
	if req.StartTime != nil {
		event.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = *req.EndTime
	}
	if !validTimeRange(event.StartTime, event.EndTime) {
		return nil, ErrInvalidTimeRange
	}

	if err := s.repo.Event.Update(ctx, event); err != nil {
		s.logger.Error("更新イベント失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return toEventResponse(event), nil
}

// ────────────────────── Delete ──────────────────────

func (s *eventService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Event.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEventNotFound
		}
		s.logger.Error("查询イベント失败", zap.Uint("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Event.Delete(ctx, id); err != nil {
		s.logger.Error("删除イベント失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toEventResponse(e *model.Event) *dto.EventResponse {
	return &dto.EventResponse{
		ID:          e.EventID,
		Name:        e.Name,
		Description: e.Description,
		Place:       e.Place,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		CreatedAt:   e.CreatedAt.Format(timeLayout),
		UpdatedAt:   e.UpdatedAt.Format(timeLayout),
	}
}

// ═══════════════════════════════════════════════════════════
// EntryService — 出場登録
// ═══════════════════════════════════════════════════════════

// EntryService 出場登録业务接口
type EntryService interface {
	Create(ctx context.Context, req *dto.CreateEntryRequest) (*dto.EntryResponse, error)
	Delete(ctx context.Context, id uint) error
	ListByStudentNum(ctx context.Context, studentNum string) ([]dto.EntryResponse, error)
}

type entryService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEntryService 创建 EntryService 实例
func NewEntryService(repo *repository.Repository, logger *zap.Logger) EntryService {
	return &entryService{repo: repo, logger: logger}
}

func (s *entryService) Create(ctx context.Context, req *dto.CreateEntryRequest) (*dto.EntryResponse, error) {
	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询生徒失败", zap.Uint("student_id", req.StudentID), zap.Error(err))
		return nil, err
	}

	event, err := s.repo.Event.GetByID(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询イベント失败", zap.Uint("event_id", req.EventID), zap.Error(err))
		return nil, err
	}

	if _, err := s.repo.Entry.GetByPair(ctx, req.StudentID, req.EventID); err == nil {
		return nil, ErrAlreadyEntered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询出場登録失败", zap.Error(err))
		return nil, err
	}

	entry := &model.Entry{StudentID: req.StudentID, EventID: req.EventID, Role: req.Role}
	if err := s.repo.Entry.Create(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEntered
		}
		s.logger.Error("创建出場登録失败", zap.Error(err))
		return nil, err
	}
	entry.Event = event
	return toEntryResponse(entry), nil
}

func (s *entryService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.Entry.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEntryNotFound
		}
		s.logger.Error("查询出場登録失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if err := s.repo.Entry.Delete(ctx, id); err != nil {
		s.logger.Error("删除出場登録失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ListByStudentNum 按学籍番号查询出場情報
func (s *entryService) ListByStudentNum(ctx context.Context, studentNum string) ([]dto.EntryResponse, error) {
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

	entries, err := s.repo.Entry.ListByStudent(ctx, student.StudentID)
	if err != nil {
		s.logger.Error("查询出場情報失败", zap.String("student_num", studentNum), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EntryResponse, 0, len(entries))
	for i := range entries {
		result = append(result, *toEntryResponse(&entries[i]))
	}
	return result, nil
}

func toEntryResponse(e *model.Entry) *dto.EntryResponse {
	resp := &dto.EntryResponse{
		ID:        e.EntryID,
		StudentID: e.StudentID,
		EventID:   e.EventID,
		Role:      e.Role,
		CreatedAt: e.CreatedAt.Format(timeLayout),
	}
	if e.Event != nil {
		resp.Event = toEventResponse(e.Event)
	}
	return resp
}
