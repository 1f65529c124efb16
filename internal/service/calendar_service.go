package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"schoolfest/backend/internal/repository"
	"schoolfest/backend/pkg/hhmm"
)

// CalendarService 生徒参加日程导出（iCalendar）
type CalendarService interface {
	// StudentCalendar 生成指定日期当天该生徒有效参加的 .ics 内容
	StudentCalendar(ctx context.Context, studentID uint, day time.Time) (string, error)
}

type calendarService struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, loc *time.Location, logger *zap.Logger) CalendarService {
	if loc == nil {
		loc = time.Local
	}
	return &calendarService{repo: repo, loc: loc, logger: logger}
}

func (s *calendarService) StudentCalendar(ctx context.Context, studentID uint, day time.Time) (string, error) {
	student, err := s.repo.Student.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrStudentNotFound
		}
		s.logger.Error("查询生徒失败", zap.Uint("student_id", studentID), zap.Error(err))
		return "", err
	}

	list, err := s.repo.Participation.ListByStudent(ctx, studentID, repository.ParticipationFilter{})
	if err != nil {
		s.logger.Error("查询生徒参加列表失败", zap.Uint("student_id", studentID), zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//schoolfest//recreation//JA")
	cal.SetXWRCalName(fmt.Sprintf("%s のレクリエーション", student.Name))
	cal.SetXWRTimezone(s.loc.String())

	day = day.In(s.loc)
	stamp := time.Now().UTC()
	for _, p := range list {
		if !p.Status.IsActive() || p.Recreation == nil {
			continue
		}
		rec := p.Recreation

		// UID 由参加记录派生，重复导出时日历端可去重
		uid := uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("schoolfest:participation:%d", p.ParticipationID)))
		ev := cal.AddEvent(uid.String() + "@schoolfest")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(atHHMM(day, rec.StartTime, s.loc))
		ev.SetEndAt(atHHMM(day, rec.EndTime, s.loc))
		ev.SetSummary(rec.Title)
		ev.SetLocation(rec.Location)
		if rec.Description != nil {
			ev.SetDescription(*rec.Description)
		}
	}

	return cal.Serialize(), nil
}

// atHHMM 将 HHMM 落到指定日期
func atHHMM(day time.Time, t int, loc *time.Location) time.Time {
	m := hhmm.ToMinutes(t)
	return time.Date(day.Year(), day.Month(), day.Day(), m/60, m%60, 0, 0, loc)
}
