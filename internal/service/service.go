package service

import (
	"time"

	"go.uber.org/zap"

	"schoolfest/backend/config"
	"schoolfest/backend/internal/repository"
	"schoolfest/backend/pkg/jwt"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth          AuthService
	Student       StudentService
	Event         EventService
	Entry         EntryService
	Recreation    RecreationService
	Participation ParticipationService
	DownloadLog   DownloadLogService
	Export        ExportService
	Calendar      CalendarService
	Reminder      ReminderService
}

// NewService 创建 Service 聚合
// claimer 为 nil 时提醒去重退化为进程内
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	claimer ReminderClaimer,
	logger *zap.Logger,
) *Service {
	loc := loadLocation(cfg.Server.Timezone, logger)

	return &Service{
		Auth:          NewAuthService(&cfg.Auth, jwtMgr, logger),
		Student:       NewStudentService(repo, logger),
		Event:         NewEventService(repo, logger),
		Entry:         NewEntryService(repo, logger),
		Recreation:    NewRecreationService(repo, logger),
		Participation: NewParticipationService(repo, loc, logger),
		DownloadLog:   NewDownloadLogService(repo, logger),
		Export:        NewExportService(repo, logger),
		Calendar:      NewCalendarService(repo, loc, logger),
		Reminder:      NewReminderService(repo, NewLogNotifier(logger), claimer, &cfg.Reminder, loc, logger),
	}
}

func loadLocation(name string, logger *zap.Logger) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		logger.Warn("加载时区失败，使用本地时区", zap.String("timezone", name), zap.Error(err))
		return time.Local
	}
	return loc
}
