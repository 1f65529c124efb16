package handler

import (
	"go.uber.org/zap"

	"schoolfest/backend/internal/service"
	"schoolfest/backend/pkg/i18n"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth          *AuthHandler
	Student       *StudentHandler
	Event         *EventHandler
	Entry         *EntryHandler
	Recreation    *RecreationHandler
	Participation *ParticipationHandler
	DownloadLog   *DownloadLogHandler
	Export        *ExportHandler
	Calendar      *CalendarHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, tr *i18n.Translator, logger *zap.Logger) *Handler {
	errs := newErrorRenderer(tr, logger)
	return &Handler{
		Auth:          NewAuthHandler(svc.Auth, errs),
		Student:       NewStudentHandler(svc.Student, svc.DownloadLog, errs, logger),
		Event:         NewEventHandler(svc.Event, svc.DownloadLog, errs),
		Entry:         NewEntryHandler(svc.Entry, svc.DownloadLog, errs),
		Recreation:    NewRecreationHandler(svc.Recreation, errs),
		Participation: NewParticipationHandler(svc.Participation, svc.Student, svc.DownloadLog, errs),
		DownloadLog:   NewDownloadLogHandler(svc.DownloadLog, errs),
		Export:        NewExportHandler(svc.Export, errs),
		Calendar:      NewCalendarHandler(svc.Calendar, errs),
	}
}
