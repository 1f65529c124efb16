package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"schoolfest/backend/config"
	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/repository"
	"schoolfest/backend/pkg/hhmm"
)

// Notification 一条参加提醒
type Notification struct {
	StudentNum   string
	StudentName  string
	RecreationID uint
	Title        string
	Location     string
	StartTime    int // HHMM
	LeadMinutes  int
}

// Notifier 提醒投递接口；推送通道由外部实现
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// ReminderClaimer 提醒去重；同一 key 只有第一次 Claim 返回 true
type ReminderClaimer interface {
	ClaimReminder(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// ── 日志投递 ──

type logNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier 仅写结构化日志的 Notifier
func NewLogNotifier(logger *zap.Logger) Notifier {
	return &logNotifier{logger: logger}
}

func (n *logNotifier) Notify(_ context.Context, msg Notification) error {
	n.logger.Info("参加提醒",
		zap.String("student_num", msg.StudentNum),
		zap.String("student_name", msg.StudentName),
		zap.Uint("recreation_id", msg.RecreationID),
		zap.String("title", msg.Title),
		zap.String("location", msg.Location),
		zap.String("start", hhmm.Format(msg.StartTime)),
		zap.Int("lead_minutes", msg.LeadMinutes),
	)
	return nil
}

// ── 进程内去重（Redis 不可用时） ──

type memoryClaimer struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func newMemoryClaimer() *memoryClaimer {
	return &memoryClaimer{seen: make(map[string]time.Time)}
}

func (m *memoryClaimer) ClaimReminder(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for k, exp := range m.seen {
		if now.After(exp) {
			delete(m.seen, k)
		}
	}
	if _, ok := m.seen[key]; ok {
		return false, nil
	}
	m.seen[key] = now.Add(ttl)
	return true, nil
}

// ═══════════════════════════════════════════════════════════
// ReminderService：开始前 N 分钟提醒
// ═══════════════════════════════════════════════════════════

const reminderClaimTTL = 24 * time.Hour

// ReminderService 参加提醒调度
type ReminderService interface {
	// RunOnce 对 now 时刻执行一次检查，返回成功投递的提醒数
	RunOnce(ctx context.Context, now time.Time) (int, error)
	// Start 按配置间隔循环检查，直到 ctx 结束
	Start(ctx context.Context)
}

type reminderService struct {
	repo     *repository.Repository
	notifier Notifier
	claimer  ReminderClaimer
	cfg      config.ReminderConfig
	loc      *time.Location
	logger   *zap.Logger
}

// NewReminderService 创建 ReminderService 实例；claimer 为 nil 时使用进程内去重
func NewReminderService(
	repo *repository.Repository,
	notifier Notifier,
	claimer ReminderClaimer,
	cfg *config.ReminderConfig,
	loc *time.Location,
	logger *zap.Logger,
) ReminderService {
	if claimer == nil {
		claimer = newMemoryClaimer()
	}
	if loc == nil {
		loc = time.Local
	}
	return &reminderService{
		repo:     repo,
		notifier: notifier,
		claimer:  claimer,
		cfg:      *cfg,
		loc:      loc,
		logger:   logger,
	}
}

// RunOnce 查找 start - lead 等于当前时刻的レクリエーション并提醒其有效参加者
func (s *reminderService) RunOnce(ctx context.Context, now time.Time) (int, error) {
	local := now.In(s.loc)
	target := hhmm.Add(hhmm.FromTime(local), s.cfg.LeadMinutes)

	recs, err := s.repo.Recreation.ListStartingAt(ctx, target, model.RecreationStatusScheduled)
	if err != nil {
		s.logger.Error("查询待提醒レクリエーション失败", zap.Int("start_time", target), zap.Error(err))
		return 0, err
	}

	sent := 0
	for _, rec := range recs {
		key := fmt.Sprintf("%d:%s", rec.RecreationID, local.Format("20060102"))
		claimed, err := s.claimer.ClaimReminder(ctx, key, reminderClaimTTL)
		if err != nil {
			// 去重存储异常时仍然投递，宁可重复不可遗漏
			s.logger.Warn("提醒去重失败", zap.String("key", key), zap.Error(err))
		} else if !claimed {
			continue
		}

		list, err := s.repo.Participation.ListByRecreation(ctx, rec.RecreationID)
		if err != nil {
			s.logger.Error("查询参加者失败", zap.Uint("recreation_id", rec.RecreationID), zap.Error(err))
			return sent, err
		}

		for _, p := range list {
			if !p.Status.IsActive() {
				continue
			}
			n := Notification{
				RecreationID: rec.RecreationID,
				Title:        rec.Title,
				Location:     rec.Location,
				StartTime:    rec.StartTime,
				LeadMinutes:  s.cfg.LeadMinutes,
			}
			if p.Student != nil {
				n.StudentNum = p.Student.StudentNum
				n.StudentName = p.Student.Name
			}
			if err := s.notifier.Notify(ctx, n); err != nil {
				s.logger.Warn("提醒投递失败",
					zap.Uint("recreation_id", rec.RecreationID),
					zap.String("student_num", n.StudentNum),
					zap.Error(err),
				)
				continue
			}
			sent++
		}
	}

	return sent, nil
}

func (s *reminderService) Start(ctx context.Context) {
	interval := s.cfg.CheckInterval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("参加提醒调度已启动",
		zap.Int("lead_minutes", s.cfg.LeadMinutes),
		zap.Duration("interval", interval),
	)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("参加提醒调度已停止")
			return
		case t := <-ticker.C:
			if n, err := s.RunOnce(ctx, t); err != nil {
				s.logger.Error("参加提醒检查失败", zap.Error(err))
			} else if n > 0 {
				s.logger.Info("参加提醒已发送", zap.Int("count", n))
			}
		}
	}
}
