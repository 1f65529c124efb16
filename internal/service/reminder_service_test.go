package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"schoolfest/backend/config"
	"schoolfest/backend/internal/model"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg Notification) error {
	if n.err != nil {
		return n.err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

type failingClaimer struct{}

func (failingClaimer) ClaimReminder(context.Context, string, time.Duration) (bool, error) {
	return false, errStoreDown
}

func newTestReminder(lead int, claimer ReminderClaimer) (ReminderService, *mockRepos, *recordingNotifier) {
	repo, m := newMockRepository()
	n := &recordingNotifier{}
	cfg := &config.ReminderConfig{Enabled: true, LeadMinutes: lead}
	return NewReminderService(repo, n, claimer, cfg, time.UTC, zap.NewNop()), m, n
}

func seedReminderData(m *mockRepos) {
	a := m.students.add("20001", "A")
	b := m.students.add("20002", "B")
	c := m.students.add("20003", "C")
	m.recreations.add(7, "ドッジボール", 1005, 10)
	now := time.Now()
	m.participations.rows[1] = &model.Participation{ParticipationID: 1, StudentID: a.StudentID, RecreationID: 7, Status: model.StatusRegistered, RegisteredAt: now}
	m.participations.rows[2] = &model.Participation{ParticipationID: 2, StudentID: b.StudentID, RecreationID: 7, Status: model.StatusConfirmed, RegisteredAt: now}
	m.participations.rows[3] = &model.Participation{ParticipationID: 3, StudentID: c.StudentID, RecreationID: 7, Status: model.StatusCancelled, RegisteredAt: now}
}

func TestReminderRunOnce_LeadAcrossHour(t *testing.T) {
	svc, m, n := newTestReminder(30, nil)
	seedReminderData(m)

	// 10:05 开始，提前 30 分钟 => 09:35
	now := time.Date(2026, 10, 16, 9, 35, 0, 0, time.UTC)
	sent, err := svc.RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("RunOnce 失败: %v", err)
	}
	if sent != 2 {
		t.Fatalf("期望提醒 2 名有效参加者，实际 %d", sent)
	}
	for _, msg := range n.sent {
		if msg.StudentNum == "20003" {
			t.Error("已取消的参加者不应收到提醒")
		}
		if msg.StartTime != 1005 || msg.LeadMinutes != 30 {
			t.Errorf("提醒内容不符: %+v", msg)
		}
	}
}

func TestReminderRunOnce_Dedup(t *testing.T) {
	svc, m, _ := newTestReminder(10, nil)
	seedReminderData(m)
	now := time.Date(2026, 10, 16, 9, 55, 0, 0, time.UTC)

	if sent, _ := svc.RunOnce(context.Background(), now); sent != 2 {
		t.Fatalf("首次期望 2，实际 %d", sent)
	}
	if sent, _ := svc.RunOnce(context.Background(), now.Add(20*time.Second)); sent != 0 {
		t.Errorf("同日重复检查不应再次提醒，实际 %d", sent)
	}
	if sent, _ := svc.RunOnce(context.Background(), now.Add(24*time.Hour)); sent != 2 {
		t.Errorf("次日应重新提醒，实际 %d", sent)
	}
}

func TestReminderRunOnce_NotDue(t *testing.T) {
	svc, m, _ := newTestReminder(10, nil)
	seedReminderData(m)

	for _, minute := range []int{54, 56} {
		now := time.Date(2026, 10, 16, 9, minute, 0, 0, time.UTC)
		if sent, _ := svc.RunOnce(context.Background(), now); sent != 0 {
			t.Errorf("09:%d 不应提醒，实际 %d", minute, sent)
		}
	}
}

func TestReminderRunOnce_SkipsNonScheduled(t *testing.T) {
	svc, m, _ := newTestReminder(10, nil)
	seedReminderData(m)
	m.recreations.recs[7].Status = "cancelled"

	now := time.Date(2026, 10, 16, 9, 55, 0, 0, time.UTC)
	if sent, _ := svc.RunOnce(context.Background(), now); sent != 0 {
		t.Errorf("中止的レクリエーション不应提醒，实际 %d", sent)
	}
}

func TestReminderRunOnce_ClaimerErrorStillDelivers(t *testing.T) {
	svc, m, _ := newTestReminder(10, failingClaimer{})
	seedReminderData(m)

	now := time.Date(2026, 10, 16, 9, 55, 0, 0, time.UTC)
	if sent, err := svc.RunOnce(context.Background(), now); err != nil || sent != 2 {
		t.Errorf("去重失败时仍应投递，实际 sent=%d err=%v", sent, err)
	}
}

func TestReminderRunOnce_NotifierError(t *testing.T) {
	svc, m, n := newTestReminder(10, nil)
	seedReminderData(m)
	n.err = errors.New("push gateway down")

	now := time.Date(2026, 10, 16, 9, 55, 0, 0, time.UTC)
	sent, err := svc.RunOnce(context.Background(), now)
	if err != nil {
		t.Fatalf("单条投递失败不应中断检查: %v", err)
	}
	if sent != 0 {
		t.Errorf("期望成功投递 0，实际 %d", sent)
	}
}

func TestReminderStart_StopsOnCancel(t *testing.T) {
	repo, _ := newMockRepository()
	cfg := &config.ReminderConfig{Enabled: true, LeadMinutes: 10, CheckInterval: 10 * time.Millisecond}
	svc := NewReminderService(repo, &recordingNotifier{}, nil, cfg, time.UTC, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("取消后调度应退出")
	}
}

func TestMemoryClaimer(t *testing.T) {
	c := newMemoryClaimer()
	ctx := context.Background()

	if ok, _ := c.ClaimReminder(ctx, "7:20261016", time.Hour); !ok {
		t.Fatal("首次占用应成功")
	}
	if ok, _ := c.ClaimReminder(ctx, "7:20261016", time.Hour); ok {
		t.Error("重复占用应失败")
	}
	if ok, _ := c.ClaimReminder(ctx, "8:20261016", time.Hour); !ok {
		t.Error("不同 key 应独立")
	}
	if ok, _ := c.ClaimReminder(ctx, "9:20261016", -time.Second); !ok {
		t.Fatal("首次占用应成功")
	}
	if ok, _ := c.ClaimReminder(ctx, "9:20261016", time.Hour); !ok {
		t.Error("过期后应可再次占用")
	}
}
