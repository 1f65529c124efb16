package service

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schoolfest/backend/config"
	"schoolfest/backend/internal/dto"
	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/repository"
	"schoolfest/backend/pkg/database"
	pkgerrors "schoolfest/backend/pkg/errors"
)

// newSQLiteRepository 基于临时 SQLite 文件的真实 Repository
func newSQLiteRepository(t *testing.T) *repository.Repository {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "service.db"),
	}
	db, err := database.NewDB(cfg, "error", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewRepository(db)
}

func TestRegister_ConcurrentNeverExceedsCapacity(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()
	svc := NewParticipationService(repo, time.UTC, zap.NewNop())

	const capacity = 5
	const extra = 5

	rec := &model.Recreation{Title: "リレー", Location: "校庭", StartTime: 1300, EndTime: 1400, MaxParticipants: capacity}
	require.NoError(t, repo.Recreation.Create(ctx, rec))

	students := make([]model.Student, capacity+extra)
	for i := range students {
		students[i] = model.Student{
			StudentNum:    fmt.Sprintf("3%04d", i+1),
			ClassCode:     "3-B",
			AttendanceNum: i + 1,
			Name:          fmt.Sprintf("生徒%d", i+1),
		}
	}
	require.NoError(t, repo.Student.CreateBatch(ctx, students))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		full    int
		others  []error
	)
	for i := range students {
		wg.Add(1)
		go func(studentID uint) {
			defer wg.Done()
			_, err := svc.Register(ctx, &dto.CreateParticipationRequest{StudentID: studentID, RecreationID: rec.RecreationID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case pkgerrors.KindOf(err) == pkgerrors.KindRecreationFull:
				full++
			default:
				others = append(others, err)
			}
		}(students[i].StudentID)
	}
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, capacity, success)
	assert.Equal(t, extra, full)

	active, err := repo.Participation.CountActive(ctx, rec.RecreationID)
	require.NoError(t, err)
	assert.EqualValues(t, capacity, active)
}

func TestRegister_ConcurrentSamePairSingleRow(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()
	svc := NewParticipationService(repo, time.UTC, zap.NewNop())

	st := &model.Student{StudentNum: "20001", ClassCode: "2-A", AttendanceNum: 1, Name: "山田"}
	require.NoError(t, repo.Student.Create(ctx, st))
	rec := &model.Recreation{Title: "綱引き", Location: "校庭", StartTime: 1005, EndTime: 1100, MaxParticipants: 30}
	require.NoError(t, repo.Recreation.Create(ctx, rec))

	var wg sync.WaitGroup
	results := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Register(ctx, &dto.CreateParticipationRequest{StudentID: st.StudentID, RecreationID: rec.RecreationID})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		assert.Equal(t, pkgerrors.KindAlreadyRegistered, pkgerrors.KindOf(err))
	}
	assert.Equal(t, 1, ok)

	list, err := repo.Participation.ListByRecreation(ctx, rec.RecreationID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRegister_CancelThenReRegisterOnStore(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()
	svc := NewParticipationService(repo, time.UTC, zap.NewNop())

	a := &model.Student{StudentNum: "20001", ClassCode: "2-A", AttendanceNum: 1, Name: "A"}
	b := &model.Student{StudentNum: "20002", ClassCode: "2-A", AttendanceNum: 2, Name: "B"}
	require.NoError(t, repo.Student.Create(ctx, a))
	require.NoError(t, repo.Student.Create(ctx, b))
	rec := &model.Recreation{Title: "ドッジボール", Location: "体育館", StartTime: 1005, EndTime: 1055, MaxParticipants: 1}
	require.NoError(t, repo.Recreation.Create(ctx, rec))

	first, err := svc.Register(ctx, &dto.CreateParticipationRequest{StudentID: a.StudentID, RecreationID: rec.RecreationID})
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.CreateParticipationRequest{StudentID: b.StudentID, RecreationID: rec.RecreationID})
	assert.ErrorIs(t, err, ErrRecreationFull)

	_, err = svc.Cancel(ctx, first.ID)
	require.NoError(t, err)

	_, err = svc.Register(ctx, &dto.CreateParticipationRequest{StudentID: b.StudentID, RecreationID: rec.RecreationID})
	require.NoError(t, err)

	// A 再次报名时名额已被 B 占用
	_, err = svc.Register(ctx, &dto.CreateParticipationRequest{StudentID: a.StudentID, RecreationID: rec.RecreationID})
	assert.ErrorIs(t, err, ErrRecreationFull)

	list, err := svc.ListByRecreation(ctx, rec.RecreationID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, string(model.StatusCancelled), list[0].Status)
	assert.Equal(t, string(model.StatusRegistered), list[1].Status)
}

func TestCancelAndRevive_ResponseMatchesStoredUpdatedAt(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()
	svc := NewParticipationService(repo, time.UTC, zap.NewNop())

	st := &model.Student{StudentNum: "20001", ClassCode: "2-A", AttendanceNum: 1, Name: "A"}
	require.NoError(t, repo.Student.Create(ctx, st))
	rec := &model.Recreation{Title: "大縄跳び", Location: "体育館", StartTime: 1100, EndTime: 1130, MaxParticipants: 3}
	require.NoError(t, repo.Recreation.Create(ctx, rec))

	// 让 updated_at 跨过整秒，响应若沿用旧值会与库中不一致
	sleepPastSecond := func() { time.Sleep(time.Until(time.Now().Truncate(time.Second).Add(time.Second)) + 10*time.Millisecond) }
	assertFresh := func(resp *dto.ParticipationResponse) {
		t.Helper()
		stored, err := repo.Participation.GetByID(ctx, resp.ID)
		require.NoError(t, err)
		got, err := time.Parse(timeLayout, resp.UpdatedAt)
		require.NoError(t, err)
		assert.Equal(t, stored.UpdatedAt.Unix(), got.Unix())
	}

	created, err := svc.Register(ctx, &dto.CreateParticipationRequest{StudentID: st.StudentID, RecreationID: rec.RecreationID})
	require.NoError(t, err)

	sleepPastSecond()
	cancelled, err := svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assertFresh(cancelled)

	sleepPastSecond()
	revived, err := svc.Register(ctx, &dto.CreateParticipationRequest{StudentID: st.StudentID, RecreationID: rec.RecreationID})
	require.NoError(t, err)
	assert.Equal(t, created.ID, revived.ID)
	assertFresh(revived)
}

func TestRecreationUpdate_CapacityBelowActiveOnStore(t *testing.T) {
	repo := newSQLiteRepository(t)
	ctx := context.Background()
	psvc := NewParticipationService(repo, time.UTC, zap.NewNop())
	rsvc := NewRecreationService(repo, zap.NewNop())

	rec := &model.Recreation{Title: "バスケ", Location: "体育館", StartTime: 1300, EndTime: 1400, MaxParticipants: 3}
	require.NoError(t, repo.Recreation.Create(ctx, rec))
	for i := 1; i <= 2; i++ {
		st := &model.Student{StudentNum: fmt.Sprintf("2000%d", i), ClassCode: "2-A", AttendanceNum: i, Name: "X"}
		require.NoError(t, repo.Student.Create(ctx, st))
		_, err := psvc.Register(ctx, &dto.CreateParticipationRequest{StudentID: st.StudentID, RecreationID: rec.RecreationID})
		require.NoError(t, err)
	}

	one := 1
	_, err := rsvc.Update(ctx, rec.RecreationID, &dto.UpdateRecreationRequest{MaxParticipants: &one})
	assert.ErrorIs(t, err, ErrCapacityBelowActive)

	two := 2
	resp, err := rsvc.Update(ctx, rec.RecreationID, &dto.UpdateRecreationRequest{MaxParticipants: &two})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.MaxParticipants)
	assert.EqualValues(t, 2, resp.ActiveCount)
}
