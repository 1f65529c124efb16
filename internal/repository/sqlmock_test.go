package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"schoolfest/backend/internal/model"
	"schoolfest/backend/internal/repository"
)

// newMockRepo 基于 sqlmock 的 PostgreSQL 方言仓储，用于模拟存储层故障
func newMockRepo(t *testing.T) (*repository.Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return repository.NewRepository(db), mock
}

func TestDownloadLogRepo_CreateStoreUnavailable(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "download_logs"`)).
		WillReturnError(errors.New("connection refused"))

	err := repo.DownloadLog.Create(context.Background(), &model.DownloadLog{
		StudentNum: "20001", Timestamp: time.Now(), FunctionName: model.FuncStudentInfo, Success: model.Success,
	})
	assert.EqualError(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDownloadLogRepo_StatsQuery(t *testing.T) {
	repo, mock := newMockRepo(t)
	rows := sqlmock.NewRows([]string{"unique_students", "success_count", "failure_count", "entry_fetched_students"}).
		AddRow(12, 40, 3, 7)
	mock.ExpectQuery(regexp.QuoteMeta("THEN student_num END) AS unique_students")).
		WithArgs("成功", "失敗", "出場情報取得", "成功").
		WillReturnRows(rows)

	stats, err := repo.DownloadLog.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.UniqueStudents)
	assert.Equal(t, int64(7), stats.EntryFetchedStudents)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipationRepo_CountActiveStoreError(t *testing.T) {
	repo, mock := newMockRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "participations"`)).
		WillReturnError(errors.New("timeout"))

	_, err := repo.Participation.CountActive(context.Background(), 7)
	assert.EqualError(t, err, "timeout")
	assert.NoError(t, mock.ExpectationsWereMet())
}
