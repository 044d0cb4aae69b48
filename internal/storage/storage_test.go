package storage_test

import (
	"context"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"complaintdesk/dashboard/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// unreachableRedis fails every command quickly.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

var selectSeen = regexp.QuoteMeta(`SELECT * FROM "seen_sets" WHERE profile = $1`)

func TestService_LoadSeen_FromPostgres(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := storage.NewStorageService(db, nil, quietLog())

	rows := sqlmock.NewRows([]string{"profile", "complaint_ids", "updated_at"}).
		AddRow("p1", "{12,7}", time.Now())
	mock.ExpectQuery(selectSeen).WillReturnRows(rows)

	ids, err := svc.LoadSeen(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"12", "7"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_LoadSeen_MissingProfileIsEmpty(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := storage.NewStorageService(db, nil, quietLog())

	mock.ExpectQuery(selectSeen).WillReturnRows(sqlmock.NewRows([]string{"profile", "complaint_ids", "updated_at"}))

	ids, err := svc.LoadSeen(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.NotNil(t, ids)
}

func TestService_LoadSeen_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := storage.NewStorageService(db, nil, quietLog())

	mock.ExpectQuery(selectSeen).WillReturnError(errors.New("connection reset"))

	_, err := svc.LoadSeen(context.Background(), "p1")
	assert.ErrorContains(t, err, "connection reset")
}

func TestService_LoadSeen_FallsBackWhenRedisDown(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb := unreachableRedis()
	defer rdb.Close()
	svc := storage.NewStorageService(db, rdb, quietLog())

	rows := sqlmock.NewRows([]string{"profile", "complaint_ids", "updated_at"}).
		AddRow("p1", "{3}", time.Now())
	mock.ExpectQuery(selectSeen).WillReturnRows(rows)

	ids, err := svc.LoadSeen(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, ids)
}

var mergeSeen = `(?s)INSERT INTO seen_sets .*ON CONFLICT \(profile\) DO UPDATE SET.*seen_sets\.complaint_ids \|\| excluded\.complaint_ids.*RETURNING`

func TestService_AddSeen_MergesInUpsert(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := storage.NewStorageService(db, nil, quietLog())

	rows := sqlmock.NewRows([]string{"profile", "complaint_ids", "updated_at"}).
		AddRow("p1", "{5,1,2}", time.Now())
	mock.ExpectQuery(mergeSeen).
		WithArgs("p1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	err := svc.AddSeen(context.Background(), "p1", []string{"1", "2", "1", ""})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_AddSeen_NothingToAdd(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := storage.NewStorageService(db, nil, quietLog())

	require.NoError(t, svc.AddSeen(context.Background(), "p1", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_AddSeen_DatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	svc := storage.NewStorageService(db, nil, quietLog())

	mock.ExpectQuery(mergeSeen).WillReturnError(errors.New("disk full"))

	err := svc.AddSeen(context.Background(), "p1", []string{"1"})
	assert.ErrorContains(t, err, "disk full")
}

func TestService_AddSeen_CacheDownStillSaves(t *testing.T) {
	db, mock := setupMockDB(t)
	rdb := unreachableRedis()
	defer rdb.Close()
	svc := storage.NewStorageService(db, rdb, quietLog())

	mock.ExpectQuery(mergeSeen).WillReturnRows(
		sqlmock.NewRows([]string{"profile", "complaint_ids", "updated_at"}).AddRow("p1", "{1}", time.Now()))

	require.NoError(t, svc.AddSeen(context.Background(), "p1", []string{"1"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_AddSeen_RedisOnlyDown(t *testing.T) {
	rdb := unreachableRedis()
	defer rdb.Close()
	svc := storage.NewStorageService(nil, rdb, quietLog())

	err := svc.AddSeen(context.Background(), "p1", []string{"1"})
	assert.ErrorContains(t, err, "save seen set to redis")
}

func TestMergeSeen(t *testing.T) {
	assert.Equal(t, []string{"3", "1", "2"}, storage.MergeSeen([]string{"3", "1"}, []string{"1", "2", "", "2"}))
	assert.Equal(t, []string{}, storage.MergeSeen(nil, nil))
	assert.Equal(t, []string{"1"}, storage.MergeSeen([]string{"1", "1"}, nil))
}

func TestService_NoBackend(t *testing.T) {
	svc := storage.NewStorageService(nil, nil, quietLog())

	ids, err := svc.LoadSeen(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, ids)

	assert.ErrorIs(t, svc.AddSeen(context.Background(), "p1", []string{"1"}), storage.ErrNoBackend)
}

func TestSeenKey(t *testing.T) {
	assert.Equal(t, "admin_unattended_seen:abc", storage.SeenKey("abc"))
}
