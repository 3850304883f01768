package repository

import (
	"errors"
	"testing"

	"moments-backend/internal/moment/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestParseStrategies(t *testing.T) {
	strategies := ParseStrategies([]string{"rpc", "bogus", "insert", "raw"})
	assert.Equal(t, []NotificationInsertStrategy{StrategyRPC, StrategyInsert, StrategyRaw}, strategies)
}

func TestInsertFallsBackWhenRPCFails(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db, []NotificationInsertStrategy{StrategyRPC, StrategyInsert})

	// The stored procedure is rejected, then the direct insert succeeds
	mock.ExpectExec(`SELECT create_notification`).
		WillReturnError(errors.New("function create_notification does not exist"))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Insert(&domain.Notification{
		Recipient: "Anna@X.com ",
		Sender:    "owner@x.com",
		Message:   "owner@x.com invited you to collaborate",
	})

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertReturnsLastErrorWhenAllStrategiesFail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db, []NotificationInsertStrategy{StrategyRPC, StrategyRaw})

	mock.ExpectExec(`SELECT create_notification`).
		WillReturnError(errors.New("rpc rejected"))
	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnError(errors.New("raw rejected"))

	err := repo.Insert(&domain.Notification{Recipient: "anna@x.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "raw rejected")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByRecipientNormalizesEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db, nil)

	rows := sqlmock.NewRows([]string{"id", "recipient", "sender", "message", "read"}).
		AddRow("n1", "anna@x.com", "owner@x.com", "hello", false)
	mock.ExpectQuery(`SELECT .* FROM "notifications" WHERE recipient = \$1`).
		WithArgs("anna@x.com").
		WillReturnRows(rows)

	notifications, err := repo.FindByRecipient(" Anna@X.com")

	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "n1", notifications[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkRead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db, nil)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "notifications" SET "read"`).
		WithArgs(true, "n1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkRead("n1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
