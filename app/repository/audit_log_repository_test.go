package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/YuChenWang/ShopPay/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogAppend(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditLogRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `payment_audit_logs`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	orderID := uint(42)
	err := repo.Append(&models.PaymentAuditLog{
		OrderID:       &orderID,
		Gateway:       "ecpay",
		EventKind:     models.AUDIT_RECEIVED,
		GatewayTxnRef: "2308101012001234",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUnresolvedProcessingErrors(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditLogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "gateway", "event_kind", "detail", "created_at"}).
		AddRow(3, "ecpay", models.AUDIT_PROCESSING_ERROR, "deadlock", time.Now())
	mock.ExpectQuery("SELECT \\* FROM `payment_audit_logs`").
		WillReturnRows(rows)

	entries, err := repo.ListUnresolvedProcessingErrors(100)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.AUDIT_PROCESSING_ERROR, entries[0].EventKind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkResolved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditLogRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `payment_audit_logs` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.MarkResolved(3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddToDailyStatsUpsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStatsRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `payment_daily_stats`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.AddToDailyStats(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), "ecpay", "processed", 3)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
