package payment

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/YuChenWang/ShopPay/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSettlerMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func lockedOrderRow(status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "uuid", "trade_no", "amount_twd", "payment_status"}).
		AddRow(42, "8a6e0804-2bd0-4672-b79d-d97027f9071a", "OD20260801123456", 1250, status)
}

func TestApplyPaymentSuccess(t *testing.T) {
	db, mock := newSettlerMockDB(t)
	settler := NewSettler(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `orders`.*FOR UPDATE").
		WillReturnRows(lockedOrderRow(models.PAYMENT_STATUS_RESERVED))
	mock.ExpectExec("UPDATE `orders` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `inventory_reservations` SET").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := settler.ApplyPaymentSuccess(context.Background(), 42, models.GATEWAY_ECPAY, "2308101012001234")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPaymentSuccessAlreadyPaid(t *testing.T) {
	db, mock := newSettlerMockDB(t)
	settler := NewSettler(db)

	// the locked read sees paid: commit without touching anything
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `orders`.*FOR UPDATE").
		WillReturnRows(lockedOrderRow(models.PAYMENT_STATUS_PAID))
	mock.ExpectCommit()

	err := settler.ApplyPaymentSuccess(context.Background(), 42, models.GATEWAY_ECPAY, "2308101012001234")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyPaymentSuccessOrderMissing(t *testing.T) {
	db, mock := newSettlerMockDB(t)
	settler := NewSettler(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `orders`.*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := settler.ApplyPaymentSuccess(context.Background(), 404, models.GATEWAY_ECPAY, "2308101012001234")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
