package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindIDByTradeNo(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery("SELECT `id` FROM `orders`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	id, err := repo.FindIDByTradeNo("OD20260801123456")
	require.NoError(t, err)
	assert.Equal(t, uint(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindIDByTradeNoNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery("SELECT `id` FROM `orders`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := repo.FindIDByTradeNo("OD404")
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindIDByTradeNoBlank(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	// blank references never reach the database
	id, err := repo.FindIDByTradeNo("   ")
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindIDByUUID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery("SELECT `id` FROM `orders`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := repo.FindIDByUUID("8a6e0804-2bd0-4672-b79d-d97027f9071a")
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindIDByUUIDNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery("SELECT `id` FROM `orders`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := repo.FindIDByUUID("8a6e0804-2bd0-4672-b79d-d97027f9071a")
	require.NoError(t, err)
	assert.Zero(t, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}
