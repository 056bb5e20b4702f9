package repository

import (
	"errors"
	"strings"

	"github.com/YuChenWang/ShopPay/app/models"
	"gorm.io/gorm"
)

// orderRepository implements the OrderRepository interface
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository instance
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

// Create creates a new order in the database
func (r *orderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// GetByID retrieves an order by its ID
func (r *orderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindIDByTradeNo resolves a merchant trade number to an order ID. Returns
// (0, nil) when no order carries that trade number; "not found" is a business
// outcome here, not an error.
func (r *orderRepository) FindIDByTradeNo(tradeNo string) (uint, error) {
	trimmed := strings.TrimSpace(tradeNo)
	if trimmed == "" {
		return 0, nil
	}
	var order models.Order
	err := r.db.Select("id").Where("trade_no = ?", trimmed).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return order.ID, nil
}

// FindIDByUUID resolves an order UUID to an order ID, (0, nil) when absent.
func (r *orderRepository) FindIDByUUID(orderUUID string) (uint, error) {
	trimmed := strings.TrimSpace(orderUUID)
	if trimmed == "" {
		return 0, nil
	}
	var order models.Order
	err := r.db.Select("id").Where("uuid = ?", trimmed).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return order.ID, nil
}
