package repository

import (
	"maestro/internal/models"

	"gorm.io/gorm"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *models.Order) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) Update(o *models.Order) error {
	return r.db.Save(o).Error
}

func (r *OrderRepository) GetByID(id uint) (*models.Order, error) {
	var o models.Order
	if err := r.db.Preload("Course").First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByStripeSessionID correlates checkout.session.completed deliveries.
func (r *OrderRepository) GetByStripeSessionID(sessionID string) (*models.Order, error) {
	var o models.Order
	if err := r.db.Where("stripe_session_id = ?", sessionID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// GetByPaymentIntentID correlates payment_intent and charge deliveries.
func (r *OrderRepository) GetByPaymentIntentID(paymentIntentID string) (*models.Order, error) {
	var o models.Order
	if err := r.db.Where("stripe_payment_intent_id = ?", paymentIntentID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Course").Where("user_id = ?", userID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}
