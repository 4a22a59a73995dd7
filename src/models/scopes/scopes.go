package scopes

import (
	"huletfish/src/types"

	"gorm.io/gorm"
)

func WithID(id uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	}
}

func WithUser(userId uint) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userId)
	}
}

func WithStatus(status string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}
}

// WithActivePayment matches the statuses covered by idx_payments_active_booking.
func WithActivePayment(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", []types.PaymentStatus{
		types.PAYMENT_PENDING,
		types.PAYMENT_PROCESSING,
		types.PAYMENT_COMPLETED,
	})
}

func WithUnsettledPayment(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", []types.PaymentStatus{
		types.PAYMENT_PENDING,
		types.PAYMENT_PROCESSING,
	})
}

func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}
