package payments

import (
	"context"
	"errors"
	"huletfish/src/models"
	"huletfish/src/models/scopes"
	"huletfish/src/types"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the persistence the payment flows need. Implementations return
// ErrNotFound for missing rows and ErrPaymentConflict when CreatePayment
// collides with another active payment of the booking.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	FindBooking(ctx context.Context, id uint) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id uint, status types.BookingStatus, paymentStatus types.BookingPaymentStatus) error

	FindPayment(ctx context.Context, paymentID string) (*models.Payment, error)
	FindActivePayment(ctx context.Context, bookingID uint) (*models.Payment, error)
	FindPaymentByGatewayRef(ctx context.Context, gateway types.PaymentMethod, ref string) (*models.Payment, error)
	CreatePayment(ctx context.Context, p *models.Payment) error
	SavePayment(ctx context.Context, p *models.Payment) error
	ListPayments(ctx context.Context, userID uint, status string, page, limit int) ([]models.Payment, int64, error)
	ListStalePayments(ctx context.Context, createdBefore time.Time, limit int) ([]models.Payment, error)

	// RecordWebhookEvent reports false when the event was already recorded.
	RecordWebhookEvent(ctx context.Context, e *models.WebhookEvent) (bool, error)
	SaveWebhookEvent(ctx context.Context, e *models.WebhookEvent) error
}

type GormStore struct {
	db *gorm.DB
	// set inside Transaction, payment reads take row locks
	locking bool
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx, locking: true})
	})
}

func (s *GormStore) paymentQuery(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Payment{})
	if s.locking {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (s *GormStore) FindBooking(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.db.
		WithContext(ctx).
		Model(&models.Booking{}).
		Preload("User").
		Preload("Experience").
		Scopes(scopes.WithID(id)).
		First(&booking).
		Error; err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

func (s *GormStore) UpdateBookingStatus(ctx context.Context, id uint, status types.BookingStatus, paymentStatus types.BookingPaymentStatus) error {
	return s.db.
		WithContext(ctx).
		Model(&models.Booking{}).
		Scopes(scopes.WithID(id)).
		Updates(&models.Booking{Status: status, PaymentStatus: paymentStatus}).
		Error
}

func (s *GormStore) FindPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.paymentQuery(ctx).
		Where("payment_id = ?", paymentID).
		First(&payment).
		Error; err != nil {
		return nil, notFound(err)
	}
	return &payment, nil
}

func (s *GormStore) FindActivePayment(ctx context.Context, bookingID uint) (*models.Payment, error) {
	var payment models.Payment
	if err := s.db.
		WithContext(ctx).
		Model(&models.Payment{}).
		Where("booking_id = ?", bookingID).
		Scopes(scopes.WithActivePayment).
		Order("created_at DESC").
		First(&payment).
		Error; err != nil {
		return nil, notFound(err)
	}
	return &payment, nil
}

func (s *GormStore) FindPaymentByGatewayRef(ctx context.Context, gateway types.PaymentMethod, ref string) (*models.Payment, error) {
	var payment models.Payment
	if err := s.paymentQuery(ctx).
		Where("payment_gateway = ? AND gateway_ref = ?", gateway, ref).
		First(&payment).
		Error; err != nil {
		return nil, notFound(err)
	}
	return &payment, nil
}

func (s *GormStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrPaymentConflict
		}
		return err
	}
	return nil
}

func (s *GormStore) SavePayment(ctx context.Context, p *models.Payment) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(p).Error
}

func (s *GormStore) ListPayments(ctx context.Context, userID uint, status string, page, limit int) ([]models.Payment, int64, error) {
	var total int64
	query := func() *gorm.DB {
		return s.db.
			WithContext(ctx).
			Model(&models.Payment{}).
			Scopes(scopes.WithUser(userID), scopes.WithStatus(status))
	}
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	payments := make([]models.Payment, 0)
	if err := query().
		Preload("Booking").
		Preload("Booking.Experience").
		Order("created_at DESC").
		Scopes(scopes.Paginate(page, limit)).
		Find(&payments).
		Error; err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (s *GormStore) ListStalePayments(ctx context.Context, createdBefore time.Time, limit int) ([]models.Payment, error) {
	payments := make([]models.Payment, 0)
	err := s.db.
		WithContext(ctx).
		Model(&models.Payment{}).
		Scopes(scopes.WithUnsettledPayment).
		Where("created_at < ?", createdBefore).
		Order("created_at ASC").
		Limit(limit).
		Find(&payments).
		Error
	return payments, err
}

func (s *GormStore) RecordWebhookEvent(ctx context.Context, e *models.WebhookEvent) (bool, error) {
	res := s.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "gateway"}, {Name: "event_id"}},
			DoNothing: true,
		}).
		Create(e)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) SaveWebhookEvent(ctx context.Context, e *models.WebhookEvent) error {
	return s.db.WithContext(ctx).Save(e).Error
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
