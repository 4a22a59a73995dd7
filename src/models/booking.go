package models

import (
	"huletfish/src/types"
	"time"
)

type Booking struct {
	ID            uint                       `gorm:"primarykey" json:"id"`
	UserID        uint                       `gorm:"index" json:"userId"`
	ExperienceID  uint                       `gorm:"index" json:"experienceId"`
	Guests        uint8                      `gorm:"default:1" json:"guests"`
	TotalPrice    float64                    `gorm:"type:numeric(12,2)" json:"totalPrice"`
	Currency      string                     `gorm:"size:3;default:'ETB'" json:"currency"`
	StartsAt      time.Time                  `json:"startsAt"`
	Status        types.BookingStatus        `gorm:"default:'pending'" json:"status"`
	PaymentStatus types.BookingPaymentStatus `gorm:"default:'pending'" json:"paymentStatus"`

	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Experience *Experience `gorm:"foreignKey:ExperienceID" json:"experience,omitempty"`
	Payments   []Payment   `gorm:"foreignKey:BookingID" json:"payments,omitempty"`

	types.Timestamps
}

// Payable reports whether a checkout may be opened against the booking.
func (b *Booking) Payable() bool {
	return b.Status == types.BOOKING_PENDING || b.Status == types.BOOKING_CONFIRMED
}

// HoursUntilStart is negative once the experience has started.
func (b *Booking) HoursUntilStart(now time.Time) float64 {
	return b.StartsAt.Sub(now).Hours()
}
