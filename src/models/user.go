package models

import "huletfish/src/types"

type User struct {
	ID    uint       `gorm:"primarykey" json:"id"`
	Name  string     `json:"name,omitempty"`
	Email string     `gorm:"uniqueIndex" json:"email,omitempty"`
	Phone string     `json:"phone,omitempty"`
	Role  types.Role `gorm:"default:'tourist'" json:"role,omitempty"`

	Bookings []Booking `gorm:"foreignKey:UserID" json:"bookings,omitempty"`

	types.Timestamps
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == types.ROLE_ADMIN
}
