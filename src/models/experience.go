package models

import (
	"fmt"
	"huletfish/src/types"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// Experience is a bookable offering run by a host (coffee ceremony, cooking workshop, ...).
type Experience struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	HostID   uint    `gorm:"index" json:"hostId"`
	Title    string  `json:"title"`
	Slug     string  `gorm:"uniqueIndex" json:"slug"`
	Price    float64 `gorm:"type:numeric(12,2)" json:"price"`
	Currency string  `gorm:"size:3;default:'ETB'" json:"currency"`

	Host *User `gorm:"foreignKey:HostID" json:"host,omitempty"`

	types.Timestamps
}

// Titles repeat across hosts, the random suffix keeps the slug unique.
func (e *Experience) BeforeCreate(tx *gorm.DB) error {
	if e.Slug == "" {
		e.Slug = fmt.Sprintf("%s-%s", slug.Make(e.Title), uuid.NewString()[:8])
	}
	return nil
}
