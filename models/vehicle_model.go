package models

import (
	"time"

	"github.com/google/uuid"
)

type Vehicle struct {
	ID       uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Plate    string          `gorm:"size:10;not null;unique" json:"plate"`
	Model    string          `gorm:"size:100" json:"model"`
	Category VehicleCategory `gorm:"size:20;not null" json:"category"`
	IsActive bool            `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
