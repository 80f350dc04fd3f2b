package models

import "github.com/google/uuid"

type CatalogItem struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name            string           `gorm:"size:255;not null" json:"name"`
	IsLesson        bool             `gorm:"not null;default:false" json:"is_lesson"`
	VehicleCategory *VehicleCategory `gorm:"size:20" json:"vehicle_category"`
}
