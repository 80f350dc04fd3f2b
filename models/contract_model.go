package models

import (
	"time"

	"github.com/google/uuid"
)

// Contract is the master switch for every lesson booked under its items:
// nothing is created or transitioned while Status is not active.
type Contract struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StudentID uuid.UUID      `gorm:"type:uuid;not null;index" json:"student_id"`
	Status    ContractStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	SignedAt  *time.Time     `json:"signed_at"`

	Student Student        `gorm:"foreignkey:StudentID" json:"student,omitempty"`
	Items   []ContractItem `gorm:"foreignkey:ContractID" json:"items,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
