package models

import (
	"time"

	"github.com/google/uuid"
)

type Instructor struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID                *uuid.UUID      `gorm:"type:uuid;unique" json:"user_id"`
	FullName              string          `gorm:"size:255;not null" json:"full_name"`
	LicenseCategory       LicenseCategory `gorm:"size:5;not null" json:"license_category"`
	LessonDurationMinutes int             `gorm:"not null;default:50" json:"lesson_duration_minutes"`
	IsActive              bool            `gorm:"default:true" json:"is_active"`

	Availability []InstructorAvailability `gorm:"foreignkey:InstructorID" json:"availability,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
