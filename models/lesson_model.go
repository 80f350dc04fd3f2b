package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Lesson struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ContractItemID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_lessons_item_status,priority:1" json:"contract_item_id"`
	InstructorID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_lessons_instructor_date,priority:1" json:"instructor_id"`
	VehicleID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_lessons_vehicle_date,priority:1" json:"vehicle_id"`
	LessonDate      datatypes.Date `gorm:"not null;index:idx_lessons_instructor_date,priority:2;index:idx_lessons_vehicle_date,priority:2" json:"lesson_date"`
	StartTime       datatypes.Time `gorm:"not null" json:"start_time"`
	EndTime         datatypes.Time `gorm:"not null" json:"end_time"`
	DurationMinutes int            `gorm:"not null" json:"duration_minutes"`
	Status          LessonStatus   `gorm:"size:20;not null;default:'scheduled';index:idx_lessons_item_status,priority:2" json:"status"`

	Topic    *string `gorm:"size:255" json:"topic"`
	Location *string `gorm:"size:255" json:"location"`
	Notes    *string `gorm:"type:text" json:"notes"`

	ScheduledBy        uuid.UUID  `gorm:"type:uuid;not null" json:"scheduled_by"`
	ScheduledAt        time.Time  `gorm:"not null" json:"scheduled_at"`
	CompletedBy        *uuid.UUID `gorm:"type:uuid" json:"completed_by"`
	CompletedAt        *time.Time `json:"completed_at"`
	NoShowBy           *uuid.UUID `gorm:"type:uuid" json:"no_show_by"`
	NoShowAt           *time.Time `json:"no_show_at"`
	CancelledBy        *uuid.UUID `gorm:"type:uuid" json:"cancelled_by"`
	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason *string    `gorm:"type:text" json:"cancellation_reason"`
	InstructorNotes    *string    `gorm:"type:text" json:"instructor_notes"`

	WebhookSentAt *time.Time `json:"webhook_sent_at"`

	ContractItem ContractItem `gorm:"foreignkey:ContractItemID" json:"-"`
	Instructor   Instructor   `gorm:"foreignkey:InstructorID" json:"-"`
	Vehicle      Vehicle      `gorm:"foreignkey:VehicleID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overlaps reports whether two half-open [start, end) intervals on the same
// day intersect. Touching intervals do not overlap.
func Overlaps(s1, e1, s2, e2 datatypes.Time) bool {
	return s1 < e2 && s2 < e1
}
