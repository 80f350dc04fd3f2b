package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// InstructorAvailability is one weekly window in which an instructor takes
// lessons. Weekday follows time.Weekday (0 = Sunday).
type InstructorAvailability struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	InstructorID uuid.UUID      `gorm:"type:uuid;not null;index" json:"instructor_id"`
	Weekday      int            `gorm:"not null;check:weekday between 0 and 6" json:"weekday"`
	StartTime    datatypes.Time `gorm:"not null" json:"start_time"`
	EndTime      datatypes.Time `gorm:"not null" json:"end_time"`
}

func (InstructorAvailability) TableName() string { return "instructor_availabilities" }

func (a InstructorAvailability) Contains(start, end datatypes.Time) bool {
	return a.StartTime <= start && end <= a.EndTime
}
