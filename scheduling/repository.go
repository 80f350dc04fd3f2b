package scheduling

import (
	"context"
	"time"

	"github.com/anjiri1684/driving_school/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Repository is the persistence contract of the engine. Lookups return
// ErrNotFound (possibly with a detail) for missing rows.
//
// InsertLesson and TransitionLesson are the authoritative gates: they must
// re-check the contract status, the credit balance and resource overlap
// atomically with the write and report violations with the same errors the
// Validator uses.
type Repository interface {
	Contract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error)
	ContractItem(ctx context.Context, itemID uuid.UUID) (*models.ContractItem, error)
	ContractStatus(ctx context.Context, itemID uuid.UUID) (models.ContractStatus, error)
	StudentForItem(ctx context.Context, itemID uuid.UUID) (*models.Student, error)
	Instructor(ctx context.Context, instructorID uuid.UUID) (*models.Instructor, error)
	Vehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error)

	Lesson(ctx context.Context, lessonID uuid.UUID) (*models.Lesson, error)
	LessonsForItem(ctx context.Context, itemID uuid.UUID) ([]models.Lesson, error)
	CountLessons(ctx context.Context, itemID uuid.UUID, statuses ...models.LessonStatus) (int, error)
	// ActiveLessonsOn returns the non-cancelled lessons on date that use the
	// instructor or the vehicle.
	ActiveLessonsOn(ctx context.Context, date datatypes.Date, instructorID, vehicleID uuid.UUID) ([]models.Lesson, error)

	InsertLesson(ctx context.Context, lesson *models.Lesson) error
	TransitionLesson(ctx context.Context, t Transition) (*models.Lesson, error)

	// MarkWebhookSent stamps webhook_sent_at only if it is still empty and
	// reports whether it did.
	MarkWebhookSent(ctx context.Context, lessonID uuid.UUID, at time.Time) (bool, error)
	PendingWebhooks(ctx context.Context, scheduledBefore time.Time, limit int) ([]models.Lesson, error)
	// UnmarkedLessons returns scheduled lessons that ended on or before the
	// wall-clock date and time given, oldest first.
	UnmarkedLessons(ctx context.Context, date datatypes.Date, endedBy datatypes.Time, limit int) ([]models.Lesson, error)
}

// Transition moves a scheduled lesson to a terminal status.
type Transition struct {
	LessonID uuid.UUID
	To       models.LessonStatus
	Actor    uuid.UUID
	At       time.Time
	Reason   string
	Notes    *string
}

// Apply stamps the transition onto l.
func (t Transition) Apply(l *models.Lesson) {
	actor, at := t.Actor, t.At
	l.Status = t.To
	l.UpdatedAt = at
	switch t.To {
	case models.LessonCancelled:
		reason := t.Reason
		l.CancelledBy, l.CancelledAt, l.CancellationReason = &actor, &at, &reason
	case models.LessonNoShow:
		l.NoShowBy, l.NoShowAt = &actor, &at
		l.InstructorNotes = t.Notes
	case models.LessonCompleted:
		l.CompletedBy, l.CompletedAt = &actor, &at
		l.InstructorNotes = t.Notes
	}
}

// Columns is the column set written by Apply, for SQL updates.
func (t Transition) Columns() map[string]interface{} {
	cols := map[string]interface{}{
		"status":     string(t.To),
		"updated_at": t.At,
	}
	switch t.To {
	case models.LessonCancelled:
		cols["cancelled_by"] = t.Actor
		cols["cancelled_at"] = t.At
		cols["cancellation_reason"] = t.Reason
	case models.LessonNoShow:
		cols["no_show_by"] = t.Actor
		cols["no_show_at"] = t.At
		cols["instructor_notes"] = t.Notes
	case models.LessonCompleted:
		cols["completed_by"] = t.Actor
		cols["completed_at"] = t.At
		cols["instructor_notes"] = t.Notes
	}
	return cols
}
