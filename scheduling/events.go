package scheduling

import (
	"context"
	"time"

	"github.com/anjiri1684/driving_school/models"
)

type EventType string

const (
	EventLessonCreated   EventType = "lesson_created"
	EventLessonCancelled EventType = "lesson_cancelled"
	EventLessonNoShow    EventType = "lesson_no_show"
	EventLessonCompleted EventType = "lesson_completed"
)

var transitionEvents = map[models.LessonStatus]EventType{
	models.LessonCancelled: EventLessonCancelled,
	models.LessonNoShow:    EventLessonNoShow,
	models.LessonCompleted: EventLessonCompleted,
}

type LessonEvent struct {
	EventType  EventType          `json:"event_type"`
	OccurredAt time.Time          `json:"occurred_at"`
	Lesson     models.Lesson      `json:"lesson"`
	Student    *models.Student    `json:"student,omitempty"`
	Instructor *models.Instructor `json:"instructor,omitempty"`
	Vehicle    *models.Vehicle    `json:"vehicle,omitempty"`
}

// Notifier delivers the lesson_created event to the external webhook system.
// A returned error is logged by the Manager and never fails the booking.
type Notifier interface {
	LessonCreated(ctx context.Context, event LessonEvent) error
}

// Publisher fans lifecycle events out to live listeners. Publish must not block.
type Publisher interface {
	Publish(event LessonEvent)
}
