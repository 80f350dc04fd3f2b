package scheduling

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/anjiri1684/driving_school/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const defaultNotifyTimeout = 15 * time.Second

// Manager owns the lesson lifecycle: creation behind the Validator and the
// transitions out of scheduled. Credits are never written directly; they
// follow from the lesson statuses the Manager sets.
type Manager struct {
	repo      Repository
	ledger    *Ledger
	validator *Validator
	notifier  Notifier
	publisher Publisher

	now           func() time.Time
	notifyTimeout time.Duration
	wg            sync.WaitGroup
}

type Option func(*Manager)

func WithNotifier(n Notifier) Option { return func(m *Manager) { m.notifier = n } }

func WithPublisher(p Publisher) Option { return func(m *Manager) { m.publisher = p } }

func WithClock(now func() time.Time) Option { return func(m *Manager) { m.now = now } }

func WithNotifyTimeout(d time.Duration) Option { return func(m *Manager) { m.notifyTimeout = d } }

// WithResourceChecker replaces the repository-backed conflict, availability
// and category checks.
func WithResourceChecker(c ResourceChecker) Option {
	return func(m *Manager) { m.validator.checker = c }
}

func NewManager(repo Repository, opts ...Option) *Manager {
	ledger := NewLedger(repo)
	m := &Manager{
		repo:          repo,
		ledger:        ledger,
		validator:     NewValidator(repo, ledger, NewResourceChecker(repo)),
		now:           time.Now,
		notifyTimeout: defaultNotifyTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) CanSchedule(ctx context.Context, req BookingRequest) (datatypes.Time, error) {
	return m.validator.CanSchedule(ctx, req)
}

func (m *Manager) AvailableCredits(ctx context.Context, itemID uuid.UUID) (int, error) {
	return m.ledger.AvailableCredits(ctx, itemID)
}

func (m *Manager) Lesson(ctx context.Context, lessonID uuid.UUID) (*models.Lesson, error) {
	return m.repo.Lesson(ctx, lessonID)
}

func (m *Manager) LessonsForItem(ctx context.Context, itemID uuid.UUID) ([]models.Lesson, error) {
	if _, err := m.repo.ContractItem(ctx, itemID); err != nil {
		return nil, err
	}
	return m.repo.LessonsForItem(ctx, itemID)
}

// CreateLesson validates the request from scratch and persists the lesson in
// the scheduled state. The lesson_created notification runs in the
// background; its outcome never affects the returned lesson.
func (m *Manager) CreateLesson(ctx context.Context, req BookingRequest) (*models.Lesson, error) {
	s, err := m.validator.check(ctx, req)
	if err != nil {
		return nil, err
	}

	now := m.now()
	lesson := &models.Lesson{
		ID:              uuid.New(),
		ContractItemID:  req.ContractItemID,
		InstructorID:    req.InstructorID,
		VehicleID:       req.VehicleID,
		LessonDate:      req.Date,
		StartTime:       req.StartTime,
		EndTime:         s.EndTime,
		DurationMinutes: s.DurationMinutes,
		Status:          models.LessonScheduled,
		Topic:           req.Topic,
		Location:        req.Location,
		Notes:           req.Notes,
		ScheduledBy:     req.Actor,
		ScheduledAt:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := m.repo.InsertLesson(ctx, lesson); err != nil {
		return nil, err
	}
	log.Printf("✅ Lesson %s scheduled on %s %s-%s", lesson.ID, models.DateKey(lesson.LessonDate), models.ClockString(lesson.StartTime), models.ClockString(lesson.EndTime))

	m.publish(EventLessonCreated, *lesson)
	if m.notifier != nil {
		m.wg.Add(1)
		go func(l models.Lesson) {
			defer m.wg.Done()
			nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.notifyTimeout)
			defer cancel()
			m.deliver(nctx, l)
		}(*lesson)
	}
	return lesson, nil
}

func (m *Manager) CancelLesson(ctx context.Context, lessonID uuid.UUID, reason string, actor uuid.UUID) (*models.Lesson, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return m.transition(ctx, Transition{LessonID: lessonID, To: models.LessonCancelled, Actor: actor, Reason: reason})
}

func (m *Manager) MarkNoShow(ctx context.Context, lessonID uuid.UUID, notes *string, actor uuid.UUID) (*models.Lesson, error) {
	return m.transition(ctx, Transition{LessonID: lessonID, To: models.LessonNoShow, Actor: actor, Notes: notes})
}

func (m *Manager) MarkCompleted(ctx context.Context, lessonID uuid.UUID, notes *string, actor uuid.UUID) (*models.Lesson, error) {
	return m.transition(ctx, Transition{LessonID: lessonID, To: models.LessonCompleted, Actor: actor, Notes: notes})
}

func (m *Manager) transition(ctx context.Context, t Transition) (*models.Lesson, error) {
	lesson, err := m.repo.Lesson(ctx, t.LessonID)
	if err != nil {
		return nil, err
	}
	status, err := m.repo.ContractStatus(ctx, lesson.ContractItemID)
	if err != nil {
		return nil, err
	}
	if !status.IsActive() {
		return nil, ErrContractNotActive.WithDetail(fmt.Sprintf("contract is %s", status))
	}
	if !lesson.Status.CanTransitionTo(t.To) {
		return nil, ErrLessonNotSchedulable.WithDetail(fmt.Sprintf("lesson is %s", lesson.Status))
	}

	t.At = m.now()
	updated, err := m.repo.TransitionLesson(ctx, t)
	if err != nil {
		return nil, err
	}
	log.Printf("Lesson %s moved to %s by %s", updated.ID, updated.Status, t.Actor)
	m.publish(transitionEvents[t.To], *updated)
	return updated, nil
}

func (m *Manager) publish(eventType EventType, lesson models.Lesson) {
	if m.publisher == nil {
		return
	}
	m.publisher.Publish(LessonEvent{EventType: eventType, OccurredAt: m.now(), Lesson: lesson})
}

// deliver sends lesson_created for one lesson and stamps webhook_sent_at on
// success. Failures are logged and reported as false.
func (m *Manager) deliver(ctx context.Context, lesson models.Lesson) bool {
	if lesson.WebhookSentAt != nil {
		return true
	}
	event, err := m.buildCreatedEvent(ctx, lesson)
	if err != nil {
		log.Printf("🔥 Could not build lesson_created event for %s: %v", lesson.ID, err)
		return false
	}
	if err := m.notifier.LessonCreated(ctx, event); err != nil {
		log.Printf("🔥 lesson_created webhook failed for %s: %v", lesson.ID, err)
		return false
	}
	if _, err := m.repo.MarkWebhookSent(ctx, lesson.ID, m.now()); err != nil {
		log.Printf("🔥 Could not stamp webhook_sent_at for %s: %v", lesson.ID, err)
		return false
	}
	return true
}

func (m *Manager) buildCreatedEvent(ctx context.Context, lesson models.Lesson) (LessonEvent, error) {
	student, err := m.repo.StudentForItem(ctx, lesson.ContractItemID)
	if err != nil {
		return LessonEvent{}, err
	}
	instructor, err := m.repo.Instructor(ctx, lesson.InstructorID)
	if err != nil {
		return LessonEvent{}, err
	}
	vehicle, err := m.repo.Vehicle(ctx, lesson.VehicleID)
	if err != nil {
		return LessonEvent{}, err
	}
	return LessonEvent{
		EventType:  EventLessonCreated,
		OccurredAt: lesson.ScheduledAt,
		Lesson:     lesson,
		Student:    student,
		Instructor: instructor,
		Vehicle:    vehicle,
	}, nil
}

// RedeliverPending retries lesson_created for scheduled lessons whose webhook
// was never confirmed and that were booked before the cutoff. It returns how
// many deliveries succeeded.
func (m *Manager) RedeliverPending(ctx context.Context, scheduledBefore time.Time, limit int) (int, error) {
	if m.notifier == nil {
		return 0, nil
	}
	pending, err := m.repo.PendingWebhooks(ctx, scheduledBefore, limit)
	if err != nil {
		return 0, err
	}
	delivered := 0
	for _, lesson := range pending {
		if m.deliver(ctx, lesson) {
			delivered++
		}
	}
	return delivered, nil
}

// UnmarkedLessons lists lessons still scheduled although they ended at or
// before at. at is read as wall-clock time in its own location, the way
// lesson dates and times are stored.
func (m *Manager) UnmarkedLessons(ctx context.Context, at time.Time, limit int) ([]models.Lesson, error) {
	date := datatypes.Date(time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC))
	return m.repo.UnmarkedLessons(ctx, date, datatypes.NewTime(at.Hour(), at.Minute(), at.Second(), 0), limit)
}

// Wait blocks until background notifications have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}
