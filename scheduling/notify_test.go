package scheduling_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/driving_school/scheduling"
	"github.com/google/uuid"
)

func TestLessonCreatedNotification(t *testing.T) {
	notifier := &fakeNotifier{}
	f := newFixture(t, 2, scheduling.WithNotifier(notifier))

	lesson := f.book(t, "2025-03-10", "09:00")
	f.manager.Wait()

	calls := notifier.calls()
	if len(calls) != 1 {
		t.Fatalf("notifier called %d times, want 1", len(calls))
	}
	event := calls[0]
	if event.EventType != scheduling.EventLessonCreated || event.Lesson.ID != lesson.ID {
		t.Errorf("event = %s for %s", event.EventType, event.Lesson.ID)
	}
	if event.Student == nil || event.Student.FullName != "Ana Souza" {
		t.Errorf("student missing from event: %+v", event.Student)
	}
	if event.Instructor == nil || event.Instructor.ID != f.instructor.ID {
		t.Errorf("instructor missing from event: %+v", event.Instructor)
	}
	if event.Vehicle == nil || event.Vehicle.Plate != "ABC1D23" {
		t.Errorf("vehicle missing from event: %+v", event.Vehicle)
	}

	stored, err := f.manager.Lesson(context.Background(), lesson.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.WebhookSentAt == nil {
		t.Error("webhook_sent_at not stamped after successful delivery")
	}
}

func TestFailedNotificationDoesNotFailBooking(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("connection refused")}
	f := newFixture(t, 2, scheduling.WithNotifier(notifier))

	lesson, err := f.manager.CreateLesson(context.Background(), f.request("2025-03-10", "09:00"))
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}
	f.manager.Wait()

	stored, err := f.manager.Lesson(context.Background(), lesson.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.WebhookSentAt != nil {
		t.Error("webhook_sent_at stamped although delivery failed")
	}
	if got := f.credits(t); got != 1 {
		t.Errorf("credits = %d, want 1", got)
	}
}

func TestNotificationOutlivesRequestContext(t *testing.T) {
	notifier := &fakeNotifier{}
	f := newFixture(t, 1, scheduling.WithNotifier(notifier))

	ctx, cancel := context.WithCancel(context.Background())
	lesson, err := f.manager.CreateLesson(ctx, f.request("2025-03-10", "09:00"))
	cancel()
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}
	f.manager.Wait()

	stored, _ := f.manager.Lesson(context.Background(), lesson.ID)
	if stored.WebhookSentAt == nil {
		t.Error("delivery was cut short by the request context")
	}
}

func TestRedeliverPending(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("503 service unavailable")}
	f := newFixture(t, 3, scheduling.WithNotifier(notifier))
	ctx := context.Background()

	first := f.book(t, "2025-03-10", "09:00")
	second := f.book(t, "2025-03-10", "10:00")
	cancelled := f.book(t, "2025-03-10", "11:00")
	f.manager.Wait()
	if _, err := f.manager.CancelLesson(ctx, cancelled.ID, "desistiu", f.actor); err != nil {
		t.Fatal(err)
	}

	// Nothing booked before the cutoff yet.
	n, err := f.manager.RedeliverPending(ctx, testNow.Add(-time.Minute), 10)
	if err != nil || n != 0 {
		t.Fatalf("RedeliverPending before cutoff = %d, %v", n, err)
	}

	notifier.setErr(nil)
	n, err = f.manager.RedeliverPending(ctx, testNow.Add(time.Minute), 10)
	if err != nil {
		t.Fatalf("RedeliverPending: %v", err)
	}
	if n != 2 {
		t.Fatalf("redelivered %d, want 2", n)
	}
	for _, id := range []uuid.UUID{first.ID, second.ID} {
		stored, err := f.manager.Lesson(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if stored.WebhookSentAt == nil {
			t.Errorf("lesson %s still pending", id)
		}
	}

	n, err = f.manager.RedeliverPending(ctx, testNow.Add(time.Minute), 10)
	if err != nil || n != 0 {
		t.Errorf("second redelivery = %d, %v; want 0", n, err)
	}
}

func TestRedeliverWithoutNotifier(t *testing.T) {
	f := newFixture(t, 1)
	f.book(t, "2025-03-10", "09:00")

	n, err := f.manager.RedeliverPending(context.Background(), testNow.Add(time.Hour), 10)
	if err != nil || n != 0 {
		t.Errorf("RedeliverPending = %d, %v; want 0, nil", n, err)
	}
}
