package scheduling_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/anjiri1684/driving_school/models"
	"github.com/anjiri1684/driving_school/scheduling"
)

func race(n int, fn func(i int) error) []error {
	errs := make([]error, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn(i)
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func TestConcurrentBookingsForLastCredit(t *testing.T) {
	f := newFixture(t, 1)

	errs := race(12, func(i int) error {
		_, err := f.manager.CreateLesson(context.Background(), f.request("2025-03-10", fmt.Sprintf("%02d:00", 6+i)))
		return err
	})

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, scheduling.ErrNoCreditsAvailable):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d bookings succeeded, want exactly 1", succeeded)
	}
	if got := f.credits(t); got != 0 {
		t.Errorf("credits = %d, want 0", got)
	}
}

func TestConcurrentBookingsForSameSlot(t *testing.T) {
	f := newFixture(t, 20)

	errs := race(12, func(int) error {
		_, err := f.manager.CreateLesson(context.Background(), f.request("2025-03-10", "09:00"))
		return err
	})

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, scheduling.ErrResourceConflict):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d bookings succeeded, want exactly 1", succeeded)
	}
}

// Concurrent bookings across items never leave two overlapping active
// lessons on one instructor.
func TestConcurrentOverlappingAcrossItems(t *testing.T) {
	f := newFixture(t, 20)
	items := []models.ContractItem{f.item}
	for i := 0; i < 3; i++ {
		items = append(items, f.store.AddContractItem(models.ContractItem{ContractID: f.contract.ID, CatalogItemID: f.item.CatalogItemID, Quantity: 5, IsExtra: true}))
	}
	starts := []string{"09:00", "09:20", "09:40", "10:00", "10:20", "10:40"}

	race(len(starts)*len(items), func(i int) error {
		req := f.request("2025-03-10", starts[i%len(starts)])
		req.ContractItemID = items[i%len(items)].ID
		_, err := f.manager.CreateLesson(context.Background(), req)
		return err
	})

	var active []models.Lesson
	for _, item := range items {
		lessons, err := f.manager.LessonsForItem(context.Background(), item.ID)
		if err != nil {
			t.Fatal(err)
		}
		for _, l := range lessons {
			if l.Status != models.LessonCancelled {
				active = append(active, l)
			}
		}
	}
	if len(active) == 0 {
		t.Fatal("no lesson was booked")
	}
	for i := range active {
		for j := i + 1; j < len(active); j++ {
			a, b := active[i], active[j]
			if models.Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
				t.Errorf("overlap: %s-%s and %s-%s",
					models.ClockString(a.StartTime), models.ClockString(a.EndTime),
					models.ClockString(b.StartTime), models.ClockString(b.EndTime))
			}
		}
	}
}

func TestConcurrentTransitionsOnOneLesson(t *testing.T) {
	f := newFixture(t, 2)
	lesson := f.book(t, "2025-03-10", "09:00")

	errs := race(9, func(i int) error {
		var err error
		switch i % 3 {
		case 0:
			_, err = f.manager.CancelLesson(context.Background(), lesson.ID, "motivo", f.actor)
		case 1:
			_, err = f.manager.MarkNoShow(context.Background(), lesson.ID, nil, f.actor)
		default:
			_, err = f.manager.MarkCompleted(context.Background(), lesson.ID, nil, f.actor)
		}
		return err
	})

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case !errors.Is(err, scheduling.ErrLessonNotSchedulable):
			t.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("%d transitions succeeded, want exactly 1", succeeded)
	}
}
