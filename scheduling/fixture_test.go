package scheduling_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/driving_school/models"
	"github.com/anjiri1684/driving_school/scheduling"
	"github.com/anjiri1684/driving_school/scheduling/memstore"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store      *memstore.Store
	manager    *scheduling.Manager
	contract   models.Contract
	item       models.ContractItem
	instructor models.Instructor
	vehicle    models.Vehicle
	actor      uuid.UUID
}

// newFixture seeds one active contract with a car lesson item of the given
// quantity, a B-licensed instructor doing 60 minute lessons and one car.
func newFixture(t *testing.T, quantity int, opts ...scheduling.Option) *fixture {
	t.Helper()

	store := memstore.New()
	student := store.AddStudent(models.Student{FullName: "Ana Souza", Email: "ana@example.com"})
	contract := store.AddContract(models.Contract{StudentID: student.ID})
	car := models.VehicleCar
	catalog := store.AddCatalogItem(models.CatalogItem{Name: "Aula prática categoria B", IsLesson: true, VehicleCategory: &car})
	item := store.AddContractItem(models.ContractItem{ContractID: contract.ID, CatalogItemID: catalog.ID, Quantity: quantity})
	instructor := store.AddInstructor(models.Instructor{FullName: "Carlos Lima", LicenseCategory: "B", LessonDurationMinutes: 60, IsActive: true})
	vehicle := store.AddVehicle(models.Vehicle{Plate: "ABC1D23", Model: "Onix", Category: models.VehicleCar, IsActive: true})

	opts = append([]scheduling.Option{scheduling.WithClock(func() time.Time { return testNow })}, opts...)
	return &fixture{
		store:      store,
		manager:    scheduling.NewManager(store, opts...),
		contract:   contract,
		item:       item,
		instructor: instructor,
		vehicle:    vehicle,
		actor:      uuid.New(),
	}
}

func (f *fixture) request(date, start string) scheduling.BookingRequest {
	return scheduling.BookingRequest{
		ContractItemID: f.item.ID,
		InstructorID:   f.instructor.ID,
		VehicleID:      f.vehicle.ID,
		Date:           mustDate(date),
		StartTime:      mustClock(start),
		Actor:          f.actor,
	}
}

func (f *fixture) book(t *testing.T, date, start string) *models.Lesson {
	t.Helper()
	lesson, err := f.manager.CreateLesson(context.Background(), f.request(date, start))
	if err != nil {
		t.Fatalf("CreateLesson(%s %s): %v", date, start, err)
	}
	return lesson
}

func (f *fixture) credits(t *testing.T) int {
	t.Helper()
	n, err := f.manager.AvailableCredits(context.Background(), f.item.ID)
	if err != nil {
		t.Fatalf("AvailableCredits: %v", err)
	}
	return n
}

func (f *fixture) addInstructor(license models.LicenseCategory, windows ...models.InstructorAvailability) models.Instructor {
	return f.store.AddInstructor(models.Instructor{
		FullName:              "Instrutor " + string(license),
		LicenseCategory:       license,
		LessonDurationMinutes: 60,
		IsActive:              true,
		Availability:          windows,
	})
}

func mustDate(s string) datatypes.Date {
	d, err := models.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func mustClock(s string) datatypes.Time {
	c, err := models.ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

func window(weekday time.Weekday, start, end string) models.InstructorAvailability {
	return models.InstructorAvailability{Weekday: int(weekday), StartTime: mustClock(start), EndTime: mustClock(end)}
}

func expectCode(t *testing.T, err error, want *scheduling.Error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", want.Code)
	}
	if !errors.Is(err, want) {
		t.Fatalf("expected %s, got %v", want.Code, err)
	}
}

type fakeNotifier struct {
	mu     sync.Mutex
	err    error
	events []scheduling.LessonEvent
}

func (n *fakeNotifier) LessonCreated(_ context.Context, event scheduling.LessonEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *fakeNotifier) setErr(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

func (n *fakeNotifier) calls() []scheduling.LessonEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]scheduling.LessonEvent(nil), n.events...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []scheduling.LessonEvent
}

func (p *fakePublisher) Publish(event scheduling.LessonEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *fakePublisher) types() []scheduling.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]scheduling.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType
	}
	return out
}
