// Package memstore is an in-memory scheduling.Repository. A single mutex
// makes InsertLesson and TransitionLesson atomic, giving the same
// guarantees the Postgres repository gets from row locks and exclusion
// constraints.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/anjiri1684/driving_school/models"
	"github.com/anjiri1684/driving_school/scheduling"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Store struct {
	mu sync.RWMutex

	students     map[uuid.UUID]models.Student
	contracts    map[uuid.UUID]models.Contract
	catalog      map[uuid.UUID]models.CatalogItem
	items        map[uuid.UUID]models.ContractItem
	instructors  map[uuid.UUID]models.Instructor
	vehicles     map[uuid.UUID]models.Vehicle
	lessons      map[uuid.UUID]models.Lesson
	lessonsOrder []uuid.UUID
}

func New() *Store {
	return &Store{
		students:    make(map[uuid.UUID]models.Student),
		contracts:   make(map[uuid.UUID]models.Contract),
		catalog:     make(map[uuid.UUID]models.CatalogItem),
		items:       make(map[uuid.UUID]models.ContractItem),
		instructors: make(map[uuid.UUID]models.Instructor),
		vehicles:    make(map[uuid.UUID]models.Vehicle),
		lessons:     make(map[uuid.UUID]models.Lesson),
	}
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// Seeding

func (s *Store) AddStudent(st models.Student) models.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&st.ID)
	s.students[st.ID] = st
	return st
}

func (s *Store) AddContract(c models.Contract) models.Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&c.ID)
	if c.Status == "" {
		c.Status = models.ContractActive
	}
	c.Items = nil
	s.contracts[c.ID] = c
	return c
}

func (s *Store) SetContractStatus(contractID uuid.UUID, status models.ContractStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.contracts[contractID]
	c.Status = status
	s.contracts[contractID] = c
}

func (s *Store) AddCatalogItem(ci models.CatalogItem) models.CatalogItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&ci.ID)
	s.catalog[ci.ID] = ci
	return ci
}

func (s *Store) AddContractItem(item models.ContractItem) models.ContractItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&item.ID)
	item.CatalogItem = s.catalog[item.CatalogItemID]
	s.items[item.ID] = item
	return item
}

func (s *Store) AddInstructor(in models.Instructor) models.Instructor {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&in.ID)
	for i := range in.Availability {
		ensureID(&in.Availability[i].ID)
		in.Availability[i].InstructorID = in.ID
	}
	s.instructors[in.ID] = in
	return in
}

func (s *Store) AddVehicle(v models.Vehicle) models.Vehicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	ensureID(&v.ID)
	s.vehicles[v.ID] = v
	return v
}

// Repository

func (s *Store) Contract(_ context.Context, contractID uuid.UUID) (*models.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.contracts[contractID]
	if !ok {
		return nil, scheduling.ErrNotFound.WithDetail("contract")
	}
	for _, item := range s.items {
		if item.ContractID == contractID {
			c.Items = append(c.Items, item)
		}
	}
	sort.Slice(c.Items, func(i, j int) bool {
		if c.Items[i].IsExtra != c.Items[j].IsExtra {
			return !c.Items[i].IsExtra
		}
		return c.Items[i].ID.String() < c.Items[j].ID.String()
	})
	return &c, nil
}

func (s *Store) ContractItem(_ context.Context, itemID uuid.UUID) (*models.ContractItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, scheduling.ErrNotFound.WithDetail("contract item")
	}
	return &item, nil
}

func (s *Store) ContractStatus(_ context.Context, itemID uuid.UUID) (models.ContractStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contractStatusLocked(itemID)
}

func (s *Store) contractStatusLocked(itemID uuid.UUID) (models.ContractStatus, error) {
	item, ok := s.items[itemID]
	if !ok {
		return "", scheduling.ErrNotFound.WithDetail("contract item")
	}
	c, ok := s.contracts[item.ContractID]
	if !ok {
		return "", scheduling.ErrNotFound.WithDetail("contract")
	}
	return c.Status, nil
}

func (s *Store) StudentForItem(_ context.Context, itemID uuid.UUID) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[itemID]
	if !ok {
		return nil, scheduling.ErrNotFound.WithDetail("contract item")
	}
	st, ok := s.students[s.contracts[item.ContractID].StudentID]
	if !ok {
		return nil, scheduling.ErrNotFound.WithDetail("student")
	}
	return &st, nil
}

func (s *Store) Instructor(_ context.Context, instructorID uuid.UUID) (*models.Instructor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.instructors[instructorID]
	if !ok {
		return nil, scheduling.ErrNotFound.WithDetail("instructor")
	}
	in.Availability = append([]models.InstructorAvailability(nil), in.Availability...)
	return &in, nil
}

func (s *Store) Vehicle(_ context.Context, vehicleID uuid.UUID) (*models.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[vehicleID]
	if !ok {
		return nil, scheduling.ErrNotFound.WithDetail("vehicle")
	}
	return &v, nil
}

func (s *Store) Lesson(_ context.Context, lessonID uuid.UUID) (*models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lessons[lessonID]
	if !ok {
		return nil, scheduling.ErrNotFound.WithDetail("lesson")
	}
	return &l, nil
}

func (s *Store) LessonsForItem(_ context.Context, itemID uuid.UUID) ([]models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Lesson{}
	for _, id := range s.lessonsOrder {
		if l := s.lessons[id]; l.ContractItemID == itemID {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := models.DateKey(out[i].LessonDate), models.DateKey(out[j].LessonDate)
		if di != dj {
			return di < dj
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s *Store) CountLessons(_ context.Context, itemID uuid.UUID, statuses ...models.LessonStatus) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked(itemID, statuses...), nil
}

func (s *Store) countLocked(itemID uuid.UUID, statuses ...models.LessonStatus) int {
	n := 0
	for _, l := range s.lessons {
		if l.ContractItemID != itemID {
			continue
		}
		for _, st := range statuses {
			if l.Status == st {
				n++
				break
			}
		}
	}
	return n
}

func (s *Store) ActiveLessonsOn(_ context.Context, date datatypes.Date, instructorID, vehicleID uuid.UUID) ([]models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeOnLocked(date, instructorID, vehicleID), nil
}

func (s *Store) activeOnLocked(date datatypes.Date, instructorID, vehicleID uuid.UUID) []models.Lesson {
	day := models.DateKey(date)
	var out []models.Lesson
	for _, id := range s.lessonsOrder {
		l := s.lessons[id]
		if l.Status == models.LessonCancelled || models.DateKey(l.LessonDate) != day {
			continue
		}
		if l.InstructorID == instructorID || l.VehicleID == vehicleID {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store) InsertLesson(_ context.Context, lesson *models.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, err := s.contractStatusLocked(lesson.ContractItemID)
	if err != nil {
		return err
	}
	if !status.IsActive() {
		return scheduling.ErrContractNotActive
	}
	item := s.items[lesson.ContractItemID]
	used := s.countLocked(item.ID, models.ConsumingStatuses...)
	if scheduling.Remaining(item.Quantity, used) <= 0 {
		return scheduling.ErrNoCreditsAvailable
	}
	conflicts := scheduling.FindConflicts(s.activeOnLocked(lesson.LessonDate, lesson.InstructorID, lesson.VehicleID), scheduling.ConflictQuery{
		ExcludeLessonID: lesson.ID,
		InstructorID:    lesson.InstructorID,
		VehicleID:       lesson.VehicleID,
		Date:            lesson.LessonDate,
		Start:           lesson.StartTime,
		End:             lesson.EndTime,
	})
	if len(conflicts) > 0 {
		details := make([]string, len(conflicts))
		for i, c := range conflicts {
			details[i] = c.Details
		}
		return scheduling.ErrResourceConflict.WithDetail(strings.Join(details, "; "))
	}

	ensureID(&lesson.ID)
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now()
	}
	s.lessons[lesson.ID] = *lesson
	s.lessonsOrder = append(s.lessonsOrder, lesson.ID)
	return nil
}

func (s *Store) TransitionLesson(_ context.Context, t scheduling.Transition) (*models.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.lessons[t.LessonID]
	if !ok {
		return nil, scheduling.ErrNotFound.WithDetail("lesson")
	}
	status, err := s.contractStatusLocked(l.ContractItemID)
	if err != nil {
		return nil, err
	}
	if !status.IsActive() {
		return nil, scheduling.ErrContractNotActive
	}
	if l.Status != models.LessonScheduled {
		return nil, scheduling.ErrLessonNotSchedulable.WithDetail("lesson is " + string(l.Status))
	}
	t.Apply(&l)
	s.lessons[l.ID] = l
	return &l, nil
}

func (s *Store) MarkWebhookSent(_ context.Context, lessonID uuid.UUID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[lessonID]
	if !ok {
		return false, scheduling.ErrNotFound.WithDetail("lesson")
	}
	if l.WebhookSentAt != nil {
		return false, nil
	}
	l.WebhookSentAt = &at
	s.lessons[lessonID] = l
	return true, nil
}

func (s *Store) PendingWebhooks(_ context.Context, scheduledBefore time.Time, limit int) ([]models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Lesson
	for _, id := range s.lessonsOrder {
		l := s.lessons[id]
		if l.WebhookSentAt != nil || l.Status != models.LessonScheduled || !l.ScheduledAt.Before(scheduledBefore) {
			continue
		}
		out = append(out, l)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) UnmarkedLessons(_ context.Context, date datatypes.Date, endedBy datatypes.Time, limit int) ([]models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	day := models.DateKey(date)
	var out []models.Lesson
	for _, l := range s.lessons {
		if l.Status != models.LessonScheduled {
			continue
		}
		if d := models.DateKey(l.LessonDate); d < day || (d == day && l.EndTime <= endedBy) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := models.DateKey(out[i].LessonDate), models.DateKey(out[j].LessonDate)
		if di != dj {
			return di < dj
		}
		return out[i].StartTime < out[j].StartTime
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ scheduling.Repository = (*Store)(nil)
