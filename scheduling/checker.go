package scheduling

import (
	"context"
	"fmt"
	"strings"

	"github.com/anjiri1684/driving_school/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ConflictQuery struct {
	ExcludeLessonID uuid.UUID
	InstructorID    uuid.UUID
	VehicleID       uuid.UUID
	Date            datatypes.Date
	Start           datatypes.Time
	End             datatypes.Time
}

type Conflict struct {
	LessonID uuid.UUID `json:"lesson_id"`
	Details  string    `json:"details"`
}

type Availability struct {
	IsAvailable bool   `json:"is_available"`
	Reason      string `json:"reason,omitempty"`
}

// ResourceChecker answers the resource questions asked before a booking.
// The default implementation reads the repository; tests and alternative
// backends may inject their own.
type ResourceChecker interface {
	CheckLessonConflicts(ctx context.Context, q ConflictQuery) ([]Conflict, error)
	CheckInstructorAvailability(ctx context.Context, instructorID uuid.UUID, date datatypes.Date, start, end datatypes.Time) (Availability, error)
	ValidateInstructorVehicleCategory(ctx context.Context, instructorID, vehicleID uuid.UUID) (bool, error)
}

type repoChecker struct {
	repo Repository
}

func NewResourceChecker(repo Repository) ResourceChecker {
	return &repoChecker{repo: repo}
}

func (c *repoChecker) CheckLessonConflicts(ctx context.Context, q ConflictQuery) ([]Conflict, error) {
	lessons, err := c.repo.ActiveLessonsOn(ctx, q.Date, q.InstructorID, q.VehicleID)
	if err != nil {
		return nil, err
	}
	return FindConflicts(lessons, q), nil
}

// FindConflicts returns one entry per resource clash between q and the given
// lessons. Cancelled lessons and q.ExcludeLessonID are ignored.
func FindConflicts(lessons []models.Lesson, q ConflictQuery) []Conflict {
	var conflicts []Conflict
	day := models.DateKey(q.Date)
	for _, l := range lessons {
		if l.ID == q.ExcludeLessonID || l.Status == models.LessonCancelled {
			continue
		}
		if models.DateKey(l.LessonDate) != day || !models.Overlaps(q.Start, q.End, l.StartTime, l.EndTime) {
			continue
		}
		window := models.ClockString(l.StartTime) + "-" + models.ClockString(l.EndTime)
		if l.InstructorID == q.InstructorID {
			conflicts = append(conflicts, Conflict{LessonID: l.ID, Details: fmt.Sprintf("instructor already has a lesson %s on %s", window, day)})
		}
		if l.VehicleID == q.VehicleID {
			conflicts = append(conflicts, Conflict{LessonID: l.ID, Details: fmt.Sprintf("vehicle already booked %s on %s", window, day)})
		}
	}
	return conflicts
}

func (c *repoChecker) CheckInstructorAvailability(ctx context.Context, instructorID uuid.UUID, date datatypes.Date, start, end datatypes.Time) (Availability, error) {
	instructor, err := c.repo.Instructor(ctx, instructorID)
	if err != nil {
		return Availability{}, err
	}
	return WeeklyAvailability(instructor, date, start, end), nil
}

// WeeklyAvailability checks [start, end) against the instructor's weekly
// windows. An instructor without any configured window is always available.
func WeeklyAvailability(instructor *models.Instructor, date datatypes.Date, start, end datatypes.Time) Availability {
	if !instructor.IsActive {
		return Availability{Reason: "instructor is inactive"}
	}
	if len(instructor.Availability) == 0 {
		return Availability{IsAvailable: true}
	}
	weekday := models.Weekday(date)
	var windows []string
	for _, w := range instructor.Availability {
		if w.Weekday != int(weekday) {
			continue
		}
		if w.Contains(start, end) {
			return Availability{IsAvailable: true}
		}
		windows = append(windows, models.ClockString(w.StartTime)+"-"+models.ClockString(w.EndTime))
	}
	if len(windows) == 0 {
		return Availability{Reason: fmt.Sprintf("instructor does not work on %s", weekday)}
	}
	return Availability{Reason: fmt.Sprintf("outside instructor hours on %s (%s)", weekday, strings.Join(windows, ", "))}
}

func (c *repoChecker) ValidateInstructorVehicleCategory(ctx context.Context, instructorID, vehicleID uuid.UUID) (bool, error) {
	instructor, err := c.repo.Instructor(ctx, instructorID)
	if err != nil {
		return false, err
	}
	vehicle, err := c.repo.Vehicle(ctx, vehicleID)
	if err != nil {
		return false, err
	}
	return instructor.LicenseCategory.Covers(vehicle.Category), nil
}
