package scheduling

import (
	"context"
	"fmt"
	"strings"

	"github.com/anjiri1684/driving_school/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BookingRequest asks for one lesson on a contract item.
type BookingRequest struct {
	ContractItemID uuid.UUID
	InstructorID   uuid.UUID
	VehicleID      uuid.UUID
	Date           datatypes.Date
	StartTime      datatypes.Time

	Topic    *string
	Location *string
	Notes    *string
	Actor    uuid.UUID
}

// slot is what a successful eligibility check resolves.
type slot struct {
	EndTime         datatypes.Time
	DurationMinutes int
}

// Validator is the single gate in front of every lesson creation. It never
// writes; its answer is advisory until the repository accepts the insert.
type Validator struct {
	repo    Repository
	ledger  *Ledger
	checker ResourceChecker
}

func NewValidator(repo Repository, ledger *Ledger, checker ResourceChecker) *Validator {
	return &Validator{repo: repo, ledger: ledger, checker: checker}
}

// CanSchedule runs the eligibility pipeline and returns the derived end time.
func (v *Validator) CanSchedule(ctx context.Context, req BookingRequest) (datatypes.Time, error) {
	s, err := v.check(ctx, req)
	if err != nil {
		return 0, err
	}
	return s.EndTime, nil
}

func (v *Validator) check(ctx context.Context, req BookingRequest) (*slot, error) {
	status, err := v.repo.ContractStatus(ctx, req.ContractItemID)
	if err != nil {
		return nil, err
	}
	if !status.IsActive() {
		return nil, ErrContractNotActive.WithDetail(fmt.Sprintf("contract is %s", status))
	}

	instructor, err := v.repo.Instructor(ctx, req.InstructorID)
	if err != nil {
		return nil, err
	}
	vehicle, err := v.repo.Vehicle(ctx, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !vehicle.IsActive {
		return nil, ErrVehicleUnavailable.WithDetail(fmt.Sprintf("vehicle %s is retired", vehicle.Plate))
	}
	duration := instructor.LessonDurationMinutes
	if duration <= 0 {
		return nil, ErrInstructorUnavailable.WithDetail("instructor has no lesson duration configured")
	}
	end := models.AddMinutes(req.StartTime, duration)
	if end > models.Day {
		return nil, ErrInstructorUnavailable.WithDetail("lesson would end after midnight")
	}

	credits, err := v.ledger.AvailableCredits(ctx, req.ContractItemID)
	if err != nil {
		return nil, err
	}
	if credits <= 0 {
		return nil, ErrNoCreditsAvailable
	}

	conflicts, err := v.checker.CheckLessonConflicts(ctx, ConflictQuery{
		InstructorID: req.InstructorID,
		VehicleID:    req.VehicleID,
		Date:         req.Date,
		Start:        req.StartTime,
		End:          end,
	})
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		details := make([]string, len(conflicts))
		for i, c := range conflicts {
			details[i] = c.Details
		}
		return nil, ErrResourceConflict.WithDetail(strings.Join(details, "; "))
	}

	availability, err := v.checker.CheckInstructorAvailability(ctx, req.InstructorID, req.Date, req.StartTime, end)
	if err != nil {
		return nil, err
	}
	if !availability.IsAvailable {
		return nil, ErrInstructorUnavailable.WithDetail(availability.Reason)
	}

	ok, err := v.checker.ValidateInstructorVehicleCategory(ctx, req.InstructorID, req.VehicleID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCategoryMismatch.WithDetail(fmt.Sprintf("license %s cannot teach on a %s", instructor.LicenseCategory, vehicle.Category))
	}
	item, err := v.repo.ContractItem(ctx, req.ContractItemID)
	if err != nil {
		return nil, err
	}
	if want := item.CatalogItem.VehicleCategory; want != nil && *want != vehicle.Category {
		return nil, ErrCategoryMismatch.WithDetail(fmt.Sprintf("contract item requires a %s, vehicle is a %s", *want, vehicle.Category))
	}

	return &slot{EndTime: end, DurationMinutes: duration}, nil
}
