package scheduling

import "errors"

// Code identifies a business-rule rejection. Callers switch on it to pick a
// response; none of these are transient and the engine never retries them.
type Code string

const (
	CodeContractNotActive     Code = "contract_not_active"
	CodeNoCreditsAvailable    Code = "no_credits_available"
	CodeResourceConflict      Code = "resource_conflict"
	CodeInstructorUnavailable Code = "instructor_unavailable"
	CodeCategoryMismatch      Code = "category_mismatch"
	CodeVehicleUnavailable    Code = "vehicle_unavailable"
	CodeLessonNotSchedulable  Code = "lesson_not_schedulable"
	CodeNotFound              Code = "not_found"
	CodeNotLessonItem         Code = "not_lesson_item"
	CodeReasonRequired        Code = "reason_required"
)

type Error struct {
	Code    Code
	Message string
	Detail  string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Message
	}
	return e.Message + ": " + e.Detail
}

// Is matches any *Error with the same code, so a copy carrying a detail
// still satisfies errors.Is against the package sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) WithDetail(detail string) *Error {
	cp := *e
	cp.Detail = detail
	return &cp
}

var (
	ErrContractNotActive     = &Error{Code: CodeContractNotActive, Message: "contract is not active"}
	ErrNoCreditsAvailable    = &Error{Code: CodeNoCreditsAvailable, Message: "no lesson credits available for this contract item"}
	ErrResourceConflict      = &Error{Code: CodeResourceConflict, Message: "instructor or vehicle already booked in this time window"}
	ErrInstructorUnavailable = &Error{Code: CodeInstructorUnavailable, Message: "instructor is not available at this time"}
	ErrCategoryMismatch      = &Error{Code: CodeCategoryMismatch, Message: "vehicle category does not match instructor license or contracted category"}
	ErrVehicleUnavailable    = &Error{Code: CodeVehicleUnavailable, Message: "vehicle is not available for lessons"}
	ErrLessonNotSchedulable  = &Error{Code: CodeLessonNotSchedulable, Message: "lesson is no longer scheduled"}
	ErrNotFound              = &Error{Code: CodeNotFound, Message: "record not found"}
	ErrNotLessonItem         = &Error{Code: CodeNotLessonItem, Message: "contract item is not a lesson item"}
	ErrReasonRequired        = &Error{Code: CodeReasonRequired, Message: "cancellation reason is required"}
)

// CodeOf returns the rejection code carried by err, or "" for anything that
// is not a scheduling rejection.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
