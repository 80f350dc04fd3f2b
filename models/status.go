package models

type ContractStatus string

const (
	ContractActive    ContractStatus = "active"
	ContractCompleted ContractStatus = "completed"
	ContractInactive  ContractStatus = "inactive"
)

func (s ContractStatus) IsActive() bool { return s == ContractActive }

// LessonStatus is the lifecycle state of a lesson. Scheduled is the only
// non-terminal state; every transition starts from it.
type LessonStatus string

const (
	LessonScheduled LessonStatus = "scheduled"
	LessonCompleted LessonStatus = "completed"
	LessonNoShow    LessonStatus = "no_show"
	LessonCancelled LessonStatus = "cancelled"
)

var lessonTransitions = map[LessonStatus][]LessonStatus{
	LessonScheduled: {LessonCompleted, LessonNoShow, LessonCancelled},
	LessonCompleted: {},
	LessonNoShow:    {},
	LessonCancelled: {},
}

func (s LessonStatus) IsValid() bool {
	_, ok := lessonTransitions[s]
	return ok
}

func (s LessonStatus) CanTransitionTo(target LessonStatus) bool {
	for _, t := range lessonTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s LessonStatus) IsTerminal() bool {
	return len(lessonTransitions[s]) == 0
}

// ConsumesCredit reports whether a lesson in this status holds one credit of
// its contract item. Only cancelled lessons give the credit back.
func (s LessonStatus) ConsumesCredit() bool {
	return s == LessonScheduled || s == LessonCompleted || s == LessonNoShow
}

// ConsumingStatuses lists the statuses counted against a contract item's quantity.
var ConsumingStatuses = []LessonStatus{LessonScheduled, LessonCompleted, LessonNoShow}
