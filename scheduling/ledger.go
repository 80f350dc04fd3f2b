package scheduling

import (
	"context"

	"github.com/anjiri1684/driving_school/models"
	"github.com/google/uuid"
)

// Ledger derives credit balances from lesson statuses. There is no stored
// counter: a cancelled lesson returns its credit simply by no longer being
// counted.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

func (l *Ledger) AvailableCredits(ctx context.Context, itemID uuid.UUID) (int, error) {
	item, err := l.lessonItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	used, err := l.repo.CountLessons(ctx, itemID, models.ConsumingStatuses...)
	if err != nil {
		return 0, err
	}
	return Remaining(item.Quantity, used), nil
}

func (l *Ledger) lessonItem(ctx context.Context, itemID uuid.UUID) (*models.ContractItem, error) {
	item, err := l.repo.ContractItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.IsLesson() {
		return nil, ErrNotLessonItem
	}
	return item, nil
}

// Remaining is quantity minus used, floored at zero.
func Remaining(quantity, used int) int {
	if used >= quantity {
		return 0
	}
	return quantity - used
}
