package scheduling

import (
	"context"
	"math"

	"github.com/anjiri1684/driving_school/models"
	"github.com/google/uuid"
)

type Progress struct {
	Completed  int     `json:"completed"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

func NewProgress(completed, total int) Progress {
	p := Progress{Completed: completed, Total: total}
	if total > 0 {
		p.Percentage = math.Round(float64(completed)/float64(total)*10000) / 100
	}
	return p
}

type ItemSummary struct {
	ContractItemID   uuid.UUID               `json:"contract_item_id"`
	Name             string                  `json:"name"`
	IsExtra          bool                    `json:"is_extra"`
	VehicleCategory  *models.VehicleCategory `json:"vehicle_category"`
	AvailableCredits int                     `json:"available_credits"`
	Progress         Progress                `json:"progress"`
}

type ContractSummary struct {
	ContractID       uuid.UUID             `json:"contract_id"`
	Status           models.ContractStatus `json:"status"`
	Items            []ItemSummary         `json:"items"`
	AvailableCredits int                   `json:"available_credits"`
	Progress         Progress              `json:"progress"`
}

// Progress is the completed share of a lesson item's purchased quantity.
func (m *Manager) Progress(ctx context.Context, itemID uuid.UUID) (Progress, error) {
	item, err := m.ledger.lessonItem(ctx, itemID)
	if err != nil {
		return Progress{}, err
	}
	completed, err := m.repo.CountLessons(ctx, itemID, models.LessonCompleted)
	if err != nil {
		return Progress{}, err
	}
	return NewProgress(completed, item.Quantity), nil
}

// ContractSummary aggregates credits and progress over every lesson item of a
// contract, original and extra purchases alike.
func (m *Manager) ContractSummary(ctx context.Context, contractID uuid.UUID) (*ContractSummary, error) {
	contract, err := m.repo.Contract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	summary := &ContractSummary{ContractID: contract.ID, Status: contract.Status, Items: []ItemSummary{}}
	var completed, total int
	for _, item := range contract.Items {
		if !item.IsLesson() {
			continue
		}
		credits, err := m.ledger.AvailableCredits(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		progress, err := m.Progress(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		summary.Items = append(summary.Items, ItemSummary{
			ContractItemID:   item.ID,
			Name:             item.CatalogItem.Name,
			IsExtra:          item.IsExtra,
			VehicleCategory:  item.CatalogItem.VehicleCategory,
			AvailableCredits: credits,
			Progress:         progress,
		})
		summary.AvailableCredits += credits
		completed += progress.Completed
		total += progress.Total
	}
	summary.Progress = NewProgress(completed, total)
	return summary, nil
}
