package scheduling_test

import (
	"context"
	"testing"

	"github.com/anjiri1684/driving_school/models"
	"github.com/anjiri1684/driving_school/scheduling"
	"github.com/google/uuid"
)

func TestNewProgress(t *testing.T) {
	tests := []struct {
		completed, total int
		want             float64
	}{
		{0, 0, 0},
		{0, 20, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{20, 20, 100},
	}

	for _, tt := range tests {
		if got := scheduling.NewProgress(tt.completed, tt.total); got.Percentage != tt.want {
			t.Errorf("NewProgress(%d, %d) = %v, want %v", tt.completed, tt.total, got.Percentage, tt.want)
		}
	}
}

func TestRemaining(t *testing.T) {
	if got := scheduling.Remaining(5, 2); got != 3 {
		t.Errorf("Remaining(5, 2) = %d", got)
	}
	if got := scheduling.Remaining(2, 3); got != 0 {
		t.Errorf("Remaining(2, 3) = %d, want floor at 0", got)
	}
}

func TestItemProgressCountsOnlyCompleted(t *testing.T) {
	f := newFixture(t, 4)
	ctx := context.Background()

	done := f.book(t, "2025-03-10", "08:00")
	missed := f.book(t, "2025-03-10", "09:00")
	f.book(t, "2025-03-10", "10:00")
	if _, err := f.manager.MarkCompleted(ctx, done.ID, nil, f.actor); err != nil {
		t.Fatal(err)
	}
	if _, err := f.manager.MarkNoShow(ctx, missed.ID, nil, f.actor); err != nil {
		t.Fatal(err)
	}

	p, err := f.manager.Progress(ctx, f.item.ID)
	if err != nil {
		t.Fatalf("Progress: %v", err)
	}
	if p.Completed != 1 || p.Total != 4 || p.Percentage != 25 {
		t.Errorf("progress = %+v, want 1/4 25%%", p)
	}
}

func TestContractSummary(t *testing.T) {
	f := newFixture(t, 2)
	ctx := context.Background()

	extra := f.store.AddContractItem(models.ContractItem{ContractID: f.contract.ID, CatalogItemID: f.item.CatalogItemID, Quantity: 3, IsExtra: true})
	exam := f.store.AddCatalogItem(models.CatalogItem{Name: "Taxa de exame"})
	f.store.AddContractItem(models.ContractItem{ContractID: f.contract.ID, CatalogItemID: exam.ID, Quantity: 1})

	a := f.book(t, "2025-03-10", "08:00")
	if _, err := f.manager.MarkCompleted(ctx, a.ID, nil, f.actor); err != nil {
		t.Fatal(err)
	}
	req := f.request("2025-03-10", "09:00")
	req.ContractItemID = extra.ID
	if _, err := f.manager.CreateLesson(ctx, req); err != nil {
		t.Fatal(err)
	}

	summary, err := f.manager.ContractSummary(ctx, f.contract.ID)
	if err != nil {
		t.Fatalf("ContractSummary: %v", err)
	}
	if len(summary.Items) != 2 {
		t.Fatalf("summary has %d items, want the 2 lesson items", len(summary.Items))
	}
	if summary.Items[0].IsExtra || !summary.Items[1].IsExtra {
		t.Errorf("original item should come before the extra purchase")
	}
	if summary.AvailableCredits != 3 {
		t.Errorf("available credits = %d, want 3", summary.AvailableCredits)
	}
	if summary.Progress.Completed != 1 || summary.Progress.Total != 5 || summary.Progress.Percentage != 20 {
		t.Errorf("progress = %+v, want 1/5 20%%", summary.Progress)
	}
	if summary.Status != models.ContractActive {
		t.Errorf("status = %s", summary.Status)
	}

	_, err = f.manager.ContractSummary(ctx, uuid.New())
	expectCode(t, err, scheduling.ErrNotFound)
}
