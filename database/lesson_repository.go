package database

import (
	"context"
	"fmt"
	"time"

	"github.com/anjiri1684/driving_school/models"
	"github.com/anjiri1684/driving_school/scheduling"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LessonRepository is the Postgres-backed scheduling.Repository.
type LessonRepository struct {
	db *gorm.DB
}

func NewLessonRepository(db *gorm.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

var _ scheduling.Repository = (*LessonRepository)(nil)

func statusStrings(statuses []models.LessonStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func (r *LessonRepository) Contract(ctx context.Context, contractID uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("is_extra asc, created_at asc") }).
		Preload("Items.CatalogItem").
		First(&contract, "id = ?", contractID).Error
	if err != nil {
		return nil, notFound(err, "contract")
	}
	return &contract, nil
}

func (r *LessonRepository) ContractItem(ctx context.Context, itemID uuid.UUID) (*models.ContractItem, error) {
	var item models.ContractItem
	if err := r.db.WithContext(ctx).Preload("CatalogItem").First(&item, "id = ?", itemID).Error; err != nil {
		return nil, notFound(err, "contract item")
	}
	return &item, nil
}

// ContractStatus always reads the row; callers rely on it being fresh.
func (r *LessonRepository) ContractStatus(ctx context.Context, itemID uuid.UUID) (models.ContractStatus, error) {
	return contractStatus(r.db.WithContext(ctx), itemID)
}

func contractStatus(tx *gorm.DB, itemID uuid.UUID) (models.ContractStatus, error) {
	var row struct{ Status models.ContractStatus }
	err := tx.Table("contract_items").
		Select("contracts.status").
		Joins("JOIN contracts ON contracts.id = contract_items.contract_id").
		Where("contract_items.id = ?", itemID).
		Take(&row).Error
	if err != nil {
		return "", notFound(err, "contract item")
	}
	return row.Status, nil
}

func (r *LessonRepository) StudentForItem(ctx context.Context, itemID uuid.UUID) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Model(&models.Student{}).
		Select("students.*").
		Joins("JOIN contracts ON contracts.student_id = students.id").
		Joins("JOIN contract_items ON contract_items.contract_id = contracts.id").
		Where("contract_items.id = ?", itemID).
		Take(&student).Error
	if err != nil {
		return nil, notFound(err, "student")
	}
	return &student, nil
}

func (r *LessonRepository) Instructor(ctx context.Context, instructorID uuid.UUID) (*models.Instructor, error) {
	var instructor models.Instructor
	if err := r.db.WithContext(ctx).Preload("Availability").First(&instructor, "id = ?", instructorID).Error; err != nil {
		return nil, notFound(err, "instructor")
	}
	return &instructor, nil
}

func (r *LessonRepository) Vehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).First(&vehicle, "id = ?", vehicleID).Error; err != nil {
		return nil, notFound(err, "vehicle")
	}
	return &vehicle, nil
}

func (r *LessonRepository) Lesson(ctx context.Context, lessonID uuid.UUID) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.WithContext(ctx).First(&lesson, "id = ?", lessonID).Error; err != nil {
		return nil, notFound(err, "lesson")
	}
	return &lesson, nil
}

func (r *LessonRepository) LessonsForItem(ctx context.Context, itemID uuid.UUID) ([]models.Lesson, error) {
	lessons := []models.Lesson{}
	err := r.db.WithContext(ctx).
		Where("contract_item_id = ?", itemID).
		Order("lesson_date asc, start_time asc").
		Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) CountLessons(ctx context.Context, itemID uuid.UUID, statuses ...models.LessonStatus) (int, error) {
	return countLessons(r.db.WithContext(ctx), itemID, statuses)
}

func countLessons(tx *gorm.DB, itemID uuid.UUID, statuses []models.LessonStatus) (int, error) {
	var n int64
	err := tx.Model(&models.Lesson{}).
		Where("contract_item_id = ? AND status IN ?", itemID, statusStrings(statuses)).
		Count(&n).Error
	return int(n), err
}

func (r *LessonRepository) ActiveLessonsOn(ctx context.Context, date datatypes.Date, instructorID, vehicleID uuid.UUID) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := r.db.WithContext(ctx).
		Where("lesson_date = ? AND status <> ?", date, string(models.LessonCancelled)).
		Where("instructor_id = ? OR vehicle_id = ?", instructorID, vehicleID).
		Order("start_time asc").
		Find(&lessons).Error
	return lessons, err
}

// InsertLesson locks the contract item row so concurrent bookings against the
// same item queue up behind each other, re-counts the credits, and leaves
// instructor/vehicle overlap to the exclusion constraints.
func (r *LessonRepository) InsertLesson(ctx context.Context, lesson *models.Lesson) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.ContractItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&item, "id = ?", lesson.ContractItemID).Error; err != nil {
			return notFound(err, "contract item")
		}
		status, err := contractStatus(tx, item.ID)
		if err != nil {
			return err
		}
		if !status.IsActive() {
			return scheduling.ErrContractNotActive
		}
		used, err := countLessons(tx, item.ID, models.ConsumingStatuses)
		if err != nil {
			return err
		}
		if scheduling.Remaining(item.Quantity, used) <= 0 {
			return scheduling.ErrNoCreditsAvailable
		}
		return tx.Omit(clause.Associations).Create(lesson).Error
	})
	return mapPGError(err)
}

// TransitionLesson applies t as one conditional UPDATE. When nothing matches,
// the lesson is re-read to report which precondition failed.
func (r *LessonRepository) TransitionLesson(ctx context.Context, t scheduling.Transition) (*models.Lesson, error) {
	db := r.db.WithContext(ctx)
	activeItems := db.Table("contract_items").
		Select("contract_items.id").
		Joins("JOIN contracts ON contracts.id = contract_items.contract_id").
		Where("contracts.status = ?", string(models.ContractActive))

	res := db.Model(&models.Lesson{}).
		Where("id = ? AND status = ?", t.LessonID, string(models.LessonScheduled)).
		Where("contract_item_id IN (?)", activeItems).
		Updates(t.Columns())
	if res.Error != nil {
		return nil, mapPGError(res.Error)
	}

	lesson, err := r.Lesson(ctx, t.LessonID)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 1 {
		return lesson, nil
	}
	if lesson.Status != models.LessonScheduled {
		return nil, scheduling.ErrLessonNotSchedulable.WithDetail("lesson is " + string(lesson.Status))
	}
	status, err := r.ContractStatus(ctx, lesson.ContractItemID)
	if err != nil {
		return nil, err
	}
	if !status.IsActive() {
		return nil, scheduling.ErrContractNotActive
	}
	return nil, fmt.Errorf("transition of lesson %s to %s matched no rows", t.LessonID, t.To)
}

func (r *LessonRepository) MarkWebhookSent(ctx context.Context, lessonID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ? AND webhook_sent_at IS NULL", lessonID).
		Update("webhook_sent_at", at)
	return res.RowsAffected == 1, res.Error
}

func (r *LessonRepository) PendingWebhooks(ctx context.Context, scheduledBefore time.Time, limit int) ([]models.Lesson, error) {
	var lessons []models.Lesson
	q := r.db.WithContext(ctx).
		Where("webhook_sent_at IS NULL AND status = ? AND scheduled_at < ?", string(models.LessonScheduled), scheduledBefore).
		Order("scheduled_at asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&lessons).Error
	return lessons, err
}

func (r *LessonRepository) UnmarkedLessons(ctx context.Context, date datatypes.Date, endedBy datatypes.Time, limit int) ([]models.Lesson, error) {
	var lessons []models.Lesson
	q := r.db.WithContext(ctx).
		Where("status = ?", string(models.LessonScheduled)).
		Where("lesson_date < ? OR (lesson_date = ? AND end_time <= ?)", date, date, endedBy).
		Order("lesson_date asc, start_time asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&lessons).Error
	return lessons, err
}
