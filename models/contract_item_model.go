package models

import (
	"time"

	"github.com/google/uuid"
)

// ContractItem is one purchased line of a contract. Quantity never changes
// after creation; extra credits arrive as a new item with IsExtra set.
type ContractItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ContractID    uuid.UUID `gorm:"type:uuid;not null;index" json:"contract_id"`
	CatalogItemID uuid.UUID `gorm:"type:uuid;not null" json:"catalog_item_id"`
	Quantity      int       `gorm:"not null;check:quantity >= 0" json:"quantity"`
	IsExtra       bool      `gorm:"not null;default:false" json:"is_extra"`

	Contract    Contract    `gorm:"foreignkey:ContractID" json:"-"`
	CatalogItem CatalogItem `gorm:"foreignkey:CatalogItemID" json:"catalog_item"`

	CreatedAt time.Time `json:"created_at"`
}

func (i ContractItem) IsLesson() bool { return i.CatalogItem.IsLesson }
