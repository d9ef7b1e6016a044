package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is used by tables keyed by a uuid.
type Base struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// Model is used by tables keyed by an auto-increment integer. The id is
// rendered as a JSON string so large values survive JavaScript clients.
type Model struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id,string"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultStatusName is reported for orders without any operation.
const DefaultStatusName = "Pending"
