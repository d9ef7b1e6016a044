package models

import "time"

// Operation is one immutable status entry in an order's history.
type Operation struct {
	Model
	OrderID       string    `gorm:"type:uuid;not null;index" json:"order_id"`
	Order         *Order    `json:"order,omitempty"`
	StatusID      uint64    `gorm:"not null;index" json:"status_id,string"`
	Status        *Status   `json:"status,omitempty"`
	AdminID       uint64    `gorm:"not null;index" json:"admin_id,string"`
	Admin         *Admin    `json:"admin,omitempty"`
	Description   string    `json:"description"`
	OperationDate time.Time `gorm:"not null;index" json:"operation_date"`
}
