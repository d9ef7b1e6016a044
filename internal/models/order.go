package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	Base
	OrderUniqueID  string          `gorm:"uniqueIndex;not null" json:"order_unique_id"`
	ClientID       uint64          `gorm:"not null;index" json:"client_id,string"`
	Client         *Client         `json:"client,omitempty"`
	CurrencyTypeID uint64          `gorm:"not null" json:"currency_type_id,string"`
	CurrencyType   *CurrencyType   `json:"currency_type,omitempty"`
	ProductLink    string          `json:"product_link"`
	Truck          string          `json:"truck"`
	Description    string          `json:"description"`
	Summa          decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"summa"`
	IsCancelled    bool            `gorm:"not null;index" json:"is_cancelled"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Operations     []Operation     `gorm:"foreignKey:OrderID" json:"operations,omitempty"`
	CurrentStatus  string          `gorm:"-" json:"current_status,omitempty"`
}

// OrderItem holds the unit price captured when the order was placed.
type OrderItem struct {
	Model
	OrderID   string          `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uint64          `gorm:"not null;index" json:"product_id,string"`
	Product   *Product        `json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal sums the snapshotted line totals.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}
