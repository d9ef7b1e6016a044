package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if err := o.Base.BeforeCreate(tx); err != nil {
		return err
	}
	if o.OrderUniqueID == "" {
		o.OrderUniqueID = NewOrderUniqueID()
	}
	return nil
}

// NewOrderUniqueID returns the human facing order number, e.g. ORD-3F9A1C07B2.
func NewOrderUniqueID() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "ORD-" + strings.ToUpper(id[:10])
}

func (op *Operation) BeforeCreate(tx *gorm.DB) error {
	if op.OperationDate.IsZero() {
		op.OperationDate = time.Now()
	}
	return nil
}

// Operations are append-only.
func (op *Operation) BeforeUpdate(tx *gorm.DB) error {
	return ErrOperationImmutable
}

func (op *Operation) BeforeDelete(tx *gorm.DB) error {
	return ErrOperationImmutable
}

// BeforeCreate covers writers that bypass the product service, such as the seed command.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

func (p *Product) AfterFind(tx *gorm.DB) error {
	if p.ImagePath == nil || *p.ImagePath == "" {
		return nil
	}

	registryMu.RLock()
	generator, ttl := urlGenerator, signedURLTTL
	registryMu.RUnlock()

	if generator == nil {
		return nil
	}

	url, err := generator.GetSignedURL(tx.Statement.Context, *p.ImagePath, ttl)
	if err != nil {
		log.Warn("failed to sign image url for product %d: %v", p.ID, err)
		return nil
	}
	p.ImageURL = url
	return nil
}
