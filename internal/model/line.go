package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TaxDetail is one tax rule applied to a line: either a percentage of the
// base amount or a fixed amount in cents. Exactly one of Percentage or
// Amount is set.
type TaxDetail struct {
	Identifier string           `json:"identifier"`
	Percentage *decimal.Decimal `json:"tax_percentage,omitempty"`
	Amount     *int64           `json:"tax_amount,omitempty"`
}

// Line is a single charge entry on a Document. Lines are immutable once
// created; recalculation only reads them.
type Line struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID `gorm:"type:uuid;not null;index" json:"document_id"`

	Amount      int64       `gorm:"not null" json:"amount"` // final, tax-inclusive, in cents
	Description string      `gorm:"type:text" json:"description"`
	Tax         int64       `gorm:"not null;default:0" json:"tax"`
	TaxDetails  []TaxDetail `gorm:"serializer:json" json:"tax_details"`

	IsFree          bool `gorm:"not null;default:false" json:"is_free"`
	IsComplimentary bool `gorm:"not null;default:false" json:"is_complimentary"`

	// Per-line discount, folded into the document discount for normal lines.
	// No code path populates it today; kept for schema compatibility.
	Discount int64 `gorm:"not null;default:0" json:"discount"`

	// Polymorphic item the charge is for (e.g. a product)
	InvoiceableType string `gorm:"type:varchar(100);not null;index:idx_document_lines_invoiceable" json:"invoiceable_type"`
	InvoiceableID   string `gorm:"type:varchar(100);not null;index:idx_document_lines_invoiceable" json:"invoiceable_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (l *Line) TableName() string {
	return "document_lines"
}

func (l *Line) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
