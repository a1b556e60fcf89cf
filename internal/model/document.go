package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentKind enum constants
const (
	KindBill    = "bill"
	KindInvoice = "invoice"
)

// DocumentStatus enum constants
const (
	StatusConcept = "concept"
)

// Document is a bill or invoice attached to an arbitrary domain record.
// Total, Tax and Discount are derived fields: they are recomputed from the
// document's lines on every mutation and never written directly.
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      string    `gorm:"type:varchar(20);not null;index" json:"kind"` // bill, invoice
	Reference string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"reference"`
	Status    string    `gorm:"type:varchar(30);not null;default:'concept'" json:"status"`
	Currency  string    `gorm:"type:varchar(3);not null" json:"currency"`

	// Monetary amounts in minor units (cents)
	Total    int64 `gorm:"not null;default:0" json:"total"`
	Tax      int64 `gorm:"not null;default:0" json:"tax"`
	Discount int64 `gorm:"not null;default:0" json:"discount"`

	// Polymorphic owner: the domain record this document was created for.
	// Set once at creation, never reassigned.
	RelatedType string `gorm:"type:varchar(100);not null;index:idx_documents_related" json:"related_type"`
	RelatedID   string `gorm:"type:varchar(100);not null;index:idx_documents_related" json:"related_id"`

	Lines []Line `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"lines"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.Reference == "" {
		d.Reference = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = StatusConcept
	}
	return nil
}
