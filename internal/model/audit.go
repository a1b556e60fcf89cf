package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ActionCreateBill    = "CREATE_BILL"
	ActionCreateInvoice = "CREATE_INVOICE"
	ActionAddLine       = "ADD_LINE"
	ActionRecalculate   = "RECALCULATE"
	ActionExportPDF     = "EXPORT_PDF"
)

// AuditLog tracks who did what to which document and when. Entries are
// written best-effort and never fail the operation they describe.
type AuditLog struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Actor      string    `gorm:"type:varchar(100);index" json:"actor"` // JWT subject, empty if auth disabled
	Action     string    `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string    `gorm:"type:varchar(100);index" json:"entity_id"` // document reference
	EntityName string    `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    string    `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the action
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
