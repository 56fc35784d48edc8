package model

import (
	"time"
)

// Payment is one entry in the append-only ledger of gateway-confirmed
// charges. Entries are never updated or deleted; the ledger is the audit
// trail independent of booking state.
type Payment struct {
	ID            string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SessionID     string    `json:"session_id" bson:"session_id" validate:"required,mongodb"`
	StudentEmail  string    `json:"student_email" bson:"student_email" validate:"required,email"`
	Amount        int       `json:"amount" bson:"amount" validate:"min=0"`
	Method        string    `json:"method" bson:"method"`
	TransactionID string    `json:"transaction_id" bson:"transaction_id" validate:"required"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	// PaidAtDisplay is the human-readable timestamp the original ledger
	// screens render; CreatedAt remains the sortable value.
	PaidAtDisplay string `json:"paid_at_display" bson:"paid_at_display"`
}
