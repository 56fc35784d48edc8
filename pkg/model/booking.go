package model

import (
	"time"
)

const (
	PaymentStatusPaid = "paid"
)

// Booking links one student to one session. At most one booking may exist
// per (session_id, student_email) pair; the bookings collection carries a
// unique compound index on the pair.
type Booking struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SessionID    string    `json:"session_id" bson:"session_id" validate:"required,mongodb"`
	SessionTitle string    `json:"session_title" bson:"session_title"`
	TutorEmail   string    `json:"tutor_email" bson:"tutor_email"`
	StudentEmail string    `json:"student_email" bson:"student_email" validate:"required,email"`
	BookedAt     time.Time `json:"booked_at" bson:"booked_at"`
	// FeePaid and TransactionID stay empty until payment reconciliation runs.
	FeePaid       int    `json:"fee_paid,omitempty" bson:"fee_paid,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty" bson:"payment_status,omitempty" validate:"omitempty,oneof=paid"`
	TransactionID string `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
}
