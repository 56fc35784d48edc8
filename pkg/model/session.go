package model

import (
	"time"
)

const (
	SessionStatusPending  = "pending"
	SessionStatusApproved = "approved"
	SessionStatusRejected = "rejected"
)

type Session struct {
	ID                string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title             string    `json:"title" bson:"title" validate:"required,min=2,max=120"`
	TutorName         string    `json:"tutor_name" bson:"tutor_name" validate:"required,min=2,max=100"`
	TutorEmail        string    `json:"tutor_email" bson:"tutor_email" validate:"required,email"`
	Description       string    `json:"description" bson:"description" validate:"required,min=10,max=2000"`
	RegistrationStart time.Time `json:"registration_start" bson:"registration_start" validate:"required"`
	RegistrationEnd   time.Time `json:"registration_end" bson:"registration_end" validate:"required,gtfield=RegistrationStart"`
	ClassStart        time.Time `json:"class_start" bson:"class_start" validate:"required"`
	ClassEnd          time.Time `json:"class_end" bson:"class_end" validate:"required,gtfield=ClassStart"`
	// RegistrationFee stays 0 while the session is pending; an admin sets it
	// on approval.
	RegistrationFee  int       `json:"registration_fee" bson:"registration_fee" validate:"min=0"`
	Status           string    `json:"status" bson:"status" validate:"required,oneof=pending approved rejected"`
	RejectionReason  string    `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	RejectionComment string    `json:"rejection_comment,omitempty" bson:"rejection_comment,omitempty"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type SessionUpdate struct {
	Title             string     `json:"title,omitempty" validate:"omitempty,min=2,max=120"`
	Description       string     `json:"description,omitempty" validate:"omitempty,min=10,max=2000"`
	RegistrationStart *time.Time `json:"registration_start,omitempty"`
	RegistrationEnd   *time.Time `json:"registration_end,omitempty"`
	ClassStart        *time.Time `json:"class_start,omitempty"`
	ClassEnd          *time.Time `json:"class_end,omitempty"`
	RegistrationFee   *int       `json:"registration_fee,omitempty" validate:"omitempty,min=0"`
}
