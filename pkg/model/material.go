package model

import (
	"time"
)

// Material is study-material metadata a tutor attaches to a session; the
// file itself lives behind ImageURL / DriveLink.
type Material struct {
	ID         string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SessionID  string    `json:"session_id" bson:"session_id" validate:"required,mongodb"`
	TutorEmail string    `json:"tutor_email" bson:"tutor_email" validate:"required,email"`
	Title      string    `json:"title" bson:"title" validate:"required,min=1,max=120"`
	ImageURL   string    `json:"image_url,omitempty" bson:"image_url,omitempty" validate:"omitempty,url"`
	DriveLink  string    `json:"drive_link,omitempty" bson:"drive_link,omitempty" validate:"omitempty,url"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
