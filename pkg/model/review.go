package model

import (
	"time"
)

type Review struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SessionID    string    `json:"session_id" bson:"session_id" validate:"required,mongodb"`
	StudentEmail string    `json:"student_email" bson:"student_email" validate:"required,email"`
	StudentName  string    `json:"student_name" bson:"student_name" validate:"required,min=1,max=100"`
	Rating       int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment      string    `json:"comment" bson:"comment" validate:"required,min=1,max=1000"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
