package model

import (
	"time"
)

type Note struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Email       string    `json:"email" bson:"email" validate:"required,email"`
	Title       string    `json:"title" bson:"title" validate:"required,min=1,max=120"`
	Description string    `json:"description" bson:"description" validate:"required,min=1,max=5000"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

type NoteUpdate struct {
	Title       string `json:"title,omitempty" validate:"omitempty,min=1,max=120"`
	Description string `json:"description,omitempty" validate:"omitempty,min=1,max=5000"`
}
