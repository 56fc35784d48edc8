package model

import (
	"time"
)

const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
	RoleAdmin   = "admin"
)

type User struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Email       string    `json:"email" bson:"email" validate:"required,email"`
	PhotoURL    string    `json:"photo_url,omitempty" bson:"photo_url,omitempty" validate:"omitempty,url"`
	Role        string    `json:"role" bson:"role" validate:"required,oneof=student tutor admin"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	LastLoginAt time.Time `json:"last_login_at" bson:"last_login_at"`
}
