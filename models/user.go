package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Username  string             `bson:"username" json:"username"`
	Password  string             `bson:"password,omitempty" json:"password,omitempty"`
	Role      string             `bson:"role" json:"role"` // "admin" or "staff"
	CreatedAt time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

type UserInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
	Role     string `json:"role" binding:"required"`
}
