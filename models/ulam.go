package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipeLine - how much of one ingredient a single serving consumes
type RecipeLine struct {
	IngredientID       string  `bson:"ingredient_id" json:"ingredient_id" binding:"required"`
	QuantityPerServing float64 `bson:"quantity_per_serving" json:"quantity_per_serving" binding:"required"`
}

type Ulam struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name         string             `bson:"name" json:"name" binding:"required"`
	SellingPrice float64            `bson:"selling_price" json:"selling_price"`
	Status       string             `bson:"status" json:"status"` // "active" or "inactive"
	Ingredients  []RecipeLine       `bson:"ingredients" json:"ingredients"`
	PhotoURL     string             `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	PreviewURL   string             `bson:"preview_url,omitempty" json:"preview_url,omitempty"`
	CreatedAt    time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt    time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type UlamInput struct {
	Name         string       `json:"name" binding:"required"`
	SellingPrice float64      `json:"selling_price" binding:"required"`
	Ingredients  []RecipeLine `json:"ingredients"`
}
