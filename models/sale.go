package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SaleIngredient - recipe line snapshot taken at sale time, Deducted = what was actually taken off stock
type SaleIngredient struct {
	IngredientID       string  `bson:"ingredient_id" json:"ingredient_id"`
	QuantityPerServing float64 `bson:"quantity_per_serving" json:"quantity_per_serving"`
	Deducted           float64 `bson:"deducted" json:"deducted"`
}

type Sale struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	SaleDate        string             `bson:"sale_date" json:"sale_date"` // YYYY-MM-DD
	SaleTime        string             `bson:"sale_time" json:"sale_time"` // HH:MM:SS, server-assigned
	UlamID          string             `bson:"ulam_id" json:"ulam_id"`
	QuantitySold    int                `bson:"quantity_sold" json:"quantity_sold"`
	PricePerServing float64            `bson:"price_per_serving" json:"price_per_serving"`
	TotalPrice      float64            `bson:"total_price" json:"total_price"`
	Ingredients     []SaleIngredient   `bson:"ingredients,omitempty" json:"ingredients,omitempty"` // missing on old records
	RecordedBy      string             `bson:"recorded_by,omitempty" json:"recorded_by,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
}

type SaleInput struct {
	UlamID          string  `json:"ulam_id" binding:"required"`
	QuantitySold    int     `json:"quantity_sold" binding:"required"`
	PricePerServing float64 `json:"price_per_serving" binding:"required"`
	SaleDate        string  `json:"sale_date" binding:"required"`
}
