package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Ingredient struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name          string             `bson:"name" json:"name" binding:"required"`
	Unit          string             `bson:"unit" json:"unit" binding:"required"` // kg, g, liter, ml, pcs, bundle
	CostPerUnit   float64            `bson:"cost_per_unit" json:"cost_per_unit"`
	StockQuantity float64            `bson:"stock_quantity" json:"stock_quantity"`
	Category      string             `bson:"category" json:"category"`
	CreatedAt     time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt     time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

type UpdateIngredient struct {
	Name          string   `json:"name,omitempty"`
	Unit          string   `json:"unit,omitempty"`
	CostPerUnit   *float64 `json:"cost_per_unit,omitempty"`
	StockQuantity *float64 `json:"stock_quantity,omitempty"`
	Category      string   `json:"category,omitempty"`
}
