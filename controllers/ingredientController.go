package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"backend/config"
	"backend/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func GetAllIngredients(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := config.IngredientCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		log.Printf("Error listing ingredients: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading ingredients"})
		return
	}
	defer cursor.Close(ctx)

	ingredients := []models.Ingredient{}
	if err := cursor.All(ctx, &ingredients); err != nil {
		log.Printf("Error decoding ingredients: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading ingredients"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func GetIngredient(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ingredient ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var ingredient models.Ingredient
	err = config.IngredientCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&ingredient)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
		} else {
			log.Printf("Error getting ingredient: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading ingredient"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredient": ingredient})
}

func CreateIngredient(c *gin.Context) {
	var input models.Ingredient
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.StockQuantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock_quantity cannot be negative"})
		return
	}
	if input.CostPerUnit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cost_per_unit cannot be negative"})
		return
	}

	input.ID = primitive.NewObjectID()
	input.CreatedAt = time.Now()
	input.UpdatedAt = time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := config.IngredientCollection.InsertOne(ctx, input)
	if err != nil {
		log.Printf("Error creating ingredient: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating ingredient"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ingredient_id": input.ID.Hex()})
}

func EditIngredient(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ingredient ID"})
		return
	}

	var input models.UpdateIngredient
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updateFields := bson.M{"updated_at": time.Now()}
	if input.Name != "" {
		updateFields["name"] = input.Name
	}
	if input.Unit != "" {
		updateFields["unit"] = input.Unit
	}
	if input.Category != "" {
		updateFields["category"] = input.Category
	}
	if input.CostPerUnit != nil {
		if *input.CostPerUnit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cost_per_unit cannot be negative"})
			return
		}
		updateFields["cost_per_unit"] = *input.CostPerUnit
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock_quantity cannot be negative"})
			return
		}
		updateFields["stock_quantity"] = *input.StockQuantity
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.IngredientCollection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": updateFields})
	if err != nil {
		log.Printf("Error updating ingredient: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating ingredient"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ingredient updated"})
}

// DeleteIngredient removes an ingredient unless some ulam recipe still uses it
func DeleteIngredient(c *gin.Context) {
	id := c.Param("id")
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ingredient ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	count, err := config.UlamCollection.CountDocuments(ctx, bson.M{"ingredients.ingredient_id": id})
	if err != nil {
		log.Printf("Error checking ingredient usage: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting ingredient"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{
			"error": "Hindi pwedeng tanggalin. Ginagamit pa sa mga ulam.",
			"code":  "referential_conflict",
		})
		return
	}

	result, err := config.IngredientCollection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		log.Printf("Error deleting ingredient: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting ingredient"})
		return
	}
	if result.DeletedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ingredient not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ingredient deleted"})
}
