package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"backend/config"
	"backend/models"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RecipeLineDetail struct {
	IngredientID       string  `json:"ingredient_id"`
	Name               string  `json:"name"`
	Unit               string  `json:"unit"`
	StockQuantity      float64 `json:"stock_quantity"`
	QuantityPerServing float64 `json:"quantity_per_serving"`
}

// GetAllUlams lists active ulams ordered by name, each with its recipe lines
// and the number of servings the current stock still covers
func GetAllUlams(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := config.UlamCollection.Find(ctx, bson.M{"status": "active"}, opts)
	if err != nil {
		log.Printf("Error listing ulams: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading ulams"})
		return
	}
	defer cursor.Close(ctx)

	type UlamRow struct {
		ID                primitive.ObjectID `json:"id"`
		Name              string             `json:"name"`
		SellingPrice      float64            `json:"selling_price"`
		Status            string             `json:"status"`
		PhotoURL          string             `json:"photo_url,omitempty"`
		PreviewURL        string             `json:"preview_url,omitempty"`
		Ingredients       []RecipeLineDetail `json:"ingredients"`
		AvailableServings int                `json:"available_servings"`
	}

	rows := []UlamRow{}
	ingredientCache := make(map[string]models.Ingredient)

	for cursor.Next(ctx) {
		var ulam models.Ulam
		if err := cursor.Decode(&ulam); err != nil {
			log.Printf("Error decoding ulam: %v", err)
			continue
		}

		details, stockByID, err := resolveRecipeLines(ctx, ulam.Ingredients, ingredientCache)
		if err != nil {
			log.Printf("Error resolving recipe for ulam %s: %v", ulam.ID.Hex(), err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading ulams"})
			return
		}

		rows = append(rows, UlamRow{
			ID:                ulam.ID,
			Name:              ulam.Name,
			SellingPrice:      ulam.SellingPrice,
			Status:            ulam.Status,
			PhotoURL:          ulam.PhotoURL,
			PreviewURL:        ulam.PreviewURL,
			Ingredients:       details,
			AvailableServings: utils.AvailableServings(ulam.Ingredients, stockByID),
		})
	}
	if err := cursor.Err(); err != nil {
		log.Printf("Error iterating ulams: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading ulams"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ulams": rows})
}

func GetUlam(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ulam ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var ulam models.Ulam
	err = config.UlamCollection.FindOne(ctx, bson.M{"_id": objID}).Decode(&ulam)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ulam not found"})
		} else {
			log.Printf("Error getting ulam: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading ulam"})
		}
		return
	}

	details, stockByID, err := resolveRecipeLines(ctx, ulam.Ingredients, make(map[string]models.Ingredient))
	if err != nil {
		log.Printf("Error resolving recipe for ulam %s: %v", ulam.ID.Hex(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading ulam"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ulam": gin.H{
		"id":                 ulam.ID,
		"name":               ulam.Name,
		"selling_price":      ulam.SellingPrice,
		"status":             ulam.Status,
		"photo_url":          ulam.PhotoURL,
		"preview_url":        ulam.PreviewURL,
		"ingredients":        details,
		"available_servings": utils.AvailableServings(ulam.Ingredients, stockByID),
	}})
}

// CreateUlam inserts an ulam with its full recipe. Recipe lines live inside
// the ulam document, so the dish and its lines land in one insert.
func CreateUlam(c *gin.Context) {
	var input models.UlamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := validateUlamInput(&input); err != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if msg := checkIngredientsExist(ctx, input.Ingredients); msg != "" {
		if msg == errLoadingMsg {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating ulam"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		}
		return
	}

	ingredients := input.Ingredients
	if ingredients == nil {
		ingredients = []models.RecipeLine{}
	}

	ulam := models.Ulam{
		ID:           primitive.NewObjectID(),
		Name:         input.Name,
		SellingPrice: input.SellingPrice,
		Status:       "active",
		Ingredients:  ingredients,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if _, err := config.UlamCollection.InsertOne(ctx, ulam); err != nil {
		log.Printf("Error creating ulam: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating ulam"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ulam_id": ulam.ID.Hex()})
}

// UpdateUlam replaces the ulam fields and its whole recipe in one update.
// Lines are never patched one by one.
func UpdateUlam(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ulam ID"})
		return
	}

	var input models.UlamInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if msg := validateUlamInput(&input); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if msg := checkIngredientsExist(ctx, input.Ingredients); msg != "" {
		if msg == errLoadingMsg {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating ulam"})
		} else {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		}
		return
	}

	ingredients := input.Ingredients
	if ingredients == nil {
		ingredients = []models.RecipeLine{}
	}

	update := bson.M{"$set": bson.M{
		"name":          input.Name,
		"selling_price": input.SellingPrice,
		"ingredients":   ingredients,
		"updated_at":    time.Now(),
	}}

	result, err := config.UlamCollection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		log.Printf("Error updating ulam: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating ulam"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ulam not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ulam updated"})
}

// DeactivateUlam soft-deletes: the ulam stays in place so old sales keep a
// valid reference, it just stops showing up in the active list
func DeactivateUlam(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ulam ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := config.UlamCollection.UpdateOne(ctx,
		bson.M{"_id": objID},
		bson.M{"$set": bson.M{"status": "inactive", "updated_at": time.Now()}},
	)
	if err != nil {
		log.Printf("Error deactivating ulam: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting ulam"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Ulam not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Ulam deactivated"})
}

const errLoadingMsg = "__load_error__"

// validateUlamInput returns an error message, or "" when the input is fine
func validateUlamInput(input *models.UlamInput) string {
	if input.SellingPrice <= 0 {
		return "selling_price must be a positive number"
	}
	for _, line := range input.Ingredients {
		if line.QuantityPerServing <= 0 {
			return "quantity_per_serving must be a positive number"
		}
		if _, err := primitive.ObjectIDFromHex(line.IngredientID); err != nil {
			return "Invalid ingredient ID: " + line.IngredientID
		}
	}
	if utils.HasDuplicateIngredient(input.Ingredients) {
		return "Recipe lists the same ingredient twice"
	}
	return ""
}

func checkIngredientsExist(ctx context.Context, lines []models.RecipeLine) string {
	for _, line := range lines {
		ingID, _ := primitive.ObjectIDFromHex(line.IngredientID)
		err := config.IngredientCollection.FindOne(ctx, bson.M{"_id": ingID}).Err()
		if err == mongo.ErrNoDocuments {
			return "Ingredient does not exist: " + line.IngredientID
		}
		if err != nil {
			log.Printf("Error checking ingredient %s: %v", line.IngredientID, err)
			return errLoadingMsg
		}
	}
	return ""
}

// resolveRecipeLines joins recipe lines with their ingredient documents and
// also returns the stock map used for the available servings computation
func resolveRecipeLines(ctx context.Context, lines []models.RecipeLine, cache map[string]models.Ingredient) ([]RecipeLineDetail, map[string]float64, error) {
	details := []RecipeLineDetail{}
	stockByID := make(map[string]float64, len(lines))

	for _, line := range lines {
		ing, ok := cache[line.IngredientID]
		if !ok {
			ingID, err := primitive.ObjectIDFromHex(line.IngredientID)
			if err != nil {
				return nil, nil, err
			}
			err = config.IngredientCollection.FindOne(ctx, bson.M{"_id": ingID}).Decode(&ing)
			if err == mongo.ErrNoDocuments {
				// dangling reference, show it as zero stock instead of failing the list
				ing = models.Ingredient{Name: "Unknown"}
			} else if err != nil {
				return nil, nil, err
			}
			cache[line.IngredientID] = ing
		}

		details = append(details, RecipeLineDetail{
			IngredientID:       line.IngredientID,
			Name:               ing.Name,
			Unit:               ing.Unit,
			StockQuantity:      ing.StockQuantity,
			QuantityPerServing: line.QuantityPerServing,
		})
		stockByID[line.IngredientID] = ing.StockQuantity
	}

	return details, stockByID, nil
}
