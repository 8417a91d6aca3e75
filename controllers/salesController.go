package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sort"
	"time"

	"backend/config"
	"backend/middleware"
	"backend/models"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	errInsufficientStock = errors.New("insufficient stock")
	errUlamNotFound      = errors.New("ulam not found")
	errSaleNotFound      = errors.New("sale not found")
)

// brokenRecipeError - a recipe line points at an ingredient document that no
// longer exists. This is bad data, not a transient failure, so it gets its
// own error code naming the line.
type brokenRecipeError struct {
	IngredientID string
}

func (e *brokenRecipeError) Error() string {
	return "recipe references missing ingredient " + e.IngredientID
}

// adjustStock is the only place sale processing touches stock_quantity.
// A negative delta carries a sufficiency guard, so a concurrent sale that
// passed its own pre-check still cannot push the stock below zero. A positive
// delta (restore) has no guard; restoring to an ingredient that no longer
// exists is a no-op.
func adjustStock(sc mongo.SessionContext, ingredientID string, delta float64) error {
	ingID, err := primitive.ObjectIDFromHex(ingredientID)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": ingID}
	if delta < 0 {
		filter["stock_quantity"] = bson.M{"$gte": -delta}
	}

	res := config.IngredientCollection.FindOneAndUpdate(sc, filter, bson.M{
		"$inc": bson.M{"stock_quantity": delta},
		"$set": bson.M{"updated_at": time.Now()},
	})
	if res.Err() == mongo.ErrNoDocuments {
		if delta < 0 {
			return errInsufficientStock
		}
		return nil
	}
	return res.Err()
}

// RecordSale records a sale and deducts ingredient stock in one transaction.
// Either the sale is inserted and every recipe line is deducted, or nothing
// changes at all.
func RecordSale(c *gin.Context) {
	var input models.SaleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.QuantitySold <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity_sold must be a positive number"})
		return
	}
	if input.PricePerServing <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price_per_serving must be a positive number"})
		return
	}
	if _, err := time.Parse("2006-01-02", input.SaleDate); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sale_date must be in YYYY-MM-DD format"})
		return
	}
	ulamID, err := primitive.ObjectIDFromHex(input.UlamID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ulam ID"})
		return
	}

	recordedBy := c.GetString("userID")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := config.Client.StartSession()
	if err != nil {
		log.Printf("Error starting session for sale: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error recording sale"})
		return
	}
	defer session.EndSession(ctx)

	saleID := primitive.NewObjectID()

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var ulam models.Ulam
		if err := config.UlamCollection.FindOne(sc, bson.M{"_id": ulamID}).Decode(&ulam); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, errUlamNotFound
			}
			return nil, err
		}

		// An ulam without a recipe can never be served (available servings = 0)
		if len(ulam.Ingredients) == 0 {
			return nil, errInsufficientStock
		}

		// Check every line before touching any stock
		stockByID := make(map[string]float64, len(ulam.Ingredients))
		for _, line := range ulam.Ingredients {
			ingID, err := primitive.ObjectIDFromHex(line.IngredientID)
			if err != nil {
				return nil, err
			}
			var ing models.Ingredient
			if err := config.IngredientCollection.FindOne(sc, bson.M{"_id": ingID}).Decode(&ing); err != nil {
				if err == mongo.ErrNoDocuments {
					return nil, &brokenRecipeError{IngredientID: line.IngredientID}
				}
				return nil, err
			}
			stockByID[line.IngredientID] = ing.StockQuantity
		}
		if short := utils.ShortLines(ulam.Ingredients, stockByID, input.QuantitySold); len(short) > 0 {
			return nil, errInsufficientStock
		}

		snapshot := make([]models.SaleIngredient, 0, len(ulam.Ingredients))
		for _, line := range ulam.Ingredients {
			required := line.QuantityPerServing * float64(input.QuantitySold)
			if err := adjustStock(sc, line.IngredientID, -required); err != nil {
				return nil, err
			}

			snapshot = append(snapshot, models.SaleIngredient{
				IngredientID:       line.IngredientID,
				QuantityPerServing: line.QuantityPerServing,
				Deducted:           required,
			})
		}

		now := time.Now()
		sale := models.Sale{
			ID:              saleID,
			SaleDate:        input.SaleDate,
			SaleTime:        now.Format("15:04:05"),
			UlamID:          input.UlamID,
			QuantitySold:    input.QuantitySold,
			PricePerServing: input.PricePerServing,
			TotalPrice:      float64(input.QuantitySold) * input.PricePerServing,
			Ingredients:     snapshot,
			RecordedBy:      recordedBy,
			CreatedAt:       now,
		}
		if _, err := config.SaleCollection.InsertOne(sc, sale); err != nil {
			return nil, err
		}

		return saleID, nil
	})
	if err != nil {
		var broken *brokenRecipeError
		switch {
		case errors.Is(err, errUlamNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Ulam not found"})
		case errors.As(err, &broken):
			log.Printf("Error recording sale: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":         "May sangkap sa recipe na wala na sa listahan ng ingredients",
				"code":          "broken_recipe_reference",
				"ingredient_id": broken.IngredientID,
			})
		case errors.Is(err, errInsufficientStock):
			middleware.InsufficientStockTotal.Inc()
			c.JSON(http.StatusConflict, gin.H{
				"error": "Kulang ang stock para sa order na ito!",
				"code":  "insufficient_stock",
			})
		default:
			log.Printf("Error recording sale: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error recording sale"})
		}
		return
	}

	middleware.SalesRecordedTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"sale_id": saleID.Hex()})
}

// DeleteSale removes a sale and puts the deducted stock back, as one unit.
// Restoration uses the recipe snapshot embedded in the sale; sales recorded
// before snapshots existed fall back to the ulam's current recipe.
func DeleteSale(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sale ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := config.Client.StartSession()
	if err != nil {
		log.Printf("Error starting session for sale delete: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting sale"})
		return
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var sale models.Sale
		if err := config.SaleCollection.FindOne(sc, bson.M{"_id": objID}).Decode(&sale); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, errSaleNotFound
			}
			return nil, err
		}

		lines := sale.Ingredients
		if len(lines) == 0 {
			// Old record without a snapshot: restore by the current recipe
			ulamID, err := primitive.ObjectIDFromHex(sale.UlamID)
			if err != nil {
				return nil, err
			}
			var ulam models.Ulam
			if err := config.UlamCollection.FindOne(sc, bson.M{"_id": ulamID}).Decode(&ulam); err != nil && err != mongo.ErrNoDocuments {
				return nil, err
			}
			for _, line := range ulam.Ingredients {
				lines = append(lines, models.SaleIngredient{
					IngredientID:       line.IngredientID,
					QuantityPerServing: line.QuantityPerServing,
					Deducted:           line.QuantityPerServing * float64(sale.QuantitySold),
				})
			}
		}

		// Adding stock back is always legal, no bound check here
		for _, line := range lines {
			if err := adjustStock(sc, line.IngredientID, line.Deducted); err != nil {
				return nil, err
			}
		}

		if _, err := config.SaleCollection.DeleteOne(sc, bson.M{"_id": objID}); err != nil {
			return nil, err
		}

		return nil, nil
	})
	if err != nil {
		if errors.Is(err, errSaleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Sale not found"})
			return
		}
		log.Printf("Error deleting sale: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting sale"})
		return
	}

	middleware.SalesReversedTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"message": "Sale deleted"})
}

// GetTodaySales returns today's sales with ulam names plus a small summary
func GetTodaySales(c *gin.Context) {
	today := time.Now().Format("2006-01-02")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "sale_time", Value: -1}})
	cursor, err := config.SaleCollection.Find(ctx, bson.M{"sale_date": today}, opts)
	if err != nil {
		log.Printf("Error loading today's sales: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading sales"})
		return
	}
	defer cursor.Close(ctx)

	type SaleRow struct {
		ID              primitive.ObjectID `json:"id"`
		SaleDate        string             `json:"sale_date"`
		SaleTime        string             `json:"sale_time"`
		UlamID          string             `json:"ulam_id"`
		UlamName        string             `json:"ulam_name"`
		QuantitySold    int                `json:"quantity_sold"`
		PricePerServing float64            `json:"price_per_serving"`
		TotalPrice      float64            `json:"total_price"`
	}

	rows := []SaleRow{}
	nameCache := make(map[string]string)
	qtyByName := make(map[string]int)
	totalSales := 0.0

	for cursor.Next(ctx) {
		var sale models.Sale
		if err := cursor.Decode(&sale); err != nil {
			log.Printf("Error decoding sale: %v", err)
			continue
		}

		name, ok := nameCache[sale.UlamID]
		if !ok {
			name = "Unknown"
			if ulamID, err := primitive.ObjectIDFromHex(sale.UlamID); err == nil {
				var ulam struct {
					Name string `bson:"name"`
				}
				if err := config.UlamCollection.FindOne(ctx, bson.M{"_id": ulamID}).Decode(&ulam); err == nil {
					name = ulam.Name
				}
			}
			nameCache[sale.UlamID] = name
		}

		rows = append(rows, SaleRow{
			ID:              sale.ID,
			SaleDate:        sale.SaleDate,
			SaleTime:        sale.SaleTime,
			UlamID:          sale.UlamID,
			UlamName:        name,
			QuantitySold:    sale.QuantitySold,
			PricePerServing: sale.PricePerServing,
			TotalPrice:      sale.TotalPrice,
		})

		qtyByName[name] += sale.QuantitySold
		totalSales += sale.TotalPrice
	}
	if err := cursor.Err(); err != nil {
		log.Printf("Error iterating today's sales: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading sales"})
		return
	}

	topSeller, lowSeller := TopAndLowSeller(qtyByName)

	c.JSON(http.StatusOK, gin.H{
		"sales": rows,
		"summary": gin.H{
			"total_sales": totalSales,
			"top_seller":  topSeller,
			"low_seller":  lowSeller,
		},
	})
}

// TopAndLowSeller picks the best and worst selling names by quantity.
// Ties break towards the alphabetically smaller name so the result is stable.
func TopAndLowSeller(qtyByName map[string]int) (string, string) {
	names := make([]string, 0, len(qtyByName))
	for name := range qtyByName {
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", ""
	}
	sort.Strings(names)

	top, low := names[0], names[0]
	for _, name := range names[1:] {
		if qtyByName[name] > qtyByName[top] {
			top = name
		}
		if qtyByName[name] < qtyByName[low] {
			low = name
		}
	}
	return top, low
}
