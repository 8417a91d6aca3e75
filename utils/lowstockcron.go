package utils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"backend/config"
	"backend/models"

	"go.mongodb.org/mongo-driver/bson"
)

const defaultLowStockThreshold = 10.0

func LowStockThreshold() float64 {
	if raw := os.Getenv("LOW_STOCK_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			return v
		}
	}
	return defaultLowStockThreshold
}

// CheckLowStock runs nightly: finds ingredients below the threshold and
// emails the admin one summary so restocking happens before opening time.
func CheckLowStock() {
	log.Println("Starting CheckLowStock")

	threshold := LowStockThreshold()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	filter := bson.M{"stock_quantity": bson.M{"$lt": threshold}}
	cursor, err := config.IngredientCollection.Find(ctx, filter)
	if err != nil {
		log.Printf("CheckLowStock: failed to query ingredients: %v\n", err)
		return
	}
	defer cursor.Close(ctx)

	var lines []string
	for cursor.Next(ctx) {
		var ing models.Ingredient
		if err := cursor.Decode(&ing); err != nil {
			log.Printf("CheckLowStock: failed to decode ingredient: %v\n", err)
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %.2f %s natitira", ing.Name, ing.StockQuantity, ing.Unit))
	}
	if err := cursor.Err(); err != nil {
		log.Printf("CheckLowStock: cursor error: %v\n", err)
		return
	}

	if len(lines) == 0 {
		log.Println("CheckLowStock: all ingredients above threshold")
		return
	}

	to := os.Getenv("ALERT_EMAIL")
	if to == "" {
		log.Printf("CheckLowStock: %d ingredients low but ALERT_EMAIL is not set\n", len(lines))
		return
	}

	body := fmt.Sprintf("Mababa na ang stock ng %d ingredients (threshold %.0f):\n\n%s\n",
		len(lines), threshold, strings.Join(lines, "\n"))

	if err := SendEmail(to, "Low stock alert", body); err != nil {
		log.Printf("CheckLowStock: failed to send alert email: %v\n", err)
		return
	}

	log.Printf("CheckLowStock completed, alerted about %d ingredients\n", len(lines))
}
