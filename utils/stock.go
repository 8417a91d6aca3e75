package utils

import (
	"fmt"
	"math"
	"strconv"

	"backend/models"
)

func TruncateToTwoDecimals(value float64) float64 {
	factor := 100.0
	value, _ = strconv.ParseFloat(fmt.Sprintf("%.2f", value), 64)
	return math.Floor(value * factor) / factor
}

// AvailableServings computes how many servings the current stock covers:
// the minimum of floor(stock / quantity_per_serving) over all recipe lines.
// A recipe with no usable lines can never be served, so the result is 0.
func AvailableServings(lines []models.RecipeLine, stockByID map[string]float64) int {
	available := -1

	for _, line := range lines {
		if line.QuantityPerServing <= 0 {
			continue
		}
		stock := stockByID[line.IngredientID]
		possible := int(math.Floor(stock / line.QuantityPerServing))
		if available == -1 || possible < available {
			available = possible
		}
	}

	if available < 0 {
		return 0
	}
	return available
}

// RequiredQuantities returns how much of each ingredient a sale of
// quantitySold servings consumes.
func RequiredQuantities(lines []models.RecipeLine, quantitySold int) map[string]float64 {
	required := make(map[string]float64, len(lines))
	for _, line := range lines {
		required[line.IngredientID] += line.QuantityPerServing * float64(quantitySold)
	}
	return required
}

// ShortLines returns the ingredient ids whose stock does not cover the
// requested number of servings. Empty result means the sale can proceed.
func ShortLines(lines []models.RecipeLine, stockByID map[string]float64, quantitySold int) []string {
	var short []string
	for _, line := range lines {
		required := line.QuantityPerServing * float64(quantitySold)
		if stockByID[line.IngredientID] < required {
			short = append(short, line.IngredientID)
		}
	}
	return short
}

// HasDuplicateIngredient reports whether two recipe lines reference the same
// ingredient. A recipe must use each ingredient at most once.
func HasDuplicateIngredient(lines []models.RecipeLine) bool {
	seen := make(map[string]bool, len(lines))
	for _, line := range lines {
		if seen[line.IngredientID] {
			return true
		}
		seen[line.IngredientID] = true
	}
	return false
}
