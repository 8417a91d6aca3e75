package controllers

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"backend/config"
	"backend/models"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

type TrendPoint struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

type UlamSalesRow struct {
	Name          string  `json:"name"`
	TotalSales    float64 `json:"total_sales"`
	TotalQuantity int     `json:"total_quantity"`
}

type CategoryValueRow struct {
	Category   string  `json:"category"`
	TotalValue float64 `json:"total_value"`
}

// Dashboard aggregates the numbers the admin screen shows: sales totals for
// today / 7 days / this month, the low stock count, top selling ulams over
// 30 days, a zero-filled 7 day trend and inventory value per category
func Dashboard(c *gin.Context) {
	now := time.Now()
	today := now.Format("2006-01-02")
	weekStart := now.AddDate(0, 0, -7).Format("2006-01-02")
	monthStart := now.Format("2006-01") + "-01"
	windowStart := now.AddDate(0, 0, -30).Format("2006-01-02")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// One fetch covers every range: the month start is never more than
	// 30 days back
	cursor, err := config.SaleCollection.Find(ctx, bson.M{"sale_date": bson.M{"$gte": windowStart}})
	if err != nil {
		log.Printf("Dashboard: error loading sales: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading dashboard data"})
		return
	}
	defer cursor.Close(ctx)

	var dailySales, weeklySales, monthlySales float64
	trendTotals := make(map[string]float64)
	salesByUlam := make(map[string]*UlamSalesRow)

	for cursor.Next(ctx) {
		var sale models.Sale
		if err := cursor.Decode(&sale); err != nil {
			log.Printf("Dashboard: error decoding sale: %v", err)
			continue
		}

		if sale.SaleDate == today {
			dailySales += sale.TotalPrice
		}
		if sale.SaleDate >= weekStart {
			weeklySales += sale.TotalPrice
		}
		if sale.SaleDate >= monthStart {
			monthlySales += sale.TotalPrice
		}
		trendTotals[sale.SaleDate] += sale.TotalPrice

		row, ok := salesByUlam[sale.UlamID]
		if !ok {
			row = &UlamSalesRow{}
			salesByUlam[sale.UlamID] = row
		}
		row.TotalSales += sale.TotalPrice
		row.TotalQuantity += sale.QuantitySold
	}
	if err := cursor.Err(); err != nil {
		log.Printf("Dashboard: error iterating sales: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading dashboard data"})
		return
	}

	lowStockCount, err := config.IngredientCollection.CountDocuments(ctx,
		bson.M{"stock_quantity": bson.M{"$lt": utils.LowStockThreshold()}})
	if err != nil {
		log.Printf("Dashboard: error counting low stock: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading dashboard data"})
		return
	}

	topSelling, err := topSellingUlams(ctx, salesByUlam)
	if err != nil {
		log.Printf("Dashboard: error loading top selling ulams: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading dashboard data"})
		return
	}

	inventoryByCategory, err := inventoryValueByCategory(ctx)
	if err != nil {
		log.Printf("Dashboard: error loading inventory by category: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading dashboard data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dailySales":          dailySales,
		"weeklySales":         weeklySales,
		"monthlySales":        monthlySales,
		"lowStockCount":       lowStockCount,
		"topSellingUlam":      topSelling,
		"salesTrend":          FillTrend(now, trendTotals),
		"inventoryByCategory": inventoryByCategory,
	})
}

// FillTrend builds the last 7 days oldest-first, writing a zero for days
// without any sale so the chart has no gaps
func FillTrend(now time.Time, totals map[string]float64) []TrendPoint {
	trend := make([]TrendPoint, 0, 7)
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		trend = append(trend, TrendPoint{Date: date, Total: totals[date]})
	}
	return trend
}

// topSellingUlams joins the aggregated sales with active ulam names. Active
// ulams without sales still show up with zeros, same as the admin expects.
func topSellingUlams(ctx context.Context, salesByUlam map[string]*UlamSalesRow) ([]UlamSalesRow, error) {
	cursor, err := config.UlamCollection.Find(ctx, bson.M{"status": "active"})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []UlamSalesRow{}
	for cursor.Next(ctx) {
		var ulam models.Ulam
		if err := cursor.Decode(&ulam); err != nil {
			return nil, err
		}

		row := UlamSalesRow{Name: ulam.Name}
		if agg, ok := salesByUlam[ulam.ID.Hex()]; ok {
			row.TotalSales = agg.TotalSales
			row.TotalQuantity = agg.TotalQuantity
		}
		rows = append(rows, row)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalSales != rows[j].TotalSales {
			return rows[i].TotalSales > rows[j].TotalSales
		}
		return rows[i].Name < rows[j].Name
	})
	if len(rows) > 5 {
		rows = rows[:5]
	}
	return rows, nil
}

func inventoryValueByCategory(ctx context.Context) ([]CategoryValueRow, error) {
	cursor, err := config.IngredientCollection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	totals := make(map[string]float64)
	for cursor.Next(ctx) {
		var ing models.Ingredient
		if err := cursor.Decode(&ing); err != nil {
			return nil, err
		}
		totals[ing.Category] += ing.StockQuantity * ing.CostPerUnit
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	rows := make([]CategoryValueRow, 0, len(totals))
	for category, total := range totals {
		rows = append(rows, CategoryValueRow{
			Category:   category,
			TotalValue: utils.TruncateToTwoDecimals(total),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalValue != rows[j].TotalValue {
			return rows[i].TotalValue > rows[j].TotalValue
		}
		return rows[i].Category < rows[j].Category
	})
	return rows, nil
}
