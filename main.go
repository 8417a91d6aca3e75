package main

import (
	"backend/config"
	"backend/routes"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"

	"backend/middleware"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	gin.SetMode(gin.ReleaseMode)
	log.Printf("Running in %s mode", gin.Mode())

	r := gin.Default()

	middleware.InitMetrics()
	r.Use(middleware.PrometheusMiddleware())

	// /metrics endpoint, optionally restricted to the scrape host
	r.GET("/metrics", func(c *gin.Context) {
		if allowed := os.Getenv("METRICS_ALLOW_IP"); allowed != "" && c.ClientIP() != allowed {
			c.AbortWithStatus(403)
			return
		}
		promhttp.Handler().ServeHTTP(c.Writer, c.Request)
	})

	origins := []string{"http://localhost:5173"}
	if raw := os.Getenv("CORS_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	location, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		fmt.Println("Error loading timezone:", err)
		return
	}
	s := gocron.NewScheduler(location)
	s.Every(1).Day().At("04:30").Do(utils.CheckLowStock)
	s.StartAsync()

	config.ConnectDatabase()
	routes.InitializeRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "1414"
	}

	r.Run(":" + port)
}
