package routes

import (
	"backend/controllers"
	"backend/middleware"

	"github.com/gin-gonic/gin"
)

func InitializeRoutes(router *gin.Engine) {
	router.POST("/login", controllers.Login)
	router.POST("/logout", controllers.Logout)
	router.Static("/uploads", "./uploads")

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware("admin", "staff"))
	{
		api.GET("/ulams", controllers.GetAllUlams)
		api.GET("/ulams/:id", controllers.GetUlam)
		api.POST("/ulams", controllers.CreateUlam)
		api.PUT("/ulams/:id", controllers.UpdateUlam)
		api.DELETE("/ulams/:id", controllers.DeactivateUlam)
		api.POST("/ulams/:id/photo", controllers.UploadUlamPhoto)

		api.GET("/ingredients", controllers.GetAllIngredients)
		api.GET("/ingredients/:id", controllers.GetIngredient)
		api.POST("/ingredients", controllers.CreateIngredient)
		api.PUT("/ingredients/:id", controllers.EditIngredient)
		api.DELETE("/ingredients/:id", controllers.DeleteIngredient)

		api.GET("/sales/today", controllers.GetTodaySales)
		api.POST("/sales", controllers.RecordSale)
		api.DELETE("/sales/:id", controllers.DeleteSale)

		api.GET("/dashboard", controllers.Dashboard)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware("admin"))
	{
		admin.GET("/users", controllers.ListUsers)
		admin.GET("/users/:id", controllers.GetUser)
		admin.POST("/users", controllers.AddUser)
		admin.PUT("/users/:id", controllers.UpdateUser)
		admin.DELETE("/users/:id", controllers.DeleteUser)
		admin.PUT("/users/:id/password", controllers.ResetUserPassword)
	}
}
