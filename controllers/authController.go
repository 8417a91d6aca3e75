package controllers

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"backend/config"
	"backend/models"
	"backend/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var foundUser models.User
	err := config.UserCollection.FindOne(ctx, bson.M{"username": input.Username}).Decode(&foundUser)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		} else {
			log.Printf("Error looking up user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error logging in"})
		}
		return
	}

	if err := utils.VerifyPassword(foundUser.Password, input.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(foundUser.ID.Hex(), foundUser.Role)
	if err != nil {
		log.Printf("Error generating token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error while generating token"})
		return
	}

	c.SetCookie("token", token, 3600*24, "/", os.Getenv("COOKIE_DOMAIN"), true, true)
	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"userID":   foundUser.ID.Hex(),
		"username": foundUser.Username,
		"role":     foundUser.Role,
	})
}

func Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", os.Getenv("COOKIE_DOMAIN"), true, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
