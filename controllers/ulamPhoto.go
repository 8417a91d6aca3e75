package controllers

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"backend/config"

	"github.com/gin-gonic/gin"
	"github.com/nfnt/resize"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	maxFileSize       = 5 << 20 // 5MB
	compressThreshold = 1 << 20 // compress anything over 1MB
	previewSize       = 300
)

// UploadUlamPhoto stores a photo for an ulam: a max-800px main image plus a
// square preview thumbnail, both under ./uploads/ulams
func UploadUlamPhoto(c *gin.Context) {
	objID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ulam ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	err = config.UlamCollection.FindOne(ctx, bson.M{"_id": objID}).Err()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Ulam not found"})
		} else {
			log.Printf("Error loading ulam for photo upload: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading photo"})
		}
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}

	mainName, previewName, err := saveUlamPhoto(file, objID.Hex())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	photoURL := "/uploads/ulams/" + mainName
	previewURL := "/uploads/ulams/" + previewName

	_, err = config.UlamCollection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{
		"$set": bson.M{
			"photo_url":   photoURL,
			"preview_url": previewURL,
			"updated_at":  time.Now(),
		},
	})
	if err != nil {
		log.Printf("Error saving photo urls: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading photo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"photo_url": photoURL, "preview_url": previewURL})
}

// saveUlamPhoto writes the main image (resized to 800px wide when large) and
// a square preview, returning both file names
func saveUlamPhoto(file *multipart.FileHeader, ulamID string) (string, string, error) {
	if file.Size > maxFileSize {
		return "", "", fmt.Errorf("file size exceeds the 5MB limit")
	}

	fileExt := strings.ToLower(filepath.Ext(file.Filename))
	if fileExt != ".jpg" && fileExt != ".jpeg" && fileExt != ".png" {
		return "", "", fmt.Errorf("unsupported file format: %s", fileExt)
	}

	ulamDir := "./uploads/ulams"
	if _, err := os.Stat(ulamDir); os.IsNotExist(err) {
		if err := os.MkdirAll(ulamDir, os.ModePerm); err != nil {
			return "", "", fmt.Errorf("failed to create upload directory: %v", err)
		}
	}

	srcFile, err := file.Open()
	if err != nil {
		return "", "", fmt.Errorf("failed to open uploaded file: %v", err)
	}
	defer srcFile.Close()

	var img image.Image
	if fileExt == ".png" {
		img, err = png.Decode(srcFile)
	} else {
		img, err = jpeg.Decode(srcFile)
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to decode image: %v", err)
	}

	baseName := fmt.Sprintf("%s_%d", ulamID, time.Now().Unix())
	mainName := baseName + ".jpg"
	previewName := baseName + "_preview.jpg"

	mainImg := img
	if file.Size > compressThreshold {
		mainImg = resize.Resize(800, 0, img, resize.Lanczos3)
	}

	outFile, err := os.Create(filepath.Join(ulamDir, mainName))
	if err != nil {
		return "", "", fmt.Errorf("failed to create file: %v", err)
	}
	defer outFile.Close()
	if err := jpeg.Encode(outFile, mainImg, &jpeg.Options{Quality: 80}); err != nil {
		return "", "", fmt.Errorf("failed to save image: %v", err)
	}

	previewImg := resize.Thumbnail(previewSize, previewSize, img, resize.Lanczos3)
	previewFile, err := os.Create(filepath.Join(ulamDir, previewName))
	if err != nil {
		return "", "", fmt.Errorf("failed to create preview file: %v", err)
	}
	defer previewFile.Close()
	if err := jpeg.Encode(previewFile, previewImg, &jpeg.Options{Quality: 75}); err != nil {
		return "", "", fmt.Errorf("failed to save preview image: %v", err)
	}

	return mainName, previewName, nil
}
