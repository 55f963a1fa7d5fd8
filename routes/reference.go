package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vehicle-service-server/database"
	"vehicle-service-server/models"
)

// RegisterReferenceRoutes registers the public reference-data listings
func RegisterReferenceRoutes(router *gin.RouterGroup) {
	router.GET("/categories", getCategories)
	router.GET("/services", getServices)
	router.GET("/timeslots", getTimeSlots)
	router.GET("/areas", getAreas)
}

func getCategories(c *gin.Context) {
	var categories []models.ServiceCategory
	if err := database.DB.Where("is_active = ?", true).Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func getServices(c *gin.Context) {
	query := database.DB.Preload("Category").Where("is_active = ?", true)
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var serviceList []models.Service
	if err := query.Find(&serviceList).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch services"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"services": serviceList})
}

func getTimeSlots(c *gin.Context) {
	var slots []models.TimeSlot
	if err := database.DB.Where("is_active = ?", true).Find(&slots).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch time slots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"timeslots": slots})
}

func getAreas(c *gin.Context) {
	var areas []models.Area
	if err := database.DB.Where("is_active = ?", true).Find(&areas).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch areas"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"areas": areas})
}
