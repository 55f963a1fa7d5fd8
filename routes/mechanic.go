package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/database"
	"vehicle-service-server/models"
	"vehicle-service-server/services"
)

// RegisterMechanicRoutes registers the mechanic work surface
func RegisterMechanicRoutes(router *gin.RouterGroup) {
	router.GET("/profile", getMechanicProfile)
	router.GET("/assignment", getCurrentAssignment)
	router.POST("/bookings/:id/progress", submitProgress)
	router.POST("/bookings/:id/analysis", submitAnalysis)
}

// mechanicProfile resolves the requesting user's mechanic profile
func mechanicProfile(c *gin.Context) (*models.MechanicProfile, bool) {
	userID := c.GetUint("user_id")

	var profile models.MechanicProfile
	if err := database.DB.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		apperrors.Respond(c, apperrors.NotFound("mechanic profile"))
		return nil, false
	}
	return &profile, true
}

func getMechanicProfile(c *gin.Context) {
	profile, ok := mechanicProfile(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// getCurrentAssignment returns the mechanic's open assignment, if any
func getCurrentAssignment(c *gin.Context) {
	profile, ok := mechanicProfile(c)
	if !ok {
		return
	}

	var assignment models.BookingAssignment
	err := database.DB.Where("mechanic_id = ? AND status = ?", profile.ID, models.AssignmentStatusAssigned).
		Preload("Booking.Vehicle").
		Preload("Booking.Services.Service").
		Order("id DESC").
		First(&assignment).Error
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"assignment": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

func submitProgress(c *gin.Context) {
	profile, ok := mechanicProfile(c)
	if !ok {
		return
	}

	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil || bookingID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req models.ProgressSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	progress, err := services.NewProgressService(database.DB).SubmitProgress(profile.ID, uint(bookingID), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Progress submitted",
		"progress": progress,
	})
}

func submitAnalysis(c *gin.Context) {
	profile, ok := mechanicProfile(c)
	if !ok {
		return
	}

	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil || bookingID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req models.AnalysisSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := services.NewProgressService(database.DB).SubmitAnalysis(profile.ID, uint(bookingID), req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var booking models.Booking
	if err := database.DB.Preload("Customer").First(&booking, bookingID).Error; err == nil {
		services.Notify("analysis_ready", booking.Customer.Email, map[string]interface{}{
			"booking_id": booking.ID,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Analysis submitted",
		"analysis": analysis,
	})
}
