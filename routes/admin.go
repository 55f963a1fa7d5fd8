package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/database"
	"vehicle-service-server/models"
	"vehicle-service-server/services"
	"vehicle-service-server/utils"
)

// RegisterAdminRoutes registers the operations surface: assignment, report
// validation, mechanic management and offline settlement
func RegisterAdminRoutes(router *gin.RouterGroup) {
	router.GET("/bookings", getAllBookings)
	router.GET("/bookings/:id", getBookingForAdmin)
	router.POST("/bookings/:id/assign", assignMechanic)
	router.POST("/bookings/:id/recommendations", addRecommendation)
	router.POST("/bookings/:id/settle-offline", settleOfflinePayment)
	router.POST("/progress/:id/validate", validateProgress)
	router.POST("/analyses/:id/validate", validateAnalysis)
	router.GET("/mechanics", getAllMechanics)
	router.POST("/mechanics", createMechanic)
}

func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " ID"})
		return 0, false
	}
	return uint(id), true
}

// getAllBookings lists bookings, optionally filtered by a status name which
// is resolved through the status lookup
func getAllBookings(c *gin.Context) {
	query := database.DB.Preload("Customer").Preload("Vehicle").Order("created_at DESC")

	if name := c.Query("status"); name != "" {
		status, ok := models.BookingStatusByName(name)
		if !ok {
			apperrors.Respond(c, apperrors.NotFound("booking status"))
			return
		}
		query = query.Where("status = ?", status)
	}

	var bookings []models.Booking
	if err := query.Find(&bookings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings":    bookings,
		"total_count": len(bookings),
	})
}

func getBookingForAdmin(c *gin.Context) {
	bookingID, ok := idParam(c, "booking")
	if !ok {
		return
	}

	var booking models.Booking
	if err := database.DB.Where("id = ?", bookingID).
		Preload("Customer").
		Preload("Vehicle").
		Preload("Services.Service").
		Preload("Recommendations.Service").
		Preload("Assignments.Mechanic.User").
		Preload("Progress").
		Preload("Analysis").
		First(&booking).Error; err != nil {
		apperrors.Respond(c, apperrors.NotFound("booking"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// assignMechanic runs the scoring engine for the requested stage. The
// assignment-type name is resolved through the lookup first.
func assignMechanic(c *gin.Context) {
	bookingID, ok := idParam(c, "booking")
	if !ok {
		return
	}

	var req models.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignType, ok := models.AssignmentTypeByName(req.Type)
	if !ok {
		apperrors.Respond(c, apperrors.NotFound("assignment type"))
		return
	}

	assignment, err := services.NewAssignmentService(database.DB).AssignMechanic(bookingID, assignType)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	var mechanic models.MechanicProfile
	if err := database.DB.Preload("User").First(&mechanic, assignment.MechanicID).Error; err == nil {
		services.Notify("mechanic_assigned", mechanic.User.Email, map[string]interface{}{
			"booking_id": bookingID,
			"type":       assignment.Type,
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Mechanic assigned",
		"assignment": assignment,
	})
}

func addRecommendation(c *gin.Context) {
	bookingID, ok := idParam(c, "booking")
	if !ok {
		return
	}

	var req models.RecommendedEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var booking models.Booking
	if err := database.DB.First(&booking, bookingID).Error; err != nil {
		apperrors.Respond(c, apperrors.NotFound("booking"))
		return
	}

	rec := models.BookingRecommendation{
		BookingID: bookingID,
		ServiceID: req.ServiceID,
		Price:     req.Price,
		Reason:    req.Reason,
	}
	if err := database.DB.Create(&rec).Error; err != nil {
		apperrors.Respond(c, apperrors.Wrap(apperrors.KindConstraintViolation, "failed to add recommendation", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recommendation": rec})
}

func settleOfflinePayment(c *gin.Context) {
	bookingID, ok := idParam(c, "booking")
	if !ok {
		return
	}

	svc := services.NewPaymentService(database.DB, services.NewHMACGateway(), services.ConfigTaxProvider{})
	if err := svc.SettleOfflinePayment(bookingID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Offline payment settled"})
}

func validateProgress(c *gin.Context) {
	progressID, ok := idParam(c, "progress")
	if !ok {
		return
	}

	if err := services.NewValidationService(database.DB).ValidateProgress(progressID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Progress validated"})
}

func validateAnalysis(c *gin.Context) {
	analysisID, ok := idParam(c, "analysis")
	if !ok {
		return
	}

	if err := services.NewValidationService(database.DB).ValidateAnalysis(analysisID); err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Analysis validated"})
}

func getAllMechanics(c *gin.Context) {
	var mechanics []models.MechanicProfile
	if err := database.DB.Preload("User").Order("score DESC").Find(&mechanics).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch mechanics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"mechanics":   mechanics,
		"total_count": len(mechanics),
	})
}

// createMechanic provisions a mechanic account plus its profile in one call
func createMechanic(c *gin.Context) {
	var req struct {
		FullName         string `json:"full_name" binding:"required"`
		Email            string `json:"email" binding:"required,email"`
		Password         string `json:"password" binding:"required,min=8"`
		CanPickupDrop    bool   `json:"can_pickup_drop"`
		CanAnalyse       bool   `json:"can_analyse"`
		SkillCategoryIDs []uint `json:"skill_category_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create mechanic"})
		return
	}

	user := models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleMechanic,
		IsActive:     true,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	profile := models.MechanicProfile{
		UserID:           user.ID,
		CanPickupDrop:    req.CanPickupDrop,
		CanAnalyse:       req.CanAnalyse,
		SkillCategoryIDs: models.IDList(req.SkillCategoryIDs),
	}
	if err := database.DB.Create(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create mechanic profile"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":    user,
		"profile": profile,
	})
}
