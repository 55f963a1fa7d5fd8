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

// RegisterBookingRoutes registers the customer-facing booking endpoints
func RegisterBookingRoutes(router *gin.RouterGroup) {
	router.POST("/", createBooking)
	router.GET("/", getMyBookings)
	router.GET("/:id", getBooking)
	router.POST("/:id/select", selectServices)
	router.POST("/:id/cancel", cancelBooking)
}

// RegisterVehicleRoutes registers the customer's vehicle endpoints
func RegisterVehicleRoutes(router *gin.RouterGroup) {
	router.POST("/", addVehicle)
	router.GET("/", getMyVehicles)
}

func bookingIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return 0, false
	}
	return uint(id), true
}

// ownedBooking loads a booking and verifies the requesting customer owns it
func ownedBooking(c *gin.Context, bookingID uint) (*models.Booking, bool) {
	var booking models.Booking
	if err := database.DB.First(&booking, bookingID).Error; err != nil {
		apperrors.Respond(c, apperrors.NotFound("booking"))
		return nil, false
	}
	if booking.CustomerID != c.GetUint("user_id") {
		apperrors.Respond(c, apperrors.Forbidden("booking belongs to another customer"))
		return nil, false
	}
	return &booking, true
}

func createBooking(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req models.BookingCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := services.NewBookingService(database.DB).Create(userID, req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	user := c.MustGet("user").(models.User)
	services.Notify("booking_created", user.Email, map[string]interface{}{
		"booking_id": booking.ID,
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

func getMyBookings(c *gin.Context) {
	userID := c.GetUint("user_id")

	var bookings []models.Booking
	if err := database.DB.Where("customer_id = ?", userID).
		Preload("Vehicle").
		Preload("Services.Service").
		Order("created_at DESC").
		Find(&bookings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings":    bookings,
		"total_count": len(bookings),
	})
}

func getBooking(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	var booking models.Booking
	if err := database.DB.Where("id = ?", bookingID).
		Preload("Vehicle").
		Preload("Services.Service").
		Preload("Recommendations.Service").
		Preload("Assignments").
		Preload("Progress").
		Preload("Analysis").
		First(&booking).Error; err != nil {
		apperrors.Respond(c, apperrors.NotFound("booking"))
		return
	}

	if booking.CustomerID != c.GetUint("user_id") {
		apperrors.Respond(c, apperrors.Forbidden("booking belongs to another customer"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// selectServices confirms the customer's post-analysis service choice and
// starts payment per the booking's payment method
func selectServices(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	if _, ok := ownedBooking(c, bookingID); !ok {
		return
	}

	var req models.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewPaymentService(database.DB, services.NewHMACGateway(), services.ConfigTaxProvider{})
	result, err := svc.SelectAndPay(bookingID, req.ServiceIDs)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Selection recorded",
		"result":  result,
	})
}

func cancelBooking(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}
	if _, ok := ownedBooking(c, bookingID); !ok {
		return
	}

	svc := services.NewPaymentService(database.DB, services.NewHMACGateway(), services.ConfigTaxProvider{})
	result, err := svc.Cancel(bookingID)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	user := c.MustGet("user").(models.User)
	services.Notify("booking_cancelled", user.Email, map[string]interface{}{
		"booking_id": bookingID,
		"fee":        result.Fee,
		"refund":     result.RefundAmount,
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking cancelled",
		"result":  result,
	})
}

func addVehicle(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req struct {
		Model          string `json:"model" binding:"required"`
		RegistrationNo string `json:"registration_no" binding:"required"`
		FuelType       string `json:"fuel_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle := models.Vehicle{
		CustomerID:     userID,
		Model:          req.Model,
		RegistrationNo: req.RegistrationNo,
		FuelType:       req.FuelType,
	}
	if err := database.DB.Create(&vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add vehicle"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

func getMyVehicles(c *gin.Context) {
	userID := c.GetUint("user_id")

	var vehicles []models.Vehicle
	if err := database.DB.Where("customer_id = ?", userID).Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vehicles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}
