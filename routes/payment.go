package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/database"
	"vehicle-service-server/models"
	"vehicle-service-server/services"
)

// RegisterPaymentRoutes registers the gateway callback endpoint. The webhook
// is unauthenticated; the signature check inside the reconciler is the trust
// boundary.
func RegisterPaymentRoutes(router *gin.RouterGroup) {
	router.POST("/webhook", paymentWebhook)
}

func paymentWebhook(c *gin.Context) {
	var req models.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := services.NewPaymentService(database.DB, services.NewHMACGateway(), services.ConfigTaxProvider{})
	applied, err := svc.HandleWebhook(req)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}

	if applied {
		var payment models.Payment
		if err := database.DB.Where("gateway_order_id = ?", req.OrderID).First(&payment).Error; err == nil {
			var booking models.Booking
			if err := database.DB.Preload("Customer").First(&booking, payment.BookingID).Error; err == nil {
				services.Notify("payment_success", booking.Customer.Email, map[string]interface{}{
					"booking_id": booking.ID,
					"amount":     payment.Amount + payment.GST,
				})
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment processed"})
}
