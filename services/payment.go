package services

import (
	"log"

	"gorm.io/gorm"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/models"
)

// Cancellation fees are floored at this amount once work has started.
const minimumCancellationFee = 100.0

// PaymentService owes the money side of the workflow: confirmation-triggered
// payment, webhook reconciliation and cancellation fees/refunds.
type PaymentService struct {
	db      *gorm.DB
	gateway PaymentGateway
	tax     TaxRateProvider
}

func NewPaymentService(db *gorm.DB, gateway PaymentGateway, tax TaxRateProvider) *PaymentService {
	return &PaymentService{db: db, gateway: gateway, tax: tax}
}

// SelectionResult reports what the confirmation produced: either an order to
// pay online, or an immediately in-progress booking for offline payment.
type SelectionResult struct {
	BookingID      uint                 `json:"booking_id"`
	Amount         float64              `json:"amount"`
	GST            float64              `json:"gst"`
	GatewayOrderID string               `json:"gateway_order_id,omitempty"`
	Status         models.BookingStatus `json:"status"`
}

// SelectAndPay takes the customer's chosen service set for an analysed
// booking. Online payment stages the selection behind a gateway order and
// waits for the webhook; offline payment confirms immediately and moves the
// booking to in-progress with the amount owed on delivery.
func (s *PaymentService) SelectAndPay(bookingID uint, serviceIDs []uint) (*SelectionResult, error) {
	var result *SelectionResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != models.BookingStatusAnalysed {
			return apperrors.InvalidState("services can only be confirmed after analysis")
		}

		var analysis models.BookingAnalysis
		if err := tx.Where("booking_id = ?", bookingID).First(&analysis).Error; err != nil {
			return apperrors.InvalidState("booking has no analysis report")
		}
		if !analysis.Validated {
			return apperrors.InvalidState("analysis report has not been validated yet")
		}

		total, err := s.selectionTotal(tx, bookingID, serviceIDs)
		if err != nil {
			return err
		}
		gst := total * s.tax.CurrentGSTPercent() / 100

		if booking.PaymentMethod == models.PaymentMethodOnline {
			orderID, err := s.gateway.CreateOrder(total + gst)
			if err != nil {
				return apperrors.Wrap(apperrors.KindInternal, "failed to create gateway order", err)
			}
			payment := models.Payment{
				BookingID:      bookingID,
				Method:         models.PaymentMethodOnline,
				Amount:         total,
				GST:            gst,
				Status:         models.PaymentStatusPending,
				GatewayOrderID: orderID,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return apperrors.Wrap(apperrors.KindInternal, "failed to record payment", err)
			}
			staged := models.PendingSelection{
				GatewayOrderID: orderID,
				BookingID:      bookingID,
				ServiceIDs:     models.IDList(serviceIDs),
			}
			if err := tx.Create(&staged).Error; err != nil {
				return apperrors.Wrap(apperrors.KindInternal, "failed to stage selection", err)
			}
			result = &SelectionResult{
				BookingID:      bookingID,
				Amount:         total,
				GST:            gst,
				GatewayOrderID: orderID,
				Status:         booking.Status,
			}
			return nil
		}

		// Offline: confirm now, collect on delivery.
		payment := models.Payment{
			BookingID: bookingID,
			Method:    models.PaymentMethodOffline,
			Amount:    total,
			GST:       gst,
			Status:    models.PaymentStatusPending,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to record payment", err)
		}
		if err := confirmSelection(tx, bookingID, models.IDList(serviceIDs)); err != nil {
			return err
		}
		if err := TransitionBooking(tx, booking, models.BookingStatusInProgress); err != nil {
			return err
		}
		result = &SelectionResult{
			BookingID: bookingID,
			Amount:    total,
			GST:       gst,
			Status:    booking.Status,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// selectionTotal sums the final prices of the selected booked services and
// the recommendation prices of selected additions.
func (s *PaymentService) selectionTotal(tx *gorm.DB, bookingID uint, serviceIDs []uint) (float64, error) {
	var booked []models.BookedService
	if err := tx.Where("booking_id = ?", bookingID).Find(&booked).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "failed to load booked services", err)
	}
	prices := make(map[uint]float64, len(booked))
	for _, bs := range booked {
		price := bs.EstimatedPrice
		if bs.FinalPrice != nil {
			price = *bs.FinalPrice
		}
		prices[bs.ServiceID] = price
	}

	total := 0.0
	for _, id := range serviceIDs {
		if price, ok := prices[id]; ok {
			total += price
			continue
		}
		var rec models.BookingRecommendation
		err := tx.Where("booking_id = ? AND service_id = ?", bookingID, id).First(&rec).Error
		if err == gorm.ErrRecordNotFound {
			return 0, apperrors.E(apperrors.KindValidation, "selected service was neither booked nor recommended")
		}
		if err != nil {
			return 0, apperrors.Wrap(apperrors.KindInternal, "failed to load recommendation", err)
		}
		total += rec.Price
	}
	return total, nil
}

// HandleWebhook reconciles a gateway payment callback. A replay for an
// already-successful payment is a no-op success; a bad signature marks the
// payment failed without touching the booking. The returned flag reports
// whether this call applied the confirmation, so callers only notify once.
func (s *PaymentService) HandleWebhook(req models.WebhookRequest) (bool, error) {
	var payment models.Payment
	err := s.db.Where("gateway_order_id = ?", req.OrderID).First(&payment).Error
	if err == gorm.ErrRecordNotFound {
		return false, apperrors.NotFound("payment order")
	}
	if err != nil {
		return false, apperrors.Wrap(apperrors.KindInternal, "failed to load payment", err)
	}

	if payment.Status == models.PaymentStatusSuccess {
		log.Printf("Webhook replay for order %s ignored", req.OrderID)
		return false, nil
	}

	// Verify before opening the confirmation transaction: the failed mark
	// must outlive the rejection, so it cannot share a transaction with it.
	if !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		if err := s.db.Model(&models.Payment{}).Where("id = ?", payment.ID).
			Update("status", models.PaymentStatusFailed).Error; err != nil {
			return false, apperrors.Wrap(apperrors.KindInternal, "failed to mark payment failed", err)
		}
		return false, apperrors.E(apperrors.KindPaymentVerificationFailed, "payment signature verification failed")
	}

	applied := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).Updates(map[string]interface{}{
			"status":             models.PaymentStatusSuccess,
			"gateway_payment_id": req.PaymentID,
		}).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to mark payment successful", err)
		}

		var staged models.PendingSelection
		if err := tx.Where("gateway_order_id = ?", req.OrderID).First(&staged).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "staged selection missing for order", err)
		}

		booking, err := lockBooking(tx, staged.BookingID)
		if err != nil {
			return err
		}
		if err := confirmSelection(tx, staged.BookingID, staged.ServiceIDs); err != nil {
			return err
		}
		if err := TransitionBooking(tx, booking, models.BookingStatusInProgress); err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

// CancellationResult summarizes the money consequence of a cancellation.
type CancellationResult struct {
	BookingID    uint    `json:"booking_id"`
	Fee          float64 `json:"fee"`
	GST          float64 `json:"gst"`
	RefundAmount float64 `json:"refund_amount"`
}

// Cancel applies the cancellation fee policy for the booking's current status
// and moves it to cancelled.
func (s *PaymentService) Cancel(bookingID uint) (*CancellationResult, error) {
	var result *CancellationResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status == models.BookingStatusCancelled {
			return apperrors.InvalidState("booking is already cancelled")
		}
		switch booking.Status {
		case models.BookingStatusCompleted, models.BookingStatusOutForDelivery, models.BookingStatusDelivered:
			return apperrors.InvalidState("booking can no longer be cancelled")
		}

		result = &CancellationResult{BookingID: bookingID}
		gstRate := s.tax.CurrentGSTPercent()

		switch booking.Status {
		case models.BookingStatusBooked, models.BookingStatusPickup:
			// Nothing committed yet; no fee.

		case models.BookingStatusInProgress:
			fee, err := s.proratedFee(tx, bookingID)
			if err != nil {
				return err
			}
			if fee < minimumCancellationFee {
				fee = minimumCancellationFee
			}
			gst := fee * gstRate / 100
			result.Fee = fee
			result.GST = gst

			if booking.PaymentMethod == models.PaymentMethodOffline {
				// The amount owed on delivery becomes the fee itself.
				if err := tx.Model(&models.Payment{}).
					Where("booking_id = ? AND method = ? AND status = ?", bookingID, models.PaymentMethodOffline, models.PaymentStatusPending).
					Updates(map[string]interface{}{"amount": fee, "gst": gst}).Error; err != nil {
					return apperrors.Wrap(apperrors.KindInternal, "failed to adjust offline payment", err)
				}
			} else {
				var payments []models.Payment
				if err := tx.Where("booking_id = ? AND method = ?", bookingID, models.PaymentMethodOnline).
					Find(&payments).Error; err != nil {
					return apperrors.Wrap(apperrors.KindInternal, "failed to load payments", err)
				}
				paid := 0.0
				var paidPaymentID uint
				for _, p := range payments {
					if p.Status == models.PaymentStatusSuccess {
						paid += p.Amount + p.GST
						paidPaymentID = p.ID
					}
				}
				refund := paid - (fee + gst)
				if refund < 0 {
					refund = 0
				}
				result.RefundAmount = refund
				if paid > 0 {
					entry := models.Refund{
						BookingID: bookingID,
						PaymentID: paidPaymentID,
						Amount:    refund,
						Status:    models.PaymentStatusPending,
					}
					if err := tx.Create(&entry).Error; err != nil {
						return apperrors.Wrap(apperrors.KindInternal, "failed to record refund", err)
					}
				}
				// No new charge at cancellation time: abandon any order the
				// customer never paid.
				if err := tx.Model(&models.Payment{}).
					Where("booking_id = ? AND method = ? AND status = ?", bookingID, models.PaymentMethodOnline, models.PaymentStatusPending).
					Update("status", models.PaymentStatusFailed).Error; err != nil {
					return apperrors.Wrap(apperrors.KindInternal, "failed to void pending payments", err)
				}
			}

		default:
			// Vehicle is with the garage but work has not been confirmed:
			// flat fee collected offline on return.
			fee := minimumCancellationFee
			gst := fee * gstRate / 100
			result.Fee = fee
			result.GST = gst
			payment := models.Payment{
				BookingID: bookingID,
				Method:    models.PaymentMethodOffline,
				Amount:    fee,
				GST:       gst,
				Status:    models.PaymentStatusPending,
			}
			if err := tx.Create(&payment).Error; err != nil {
				return apperrors.Wrap(apperrors.KindInternal, "failed to record cancellation fee", err)
			}
			if err := tx.Model(&models.Booking{}).Where("id = ?", bookingID).
				Update("payment_method", models.PaymentMethodOffline).Error; err != nil {
				return apperrors.Wrap(apperrors.KindInternal, "failed to switch payment method", err)
			}
			booking.PaymentMethod = models.PaymentMethodOffline
		}

		return TransitionBooking(tx, booking, models.BookingStatusCancelled)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SettleOfflinePayment records that the amount owed offline was collected.
// Delivery of an offline-paid booking is blocked until this happens.
func (s *PaymentService) SettleOfflinePayment(bookingID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var payment models.Payment
		err := tx.Where("booking_id = ? AND method = ? AND status = ?", bookingID, models.PaymentMethodOffline, models.PaymentStatusPending).
			Order("id DESC").First(&payment).Error
		if err == gorm.ErrRecordNotFound {
			return apperrors.NotFound("pending offline payment")
		}
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to load offline payment", err)
		}
		if err := tx.Model(&models.Payment{}).Where("id = ?", payment.ID).
			Update("status", models.PaymentStatusSuccess).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to settle offline payment", err)
		}
		return nil
	})
}

// proratedFee computes (sum of price*difficulty over confirmed completed
// services) / max(sum of difficulty over all booked services, 1).
func (s *PaymentService) proratedFee(tx *gorm.DB, bookingID uint) (float64, error) {
	var booked []models.BookedService
	if err := tx.Preload("Service").Where("booking_id = ?", bookingID).Find(&booked).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "failed to load booked services", err)
	}

	numerator := 0.0
	totalDifficulty := 0
	for _, bs := range booked {
		totalDifficulty += bs.Service.Difficulty
		if bs.Status == models.BookedServiceStatusConfirmed && bs.Completed {
			price := bs.EstimatedPrice
			if bs.FinalPrice != nil {
				price = *bs.FinalPrice
			}
			numerator += price * float64(bs.Service.Difficulty)
		}
	}
	if totalDifficulty < 1 {
		totalDifficulty = 1
	}
	return numerator / float64(totalDifficulty), nil
}
