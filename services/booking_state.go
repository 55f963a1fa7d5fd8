package services

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/models"
)

// TransitionBooking is the single writer of booking status. Callers validate
// the guard for their operation before calling; the only checks here are that
// the booking is not already cancelled and that terminal bookings cannot be
// cancelled. Reaching 'delivered' stamps completed_at.
func TransitionBooking(tx *gorm.DB, booking *models.Booking, target models.BookingStatus) error {
	if booking.Status == models.BookingStatusCancelled {
		return apperrors.InvalidState("booking is already cancelled")
	}
	if target == models.BookingStatusCancelled {
		switch booking.Status {
		case models.BookingStatusCompleted, models.BookingStatusOutForDelivery, models.BookingStatusDelivered:
			return apperrors.InvalidState("booking can no longer be cancelled")
		}
	}

	updates := map[string]interface{}{
		"status":     target,
		"updated_at": time.Now(),
	}
	var completedAt *time.Time
	if target == models.BookingStatusDelivered {
		now := time.Now()
		completedAt = &now
		updates["completed_at"] = completedAt
	}

	if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).Updates(updates).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to update booking status", err)
	}

	booking.Status = target
	if completedAt != nil {
		booking.CompletedAt = completedAt
	}
	return nil
}

// lockBooking loads a booking under a row lock so guard evaluation and the
// resulting mutation commit atomically. sqlite (tests) serializes writes on
// its own and rejects FOR UPDATE, so the clause is postgres-only.
func lockBooking(tx *gorm.DB, bookingID uint) (*models.Booking, error) {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var booking models.Booking
	if err := q.First(&booking, bookingID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("booking")
		}
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load booking", err)
	}
	return &booking, nil
}

// latestAssignment returns the most recent assignment for a booking, or nil.
func latestAssignment(tx *gorm.DB, bookingID uint) (*models.BookingAssignment, error) {
	var assignment models.BookingAssignment
	err := tx.Where("booking_id = ?", bookingID).Order("id DESC").First(&assignment).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load latest assignment", err)
	}
	return &assignment, nil
}

// latestProgress returns the most recent progress entry for a booking, or nil.
func latestProgress(tx *gorm.DB, bookingID uint) (*models.BookingProgress, error) {
	var progress models.BookingProgress
	err := tx.Where("booking_id = ?", bookingID).Order("id DESC").First(&progress).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load latest progress", err)
	}
	return &progress, nil
}
