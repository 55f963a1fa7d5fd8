package services

import (
	"gorm.io/gorm"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/models"
)

// confirmSelection reconciles the customer's chosen service set against the
// booking's booked services and recommendations. Every existing booked
// service is confirmed or rejected by membership; selected ids that exist
// only as recommendations become new confirmed booked services at the
// recommendation's price. Nothing is ever deleted.
func confirmSelection(tx *gorm.DB, bookingID uint, serviceIDs models.IDList) error {
	var booked []models.BookedService
	if err := tx.Where("booking_id = ?", bookingID).Find(&booked).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to load booked services", err)
	}

	existing := make(map[uint]bool, len(booked))
	for _, bs := range booked {
		existing[bs.ServiceID] = true
		status := models.BookedServiceStatusRejected
		if serviceIDs.Contains(bs.ServiceID) {
			status = models.BookedServiceStatusConfirmed
		}
		if err := tx.Model(&models.BookedService{}).
			Where("booking_id = ? AND service_id = ?", bookingID, bs.ServiceID).
			Update("status", status).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to update booked service status", err)
		}
	}

	for _, id := range serviceIDs {
		if existing[id] {
			continue
		}
		var rec models.BookingRecommendation
		err := tx.Where("booking_id = ? AND service_id = ?", bookingID, id).First(&rec).Error
		if err == gorm.ErrRecordNotFound {
			return apperrors.E(apperrors.KindValidation, "selected service was neither booked nor recommended")
		}
		if err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to load recommendation", err)
		}
		merged := models.BookedService{
			BookingID:      bookingID,
			ServiceID:      id,
			Status:         models.BookedServiceStatusConfirmed,
			EstimatedPrice: rec.Price,
			FinalPrice:     &rec.Price,
			Completed:      false,
		}
		if err := tx.Create(&merged).Error; err != nil {
			return apperrors.Wrap(apperrors.KindConstraintViolation, "failed to add recommended service", err)
		}
	}

	return nil
}
