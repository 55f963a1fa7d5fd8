package services

import (
	"gorm.io/gorm"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/models"
)

// ProgressService handles mechanic-submitted progress updates and analysis
// reports.
type ProgressService struct {
	db *gorm.DB
}

func NewProgressService(db *gorm.DB) *ProgressService {
	return &ProgressService{db: db}
}

// SubmitProgress records a progress update for the mechanic's active
// assignment, closes the assignment, and advances the booking where the
// guard table says submission itself transitions (pickup -> received,
// out-for-delivery -> delivered). At the in-progress stage it marks the
// listed confirmed services completed instead.
func (s *ProgressService) SubmitProgress(mechanicID, bookingID uint, req models.ProgressSubmitRequest) (*models.BookingProgress, error) {
	var created *models.BookingProgress

	err := s.db.Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}

		assignment, err := latestAssignment(tx, bookingID)
		if err != nil {
			return err
		}
		if assignment == nil || assignment.Status != models.AssignmentStatusAssigned {
			return apperrors.InvalidState("booking has no active assignment")
		}
		if assignment.MechanicID != mechanicID {
			return apperrors.Forbidden("assignment belongs to another mechanic")
		}
		if assignment.Type == models.AssignmentTypeAnalysis {
			return apperrors.InvalidState("analysis assignments conclude with an analysis report, not a progress update")
		}

		prev, err := latestProgress(tx, bookingID)
		if err != nil {
			return err
		}
		if prev != nil && !prev.Validated {
			return apperrors.InvalidState("previous progress report has not been validated yet")
		}

		progress := models.BookingProgress{
			BookingID:           bookingID,
			MechanicID:          mechanicID,
			AssignmentID:        assignment.ID,
			Description:         req.Description,
			EvidenceImages:      models.StringList(req.EvidenceImages),
			CompletedServiceIDs: models.IDList(req.CompletedServiceIDs),
		}
		if err := tx.Create(&progress).Error; err != nil {
			return apperrors.Wrap(apperrors.KindConstraintViolation, "failed to record progress", err)
		}

		if err := closeAssignment(tx, assignment); err != nil {
			return err
		}

		switch booking.Status {
		case models.BookingStatusPickup:
			if err := TransitionBooking(tx, booking, models.BookingStatusReceived); err != nil {
				return err
			}
		case models.BookingStatusOutForDelivery:
			if err := checkOfflineSettled(tx, booking); err != nil {
				return err
			}
			if err := TransitionBooking(tx, booking, models.BookingStatusDelivered); err != nil {
				return err
			}
		case models.BookingStatusInProgress:
			for _, id := range progress.CompletedServiceIDs {
				if err := tx.Model(&models.BookedService{}).
					Where("booking_id = ? AND service_id = ? AND status = ?", bookingID, id, models.BookedServiceStatusConfirmed).
					Update("completed", true).Error; err != nil {
					return apperrors.Wrap(apperrors.KindInternal, "failed to mark service completed", err)
				}
			}
		case models.BookingStatusCancelled:
			// Post-cancellation drop: the vehicle went back, the booking
			// stays terminal.
		}

		created = &progress
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SubmitAnalysis records the diagnostic report, applies a final price to
// every booked service, stores any recommended additions, and advances the
// booking to analysed. A quote must be supplied for every booked service.
func (s *ProgressService) SubmitAnalysis(mechanicID, bookingID uint, req models.AnalysisSubmitRequest) (*models.BookingAnalysis, error) {
	var created *models.BookingAnalysis

	err := s.db.Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}
		if booking.Status != models.BookingStatusAnalysis {
			return apperrors.InvalidState("booking is not awaiting analysis")
		}

		assignment, err := latestAssignment(tx, bookingID)
		if err != nil {
			return err
		}
		if assignment == nil || assignment.Status != models.AssignmentStatusAssigned || assignment.Type != models.AssignmentTypeAnalysis {
			return apperrors.InvalidState("booking has no active analysis assignment")
		}
		if assignment.MechanicID != mechanicID {
			return apperrors.Forbidden("assignment belongs to another mechanic")
		}

		var booked []models.BookedService
		if err := tx.Where("booking_id = ?", bookingID).Find(&booked).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to load booked services", err)
		}
		for _, bs := range booked {
			if _, ok := req.Quotes[bs.ServiceID]; !ok {
				return apperrors.E(apperrors.KindIncompletePriceQuote, "a price quote is required for every booked service")
			}
		}
		for _, bs := range booked {
			quote := req.Quotes[bs.ServiceID]
			if err := tx.Model(&models.BookedService{}).
				Where("booking_id = ? AND service_id = ?", bookingID, bs.ServiceID).
				Update("final_price", quote).Error; err != nil {
				return apperrors.Wrap(apperrors.KindInternal, "failed to set final price", err)
			}
		}

		analysis := models.BookingAnalysis{
			BookingID:  bookingID,
			MechanicID: mechanicID,
			Report:     req.Report,
		}
		if err := tx.Create(&analysis).Error; err != nil {
			return apperrors.Wrap(apperrors.KindConstraintViolation, "failed to record analysis", err)
		}

		for _, rec := range req.Recommendations {
			entry := models.BookingRecommendation{
				BookingID: bookingID,
				ServiceID: rec.ServiceID,
				Price:     rec.Price,
				Reason:    rec.Reason,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return apperrors.Wrap(apperrors.KindConstraintViolation, "failed to record recommendation", err)
			}
		}

		if err := closeAssignment(tx, assignment); err != nil {
			return err
		}

		if err := TransitionBooking(tx, booking, models.BookingStatusAnalysed); err != nil {
			return err
		}

		created = &analysis
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// closeAssignment marks an assignment completed and frees its mechanic. The
// assigned flag only clears once the mechanic has no open assignment left on
// any booking, so availability hours keep counting their remaining work.
func closeAssignment(tx *gorm.DB, assignment *models.BookingAssignment) error {
	if err := tx.Model(&models.BookingAssignment{}).Where("id = ?", assignment.ID).
		Update("status", models.AssignmentStatusCompleted).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to close assignment", err)
	}

	var open int64
	if err := tx.Model(&models.BookingAssignment{}).
		Where("mechanic_id = ? AND status = ?", assignment.MechanicID, models.AssignmentStatusAssigned).
		Count(&open).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to count open assignments", err)
	}
	if open == 0 {
		if err := tx.Model(&models.MechanicProfile{}).Where("id = ?", assignment.MechanicID).
			Update("assigned", false).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to release mechanic", err)
		}
	}
	return nil
}

// checkOfflineSettled blocks delivery while an offline payment is still owed.
func checkOfflineSettled(tx *gorm.DB, booking *models.Booking) error {
	if booking.PaymentMethod != models.PaymentMethodOffline {
		return nil
	}
	var pending int64
	if err := tx.Model(&models.Payment{}).
		Where("booking_id = ? AND method = ? AND status = ?", booking.ID, models.PaymentMethodOffline, models.PaymentStatusPending).
		Count(&pending).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to check offline payment", err)
	}
	if pending > 0 {
		return apperrors.InvalidState("offline payment must be settled before delivery")
	}
	return nil
}
