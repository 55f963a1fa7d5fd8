package services

import (
	"gorm.io/gorm"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/models"
)

// Fixed score awards for the stages that are not prorated by difficulty.
const (
	pickupDropScoreAward = 2
	analysisScoreAward   = 3
)

// ValidationService is the admin-gated approval workflow for mechanic
// submissions. Each record validates exactly once; validation is what awards
// mechanic score and, for the final work report, completes the booking.
type ValidationService struct {
	db *gorm.DB
}

func NewValidationService(db *gorm.DB) *ValidationService {
	return &ValidationService{db: db}
}

// ValidateProgress approves a progress report. For service-stage reports it
// credits the mechanic with the difficulty of every confirmed-and-completed
// service in the report's completed set, then completes the booking once
// every confirmed service is done. Pickup/drop reports award a fixed score.
func (s *ValidationService) ValidateProgress(progressID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var progress models.BookingProgress
		if err := tx.First(&progress, progressID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("progress report")
			}
			return apperrors.Wrap(apperrors.KindInternal, "failed to load progress report", err)
		}
		if progress.Validated {
			return apperrors.InvalidState("progress report is already validated")
		}

		booking, err := lockBooking(tx, progress.BookingID)
		if err != nil {
			return err
		}

		var assignment models.BookingAssignment
		if err := tx.First(&assignment, progress.AssignmentID).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to load assignment", err)
		}

		if assignment.Type == models.AssignmentTypeService {
			award := 0
			var done []models.BookedService
			if err := tx.Preload("Service").
				Where("booking_id = ? AND status = ? AND completed = ?", booking.ID, models.BookedServiceStatusConfirmed, true).
				Find(&done).Error; err != nil {
				return apperrors.Wrap(apperrors.KindInternal, "failed to load completed services", err)
			}
			for _, bs := range done {
				if progress.CompletedServiceIDs.Contains(bs.ServiceID) {
					award += bs.Service.Difficulty
				}
			}
			if award > 0 {
				if err := addMechanicScore(tx, progress.MechanicID, award); err != nil {
					return err
				}
			}

			var remaining int64
			if err := tx.Model(&models.BookedService{}).
				Where("booking_id = ? AND status = ? AND completed = ?", booking.ID, models.BookedServiceStatusConfirmed, false).
				Count(&remaining).Error; err != nil {
				return apperrors.Wrap(apperrors.KindInternal, "failed to count remaining services", err)
			}
			if remaining == 0 && booking.Status == models.BookingStatusInProgress {
				if err := TransitionBooking(tx, booking, models.BookingStatusCompleted); err != nil {
					return err
				}
			}
		} else {
			if err := addMechanicScore(tx, progress.MechanicID, pickupDropScoreAward); err != nil {
				return err
			}
		}

		// Marking validated is always the last effect.
		if err := tx.Model(&models.BookingProgress{}).Where("id = ?", progress.ID).
			Update("validated", true).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to mark progress validated", err)
		}
		return nil
	})
}

// ValidateAnalysis approves a diagnostic report and awards its fixed score.
func (s *ValidationService) ValidateAnalysis(analysisID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var analysis models.BookingAnalysis
		if err := tx.First(&analysis, analysisID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("analysis report")
			}
			return apperrors.Wrap(apperrors.KindInternal, "failed to load analysis report", err)
		}
		if analysis.Validated {
			return apperrors.InvalidState("analysis report is already validated")
		}

		if err := addMechanicScore(tx, analysis.MechanicID, analysisScoreAward); err != nil {
			return err
		}

		if err := tx.Model(&models.BookingAnalysis{}).Where("id = ?", analysis.ID).
			Update("validated", true).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to mark analysis validated", err)
		}
		return nil
	})
}

// addMechanicScore increments the shared score counter atomically in SQL so
// concurrent validations never lose an award.
func addMechanicScore(tx *gorm.DB, mechanicID uint, delta int) error {
	if err := tx.Model(&models.MechanicProfile{}).Where("id = ?", mechanicID).
		Update("score", gorm.Expr("score + ?", delta)).Error; err != nil {
		return apperrors.Wrap(apperrors.KindInternal, "failed to award mechanic score", err)
	}
	return nil
}
