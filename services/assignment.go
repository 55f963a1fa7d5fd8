package services

import (
	"log"

	"gorm.io/gorm"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/models"
)

// AssignmentService selects mechanics for booking stages and records the
// resulting assignments.
type AssignmentService struct {
	db *gorm.DB
}

func NewAssignmentService(db *gorm.DB) *AssignmentService {
	return &AssignmentService{db: db}
}

// candidate carries one mechanic's raw features and normalized scores.
type candidate struct {
	mechanic   models.MechanicProfile
	availHours float64
	workload   float64
	availScore float64
	workScore  float64
	skillScore float64
	total      float64
}

// AssignMechanic picks the best mechanic for the requested stage and creates
// the assignment inside one transaction. The booking row is locked first so
// two admins cannot double-assign.
func (s *AssignmentService) AssignMechanic(bookingID uint, assignType models.AssignmentType) (*models.BookingAssignment, error) {
	var created *models.BookingAssignment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		booking, err := lockBooking(tx, bookingID)
		if err != nil {
			return err
		}

		// Re-read the latest assignment inside the transaction rather than
		// trusting caller-supplied state.
		last, err := latestAssignment(tx, bookingID)
		if err != nil {
			return err
		}
		if last != nil && last.Status == models.AssignmentStatusAssigned {
			return apperrors.E(apperrors.KindDuplicateAssignment, "an unresolved assignment already exists for this booking")
		}

		progress, err := latestProgress(tx, bookingID)
		if err != nil {
			return err
		}
		if progress != nil && !progress.Validated {
			return apperrors.InvalidState("latest progress report has not been validated yet")
		}

		if err := checkStageStatus(booking, assignType); err != nil {
			return err
		}

		var mechanic *models.MechanicProfile
		if assignType == models.AssignmentTypeService {
			mechanic, err = s.selectServiceMechanic(tx, bookingID)
		} else {
			mechanic, err = s.selectStageMechanic(tx, assignType)
		}
		if err != nil {
			return err
		}
		if mechanic == nil {
			if assignType == models.AssignmentTypeService {
				return apperrors.NotFound("qualified mechanic")
			}
			return apperrors.E(apperrors.KindMechanicNotQualified, "no mechanic is qualified for the "+string(assignType)+" stage")
		}

		assignment := models.BookingAssignment{
			BookingID:  bookingID,
			MechanicID: mechanic.ID,
			Type:       assignType,
			Status:     models.AssignmentStatusAssigned,
		}
		if err := tx.Create(&assignment).Error; err != nil {
			return apperrors.Wrap(apperrors.KindConstraintViolation, "failed to create assignment", err)
		}

		if err := tx.Model(&models.MechanicProfile{}).Where("id = ?", mechanic.ID).
			Update("assigned", true).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to mark mechanic assigned", err)
		}

		switch {
		case assignType == models.AssignmentTypePickup:
			err = TransitionBooking(tx, booking, models.BookingStatusPickup)
		case assignType == models.AssignmentTypeAnalysis:
			err = TransitionBooking(tx, booking, models.BookingStatusAnalysis)
		case assignType == models.AssignmentTypeDrop && booking.Status == models.BookingStatusCompleted:
			err = TransitionBooking(tx, booking, models.BookingStatusOutForDelivery)
			// A drop for a cancelled booking returns the vehicle without
			// touching the terminal status.
		}
		if err != nil {
			return err
		}

		created = &assignment
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Assigned mechanic %d to booking %d for %s", created.MechanicID, created.BookingID, created.Type)
	return created, nil
}

// checkStageStatus enforces which booking status each stage may be assigned
// from. Drop is also legal for a cancelled booking whose vehicle still needs
// returning; the duplicate-assignment check above handles retry semantics.
func checkStageStatus(booking *models.Booking, assignType models.AssignmentType) error {
	switch assignType {
	case models.AssignmentTypePickup:
		if booking.Status != models.BookingStatusBooked {
			return apperrors.InvalidState("pickup can only be assigned to a newly booked booking")
		}
	case models.AssignmentTypeAnalysis:
		if booking.Status != models.BookingStatusReceived {
			return apperrors.InvalidState("analysis can only be assigned once the vehicle is received")
		}
	case models.AssignmentTypeService:
		if booking.Status != models.BookingStatusInProgress {
			return apperrors.InvalidState("service work can only be assigned while the booking is in progress")
		}
	case models.AssignmentTypeDrop:
		if booking.Status != models.BookingStatusCompleted && booking.Status != models.BookingStatusCancelled {
			return apperrors.InvalidState("drop can only be assigned once work is completed or the booking is cancelled")
		}
	}
	return nil
}

// selectServiceMechanic scores every mechanic for outstanding service work on
// the booking. Weighted total = 0.5*availability + 0.25*skill + 0.25*workload;
// ties break on skill, then availability, then workload, then first seen.
// Returns nil when the booking has no outstanding confirmed, incomplete
// services or no mechanics exist.
func (s *AssignmentService) selectServiceMechanic(tx *gorm.DB, bookingID uint) (*models.MechanicProfile, error) {
	var outstanding []models.BookedService
	if err := tx.Preload("Service").
		Where("booking_id = ? AND status = ? AND completed = ?", bookingID, models.BookedServiceStatusConfirmed, false).
		Find(&outstanding).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load outstanding services", err)
	}
	if len(outstanding) == 0 {
		return nil, nil
	}

	required := make(map[uint]bool)
	for _, bs := range outstanding {
		required[bs.Service.CategoryID] = true
	}

	var mechanics []models.MechanicProfile
	if err := tx.Find(&mechanics).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load mechanics", err)
	}
	if len(mechanics) == 0 {
		return nil, nil
	}

	candidates := make([]candidate, 0, len(mechanics))
	for _, m := range mechanics {
		hours, err := s.availabilityHours(tx, &m)
		if err != nil {
			return nil, err
		}
		matched := 0
		for _, id := range m.SkillCategoryIDs {
			if required[id] {
				matched++
			}
		}
		candidates = append(candidates, candidate{
			mechanic:   m,
			availHours: hours,
			workload:   float64(m.Score),
			skillScore: float64(matched) / float64(len(required)),
		})
	}

	normalize(candidates)
	for i := range candidates {
		c := &candidates[i]
		c.total = 0.5*c.availScore + 0.25*c.skillScore + 0.25*c.workScore
	}

	best := 0
	for i := 1; i < len(candidates); i++ {
		if serviceBeats(&candidates[i], &candidates[best]) {
			best = i
		}
	}
	return &candidates[best].mechanic, nil
}

// selectStageMechanic scores mechanics qualified for a pickup/drop/analysis
// stage. Weighted total = 0.7*availability + 0.3*workload; ties break on
// availability then workload. Returns nil when nobody qualifies.
func (s *AssignmentService) selectStageMechanic(tx *gorm.DB, assignType models.AssignmentType) (*models.MechanicProfile, error) {
	q := tx
	if assignType == models.AssignmentTypeAnalysis {
		q = q.Where("can_analyse = ?", true)
	} else {
		q = q.Where("can_pickup_drop = ?", true)
	}

	var mechanics []models.MechanicProfile
	if err := q.Find(&mechanics).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to load mechanics", err)
	}
	if len(mechanics) == 0 {
		return nil, nil
	}

	candidates := make([]candidate, 0, len(mechanics))
	for _, m := range mechanics {
		hours, err := s.availabilityHours(tx, &m)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{
			mechanic:   m,
			availHours: hours,
			workload:   float64(m.Score),
		})
	}

	normalize(candidates)
	for i := range candidates {
		c := &candidates[i]
		c.total = 0.7*c.availScore + 0.3*c.workScore
	}

	best := 0
	for i := 1; i < len(candidates); i++ {
		if stageBeats(&candidates[i], &candidates[best]) {
			best = i
		}
	}
	return &candidates[best].mechanic, nil
}

// availabilityHours sums the mechanic's outstanding committed hours: 1h per
// active analysis assignment, 2h per active pickup/drop, and the time_hrs of
// confirmed-but-incomplete services for an active service assignment. An
// unassigned mechanic commits 0 hours.
func (s *AssignmentService) availabilityHours(tx *gorm.DB, m *models.MechanicProfile) (float64, error) {
	if !m.Assigned {
		return 0, nil
	}

	var active []models.BookingAssignment
	if err := tx.Where("mechanic_id = ? AND status = ?", m.ID, models.AssignmentStatusAssigned).
		Find(&active).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.KindInternal, "failed to load active assignments", err)
	}

	hours := 0.0
	for _, a := range active {
		switch a.Type {
		case models.AssignmentTypeAnalysis:
			hours += 1
		case models.AssignmentTypePickup, models.AssignmentTypeDrop:
			hours += 2
		case models.AssignmentTypeService:
			var remaining []models.BookedService
			if err := tx.Preload("Service").
				Where("booking_id = ? AND status = ? AND completed = ?", a.BookingID, models.BookedServiceStatusConfirmed, false).
				Find(&remaining).Error; err != nil {
				return 0, apperrors.Wrap(apperrors.KindInternal, "failed to load remaining services", err)
			}
			for _, bs := range remaining {
				hours += bs.Service.TimeHrs
			}
		}
	}
	return hours, nil
}

// normalize applies inverted min-max normalization to availability hours and
// workload: the least-loaded candidate scores 1, and everyone scores 1 when
// the field is flat across candidates.
func normalize(candidates []candidate) {
	minA, maxA := candidates[0].availHours, candidates[0].availHours
	minW, maxW := candidates[0].workload, candidates[0].workload
	for _, c := range candidates[1:] {
		if c.availHours < minA {
			minA = c.availHours
		}
		if c.availHours > maxA {
			maxA = c.availHours
		}
		if c.workload < minW {
			minW = c.workload
		}
		if c.workload > maxW {
			maxW = c.workload
		}
	}
	for i := range candidates {
		c := &candidates[i]
		if maxA == minA {
			c.availScore = 1
		} else {
			c.availScore = (maxA - c.availHours) / (maxA - minA)
		}
		if maxW == minW {
			c.workScore = 1
		} else {
			c.workScore = (maxW - c.workload) / (maxW - minW)
		}
	}
}

func serviceBeats(a, b *candidate) bool {
	if a.total != b.total {
		return a.total > b.total
	}
	if a.skillScore != b.skillScore {
		return a.skillScore > b.skillScore
	}
	if a.availScore != b.availScore {
		return a.availScore > b.availScore
	}
	return a.workScore > b.workScore
}

func stageBeats(a, b *candidate) bool {
	if a.total != b.total {
		return a.total > b.total
	}
	if a.availScore != b.availScore {
		return a.availScore > b.availScore
	}
	return a.workScore > b.workScore
}
