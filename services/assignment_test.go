package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/models"
)

func TestAssignPickupMovesBookingToPickup(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	mech := newMechanic(t, db, "m1@example.com", nil)
	booking := f.newBooking(t, db, models.BookingStatusBooked, models.PaymentMethodOffline)

	svc := NewAssignmentService(db)
	assignment, err := svc.AssignMechanic(booking.ID, models.AssignmentTypePickup)
	require.NoError(t, err)

	assert.Equal(t, mech.ID, assignment.MechanicID)
	assert.Equal(t, models.AssignmentTypePickup, assignment.Type)
	assert.Equal(t, models.AssignmentStatusAssigned, assignment.Status)
	assert.Equal(t, models.BookingStatusPickup, reloadBooking(t, db, booking.ID).Status)

	var profile models.MechanicProfile
	require.NoError(t, db.First(&profile, mech.ID).Error)
	assert.True(t, profile.Assigned)
}

func TestAssignRejectsWrongStage(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	newMechanic(t, db, "m1@example.com", nil)
	booking := f.newBooking(t, db, models.BookingStatusBooked, models.PaymentMethodOffline)

	svc := NewAssignmentService(db)
	_, err := svc.AssignMechanic(booking.ID, models.AssignmentTypeAnalysis)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidStateTransition, apperrors.KindOf(err))
}

func TestAssignRejectsUnresolvedAssignment(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	newMechanic(t, db, "m1@example.com", nil)
	booking := f.newBooking(t, db, models.BookingStatusBooked, models.PaymentMethodOffline)

	svc := NewAssignmentService(db)
	_, err := svc.AssignMechanic(booking.ID, models.AssignmentTypePickup)
	require.NoError(t, err)

	_, err = svc.AssignMechanic(booking.ID, models.AssignmentTypePickup)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindDuplicateAssignment, apperrors.KindOf(err))
}

func TestAssignBlockedByUnvalidatedProgress(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	mech := newMechanic(t, db, "m1@example.com", nil)
	booking := f.newBooking(t, db, models.BookingStatusReceived, models.PaymentMethodOffline)

	done := models.BookingAssignment{
		BookingID:  booking.ID,
		MechanicID: mech.ID,
		Type:       models.AssignmentTypePickup,
		Status:     models.AssignmentStatusCompleted,
	}
	require.NoError(t, db.Create(&done).Error)
	report := models.BookingProgress{
		BookingID:    booking.ID,
		MechanicID:   mech.ID,
		AssignmentID: done.ID,
		Description:  "picked up",
	}
	require.NoError(t, db.Create(&report).Error)

	svc := NewAssignmentService(db)
	_, err := svc.AssignMechanic(booking.ID, models.AssignmentTypeAnalysis)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidStateTransition, apperrors.KindOf(err))

	require.NoError(t, db.Model(&report).Update("validated", true).Error)
	assignment, err := svc.AssignMechanic(booking.ID, models.AssignmentTypeAnalysis)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentTypeAnalysis, assignment.Type)
	assert.Equal(t, models.BookingStatusAnalysis, reloadBooking(t, db, booking.ID).Status)
}

func TestAssignAnalysisRequiresQualifiedMechanic(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	newMechanic(t, db, "driver@example.com", func(p *models.MechanicProfile) {
		p.CanAnalyse = false
	})
	booking := f.newBooking(t, db, models.BookingStatusReceived, models.PaymentMethodOffline)

	svc := NewAssignmentService(db)
	_, err := svc.AssignMechanic(booking.ID, models.AssignmentTypeAnalysis)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindMechanicNotQualified, apperrors.KindOf(err))
}

func TestAssignPickupRequiresQualifiedMechanic(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	newMechanic(t, db, "bench@example.com", func(p *models.MechanicProfile) {
		p.CanPickupDrop = false
	})
	booking := f.newBooking(t, db, models.BookingStatusBooked, models.PaymentMethodOffline)

	svc := NewAssignmentService(db)
	_, err := svc.AssignMechanic(booking.ID, models.AssignmentTypePickup)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindMechanicNotQualified, apperrors.KindOf(err))
	assert.Equal(t, models.BookingStatusBooked, reloadBooking(t, db, booking.ID).Status)
}

func TestStageAssignmentPrefersFreeMechanic(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	busy := newMechanic(t, db, "busy@example.com", nil)
	free := newMechanic(t, db, "free@example.com", nil)

	// The busy mechanic is mid-pickup on another booking, committing 2 hours.
	other := f.newBooking(t, db, models.BookingStatusPickup, models.PaymentMethodOffline)
	require.NoError(t, db.Create(&models.BookingAssignment{
		BookingID:  other.ID,
		MechanicID: busy.ID,
		Type:       models.AssignmentTypePickup,
		Status:     models.AssignmentStatusAssigned,
	}).Error)
	require.NoError(t, db.Model(&models.MechanicProfile{}).Where("id = ?", busy.ID).
		Update("assigned", true).Error)

	booking := f.newBooking(t, db, models.BookingStatusBooked, models.PaymentMethodOffline)
	svc := NewAssignmentService(db)
	assignment, err := svc.AssignMechanic(booking.ID, models.AssignmentTypePickup)
	require.NoError(t, err)
	assert.Equal(t, free.ID, assignment.MechanicID)
}

func TestServiceAssignmentPrefersLowerWorkload(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	newMechanic(t, db, "veteran@example.com", func(p *models.MechanicProfile) {
		p.SkillCategoryIDs = models.IDList{f.category.ID}
		p.Score = 5
	})
	rookie := newMechanic(t, db, "rookie@example.com", func(p *models.MechanicProfile) {
		p.SkillCategoryIDs = models.IDList{f.category.ID}
		p.Score = 0
	})

	booking := f.newBooking(t, db, models.BookingStatusInProgress, models.PaymentMethodOffline)
	confirmServices(t, db, booking.ID)

	svc := NewAssignmentService(db)
	assignment, err := svc.AssignMechanic(booking.ID, models.AssignmentTypeService)
	require.NoError(t, err)
	assert.Equal(t, rookie.ID, assignment.MechanicID)
	assert.Equal(t, models.BookingStatusInProgress, reloadBooking(t, db, booking.ID).Status)
}

func TestServiceAssignmentPrefersSkillCoverage(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	newMechanic(t, db, "generalist@example.com", nil)
	specialist := newMechanic(t, db, "specialist@example.com", func(p *models.MechanicProfile) {
		p.SkillCategoryIDs = models.IDList{f.category.ID}
	})

	booking := f.newBooking(t, db, models.BookingStatusInProgress, models.PaymentMethodOffline)
	confirmServices(t, db, booking.ID)

	svc := NewAssignmentService(db)
	assignment, err := svc.AssignMechanic(booking.ID, models.AssignmentTypeService)
	require.NoError(t, err)
	assert.Equal(t, specialist.ID, assignment.MechanicID)
}

func TestServiceAssignmentNeedsOutstandingWork(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	newMechanic(t, db, "m1@example.com", nil)

	booking := f.newBooking(t, db, models.BookingStatusInProgress, models.PaymentMethodOffline)
	confirmServices(t, db, booking.ID)
	require.NoError(t, db.Model(&models.BookedService{}).
		Where("booking_id = ?", booking.ID).
		Update("completed", true).Error)

	svc := NewAssignmentService(db)
	_, err := svc.AssignMechanic(booking.ID, models.AssignmentTypeService)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDropAssignmentForCancelledBookingKeepsStatus(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	newMechanic(t, db, "m1@example.com", nil)
	booking := f.newBooking(t, db, models.BookingStatusCancelled, models.PaymentMethodOffline)

	svc := NewAssignmentService(db)
	assignment, err := svc.AssignMechanic(booking.ID, models.AssignmentTypeDrop)
	require.NoError(t, err)
	assert.Equal(t, models.AssignmentTypeDrop, assignment.Type)
	assert.Equal(t, models.BookingStatusCancelled, reloadBooking(t, db, booking.ID).Status)
}

func TestDropAssignmentMovesCompletedToOutForDelivery(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	newMechanic(t, db, "m1@example.com", nil)
	booking := f.newBooking(t, db, models.BookingStatusCompleted, models.PaymentMethodOffline)

	svc := NewAssignmentService(db)
	_, err := svc.AssignMechanic(booking.ID, models.AssignmentTypeDrop)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusOutForDelivery, reloadBooking(t, db, booking.ID).Status)
}

func TestAssignUnknownBooking(t *testing.T) {
	db := newTestDB(t)
	newFixture(t, db)
	newMechanic(t, db, "m1@example.com", nil)

	svc := NewAssignmentService(db)
	_, err := svc.AssignMechanic(9999, models.AssignmentTypePickup)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
