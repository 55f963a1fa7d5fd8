package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/models"
)

// TestFullServiceLifecycle drives one offline-paid booking through every
// stage: pickup, analysis, confirmation, service work, delivery, with the
// admin validating each submission along the way.
func TestFullServiceLifecycle(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	mech := newMechanic(t, db, "allrounder@example.com", func(p *models.MechanicProfile) {
		p.SkillCategoryIDs = models.IDList{f.category.ID}
	})

	coolant := models.Service{
		CategoryID: f.category.ID,
		Name:       "Coolant flush",
		Price:      600,
		Difficulty: 1,
		TimeHrs:    1,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&coolant).Error)

	bookings := NewBookingService(db)
	assignments := NewAssignmentService(db)
	progress := NewProgressService(db)
	validation := NewValidationService(db)
	payments := newPaymentService(db)

	booking, err := bookings.Create(f.customer.ID, models.BookingCreateRequest{
		VehicleID:        f.vehicle.ID,
		ServiceIDs:       []uint{f.svcOne.ID, f.svcTwo.ID},
		PickupAddress:    "12 Test Street",
		DropAddress:      "12 Test Street",
		PickupDate:       time.Now().Add(24 * time.Hour),
		PickupTimeSlotID: f.slot.ID,
		PaymentMethod:    string(models.PaymentMethodOffline),
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusBooked, booking.Status)

	// Pickup.
	_, err = assignments.AssignMechanic(booking.ID, models.AssignmentTypePickup)
	require.NoError(t, err)
	pickupReport, err := progress.SubmitProgress(mech.ID, booking.ID, models.ProgressSubmitRequest{
		Description:    "vehicle collected",
		EvidenceImages: []string{"https://cdn.example.com/pickup.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusReceived, reloadBooking(t, db, booking.ID).Status)

	// Analysis cannot start until the pickup report is validated.
	_, err = assignments.AssignMechanic(booking.ID, models.AssignmentTypeAnalysis)
	require.Error(t, err)
	require.NoError(t, validation.ValidateProgress(pickupReport.ID))
	assert.Equal(t, 2, mechanicScore(t, db, mech.ID))

	_, err = assignments.AssignMechanic(booking.ID, models.AssignmentTypeAnalysis)
	require.NoError(t, err)
	analysis, err := progress.SubmitAnalysis(mech.ID, booking.ID, models.AnalysisSubmitRequest{
		Report: "belt worn, coolant degraded",
		Quotes: map[uint]float64{f.svcOne.ID: 1500, f.svcTwo.ID: 2500},
		Recommendations: []models.RecommendedEntry{
			{ServiceID: coolant.ID, Price: 550, Reason: "coolant past service life"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusAnalysed, reloadBooking(t, db, booking.ID).Status)
	require.NoError(t, validation.ValidateAnalysis(analysis.ID))
	assert.Equal(t, 5, mechanicScore(t, db, mech.ID))

	// Customer keeps both services and accepts the recommendation.
	selection, err := payments.SelectAndPay(booking.ID, []uint{f.svcOne.ID, f.svcTwo.ID, coolant.ID})
	require.NoError(t, err)
	assert.Equal(t, 4550.0, selection.Amount)
	assert.Equal(t, models.BookingStatusInProgress, reloadBooking(t, db, booking.ID).Status)

	// Service work.
	_, err = assignments.AssignMechanic(booking.ID, models.AssignmentTypeService)
	require.NoError(t, err)
	workReport, err := progress.SubmitProgress(mech.ID, booking.ID, models.ProgressSubmitRequest{
		Description:         "all jobs finished",
		CompletedServiceIDs: []uint{f.svcOne.ID, f.svcTwo.ID, coolant.ID},
	})
	require.NoError(t, err)
	require.NoError(t, validation.ValidateProgress(workReport.ID))
	assert.Equal(t, 13, mechanicScore(t, db, mech.ID)) // +3 +4 +1 difficulty
	assert.Equal(t, models.BookingStatusCompleted, reloadBooking(t, db, booking.ID).Status)

	// Delivery: blocked until the offline amount is collected.
	_, err = assignments.AssignMechanic(booking.ID, models.AssignmentTypeDrop)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusOutForDelivery, reloadBooking(t, db, booking.ID).Status)

	_, err = progress.SubmitProgress(mech.ID, booking.ID, models.ProgressSubmitRequest{Description: "at customer address"})
	require.Error(t, err)
	require.NoError(t, payments.SettleOfflinePayment(booking.ID))

	dropReport, err := progress.SubmitProgress(mech.ID, booking.ID, models.ProgressSubmitRequest{Description: "vehicle handed over"})
	require.NoError(t, err)

	delivered := reloadBooking(t, db, booking.ID)
	assert.Equal(t, models.BookingStatusDelivered, delivered.Status)
	assert.NotNil(t, delivered.CompletedAt)

	require.NoError(t, validation.ValidateProgress(dropReport.ID))
	assert.Equal(t, 15, mechanicScore(t, db, mech.ID))

	// Terminal bookings cannot be cancelled.
	_, err = payments.Cancel(booking.ID)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidStateTransition, apperrors.KindOf(err))
}

// TestCancelledBookingStillGetsVehicleBack covers the cancel-then-return
// path: a flat fee is charged and a drop can still run without reviving the
// booking.
func TestCancelledBookingStillGetsVehicleBack(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	mech := newMechanic(t, db, "driver@example.com", nil)
	booking := f.newBooking(t, db, models.BookingStatusReceived, models.PaymentMethodOnline)

	payments := newPaymentService(db)
	result, err := payments.Cancel(booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.Fee)

	assignments := NewAssignmentService(db)
	_, err = assignments.AssignMechanic(booking.ID, models.AssignmentTypeDrop)
	require.NoError(t, err)

	progress := NewProgressService(db)
	_, err = progress.SubmitProgress(mech.ID, booking.ID, models.ProgressSubmitRequest{Description: "vehicle returned"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, reloadBooking(t, db, booking.ID).Status)

	// The flat fee switched the booking to offline collection on return.
	require.NoError(t, payments.SettleOfflinePayment(booking.ID))
	var payment models.Payment
	require.NoError(t, db.Where("booking_id = ?", booking.ID).First(&payment).Error)
	assert.Equal(t, models.PaymentStatusSuccess, payment.Status)
}
