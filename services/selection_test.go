package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/models"
)

func TestSelectionConfirmsAndRejectsByMembership(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	booking := f.newBooking(t, db, models.BookingStatusAnalysed, models.PaymentMethodOffline)

	require.NoError(t, confirmSelection(db, booking.ID, models.IDList{f.svcOne.ID}))

	var one, two models.BookedService
	require.NoError(t, db.Where("booking_id = ? AND service_id = ?", booking.ID, f.svcOne.ID).First(&one).Error)
	require.NoError(t, db.Where("booking_id = ? AND service_id = ?", booking.ID, f.svcTwo.ID).First(&two).Error)
	assert.Equal(t, models.BookedServiceStatusConfirmed, one.Status)
	assert.Equal(t, models.BookedServiceStatusRejected, two.Status)
}

func TestSelectionMergesRecommendationOnce(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	booking := f.newBooking(t, db, models.BookingStatusAnalysed, models.PaymentMethodOffline)

	brakes := models.Service{
		CategoryID: f.category.ID,
		Name:       "Brake pad replacement",
		Price:      800,
		Difficulty: 2,
		TimeHrs:    1,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&brakes).Error)
	require.NoError(t, db.Create(&models.BookingRecommendation{
		BookingID: booking.ID,
		ServiceID: brakes.ID,
		Price:     750,
		Reason:    "pads below wear limit",
	}).Error)

	selected := models.IDList{f.svcOne.ID, brakes.ID}
	require.NoError(t, confirmSelection(db, booking.ID, selected))

	var merged models.BookedService
	require.NoError(t, db.Where("booking_id = ? AND service_id = ?", booking.ID, brakes.ID).First(&merged).Error)
	assert.Equal(t, models.BookedServiceStatusConfirmed, merged.Status)
	assert.Equal(t, 750.0, merged.EstimatedPrice)
	require.NotNil(t, merged.FinalPrice)
	assert.Equal(t, 750.0, *merged.FinalPrice)
	assert.False(t, merged.Completed)

	// Re-running the same selection must not duplicate the merged row.
	require.NoError(t, confirmSelection(db, booking.ID, selected))
	var count int64
	require.NoError(t, db.Model(&models.BookedService{}).
		Where("booking_id = ? AND service_id = ?", booking.ID, brakes.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSelectionRejectsUnknownService(t *testing.T) {
	db := newTestDB(t)
	f := newFixture(t, db)
	booking := f.newBooking(t, db, models.BookingStatusAnalysed, models.PaymentMethodOffline)

	err := confirmSelection(db, booking.ID, models.IDList{f.svcOne.ID, 9999})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
