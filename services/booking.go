package services

import (
	"gorm.io/gorm"

	"vehicle-service-server/apperrors"
	"vehicle-service-server/models"
)

// BookingService creates bookings and their booked services. Everything after
// creation flows through the state machine operations.
type BookingService struct {
	db *gorm.DB
}

func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{db: db}
}

// Create opens a new booking in the booked state with one BookedService per
// requested service, priced at the catalog estimate.
func (s *BookingService) Create(customerID uint, req models.BookingCreateRequest) (*models.Booking, error) {
	var created *models.Booking

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var vehicle models.Vehicle
		if err := tx.First(&vehicle, req.VehicleID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperrors.NotFound("vehicle")
			}
			return apperrors.Wrap(apperrors.KindInternal, "failed to load vehicle", err)
		}
		if vehicle.CustomerID != customerID {
			return apperrors.Forbidden("vehicle belongs to another customer")
		}

		var slot models.TimeSlot
		if err := tx.First(&slot, req.PickupTimeSlotID).Error; err != nil {
			return apperrors.E(apperrors.KindConstraintViolation, "pickup time slot does not exist")
		}

		var catalog []models.Service
		if err := tx.Where("id IN ? AND is_active = ?", req.ServiceIDs, true).Find(&catalog).Error; err != nil {
			return apperrors.Wrap(apperrors.KindInternal, "failed to load services", err)
		}
		if len(catalog) != len(dedupe(req.ServiceIDs)) {
			return apperrors.E(apperrors.KindConstraintViolation, "one or more requested services do not exist")
		}

		booking := models.Booking{
			CustomerID:       customerID,
			VehicleID:        req.VehicleID,
			Status:           models.BookingStatusBooked,
			PickupAddress:    req.PickupAddress,
			DropAddress:      req.DropAddress,
			PickupDate:       req.PickupDate,
			PickupTimeSlotID: req.PickupTimeSlotID,
			PaymentMethod:    models.PaymentMethod(req.PaymentMethod),
		}
		if err := tx.Create(&booking).Error; err != nil {
			return apperrors.Wrap(apperrors.KindConstraintViolation, "failed to create booking", err)
		}

		for _, svc := range catalog {
			bs := models.BookedService{
				BookingID:      booking.ID,
				ServiceID:      svc.ID,
				Status:         models.BookedServiceStatusBooked,
				EstimatedPrice: svc.Price,
			}
			if err := tx.Create(&bs).Error; err != nil {
				return apperrors.Wrap(apperrors.KindConstraintViolation, "failed to attach service", err)
			}
		}

		created = &booking
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
