package models

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusBooked         BookingStatus = "booked"
	BookingStatusPickup         BookingStatus = "pickup"
	BookingStatusReceived       BookingStatus = "received"
	BookingStatusAnalysis       BookingStatus = "analysis"
	BookingStatusAnalysed       BookingStatus = "analysed"
	BookingStatusInProgress     BookingStatus = "in-progress"
	BookingStatusCompleted      BookingStatus = "completed"
	BookingStatusOutForDelivery BookingStatus = "out-for-delivery"
	BookingStatusDelivered      BookingStatus = "delivered"
	BookingStatusCancelled      BookingStatus = "cancelled"
)

// BookingStatusByName resolves a status name to its typed value. Unknown
// names return false; callers surface that as a not-found on the lookup.
func BookingStatusByName(name string) (BookingStatus, bool) {
	switch BookingStatus(name) {
	case BookingStatusBooked, BookingStatusPickup, BookingStatusReceived,
		BookingStatusAnalysis, BookingStatusAnalysed, BookingStatusInProgress,
		BookingStatusCompleted, BookingStatusOutForDelivery,
		BookingStatusDelivered, BookingStatusCancelled:
		return BookingStatus(name), true
	}
	return "", false
}

type PaymentMethod string

const (
	PaymentMethodOnline  PaymentMethod = "online"
	PaymentMethodOffline PaymentMethod = "offline"
)

// Booking is the authoritative record of one vehicle-service job. Status is
// only ever written through the state machine so completed_at stamping and
// transition ordering cannot be bypassed.
type Booking struct {
	ID               uint          `json:"id" gorm:"primaryKey"`
	CustomerID       uint          `json:"customer_id" gorm:"not null"`
	VehicleID        uint          `json:"vehicle_id" gorm:"not null"`
	Status           BookingStatus `json:"status" gorm:"type:varchar(20);not null;default:'booked'"`
	PickupAddress    string        `json:"pickup_address" gorm:"type:text;not null"`
	DropAddress      string        `json:"drop_address" gorm:"type:text;not null"`
	PickupDate       time.Time     `json:"pickup_date" gorm:"not null"`
	DropDate         *time.Time    `json:"drop_date"`
	PickupTimeSlotID uint          `json:"pickup_time_slot_id" gorm:"not null"`
	DropTimeSlotID   *uint         `json:"drop_time_slot_id"`
	PaymentMethod    PaymentMethod `json:"payment_method" gorm:"type:varchar(10);not null;default:'online'"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	CompletedAt      *time.Time    `json:"completed_at"`

	// Relationships
	Customer        User                    `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Vehicle         Vehicle                 `json:"vehicle,omitempty" gorm:"foreignKey:VehicleID"`
	Services        []BookedService         `json:"services,omitempty" gorm:"foreignKey:BookingID"`
	Recommendations []BookingRecommendation `json:"recommendations,omitempty" gorm:"foreignKey:BookingID"`
	Assignments     []BookingAssignment     `json:"assignments,omitempty" gorm:"foreignKey:BookingID"`
	Progress        []BookingProgress       `json:"progress,omitempty" gorm:"foreignKey:BookingID"`
	Analysis        *BookingAnalysis        `json:"analysis,omitempty" gorm:"foreignKey:BookingID"`
}

func (Booking) TableName() string {
	return "bookings"
}

// BookingCreateRequest is the customer payload for a new booking.
type BookingCreateRequest struct {
	VehicleID        uint      `json:"vehicle_id" binding:"required"`
	ServiceIDs       []uint    `json:"service_ids" binding:"required,min=1"`
	PickupAddress    string    `json:"pickup_address" binding:"required"`
	DropAddress      string    `json:"drop_address" binding:"required"`
	PickupDate       time.Time `json:"pickup_date" binding:"required"`
	PickupTimeSlotID uint      `json:"pickup_time_slot_id" binding:"required"`
	PaymentMethod    string    `json:"payment_method" binding:"required,oneof=online offline"`
}
