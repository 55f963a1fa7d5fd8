package models

import (
	"time"
)

type AssignmentType string

const (
	AssignmentTypePickup   AssignmentType = "pickup"
	AssignmentTypeDrop     AssignmentType = "drop"
	AssignmentTypeAnalysis AssignmentType = "analysis"
	AssignmentTypeService  AssignmentType = "service"
)

// AssignmentTypeByName resolves an assignment-type name to its typed value.
func AssignmentTypeByName(name string) (AssignmentType, bool) {
	switch AssignmentType(name) {
	case AssignmentTypePickup, AssignmentTypeDrop, AssignmentTypeAnalysis, AssignmentTypeService:
		return AssignmentType(name), true
	}
	return "", false
}

type AssignmentStatus string

const (
	AssignmentStatusAssigned  AssignmentStatus = "assigned"
	AssignmentStatusCompleted AssignmentStatus = "completed"
)

// BookingAssignment ties a mechanic to one stage of a booking. At most one
// assignment per booking may hold status 'assigned' at a time.
type BookingAssignment struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	BookingID  uint             `json:"booking_id" gorm:"not null;index"`
	MechanicID uint             `json:"mechanic_id" gorm:"not null;index"`
	Type       AssignmentType   `json:"type" gorm:"type:varchar(20);not null"`
	Status     AssignmentStatus `json:"status" gorm:"type:varchar(20);not null;default:'assigned'"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`

	Booking  Booking         `json:"booking,omitempty" gorm:"foreignKey:BookingID"`
	Mechanic MechanicProfile `json:"mechanic,omitempty" gorm:"foreignKey:MechanicID"`
}

func (BookingAssignment) TableName() string {
	return "booking_assignments"
}

// AssignRequest is the admin payload for assigning a mechanic stage.
type AssignRequest struct {
	Type string `json:"type" binding:"required,oneof=pickup drop analysis service"`
}
