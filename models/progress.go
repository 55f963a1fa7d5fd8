package models

import (
	"time"
)

// BookingProgress is a mechanic-submitted update for a stage of work. A new
// progress entry (or assignment) cannot be created while the booking's latest
// progress is still unvalidated.
type BookingProgress struct {
	ID                  uint       `json:"id" gorm:"primaryKey"`
	BookingID           uint       `json:"booking_id" gorm:"not null;index"`
	MechanicID          uint       `json:"mechanic_id" gorm:"not null"`
	AssignmentID        uint       `json:"assignment_id" gorm:"not null"`
	Description         string     `json:"description" gorm:"type:text;not null"`
	EvidenceImages      StringList `json:"evidence_images" gorm:"type:text"`
	CompletedServiceIDs IDList     `json:"completed_service_ids" gorm:"type:text"`
	Validated           bool       `json:"validated" gorm:"default:false"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`

	Mechanic MechanicProfile `json:"mechanic,omitempty" gorm:"foreignKey:MechanicID"`
}

func (BookingProgress) TableName() string {
	return "booking_progress"
}

// BookingAnalysis is the one-to-one diagnostic report for a booking. The
// per-service quotes it carries land on the booked services' final prices.
type BookingAnalysis struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	BookingID  uint      `json:"booking_id" gorm:"uniqueIndex;not null"`
	MechanicID uint      `json:"mechanic_id" gorm:"not null"`
	Report     string    `json:"report" gorm:"type:text;not null"`
	Validated  bool      `json:"validated" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Mechanic MechanicProfile `json:"mechanic,omitempty" gorm:"foreignKey:MechanicID"`
}

func (BookingAnalysis) TableName() string {
	return "booking_analyses"
}

// ProgressSubmitRequest is the mechanic payload for a progress update.
type ProgressSubmitRequest struct {
	Description         string   `json:"description" binding:"required"`
	EvidenceImages      []string `json:"evidence_images"`
	CompletedServiceIDs []uint   `json:"completed_service_ids"`
}

// AnalysisSubmitRequest carries the diagnostic report plus a quote for every
// booked service. Missing quotes reject the submission.
type AnalysisSubmitRequest struct {
	Report          string             `json:"report" binding:"required"`
	Quotes          map[uint]float64   `json:"quotes" binding:"required"`
	Recommendations []RecommendedEntry `json:"recommendations"`
}

// RecommendedEntry is an additional service the analysing mechanic suggests.
type RecommendedEntry struct {
	ServiceID uint    `json:"service_id" binding:"required"`
	Price     float64 `json:"price" binding:"required"`
	Reason    string  `json:"reason"`
}
