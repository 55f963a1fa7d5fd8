package models

import (
	"time"
)

type BookedServiceStatus string

const (
	BookedServiceStatusBooked    BookedServiceStatus = "booked"
	BookedServiceStatusConfirmed BookedServiceStatus = "confirmed"
	BookedServiceStatusRejected  BookedServiceStatus = "rejected"
)

// BookedService attaches one service to a booking with its own confirm/reject
// lifecycle. Rejection is a status, never a deletion. FinalPrice stays nil
// until the analysis supplies a quote; Completed is only meaningful while the
// status is confirmed.
type BookedService struct {
	BookingID      uint                `json:"booking_id" gorm:"primaryKey;autoIncrement:false"`
	ServiceID      uint                `json:"service_id" gorm:"primaryKey;autoIncrement:false"`
	Status         BookedServiceStatus `json:"status" gorm:"type:varchar(20);not null;default:'booked'"`
	EstimatedPrice float64             `json:"estimated_price" gorm:"type:decimal(10,2);not null"`
	FinalPrice     *float64            `json:"final_price" gorm:"type:decimal(10,2)"`
	Completed      bool                `json:"completed" gorm:"default:false"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`

	Service Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

func (BookedService) TableName() string {
	return "booked_services"
}

// BookingRecommendation is an extra service suggested after analysis. It only
// becomes a BookedService if the customer selects it.
type BookingRecommendation struct {
	BookingID uint      `json:"booking_id" gorm:"primaryKey;autoIncrement:false"`
	ServiceID uint      `json:"service_id" gorm:"primaryKey;autoIncrement:false"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	Reason    string    `json:"reason" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`

	Service Service `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
}

func (BookingRecommendation) TableName() string {
	return "booking_recommendations"
}
