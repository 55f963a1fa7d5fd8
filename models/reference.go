package models

import (
	"time"

	"gorm.io/gorm"
)

// ServiceCategory groups services and doubles as a mechanic skill unit.
type ServiceCategory struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"type:varchar(100);not null;unique"`
	Description string         `json:"description" gorm:"type:text"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// Service is a unit of garage work a customer can book. Difficulty (1-5)
// feeds both mechanic scoring and cancellation-fee proration; TimeHrs feeds
// the assignment engine's availability feature.
type Service struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	CategoryID  uint            `json:"category_id" gorm:"not null"`
	Category    ServiceCategory `json:"category" gorm:"foreignKey:CategoryID"`
	Name        string          `json:"name" gorm:"type:varchar(200);not null"`
	Description string          `json:"description" gorm:"type:text"`
	Price       float64         `json:"price" gorm:"type:decimal(10,2);not null"`
	Difficulty  int             `json:"difficulty" gorm:"not null;default:1;check:difficulty BETWEEN 1 AND 5"`
	TimeHrs     float64         `json:"time_hrs" gorm:"type:decimal(5,2);not null;default:1"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"deleted_at,omitempty" gorm:"index"`
}

func (Service) TableName() string {
	return "services"
}

// TimeSlot is a bookable pickup/drop window.
type TimeSlot struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	StartTime string    `json:"start_time" gorm:"type:varchar(10);not null"`
	EndTime   string    `json:"end_time" gorm:"type:varchar(10);not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Area is a serviceable locality.
type Area struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Pincode   string    `json:"pincode" gorm:"type:varchar(10);not null"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vehicle is a customer's car on file.
type Vehicle struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	CustomerID     uint           `json:"customer_id" gorm:"not null"`
	Customer       User           `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Model          string         `json:"model" gorm:"type:varchar(100);not null"`
	RegistrationNo string         `json:"registration_no" gorm:"type:varchar(20);not null"`
	FuelType       string         `json:"fuel_type" gorm:"type:varchar(20)"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
