package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is the explicit actor type carried in the authenticated request
// context. It is never derived from id formats.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMechanic Role = "mechanic"
	RoleAdmin    Role = "admin"
)

type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	FullName     string         `json:"full_name" gorm:"type:varchar(200);not null"`
	Email        string         `json:"email" gorm:"type:varchar(200);uniqueIndex;not null"`
	PhoneNumber  string         `json:"phone_number" gorm:"type:varchar(20)"`
	PasswordHash string         `json:"-" gorm:"type:varchar(200);not null"`
	Role         Role           `json:"role" gorm:"type:varchar(20);not null;default:'customer'"`
	IsActive     bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// RegisterRequest is the sign-up payload for customers.
type RegisterRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
