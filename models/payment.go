package models

import (
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is one obligation against a booking, online or offline. Online
// payments hold the gateway order reference the webhook reconciles against.
type Payment struct {
	ID               uint          `json:"id" gorm:"primaryKey"`
	BookingID        uint          `json:"booking_id" gorm:"not null;index"`
	Method           PaymentMethod `json:"method" gorm:"type:varchar(10);not null"`
	Amount           float64       `json:"amount" gorm:"type:decimal(10,2);not null"`
	GST              float64       `json:"gst" gorm:"type:decimal(10,2);not null"`
	Status           PaymentStatus `json:"status" gorm:"type:varchar(10);not null;default:'pending'"`
	GatewayOrderID   string        `json:"gateway_order_id" gorm:"type:varchar(100);index"`
	GatewayPaymentID string        `json:"gateway_payment_id" gorm:"type:varchar(100)"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// Refund is raised when an online-paid booking is cancelled for less than the
// amount already collected.
type Refund struct {
	ID        uint          `json:"id" gorm:"primaryKey"`
	BookingID uint          `json:"booking_id" gorm:"not null;index"`
	PaymentID uint          `json:"payment_id" gorm:"not null"`
	Amount    float64       `json:"amount" gorm:"type:decimal(10,2);not null"`
	Status    PaymentStatus `json:"status" gorm:"type:varchar(10);not null;default:'pending'"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (Refund) TableName() string {
	return "refunds"
}

// PendingSelection stages the customer's chosen service set against a gateway
// order id so a later webhook (possibly after a restart) can finish the
// confirmation.
type PendingSelection struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	GatewayOrderID string    `json:"gateway_order_id" gorm:"uniqueIndex;not null"`
	BookingID      uint      `json:"booking_id" gorm:"not null"`
	ServiceIDs     IDList    `json:"service_ids" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
}

func (PendingSelection) TableName() string {
	return "pending_selections"
}

// SelectionRequest is the customer's post-analysis choice of services.
type SelectionRequest struct {
	ServiceIDs []uint `json:"service_ids" binding:"required"`
}

// WebhookRequest is the gateway's payment-confirmation callback payload.
type WebhookRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}
