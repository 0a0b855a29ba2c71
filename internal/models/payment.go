package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentRecordStatus is the state of a payments ledger row. These rows
// track money-in-flight independently of the booking's payment_status;
// a paid row on an expiring booking is refunded best-effort by the sweep.
type PaymentRecordStatus string

const (
	PaymentRecordCreated  PaymentRecordStatus = "created"
	PaymentRecordPaid     PaymentRecordStatus = "paid"
	PaymentRecordRefunded PaymentRecordStatus = "refunded"
)

// Payment is one row of the payments ledger, written at booking creation
type Payment struct {
	ID         uuid.UUID           `json:"id" db:"id"`
	BookingID  uuid.UUID           `json:"booking_id" db:"booking_id"`
	Amount     float64             `json:"amount" db:"amount"`
	Status     PaymentRecordStatus `json:"status" db:"status"`
	OrderRef   NullString          `json:"order_ref,omitempty" db:"order_ref"`
	PaymentRef NullString          `json:"payment_ref,omitempty" db:"payment_ref"`
	CreatedAt  time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at" db:"updated_at"`
}
