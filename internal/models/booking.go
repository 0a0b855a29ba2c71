package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// BOOKING STATES
// ============================================================================

// BookingStatus is the coarse lifecycle status of a booking
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusAccepted  BookingStatus = "accepted"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

// PaymentStatus refines a pending booking's position in the manual
// payment workflow. The (status, payment_status) pair is the real state.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "payment_pending"
	PaymentStatusSubmitted PaymentStatus = "payment_submitted"
	PaymentStatusVerified  PaymentStatus = "verified"
	PaymentRefundPending   PaymentStatus = "refund_pending"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// BookingType distinguishes date-bounded stays from open-ended ones
type BookingType string

const (
	BookingTypeFixed     BookingType = "fixed"
	BookingTypeUnlimited BookingType = "unlimited"
)

// Pricing constants applied at creation. Rent is always the room's full
// monthly rent regardless of booking type or date range.
const (
	DepositAmount = 1000.0
	PlatformFee   = 299.0
)

// ============================================================================
// BOOKING ENTITY
// ============================================================================

// Booking represents one reservation attempt and its lifecycle. Rows are
// never deleted, only transitioned; terminal bookings are immutable.
type Booking struct {
	ID               uuid.UUID     `json:"id" db:"id"`
	BookingReference string        `json:"booking_reference" db:"booking_reference"`
	CustomerID       uuid.UUID     `json:"customer_id" db:"customer_id"`
	PGID             uuid.UUID     `json:"pg_id" db:"pg_id"`
	RoomID           uuid.UUID     `json:"room_id" db:"room_id"`
	BookingType      BookingType   `json:"booking_type" db:"booking_type"`
	StartDate        NullTime      `json:"start_date,omitempty" db:"start_date"`
	EndDate          NullTime      `json:"end_date,omitempty" db:"end_date"`
	BedsBooked       int           `json:"beds_booked" db:"beds_booked"`
	RentAmount       float64       `json:"rent_amount" db:"rent_amount"`
	DepositAmount    float64       `json:"deposit_amount" db:"deposit_amount"`
	PlatformFee      float64       `json:"platform_fee" db:"platform_fee"`
	TotalAmount      float64       `json:"total_amount" db:"total_amount"`
	Status           BookingStatus `json:"status" db:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status" db:"payment_status"`
	CustomerUpi      string        `json:"customer_upi" db:"customer_upi"`
	OwnerUpi         string        `json:"owner_upi" db:"owner_upi"`
	PaymentReference NullString    `json:"payment_reference,omitempty" db:"payment_reference"`
	PaymentEvidence  NullString    `json:"payment_evidence,omitempty" db:"payment_evidence"`
	RefundEvidence   NullString    `json:"refund_evidence,omitempty" db:"refund_evidence"`
	OwnerReason      NullString    `json:"owner_reason,omitempty" db:"owner_reason"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
	DecisionAt       NullTime      `json:"decision_at,omitempty" db:"decision_at"`
	ExpiresAt        time.Time     `json:"expires_at" db:"expires_at"`
}

// IsTerminal reports whether the booking has reached a final state
func (b *Booking) IsTerminal() bool {
	switch b.Status {
	case BookingStatusAccepted, BookingStatusRejected, BookingStatusCancelled, BookingStatusExpired:
		return true
	}
	return false
}

// CanSubmitPayment allows attaching payment evidence only before any
// evidence or decision exists.
func (b *Booking) CanSubmitPayment() bool {
	return b.Status == BookingStatusPending && b.PaymentStatus == PaymentStatusPending
}

// CanCancel allows the customer to back out only while no payment
// evidence has been submitted.
func (b *Booking) CanCancel() bool {
	return b.Status == BookingStatusPending && b.PaymentStatus == PaymentStatusPending
}

// CanAccept / CanReject gate the owner's decision on submitted payment
func (b *Booking) CanAccept() bool {
	return b.Status == BookingStatusPending && b.PaymentStatus == PaymentStatusSubmitted
}

// CanReject reports whether the owner may reject the booking
func (b *Booking) CanReject() bool {
	return b.Status == BookingStatusPending && b.PaymentStatus == PaymentStatusSubmitted
}

// CanConfirmRefund allows closing a rejection only once refund evidence
// is being attached to a refund_pending booking.
func (b *Booking) CanConfirmRefund() bool {
	return b.Status == BookingStatusPending && b.PaymentStatus == PaymentRefundPending
}

// CanExpire covers both not-yet-paid and paid-but-undecided bookings
func (b *Booking) CanExpire(now time.Time) bool {
	if b.Status != BookingStatusPending {
		return false
	}
	if b.PaymentStatus != PaymentStatusPending && b.PaymentStatus != PaymentStatusSubmitted {
		return false
	}
	return now.After(b.ExpiresAt)
}

// HoldsBeds reports whether the booking currently holds a bed
// reservation against its room. Beds are debited once at creation and
// stay held until a release path (cancel, expire, refund confirmed) or
// permanently consumed by acceptance.
func (b *Booking) HoldsBeds() bool {
	switch b.Status {
	case BookingStatusPending, BookingStatusAccepted:
		return true
	}
	return false
}

// ============================================================================
// REQUESTS
// ============================================================================

// CreateBookingRequest creates a reservation against a room
type CreateBookingRequest struct {
	PGID        string `json:"pg_id" binding:"required"`
	RoomID      string `json:"room_id" binding:"required"`
	BookingType string `json:"booking_type" binding:"required"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	BedsBooked  int    `json:"beds_booked" binding:"required,min=1"`
	CustomerUpi string `json:"customer_upi" binding:"required"`
}

// dateLayout is the wire format for booking dates
const dateLayout = "2006-01-02"

// Validate checks type, bed count and date rules. Fixed bookings need a
// valid date range; unlimited bookings carry no dates.
func (r *CreateBookingRequest) Validate() (start, end *time.Time, err error) {
	if r.BedsBooked < 1 {
		return nil, nil, NewInvalid("beds_booked must be at least 1")
	}

	switch BookingType(r.BookingType) {
	case BookingTypeUnlimited:
		return nil, nil, nil
	case BookingTypeFixed:
	default:
		return nil, nil, NewInvalid("booking_type must be fixed or unlimited")
	}

	if r.StartDate == "" || r.EndDate == "" {
		return nil, nil, NewInvalid("start_date and end_date are required for fixed bookings")
	}

	s, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return nil, nil, NewInvalid("start_date must be in YYYY-MM-DD format")
	}
	e, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return nil, nil, NewInvalid("end_date must be in YYYY-MM-DD format")
	}
	if e.Before(s) {
		return nil, nil, NewInvalid("end_date must not be before start_date")
	}

	return &s, &e, nil
}

// SubmitPaymentRequest attaches manual payment evidence to a booking
type SubmitPaymentRequest struct {
	PaymentReference string `json:"payment_reference" binding:"required"`
	EvidenceRef      string `json:"evidence_ref" binding:"required"`
}

// RejectBookingRequest records the owner's reason for rejecting
type RejectBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ConfirmRefundRequest attaches refund evidence, closing a rejection
type ConfirmRefundRequest struct {
	EvidenceRef string `json:"evidence_ref" binding:"required"`
}

// ============================================================================
// QUERY VIEWS
// ============================================================================

// OwnerQueueBucket selects which slice of an owner's bookings to list
type OwnerQueueBucket string

const (
	// BucketPending surfaces only bookings awaiting an owner action:
	// payment submitted or refund pending. Bookings the customer has not
	// paid for yet are excluded.
	BucketPending  OwnerQueueBucket = "pending"
	BucketAccepted OwnerQueueBucket = "accepted"
	BucketRejected OwnerQueueBucket = "rejected"
)

// NormalizeOwnerBucket maps external synonyms onto the closed bucket set
func NormalizeOwnerBucket(raw string) (OwnerQueueBucket, error) {
	switch raw {
	case "", "pending":
		return BucketPending, nil
	case "accepted", "approved", "confirmed":
		return BucketAccepted, nil
	case "rejected", "declined", "closed":
		return BucketRejected, nil
	}
	return "", NewInvalid("unknown booking bucket: %s", raw)
}

// NormalizeStatusFilter validates a customer-side status filter
func NormalizeStatusFilter(raw string) (BookingStatus, error) {
	switch BookingStatus(raw) {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusRejected, BookingStatusCancelled:
		return BookingStatus(raw), nil
	}
	return "", NewInvalid("status filter must be one of pending, accepted, rejected, cancelled")
}

// BookingView is a read-only projection of a booking joined with its
// room and listing metadata, served to both customers and owners.
type BookingView struct {
	Booking
	PGName        string     `json:"pg_name" db:"pg_name"`
	PGArea        string     `json:"pg_area" db:"pg_area"`
	RoomType      string     `json:"room_type" db:"room_type"`
	CustomerName  NullString `json:"customer_name,omitempty" db:"customer_name"`
	CustomerPhone NullString `json:"customer_phone,omitempty" db:"customer_phone"`
}
