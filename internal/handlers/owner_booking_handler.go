package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pgstays/pg-booking-backend/internal/middleware"
	"github.com/pgstays/pg-booking-backend/internal/models"
	"github.com/pgstays/pg-booking-backend/internal/services"
)

// OwnerBookingHandler handles the owner side of the booking lifecycle:
// the decision queue, accept, reject and refund confirmation.
type OwnerBookingHandler struct {
	bookingService *services.BookingService
}

// NewOwnerBookingHandler creates a new OwnerBookingHandler
func NewOwnerBookingHandler(bookingService *services.BookingService) *OwnerBookingHandler {
	return &OwnerBookingHandler{bookingService: bookingService}
}

// GetQueue lists bookings across the owner's listings by bucket
// @Summary Get booking queue
// @Description List bookings for the owner's listings. Buckets: pending (awaiting decision or refund), accepted, rejected (closed history).
// @Tags Owner Bookings
// @Produce json
// @Param bucket query string false "pending, accepted or rejected" default(pending)
// @Success 200 {array} models.BookingView "Bookings"
// @Failure 400 {object} map[string]interface{} "Unknown bucket"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/owner/bookings [get]
func (h *OwnerBookingHandler) GetQueue(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.bookingService.GetOwnerQueue(userCtx.UserID, c.DefaultQuery("bucket", "pending"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// AcceptBooking accepts a payment-submitted booking
// @Summary Accept a booking
// @Description Accept a booking whose payment has been submitted. The beds reserved at creation are kept.
// @Tags Owner Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking "Booking accepted"
// @Failure 403 {object} map[string]interface{} "Not the listing owner"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Booking not awaiting decision"
// @Security BearerAuth
// @Router /api/v1/owner/bookings/{id}/accept [post]
func (h *OwnerBookingHandler) AcceptBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	booking, err := h.bookingService.Accept(bookingID, userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// RejectBooking rejects a payment-submitted booking
// @Summary Reject a booking
// @Description Reject a booking with a reason. The booking moves to refund-pending; beds stay held until the refund is confirmed.
// @Tags Owner Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body models.RejectBookingRequest true "Rejection reason"
// @Success 200 {object} models.Booking "Booking moved to refund-pending"
// @Failure 400 {object} map[string]interface{} "Missing reason"
// @Failure 403 {object} map[string]interface{} "Not the listing owner"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Booking not awaiting decision"
// @Security BearerAuth
// @Router /api/v1/owner/bookings/{id}/reject [post]
func (h *OwnerBookingHandler) RejectBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req models.RejectBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.Reject(bookingID, userCtx.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ConfirmRefund closes a rejected booking after refunding the customer
// @Summary Confirm a refund
// @Description Attach refund evidence to a refund-pending booking. The booking closes as rejected and its beds are released.
// @Tags Owner Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body models.ConfirmRefundRequest true "Refund evidence"
// @Success 200 {object} models.Booking "Refund confirmed"
// @Failure 400 {object} map[string]interface{} "Missing evidence"
// @Failure 403 {object} map[string]interface{} "Not the listing owner"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Booking not awaiting refund"
// @Security BearerAuth
// @Router /api/v1/owner/bookings/{id}/confirm-refund [post]
func (h *OwnerBookingHandler) ConfirmRefund(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking ID"})
		return
	}

	var req models.ConfirmRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.ConfirmRefund(bookingID, userCtx.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
