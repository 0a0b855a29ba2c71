package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pgstays/pg-booking-backend/internal/middleware"
	"github.com/pgstays/pg-booking-backend/internal/models"
	"github.com/pgstays/pg-booking-backend/internal/services"
)

// CustomerBookingHandler handles the customer side of the booking
// lifecycle: create, submit payment, cancel, and listing.
type CustomerBookingHandler struct {
	bookingService *services.BookingService
}

// NewCustomerBookingHandler creates a new CustomerBookingHandler
func NewCustomerBookingHandler(bookingService *services.BookingService) *CustomerBookingHandler {
	return &CustomerBookingHandler{bookingService: bookingService}
}

// CreateBooking creates a new booking and reserves beds
// @Summary Create a booking
// @Description Reserve beds in a room and open the payment window
// @Tags Bookings
// @Accept json
// @Produce json
// @Param request body models.CreateBookingRequest true "Booking request"
// @Success 201 {object} models.Booking "Booking created"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 404 {object} map[string]interface{} "PG or room not found"
// @Failure 409 {object} map[string]interface{} "Not enough beds"
// @Security BearerAuth
// @Router /api/v1/bookings [post]
func (h *CustomerBookingHandler) CreateBooking(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.CreateBooking(userCtx.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// SubmitPayment attaches the payment reference and evidence
// @Summary Submit payment proof
// @Description Record the UPI payment reference and evidence for a pending booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Param id path string true "Booking ID"
// @Param request body models.SubmitPaymentRequest true "Payment proof"
// @Success 200 {object} models.Booking "Payment submitted"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 403 {object} map[string]interface{} "Not your booking"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Booking not awaiting payment"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/payment [post]
func (h *CustomerBookingHandler) SubmitPayment(c *gin.Context) {
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

	var req models.SubmitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	booking, err := h.bookingService.SubmitPayment(bookingID, userCtx.UserID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// CancelBooking cancels a booking that has not been paid yet
// @Summary Cancel a booking
// @Description Cancel a booking before payment is submitted; reserved beds are released
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking "Booking cancelled"
// @Failure 403 {object} map[string]interface{} "Not your booking"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Failure 409 {object} map[string]interface{} "Booking cannot be cancelled"
// @Security BearerAuth
// @Router /api/v1/bookings/{id}/cancel [post]
func (h *CustomerBookingHandler) CancelBooking(c *gin.Context) {
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

	booking, err := h.bookingService.Cancel(bookingID, userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetMyBookings lists the customer's bookings
// @Summary Get my bookings
// @Description List the customer's bookings, optionally filtered by status
// @Tags Bookings
// @Produce json
// @Param status query string false "pending, accepted, rejected or cancelled"
// @Success 200 {array} models.BookingView "Bookings"
// @Failure 400 {object} map[string]interface{} "Unknown status filter"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/bookings [get]
func (h *CustomerBookingHandler) GetMyBookings(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	bookings, err := h.bookingService.GetCustomerBookings(userCtx.UserID, c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"count":    len(bookings),
	})
}

// GetBooking retrieves one of the customer's bookings
// @Summary Get booking by ID
// @Tags Bookings
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} models.Booking "Booking details"
// @Failure 403 {object} map[string]interface{} "Not your booking"
// @Failure 404 {object} map[string]interface{} "Booking not found"
// @Security BearerAuth
// @Router /api/v1/bookings/{id} [get]
func (h *CustomerBookingHandler) GetBooking(c *gin.Context) {
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

	booking, err := h.bookingService.GetCustomerBooking(bookingID, userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
