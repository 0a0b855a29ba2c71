package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pgstays/pg-booking-backend/internal/database"
	"github.com/pgstays/pg-booking-backend/internal/middleware"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

// OwnerHandler handles the owner's listing and profile surface
type OwnerHandler struct {
	ownerRepo *database.OwnerRepository
	pgRepo    *database.PGRepository
	roomRepo  *database.RoomRepository
}

// NewOwnerHandler creates a new OwnerHandler
func NewOwnerHandler(
	ownerRepo *database.OwnerRepository,
	pgRepo *database.PGRepository,
	roomRepo *database.RoomRepository,
) *OwnerHandler {
	return &OwnerHandler{
		ownerRepo: ownerRepo,
		pgRepo:    pgRepo,
		roomRepo:  roomRepo,
	}
}

// ownerProfile resolves the owner profile behind the authenticated
// user, writing the error response itself when it cannot.
func (h *OwnerHandler) ownerProfile(c *gin.Context) (*models.Owner, bool) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}

	owner, err := h.ownerRepo.GetByUserID(userCtx.UserID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if owner == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Owner profile not found"})
		return nil, false
	}
	return owner, true
}

// ownedPG loads a listing and verifies the authenticated owner owns it
func (h *OwnerHandler) ownedPG(c *gin.Context, owner *models.Owner, pgID uuid.UUID) (*models.PG, bool) {
	pg, err := h.pgRepo.GetByID(pgID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if pg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "PG not found"})
		return nil, false
	}
	if pg.OwnerID != owner.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized for this PG"})
		return nil, false
	}
	return pg, true
}

// CreatePG creates a listing in pending moderation state
// @Summary Create a PG listing
// @Description Create a listing with photos; each owner may hold a limited number of listings
// @Tags Owner
// @Accept json
// @Produce json
// @Param request body models.CreatePGRequest true "Listing request"
// @Success 201 {object} models.PG "Listing created"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 409 {object} map[string]interface{} "Listing limit reached"
// @Security BearerAuth
// @Router /api/v1/owner/pgs [post]
func (h *OwnerHandler) CreatePG(c *gin.Context) {
	owner, ok := h.ownerProfile(c)
	if !ok {
		return
	}

	var req models.CreatePGRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	count, err := h.pgRepo.CountByOwner(owner.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	if count >= models.MaxPGsPerOwner {
		c.JSON(http.StatusConflict, gin.H{"error": "Maximum number of listings reached"})
		return
	}

	pg := &models.PG{
		OwnerID: owner.ID,
		Name:    req.Name,
		Area:    req.Area,
		Address: req.Address,
		PGType:  models.PGType(req.PGType),
		Photos:  req.Photos,
	}
	if err := h.pgRepo.CreatePG(pg); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pg)
}

// GetMyPGs lists the owner's own listings in any moderation state
// @Summary Get my PG listings
// @Tags Owner
// @Produce json
// @Success 200 {array} models.PG "Listings"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/owner/pgs [get]
func (h *OwnerHandler) GetMyPGs(c *gin.Context) {
	owner, ok := h.ownerProfile(c)
	if !ok {
		return
	}

	pgs, err := h.pgRepo.GetByOwner(owner.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"pgs": pgs})
}

// CreateRoom adds a room to one of the owner's listings
// @Summary Add a room
// @Description Add a room to a listing; available beds start at full capacity
// @Tags Owner
// @Accept json
// @Produce json
// @Param id path string true "PG ID"
// @Param request body models.CreateRoomRequest true "Room request"
// @Success 201 {object} models.Room "Room created"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 403 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "PG not found"
// @Security BearerAuth
// @Router /api/v1/owner/pgs/{id}/rooms [post]
func (h *OwnerHandler) CreateRoom(c *gin.Context) {
	owner, ok := h.ownerProfile(c)
	if !ok {
		return
	}

	pgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid PG ID"})
		return
	}

	pg, ok := h.ownedPG(c, owner, pgID)
	if !ok {
		return
	}

	var req models.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	room := &models.Room{
		PGID:        pg.ID,
		RoomType:    req.RoomType,
		RentMonthly: req.RentMonthly,
		TotalBeds:   req.TotalBeds,
	}
	if err := h.roomRepo.CreateRoom(room); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

// GetRooms lists the rooms of one of the owner's listings
// @Summary Get rooms of a listing
// @Tags Owner
// @Produce json
// @Param id path string true "PG ID"
// @Success 200 {array} models.Room "Rooms"
// @Failure 403 {object} map[string]interface{} "Not the owner"
// @Failure 404 {object} map[string]interface{} "PG not found"
// @Security BearerAuth
// @Router /api/v1/owner/pgs/{id}/rooms [get]
func (h *OwnerHandler) GetRooms(c *gin.Context) {
	owner, ok := h.ownerProfile(c)
	if !ok {
		return
	}

	pgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid PG ID"})
		return
	}

	pg, ok := h.ownedPG(c, owner, pgID)
	if !ok {
		return
	}

	rooms, err := h.roomRepo.GetRoomsByPG(pg.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// GetProfile returns the owner's payout profile
// @Summary Get owner profile
// @Tags Owner
// @Produce json
// @Success 200 {object} models.Owner "Owner profile"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/owner/profile [get]
func (h *OwnerHandler) GetProfile(c *gin.Context) {
	owner, ok := h.ownerProfile(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, owner)
}

// UpdateUpi sets the owner's payout UPI handle
// @Summary Update payout UPI
// @Description Set the UPI handle shown to customers on new bookings. Existing bookings keep their snapshotted UPI.
// @Tags Owner
// @Accept json
// @Produce json
// @Param request body models.UpdateUpiRequest true "UPI request"
// @Success 200 {object} map[string]interface{} "UPI updated"
// @Failure 400 {object} map[string]interface{} "Invalid request"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/owner/profile/upi [put]
func (h *OwnerHandler) UpdateUpi(c *gin.Context) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.UpdateUpiRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	if err := h.ownerRepo.UpdateUpi(userCtx.UserID, req.UpiID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "UPI updated successfully"})
}
