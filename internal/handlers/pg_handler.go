package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pgstays/pg-booking-backend/internal/database"
	"github.com/pgstays/pg-booking-backend/internal/models"
)

// PGHandler serves the public listing surface: search and detail. No
// authentication is required; only approved listings are returned.
type PGHandler struct {
	pgRepo   *database.PGRepository
	roomRepo *database.RoomRepository
}

// NewPGHandler creates a new PGHandler
func NewPGHandler(pgRepo *database.PGRepository, roomRepo *database.RoomRepository) *PGHandler {
	return &PGHandler{pgRepo: pgRepo, roomRepo: roomRepo}
}

// SearchPGs searches approved listings
// @Summary Search PG listings
// @Description Search approved listings by area and gender
// @Tags PGs
// @Produce json
// @Param area query string false "Area substring match"
// @Param gender query string false "boy or girl"
// @Success 200 {array} models.PGSummary "Matching listings"
// @Failure 400 {object} map[string]interface{} "Invalid filter"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/pgs [get]
func (h *PGHandler) SearchPGs(c *gin.Context) {
	filter := models.PGSearchFilter{
		Area: c.Query("area"),
	}

	if gender := c.Query("gender"); gender != "" {
		switch models.Gender(gender) {
		case models.GenderBoy, models.GenderGirl:
			filter.Gender = models.Gender(gender)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "gender must be boy or girl"})
			return
		}
	}

	listings, err := h.pgRepo.SearchApproved(filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pgs":   listings,
		"count": len(listings),
	})
}

// GetPG retrieves one listing with its rooms
// @Summary Get PG details
// @Description Get an approved listing with its room inventory
// @Tags PGs
// @Produce json
// @Param id path string true "PG ID"
// @Success 200 {object} map[string]interface{} "Listing with rooms"
// @Failure 400 {object} map[string]interface{} "Invalid ID"
// @Failure 404 {object} map[string]interface{} "Not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/v1/pgs/{id} [get]
func (h *PGHandler) GetPG(c *gin.Context) {
	pgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid PG ID"})
		return
	}

	pg, err := h.pgRepo.GetByID(pgID)
	if err != nil {
		respondError(c, err)
		return
	}
	if pg == nil || pg.Status != models.PGStatusApproved {
		c.JSON(http.StatusNotFound, gin.H{"error": "PG not found"})
		return
	}

	rooms, err := h.roomRepo.GetRoomsByPG(pgID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pg":    pg,
		"rooms": rooms,
	})
}
