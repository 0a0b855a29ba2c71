package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pgstays/pg-booking-backend/internal/services"
)

// UploadHandler accepts multipart image uploads for payment evidence,
// refund evidence and listing photos.
type UploadHandler struct {
	store *services.EvidenceStore
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(store *services.EvidenceStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload stores one image and returns its public reference
// @Summary Upload an image
// @Description Upload a payment screenshot, refund screenshot or listing photo
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image file"
// @Success 201 {object} map[string]interface{} "Stored file reference"
// @Failure 400 {object} map[string]interface{} "Missing or invalid file"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Security BearerAuth
// @Router /api/v1/uploads [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required", "details": err.Error()})
		return
	}

	ref, err := h.store.Store(fileHeader)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": ref})
}
