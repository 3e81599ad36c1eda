package handler

import (
	"github.com/gin-gonic/gin"

	attachmentapp "github.com/farmops/backend/internal/application/attachment"
)

// AttachmentHandler exposes presigned upload negotiation over HTTP
type AttachmentHandler struct {
	BaseHandler
	service *attachmentapp.Service
}

// NewAttachmentHandler creates a new attachment handler
func NewAttachmentHandler(service *attachmentapp.Service) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// RegisterRoutes registers attachment routes
func (h *AttachmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	attachments := rg.Group("/attachments")
	{
		attachments.POST("/uploads", h.InitiateUpload)
	}
}

// InitiateUpload validates file metadata and hands back a presigned upload
// URL. The file body never passes through the API server.
// @Summary Initiate an attachment upload
// @Tags attachments
// @Accept json
// @Produce json
// @Success 200 {object} dto.Response
// @Router /attachments/uploads [post]
func (h *AttachmentHandler) InitiateUpload(c *gin.Context) {
	var req attachmentapp.InitiateUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.service.InitiateUpload(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
