package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/farmops/backend/internal/application/ledger"
)

// PaymentHandler exposes the disbursement ledger over HTTP
type PaymentHandler struct {
	BaseHandler
	service *ledgerapp.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *ledgerapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.GET("/:headerId", h.GetHeader)
		payments.POST("/:headerId/records", h.PostPayment)
		payments.DELETE("/records/:recordId", h.DeletePayment)
	}
}

// GetHeader returns a payment header with all of its installments
// @Summary Get a payment header
// @Tags payments
// @Produce json
// @Param headerId path string true "Payment header ID"
// @Success 200 {object} dto.Response
// @Router /payments/{headerId} [get]
func (h *PaymentHandler) GetHeader(c *gin.Context) {
	headerID, err := uuid.Parse(c.Param("headerId"))
	if err != nil {
		h.BadRequest(c, "Invalid payment header ID")
		return
	}

	header, err := h.service.GetHeader(c.Request.Context(), headerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, header)
}

// PostPayment records an installment against a header. The response carries
// the header totals recomputed from the full set of surviving records.
// @Summary Post a payment installment
// @Tags payments
// @Accept json
// @Produce json
// @Param headerId path string true "Payment header ID"
// @Success 201 {object} dto.Response
// @Router /payments/{headerId}/records [post]
func (h *PaymentHandler) PostPayment(c *gin.Context) {
	headerID, err := uuid.Parse(c.Param("headerId"))
	if err != nil {
		h.BadRequest(c, "Invalid payment header ID")
		return
	}

	var req ledgerapp.PostPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actingUser, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Acting user identity is required")
		return
	}

	header, err := h.service.PostPayment(c.Request.Context(), headerID, req, actingUser)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, header)
}

// DeletePayment removes an installment and returns the corrected header
// @Summary Delete a payment installment
// @Tags payments
// @Produce json
// @Param recordId path string true "Payment record ID"
// @Success 200 {object} dto.Response
// @Router /payments/records/{recordId} [delete]
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	recordID, err := uuid.Parse(c.Param("recordId"))
	if err != nil {
		h.BadRequest(c, "Invalid payment record ID")
		return
	}

	header, err := h.service.DeletePayment(c.Request.Context(), recordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, header)
}
