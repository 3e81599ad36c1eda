package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	expenseapp "github.com/farmops/backend/internal/application/expense"
)

// ClaimHandler exposes the expense claim workflow over HTTP
type ClaimHandler struct {
	BaseHandler
	service *expenseapp.ClaimService
}

// NewClaimHandler creates a new claim handler
func NewClaimHandler(service *expenseapp.ClaimService) *ClaimHandler {
	return &ClaimHandler{service: service}
}

// RegisterRoutes registers claim routes
func (h *ClaimHandler) RegisterRoutes(rg *gin.RouterGroup) {
	claims := rg.Group("/claims")
	{
		claims.GET("", h.ListClaims)
		claims.GET("/:id", h.GetClaim)
		claims.POST("", h.SubmitClaim)
		claims.POST("/:id/approve", h.ApproveClaim)
		claims.POST("/:id/reject", h.RejectClaim)
		claims.GET("/:id/payment", h.GetPaymentSummary)
	}

	rg.GET("/approvers", h.ListApprovers)
}

// ListClaims returns a paginated list of expense claims
// @Summary List expense claims
// @Tags claims
// @Produce json
// @Param status query string false "Filter by status (PENDING, APPROVED, REJECTED)"
// @Param division query string false "Filter by division"
// @Param search query string false "Match against claim number, requester and purpose"
// @Success 200 {object} dto.Response
// @Router /claims [get]
func (h *ClaimHandler) ListClaims(c *gin.Context) {
	var filter expenseapp.ClaimListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	claims, total, err := h.service.ListClaims(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, claims, total, filter.Page, filter.PageSize)
}

// GetClaim returns a single claim by id
// @Summary Get an expense claim
// @Tags claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} dto.Response
// @Router /claims/{id} [get]
func (h *ClaimHandler) GetClaim(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid claim ID")
		return
	}

	claim, err := h.service.GetClaim(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, claim)
}

// SubmitClaim creates a new pending expense claim
// @Summary Submit an expense claim
// @Tags claims
// @Accept json
// @Produce json
// @Success 201 {object} dto.Response
// @Router /claims [post]
func (h *ClaimHandler) SubmitClaim(c *gin.Context) {
	var req expenseapp.SubmitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	claim, err := h.service.SubmitClaim(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.Header("Location", "/api/v1/claims/"+claim.ID.String())
	h.Created(c, claim)
}

// ApproveClaim approves a pending claim and opens its payment ledger in one
// transaction. The claim either transitions with a header attached or stays
// untouched.
// @Summary Approve an expense claim
// @Tags claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} dto.Response
// @Router /claims/{id}/approve [post]
func (h *ClaimHandler) ApproveClaim(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid claim ID")
		return
	}

	var req expenseapp.ApproveClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actingUser, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Acting user identity is required")
		return
	}

	claim, err := h.service.ApproveClaim(c.Request.Context(), id, req, actingUser)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, claim)
}

// RejectClaim rejects a pending claim
// @Summary Reject an expense claim
// @Tags claims
// @Accept json
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} dto.Response
// @Router /claims/{id}/reject [post]
func (h *ClaimHandler) RejectClaim(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid claim ID")
		return
	}

	var req expenseapp.RejectClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actingUser, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Acting user identity is required")
		return
	}

	claim, err := h.service.RejectClaim(c.Request.Context(), id, req, actingUser)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, claim)
}

// GetPaymentSummary returns the reconciliation summary for an approved claim
// @Summary Get the payment summary for a claim
// @Tags claims
// @Produce json
// @Param id path string true "Claim ID"
// @Success 200 {object} dto.Response
// @Router /claims/{id}/payment [get]
func (h *ClaimHandler) GetPaymentSummary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid claim ID")
		return
	}

	summary, err := h.service.GetPaymentSummary(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// ListApprovers returns the approver directory
// @Summary List approvers
// @Tags claims
// @Produce json
// @Success 200 {object} dto.Response
// @Router /approvers [get]
func (h *ClaimHandler) ListApprovers(c *gin.Context) {
	approvers, err := h.service.ListApprovers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, approvers)
}
