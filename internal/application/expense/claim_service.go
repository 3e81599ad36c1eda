package expense

import (
	"context"
	"errors"
	"fmt"
	"time"

	attachmentapp "github.com/farmops/backend/internal/application/attachment"
	domainattachment "github.com/farmops/backend/internal/domain/attachment"
	"github.com/farmops/backend/internal/domain/expense"
	"github.com/farmops/backend/internal/domain/ledger"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionManager runs a function inside a single database transaction
type TransactionManager interface {
	Transaction(fn func(tx *gorm.DB) error) error
}

// ClaimCache is a read cache for claim responses. Keys are scoped to a
// single claim id and invalidated exactly when that claim mutates.
type ClaimCache interface {
	GetClaim(ctx context.Context, id uuid.UUID) (*ClaimResponse, bool)
	SetClaim(ctx context.Context, id uuid.UUID, claim *ClaimResponse)
	InvalidateClaim(ctx context.Context, id uuid.UUID)
}

// ClaimService implements claim submission, the approval/rejection state
// machine and the reconciliation orchestration around it. Approval and the
// opening of the payment header commit as one transaction: a claim is never
// left approved without a header.
type ClaimService struct {
	claimRepo    expense.ClaimRepository
	approverRepo expense.ApproverRepository
	headerRepo   ledger.PaymentHeaderRepository
	txManager    TransactionManager
	attachments  *attachmentapp.Service
	cache        ClaimCache
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	claimRepo expense.ClaimRepository,
	approverRepo expense.ApproverRepository,
	headerRepo ledger.PaymentHeaderRepository,
	txManager TransactionManager,
	attachments *attachmentapp.Service,
	cache ClaimCache,
) *ClaimService {
	return &ClaimService{
		claimRepo:    claimRepo,
		approverRepo: approverRepo,
		headerRepo:   headerRepo,
		txManager:    txManager,
		attachments:  attachments,
		cache:        cache,
	}
}

// ===================== Requests and responses =====================

// ClaimResponse represents an expense claim in API responses
type ClaimResponse struct {
	ID              uuid.UUID        `json:"id"`
	ClaimNumber     string           `json:"claim_number"`
	RequesterName   string           `json:"requester_name"`
	Division        string           `json:"division"`
	Purpose         string           `json:"purpose"`
	AmountRequested decimal.Decimal  `json:"amount_requested"`
	SubmissionDate  time.Time        `json:"submission_date"`
	Status          string           `json:"status"`
	ApprovedAmount  *decimal.Decimal `json:"approved_amount,omitempty"`
	ApproverID      *uuid.UUID       `json:"approver_id,omitempty"`
	RecipientName   string           `json:"recipient_name,omitempty"`
	PaymentDate     *time.Time       `json:"payment_date,omitempty"`
	PaymentCity     string           `json:"payment_city,omitempty"`
	ApprovalNote    string           `json:"approval_note,omitempty"`
	ReceiptKey      string           `json:"receipt_key,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
	DecidedBy       *uuid.UUID       `json:"decided_by,omitempty"`
	DecidedAt       *time.Time       `json:"decided_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Version         int              `json:"version"`
}

// SubmitClaimRequest represents a request to submit a new claim
type SubmitClaimRequest struct {
	RequesterName   string          `json:"requester_name" binding:"required"`
	Division        string          `json:"division"`
	Purpose         string          `json:"purpose" binding:"required"`
	AmountRequested decimal.Decimal `json:"amount_requested" binding:"required"`
	SubmissionDate  *time.Time      `json:"submission_date"`
}

// AttachmentRef references a previously uploaded attachment
type AttachmentRef struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required"`
	StorageKey  string `json:"storage_key" binding:"required"`
}

// ApproveClaimRequest represents a request to approve a claim
type ApproveClaimRequest struct {
	ApprovedAmount decimal.Decimal `json:"approved_amount" binding:"required"`
	ApproverID     uuid.UUID       `json:"approver_id" binding:"required"`
	RecipientName  string          `json:"recipient_name" binding:"required"`
	PaymentDate    time.Time       `json:"payment_date" binding:"required"`
	PaymentCity    string          `json:"payment_city" binding:"required"`
	ApprovalNote   string          `json:"approval_note"`
	DueDate        *time.Time      `json:"due_date"`
	Receipt        *AttachmentRef  `json:"receipt"`
}

// RejectClaimRequest represents a request to reject a claim
type RejectClaimRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ClaimListFilter defines filtering options for claim list queries
type ClaimListFilter struct {
	Search   string     `form:"search"`
	Status   string     `form:"status"`
	Division string     `form:"division"`
	FromDate *time.Time `form:"from_date"`
	ToDate   *time.Time `form:"to_date"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// PaymentSummaryResponse is the display-ready reconciliation summary
type PaymentSummaryResponse struct {
	ClaimID     uuid.UUID       `json:"claim_id"`
	HeaderID    uuid.UUID       `json:"header_id"`
	TotalBilled decimal.Decimal `json:"total_billed"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Remaining   decimal.Decimal `json:"remaining"`
	StatusLabel string          `json:"status_label"`
}

// ApproverResponse represents an approver directory entry
type ApproverResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ===================== Claim operations =====================

// SubmitClaim creates a new pending claim
func (s *ClaimService) SubmitClaim(ctx context.Context, req SubmitClaimRequest) (*ClaimResponse, error) {
	submissionDate := time.Now()
	if req.SubmissionDate != nil {
		submissionDate = *req.SubmissionDate
	}

	claimNumber, err := s.claimRepo.GenerateClaimNumber(ctx, submissionDate)
	if err != nil {
		return nil, err
	}

	claim, err := expense.NewExpenseClaim(
		claimNumber,
		req.RequesterName,
		req.Division,
		req.Purpose,
		valueobject.NewMoneyIDR(req.AmountRequested),
		submissionDate,
	)
	if err != nil {
		return nil, err
	}

	if err := s.claimRepo.Save(ctx, claim); err != nil {
		return nil, err
	}

	return toClaimResponse(claim), nil
}

// GetClaim returns a claim by ID
func (s *ClaimService) GetClaim(ctx context.Context, id uuid.UUID) (*ClaimResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetClaim(ctx, id); ok {
			return cached, nil
		}
	}

	claim, err := s.claimRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, shared.ErrNotFound
	}

	resp := toClaimResponse(claim)
	if s.cache != nil {
		s.cache.SetClaim(ctx, id, resp)
	}
	return resp, nil
}

// ListClaims returns claims matching the filter with the total count
func (s *ClaimService) ListClaims(ctx context.Context, filter ClaimListFilter) ([]ClaimResponse, int64, error) {
	domainFilter := expense.ClaimFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "submission_date",
			OrderDir: "desc",
			Search:   filter.Search,
		},
		Division:      filter.Division,
		SubmittedFrom: filter.FromDate,
		SubmittedTo:   filter.ToDate,
	}
	if filter.Status != "" {
		status := expense.ClaimStatus(filter.Status)
		if !status.IsValid() {
			return nil, 0, shared.NewValidationError("Unknown claim status filter")
		}
		domainFilter.Status = &status
	}
	if domainFilter.Page <= 0 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize <= 0 {
		domainFilter.PageSize = 20
	}

	claims, total, err := s.claimRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ClaimResponse, 0, len(claims))
	for i := range claims {
		responses = append(responses, *toClaimResponse(&claims[i]))
	}
	return responses, total, nil
}

// ApproveClaim approves a pending claim and opens its payment header as one
// transactional unit. If the header cannot be created the approval rolls
// back with it.
func (s *ClaimService) ApproveClaim(ctx context.Context, claimID uuid.UUID, req ApproveClaimRequest, actingUser uuid.UUID) (*ClaimResponse, error) {
	receiptKey := ""
	if req.Receipt != nil {
		if err := domainattachment.Validate(domainattachment.Metadata{
			FileName:    req.Receipt.FileName,
			ContentType: req.Receipt.ContentType,
			Size:        req.Receipt.Size,
		}); err != nil {
			return nil, err
		}
		if err := s.attachments.VerifyStored(ctx, req.Receipt.StorageKey); err != nil {
			return nil, err
		}
		receiptKey = req.Receipt.StorageKey
	}

	approver, err := s.approverRepo.FindByID(ctx, req.ApproverID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if approver == nil || errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewValidationError("Approver does not exist")
	}

	var claim *expense.ExpenseClaim
	txErr := s.txManager.Transaction(func(tx *gorm.DB) error {
		claimRepo := s.claimRepo.WithTx(tx)
		headerRepo := s.headerRepo.WithTx(tx)

		claim, err = claimRepo.FindByID(ctx, claimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return shared.ErrNotFound
		}

		expectedVersion := claim.Version
		if err := claim.Approve(expense.ApprovalDetails{
			ApprovedAmount: valueobject.NewMoneyIDR(req.ApprovedAmount),
			ApproverID:     req.ApproverID,
			RecipientName:  req.RecipientName,
			PaymentDate:    req.PaymentDate,
			PaymentCity:    req.PaymentCity,
			ApprovalNote:   req.ApprovalNote,
			ReceiptKey:     receiptKey,
		}, actingUser); err != nil {
			return err
		}

		if err := claimRepo.SaveWithLock(ctx, claim, expectedVersion); err != nil {
			return err
		}

		headerNumber, err := headerRepo.GenerateHeaderNumber(ctx, time.Now())
		if err != nil {
			return err
		}
		header, err := ledger.NewPaymentHeader(
			headerNumber,
			claim.ID,
			claim.GetApprovedAmountMoney(),
			req.DueDate,
		)
		if err != nil {
			return err
		}
		return headerRepo.Save(ctx, header)
	})
	if txErr != nil {
		if errors.Is(txErr, shared.ErrConcurrencyConflict) {
			return nil, s.decisionConflictError(ctx, claimID, "approve", txErr)
		}
		return nil, txErr
	}

	if s.cache != nil {
		s.cache.InvalidateClaim(ctx, claimID)
	}
	return toClaimResponse(claim), nil
}

// RejectClaim rejects a pending claim with a reason. No header is ever
// created; the claim can never be paid afterwards.
func (s *ClaimService) RejectClaim(ctx context.Context, claimID uuid.UUID, req RejectClaimRequest, actingUser uuid.UUID) (*ClaimResponse, error) {
	claim, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, shared.ErrNotFound
	}

	expectedVersion := claim.Version
	if err := claim.Reject(req.Reason, actingUser); err != nil {
		return nil, err
	}
	if err := s.claimRepo.SaveWithLock(ctx, claim, expectedVersion); err != nil {
		if errors.Is(err, shared.ErrConcurrencyConflict) {
			return nil, s.decisionConflictError(ctx, claimID, "reject", err)
		}
		return nil, err
	}

	if s.cache != nil {
		s.cache.InvalidateClaim(ctx, claimID)
	}
	return toClaimResponse(claim), nil
}

// decisionConflictError translates a lost optimistic-lock race during a
// decision. When the competing writer already decided the claim, the loser
// sees the same invalid-state failure a late sequential attempt would;
// otherwise the conflict stands as-is.
func (s *ClaimService) decisionConflictError(ctx context.Context, claimID uuid.UUID, action string, cause error) error {
	current, err := s.claimRepo.FindByID(ctx, claimID)
	if err != nil || current == nil {
		return cause
	}
	if current.IsDecided() {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot %s claim in %s status", action, current.Status))
	}
	return cause
}

// GetPaymentSummary derives the display summary fresh from the ledger on
// every call; nothing here is cached between requests.
func (s *ClaimService) GetPaymentSummary(ctx context.Context, claimID uuid.UUID) (*PaymentSummaryResponse, error) {
	header, err := s.headerRepo.FindByOwnerReference(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, shared.ErrNotFound
	}
	return toPaymentSummaryResponse(header), nil
}

// ListApprovers lists the approver directory
func (s *ClaimService) ListApprovers(ctx context.Context) ([]ApproverResponse, error) {
	approvers, err := s.approverRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]ApproverResponse, 0, len(approvers))
	for i := range approvers {
		responses = append(responses, ApproverResponse{
			ID:   approvers[i].ID,
			Name: approvers[i].Name,
		})
	}
	return responses, nil
}

// ===================== Mappers =====================

func toClaimResponse(claim *expense.ExpenseClaim) *ClaimResponse {
	return &ClaimResponse{
		ID:              claim.ID,
		ClaimNumber:     claim.ClaimNumber,
		RequesterName:   claim.RequesterName,
		Division:        claim.Division,
		Purpose:         claim.Purpose,
		AmountRequested: claim.AmountRequested,
		SubmissionDate:  claim.SubmissionDate,
		Status:          claim.Status.String(),
		ApprovedAmount:  claim.ApprovedAmount,
		ApproverID:      claim.ApproverID,
		RecipientName:   claim.RecipientName,
		PaymentDate:     claim.PaymentDate,
		PaymentCity:     claim.PaymentCity,
		ApprovalNote:    claim.ApprovalNote,
		ReceiptKey:      claim.ReceiptKey,
		RejectionReason: claim.RejectionReason,
		DecidedBy:       claim.DecidedBy,
		DecidedAt:       claim.DecidedAt,
		CreatedAt:       claim.CreatedAt,
		UpdatedAt:       claim.UpdatedAt,
		Version:         claim.Version,
	}
}

func toPaymentSummaryResponse(header *ledger.PaymentHeader) *PaymentSummaryResponse {
	return &PaymentSummaryResponse{
		ClaimID:     header.OwnerReference,
		HeaderID:    header.ID,
		TotalBilled: header.TotalBilled,
		TotalPaid:   header.TotalPaid,
		Remaining:   header.GetRemainingMoney().Amount(),
		StatusLabel: header.Status.String(),
	}
}
