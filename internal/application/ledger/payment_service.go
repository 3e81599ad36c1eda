package ledger

import (
	"context"
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

// PaymentService posts and removes installments against payment headers.
// Every mutation runs its read-recompute-write cycle inside one transaction
// with a row lock on the header, so concurrent posts against the same header
// serialize instead of overwriting each other's recomputation.
type PaymentService struct {
	headerRepo  ledger.PaymentHeaderRepository
	claimRepo   expense.ClaimRepository
	txManager   TransactionManager
	attachments *attachmentapp.Service
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	headerRepo ledger.PaymentHeaderRepository,
	claimRepo expense.ClaimRepository,
	txManager TransactionManager,
	attachments *attachmentapp.Service,
) *PaymentService {
	return &PaymentService{
		headerRepo:  headerRepo,
		claimRepo:   claimRepo,
		txManager:   txManager,
		attachments: attachments,
	}
}

// ===================== Requests and responses =====================

// PaymentRecordResponse represents an installment in API responses
type PaymentRecordResponse struct {
	ID          uuid.UUID       `json:"id"`
	HeaderID    uuid.UUID       `json:"header_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Note        string          `json:"note,omitempty"`
	ProofKey    string          `json:"proof_key,omitempty"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// PaymentHeaderResponse represents a header with its installments
type PaymentHeaderResponse struct {
	ID             uuid.UUID               `json:"id"`
	HeaderNumber   string                  `json:"header_number"`
	OwnerReference uuid.UUID               `json:"owner_reference"`
	TotalBilled    decimal.Decimal         `json:"total_billed"`
	TotalPaid      decimal.Decimal         `json:"total_paid"`
	Remaining      decimal.Decimal         `json:"remaining"`
	DueDate        *time.Time              `json:"due_date,omitempty"`
	Status         string                  `json:"status"`
	PaymentRecords []PaymentRecordResponse `json:"payment_records"`
	PaidAt         *time.Time              `json:"paid_at,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
	Version        int                     `json:"version"`
}

// PostPaymentRequest represents a request to post an installment
type PostPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	PaymentDate time.Time       `json:"payment_date" binding:"required"`
	Note        string          `json:"note"`
	Proof       *AttachmentRef  `json:"proof"`
}

// AttachmentRef references a previously uploaded payment proof
type AttachmentRef struct {
	FileName    string `json:"file_name" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required"`
	StorageKey  string `json:"storage_key" binding:"required"`
}

// ===================== Operations =====================

// GetHeader returns a payment header with its installments
func (s *PaymentService) GetHeader(ctx context.Context, headerID uuid.UUID) (*PaymentHeaderResponse, error) {
	header, err := s.headerRepo.FindByID(ctx, headerID)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, shared.ErrNotFound
	}
	return toPaymentHeaderResponse(header), nil
}

// GetHeaderByClaim returns the header reconciling the given claim
func (s *PaymentService) GetHeaderByClaim(ctx context.Context, claimID uuid.UUID) (*PaymentHeaderResponse, error) {
	header, err := s.headerRepo.FindByOwnerReference(ctx, claimID)
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, shared.ErrNotFound
	}
	return toPaymentHeaderResponse(header), nil
}

// PostPayment posts an installment against a header. The insert, the full
// recomputation of total paid and the status update commit atomically.
func (s *PaymentService) PostPayment(ctx context.Context, headerID uuid.UUID, req PostPaymentRequest, actingUser uuid.UUID) (*PaymentHeaderResponse, error) {
	proofKey := ""
	if req.Proof != nil {
		if err := domainattachment.Validate(domainattachment.Metadata{
			FileName:    req.Proof.FileName,
			ContentType: req.Proof.ContentType,
			Size:        req.Proof.Size,
		}); err != nil {
			return nil, err
		}
		if err := s.attachments.VerifyStored(ctx, req.Proof.StorageKey); err != nil {
			return nil, err
		}
		proofKey = req.Proof.StorageKey
	}

	var header *ledger.PaymentHeader
	txErr := s.txManager.Transaction(func(tx *gorm.DB) error {
		headerRepo := s.headerRepo.WithTx(tx)
		claimRepo := s.claimRepo.WithTx(tx)

		var err error
		header, err = headerRepo.FindByIDForUpdate(ctx, headerID)
		if err != nil {
			return err
		}
		if header == nil {
			return shared.ErrNotFound
		}

		claim, err := claimRepo.FindByID(ctx, header.OwnerReference)
		if err != nil {
			return err
		}
		if claim == nil {
			return shared.NewConsistencyError("Payment header references a missing claim")
		}
		if claim.Status != expense.ClaimStatusApproved {
			return shared.NewInvalidStateError("Payments are only possible for approved claims")
		}

		expectedVersion := header.Version
		actor := actingUser
		if _, err := header.PostPayment(
			valueobject.NewMoneyIDR(req.Amount),
			req.PaymentDate,
			req.Note,
			proofKey,
			&actor,
		); err != nil {
			return err
		}

		return headerRepo.SaveWithLock(ctx, header, expectedVersion)
	})
	if txErr != nil {
		return nil, txErr
	}

	return toPaymentHeaderResponse(header), nil
}

// DeletePayment removes an installment and recomputes its header inside the
// same transaction as the delete
func (s *PaymentService) DeletePayment(ctx context.Context, recordID uuid.UUID) (*PaymentHeaderResponse, error) {
	var header *ledger.PaymentHeader
	txErr := s.txManager.Transaction(func(tx *gorm.DB) error {
		headerRepo := s.headerRepo.WithTx(tx)

		owner, err := headerRepo.FindByRecordID(ctx, recordID)
		if err != nil {
			return err
		}
		if owner == nil {
			return shared.ErrNotFound
		}

		// Re-read under lock so the recompute serializes with concurrent posts
		header, err = headerRepo.FindByIDForUpdate(ctx, owner.ID)
		if err != nil {
			return err
		}
		if header == nil {
			return shared.ErrNotFound
		}

		expectedVersion := header.Version
		if err := header.RemovePayment(recordID); err != nil {
			return err
		}

		if err := headerRepo.DeleteRecord(ctx, recordID); err != nil {
			return err
		}
		return headerRepo.SaveWithLock(ctx, header, expectedVersion)
	})
	if txErr != nil {
		return nil, txErr
	}

	return toPaymentHeaderResponse(header), nil
}

// ===================== Mappers =====================

func toPaymentRecordResponse(record *ledger.PaymentRecord) PaymentRecordResponse {
	return PaymentRecordResponse{
		ID:          record.ID,
		HeaderID:    record.HeaderID,
		Amount:      record.Amount,
		PaymentDate: record.PaymentDate,
		Note:        record.Note,
		ProofKey:    record.ProofKey,
		CreatedBy:   record.CreatedBy,
		CreatedAt:   record.CreatedAt,
	}
}

func toPaymentHeaderResponse(header *ledger.PaymentHeader) *PaymentHeaderResponse {
	records := make([]PaymentRecordResponse, 0, len(header.PaymentRecords))
	for i := range header.PaymentRecords {
		records = append(records, toPaymentRecordResponse(&header.PaymentRecords[i]))
	}
	return &PaymentHeaderResponse{
		ID:             header.ID,
		HeaderNumber:   header.HeaderNumber,
		OwnerReference: header.OwnerReference,
		TotalBilled:    header.TotalBilled,
		TotalPaid:      header.TotalPaid,
		Remaining:      header.GetRemainingMoney().Amount(),
		DueDate:        header.DueDate,
		Status:         header.Status.String(),
		PaymentRecords: records,
		PaidAt:         header.PaidAt,
		CreatedAt:      header.CreatedAt,
		UpdatedAt:      header.UpdatedAt,
		Version:        header.Version,
	}
}
