package expense

import (
	"fmt"
	"strings"
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClaimStatus represents the decision status of an expense claim
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "PENDING"  // Awaiting a decision
	ClaimStatusApproved ClaimStatus = "APPROVED" // Approved for disbursement
	ClaimStatusRejected ClaimStatus = "REJECTED" // Rejected with a reason
)

// IsValid checks if the status is a valid ClaimStatus
func (s ClaimStatus) IsValid() bool {
	switch s {
	case ClaimStatusPending, ClaimStatusApproved, ClaimStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of ClaimStatus
func (s ClaimStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the claim has been decided
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusApproved || s == ClaimStatusRejected
}

// MinRejectionReasonLength is the minimum length of a rejection reason
const MinRejectionReasonLength = 10

// ApprovalDetails carries the fields recorded when a claim is approved
type ApprovalDetails struct {
	ApprovedAmount  valueobject.Money
	ApproverID      uuid.UUID
	RecipientName   string
	PaymentDate     time.Time
	PaymentCity     string
	ApprovalNote    string
	ReceiptKey      string // object storage key of the approval receipt, optional
}

// ExpenseClaim represents an expense claim aggregate root.
// A claim is created pending and decided exactly once; both decisions are
// terminal and never reversed.
type ExpenseClaim struct {
	shared.BaseAggregateRoot
	ClaimNumber     string          `json:"claim_number"`
	RequesterName   string          `json:"requester_name"`
	Division        string          `json:"division"`
	Purpose         string          `json:"purpose"`
	AmountRequested decimal.Decimal `json:"amount_requested"`
	SubmissionDate  time.Time       `json:"submission_date"`
	Status          ClaimStatus     `json:"status"`

	// Set only on transition to APPROVED
	ApprovedAmount *decimal.Decimal `json:"approved_amount,omitempty"`
	ApproverID     *uuid.UUID       `json:"approver_id,omitempty"`
	RecipientName  string           `json:"recipient_name,omitempty"`
	PaymentDate    *time.Time       `json:"payment_date,omitempty"`
	PaymentCity    string           `json:"payment_city,omitempty"`
	ApprovalNote   string           `json:"approval_note,omitempty"`
	ReceiptKey     string           `json:"receipt_key,omitempty"`

	// Set only on transition to REJECTED
	RejectionReason string `json:"rejection_reason,omitempty"`

	DecidedBy *uuid.UUID `json:"decided_by,omitempty"` // acting user recorded for audit
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

// NewExpenseClaim creates a new pending expense claim
func NewExpenseClaim(
	claimNumber string,
	requesterName string,
	division string,
	purpose string,
	amountRequested valueobject.Money,
	submissionDate time.Time,
) (*ExpenseClaim, error) {
	if claimNumber == "" {
		return nil, shared.NewValidationError("Claim number cannot be empty")
	}
	if len(claimNumber) > 50 {
		return nil, shared.NewValidationError("Claim number cannot exceed 50 characters")
	}
	if strings.TrimSpace(requesterName) == "" {
		return nil, shared.NewValidationError("Requester name cannot be empty")
	}
	if strings.TrimSpace(purpose) == "" {
		return nil, shared.NewValidationError("Purpose cannot be empty")
	}
	if amountRequested.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Requested amount must be positive")
	}
	if submissionDate.IsZero() {
		submissionDate = time.Now()
	}

	return &ExpenseClaim{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClaimNumber:       claimNumber,
		RequesterName:     requesterName,
		Division:          division,
		Purpose:           purpose,
		AmountRequested:   amountRequested.Amount(),
		SubmissionDate:    submissionDate,
		Status:            ClaimStatusPending,
	}, nil
}

// Approve transitions a pending claim to APPROVED and records the approval
// details. The approved amount is not required to stay within the requested
// amount.
func (c *ExpenseClaim) Approve(details ApprovalDetails, decidedBy uuid.UUID) error {
	if c.Status != ClaimStatusPending {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot approve claim in %s status", c.Status))
	}
	if details.ApprovedAmount.Amount().LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Approved amount must be positive")
	}
	if details.ApproverID == uuid.Nil {
		return shared.NewValidationError("Approver is required")
	}
	if strings.TrimSpace(details.RecipientName) == "" {
		return shared.NewValidationError("Recipient name cannot be empty")
	}
	if details.PaymentDate.IsZero() {
		return shared.NewValidationError("Payment date is required")
	}
	if strings.TrimSpace(details.PaymentCity) == "" {
		return shared.NewValidationError("Payment city cannot be empty")
	}

	now := time.Now()
	approved := details.ApprovedAmount.Amount()
	approverID := details.ApproverID

	c.Status = ClaimStatusApproved
	c.ApprovedAmount = &approved
	c.ApproverID = &approverID
	c.RecipientName = details.RecipientName
	c.PaymentDate = &details.PaymentDate
	c.PaymentCity = details.PaymentCity
	c.ApprovalNote = details.ApprovalNote
	c.ReceiptKey = details.ReceiptKey
	c.DecidedBy = &decidedBy
	c.DecidedAt = &now
	c.Touch(now)
	c.IncrementVersion()

	return nil
}

// Reject transitions a pending claim to REJECTED with a reason
func (c *ExpenseClaim) Reject(reason string, decidedBy uuid.UUID) error {
	if c.Status != ClaimStatusPending {
		return shared.NewInvalidStateError(fmt.Sprintf("Cannot reject claim in %s status", c.Status))
	}
	if len(strings.TrimSpace(reason)) < MinRejectionReasonLength {
		return shared.NewValidationError(fmt.Sprintf("Rejection reason must be at least %d characters", MinRejectionReasonLength))
	}

	now := time.Now()
	c.Status = ClaimStatusRejected
	c.RejectionReason = reason
	c.DecidedBy = &decidedBy
	c.DecidedAt = &now
	c.Touch(now)
	c.IncrementVersion()

	return nil
}

// GetAmountRequestedMoney returns the requested amount as Money
func (c *ExpenseClaim) GetAmountRequestedMoney() valueobject.Money {
	return valueobject.NewMoneyIDR(c.AmountRequested)
}

// GetApprovedAmountMoney returns the approved amount as Money, or zero when
// the claim has not been approved
func (c *ExpenseClaim) GetApprovedAmountMoney() valueobject.Money {
	if c.ApprovedAmount == nil {
		return valueobject.ZeroIDR()
	}
	return valueobject.NewMoneyIDR(*c.ApprovedAmount)
}

// IsDecided returns true if the claim has reached a terminal decision
func (c *ExpenseClaim) IsDecided() bool {
	return c.Status.IsTerminal()
}
