package ledger

import (
	"fmt"
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the reconciliation state of a payment header
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"   // No installments posted yet
	PaymentStatusPartial  PaymentStatus = "PARTIAL"  // 0 < total paid < total billed
	PaymentStatusPaid     PaymentStatus = "PAID"     // Total paid equals total billed
	PaymentStatusOverpaid PaymentStatus = "OVERPAID" // Total paid exceeds total billed; anomaly, not a terminus
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusOverpaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// PaymentRecord represents one installment posted against a header
type PaymentRecord struct {
	ID          uuid.UUID       `json:"id"`
	HeaderID    uuid.UUID       `json:"header_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Note        string          `json:"note,omitempty"`
	ProofKey    string          `json:"proof_key,omitempty"` // object storage key of the payment proof, optional
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewPaymentRecord creates a new installment record
func NewPaymentRecord(headerID uuid.UUID, amount valueobject.Money, paymentDate time.Time, note, proofKey string) (*PaymentRecord, error) {
	if headerID == uuid.Nil {
		return nil, shared.NewValidationError("Header ID cannot be empty")
	}
	if amount.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewValidationError("Payment date is required")
	}
	return &PaymentRecord{
		ID:          uuid.New(),
		HeaderID:    headerID,
		Amount:      amount.Amount(),
		PaymentDate: paymentDate,
		Note:        note,
		ProofKey:    proofKey,
		CreatedAt:   time.Now(),
	}, nil
}

// GetAmountMoney returns the installment amount as Money
func (r *PaymentRecord) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyIDR(r.Amount)
}

// PaymentHeader represents the billed-vs-paid ledger for one approved claim.
// TotalBilled is fixed at creation; TotalPaid is always recomputed from the
// full set of installments and never trusted from a caller.
type PaymentHeader struct {
	shared.BaseAggregateRoot
	HeaderNumber   string          `json:"header_number"`
	OwnerReference uuid.UUID       `json:"owner_reference"` // the expense claim this header reconciles
	TotalBilled    decimal.Decimal `json:"total_billed"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	DueDate        *time.Time      `json:"due_date,omitempty"`
	Status         PaymentStatus   `json:"status"`
	PaymentRecords []PaymentRecord `json:"payment_records"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"` // when the header first reached PAID
}

// NewPaymentHeader opens a ledger header for an approved claim
func NewPaymentHeader(
	headerNumber string,
	ownerReference uuid.UUID,
	totalBilled valueobject.Money,
	dueDate *time.Time,
) (*PaymentHeader, error) {
	if headerNumber == "" {
		return nil, shared.NewValidationError("Header number cannot be empty")
	}
	if ownerReference == uuid.Nil {
		return nil, shared.NewValidationError("Owner reference cannot be empty")
	}
	if totalBilled.Amount().LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Total billed must be positive")
	}

	return &PaymentHeader{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		HeaderNumber:      headerNumber,
		OwnerReference:    ownerReference,
		TotalBilled:       totalBilled.Amount(),
		TotalPaid:         decimal.Zero,
		DueDate:           dueDate,
		Status:            PaymentStatusUnpaid,
		PaymentRecords:    make([]PaymentRecord, 0),
	}, nil
}

// PostPayment appends an installment and recomputes the aggregate
func (h *PaymentHeader) PostPayment(amount valueobject.Money, paymentDate time.Time, note, proofKey string, createdBy *uuid.UUID) (*PaymentRecord, error) {
	record, err := NewPaymentRecord(h.ID, amount, paymentDate, note, proofKey)
	if err != nil {
		return nil, err
	}
	record.CreatedBy = createdBy

	h.PaymentRecords = append(h.PaymentRecords, *record)
	if err := h.Recompute(); err != nil {
		return nil, err
	}
	h.IncrementVersion()
	return record, nil
}

// RemovePayment deletes the installment with the given ID and recomputes the
// aggregate. Returns shared.ErrNotFound if the record is not on this header.
func (h *PaymentHeader) RemovePayment(recordID uuid.UUID) error {
	idx := -1
	for i := range h.PaymentRecords {
		if h.PaymentRecords[i].ID == recordID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return shared.ErrNotFound
	}

	h.PaymentRecords = append(h.PaymentRecords[:idx], h.PaymentRecords[idx+1:]...)
	if err := h.Recompute(); err != nil {
		return err
	}
	h.IncrementVersion()
	return nil
}

// Recompute derives TotalPaid as the full sum of the header's installments
// and the status from the calculator. Not an incremental add: the sum is
// rebuilt from scratch so the aggregate stays correct under interleaved
// posts and deletes. A negative sum is a data-integrity violation and aborts
// with a consistency error.
func (h *PaymentHeader) Recompute() error {
	sum := decimal.Zero
	for i := range h.PaymentRecords {
		sum = sum.Add(h.PaymentRecords[i].Amount)
	}
	if sum.IsNegative() {
		return shared.NewConsistencyError(fmt.Sprintf("Recomputed total paid is negative (%s) for header %s", sum.String(), h.HeaderNumber))
	}

	h.TotalPaid = sum
	newStatus := StatusFor(h.GetTotalBilledMoney(), h.GetTotalPaidMoney())
	if newStatus == PaymentStatusPaid && h.Status != PaymentStatusPaid {
		now := time.Now()
		h.PaidAt = &now
	}
	h.Status = newStatus
	h.Touch(time.Now())
	return nil
}

// GetTotalBilledMoney returns the billed total as Money
func (h *PaymentHeader) GetTotalBilledMoney() valueobject.Money {
	return valueobject.NewMoneyIDR(h.TotalBilled)
}

// GetTotalPaidMoney returns the paid total as Money
func (h *PaymentHeader) GetTotalPaidMoney() valueobject.Money {
	return valueobject.NewMoneyIDR(h.TotalPaid)
}

// GetRemainingMoney returns billed minus paid as Money
func (h *PaymentHeader) GetRemainingMoney() valueobject.Money {
	return Remaining(h.GetTotalBilledMoney(), h.GetTotalPaidMoney())
}

// FindRecord returns the installment with the given ID, or nil
func (h *PaymentHeader) FindRecord(recordID uuid.UUID) *PaymentRecord {
	for i := range h.PaymentRecords {
		if h.PaymentRecords[i].ID == recordID {
			return &h.PaymentRecords[i]
		}
	}
	return nil
}
