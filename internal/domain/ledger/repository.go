package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentHeaderRepository defines the interface for payment header persistence
type PaymentHeaderRepository interface {
	// FindByID finds a header by ID, including its installments
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentHeader, error)

	// FindByIDForUpdate finds a header by ID and takes a row lock so the
	// read-recompute-write cycle is serialized per header. Must run inside
	// a transaction.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PaymentHeader, error)

	// FindByOwnerReference finds the header reconciling the given claim
	FindByOwnerReference(ctx context.Context, ownerReference uuid.UUID) (*PaymentHeader, error)

	// FindByRecordID finds the header owning the given installment
	FindByRecordID(ctx context.Context, recordID uuid.UUID) (*PaymentHeader, error)

	// Save creates or updates a header together with its installments
	Save(ctx context.Context, header *PaymentHeader) error

	// SaveWithLock updates a header with an optimistic version check; a stale
	// version surfaces shared.ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, header *PaymentHeader, expectedVersion int) error

	// DeleteRecord removes a single installment row
	DeleteRecord(ctx context.Context, recordID uuid.UUID) error

	// GenerateHeaderNumber generates the next header number for the given date
	GenerateHeaderNumber(ctx context.Context, date time.Time) (string, error)

	// WithTx returns a repository bound to the given transaction
	WithTx(tx *gorm.DB) PaymentHeaderRepository
}
