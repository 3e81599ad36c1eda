package expense

import (
	"context"
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClaimFilter defines filtering options for claim queries
type ClaimFilter struct {
	shared.Filter
	Status        *ClaimStatus // Filter by decision status
	Division      string       // Filter by requesting division
	SubmittedFrom *time.Time   // Filter by submission date range start
	SubmittedTo   *time.Time   // Filter by submission date range end
}

// ClaimRepository defines the interface for expense claim persistence
type ClaimRepository interface {
	// FindByID finds a claim by ID
	FindByID(ctx context.Context, id uuid.UUID) (*ExpenseClaim, error)

	// FindByClaimNumber finds a claim by its human-readable number
	FindByClaimNumber(ctx context.Context, claimNumber string) (*ExpenseClaim, error)

	// FindAll finds claims matching the filter, returning the total count
	// before pagination
	FindAll(ctx context.Context, filter ClaimFilter) ([]ExpenseClaim, int64, error)

	// Save creates or updates a claim
	Save(ctx context.Context, claim *ExpenseClaim) error

	// SaveWithLock updates a claim with an optimistic version check; a stale
	// version surfaces shared.ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, claim *ExpenseClaim, expectedVersion int) error

	// GenerateClaimNumber generates the next claim number for the given date
	GenerateClaimNumber(ctx context.Context, date time.Time) (string, error)

	// WithTx returns a repository bound to the given transaction
	WithTx(tx *gorm.DB) ClaimRepository
}

// ApproverRepository defines the interface for the approver directory
type ApproverRepository interface {
	// FindByID finds an approver by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Approver, error)

	// FindAll lists all approvers ordered by name
	FindAll(ctx context.Context) ([]Approver, error)
}
