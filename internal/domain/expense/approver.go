package expense

import (
	"strings"

	"github.com/farmops/backend/internal/domain/shared"
)

// Approver is a reference-list entry used for selecting who signs off a
// claim. The directory is maintained elsewhere; this subsystem only reads it.
type Approver struct {
	shared.BaseEntity
	Name string `json:"name"`
}

// NewApprover creates a new approver directory entry
func NewApprover(name string) (*Approver, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("Approver name cannot be empty")
	}
	return &Approver{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}
