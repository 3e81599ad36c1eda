// Package attachment holds the file rules for receipts and payment proofs.
package attachment

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxFileSize is the maximum accepted attachment size (2 MiB)
const MaxFileSize = 2 * 1024 * 1024

// AllowedContentTypes maps the declared content types accepted for receipts
// and payment proofs
var AllowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"application/pdf": true,
}

// Kind distinguishes where an attachment is referenced from
type Kind string

const (
	KindApprovalReceipt Kind = "APPROVAL_RECEIPT"
	KindPaymentProof    Kind = "PAYMENT_PROOF"
)

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	return k == KindApprovalReceipt || k == KindPaymentProof
}

// Metadata describes a file offered for upload. Attachments are optional
// everywhere they appear; validation only runs when one is supplied.
type Metadata struct {
	FileName    string
	ContentType string
	Size        int64
}

// Validate enforces the type and size rules before any record referencing
// the file is created
func Validate(meta Metadata) error {
	if strings.TrimSpace(meta.FileName) == "" {
		return shared.NewValidationError("File name cannot be empty")
	}
	ct := strings.ToLower(strings.TrimSpace(meta.ContentType))
	if !AllowedContentTypes[ct] {
		return shared.NewValidationError(fmt.Sprintf("Content type %q is not allowed; accepted types are jpeg, jpg, png and pdf", meta.ContentType))
	}
	if meta.Size <= 0 {
		return shared.NewValidationError("File size must be positive")
	}
	if meta.Size > MaxFileSize {
		return shared.NewValidationError(fmt.Sprintf("File size %d exceeds the maximum of %d bytes", meta.Size, MaxFileSize))
	}
	return nil
}

// NewStorageKey builds the object storage key for an attachment. Keys are
// date-partitioned and carry a fresh UUID so uploads never collide.
func NewStorageKey(kind Kind, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	prefix := "attachments/proofs"
	if kind == KindApprovalReceipt {
		prefix = "attachments/receipts"
	}
	return fmt.Sprintf("%s/%s/%s%s", prefix, time.Now().Format("2006/01/02"), uuid.New().String(), ext)
}
