package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ClaimSortFields contains allowed sort fields for expense claims
var ClaimSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"claim_number":     true,
	"requester_name":   true,
	"division":         true,
	"amount_requested": true,
	"approved_amount":  true,
	"submission_date":  true,
	"status":           true,
	"decided_at":       true,
}

// PaymentHeaderSortFields contains allowed sort fields for payment headers
var PaymentHeaderSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"header_number": true,
	"total_billed":  true,
	"total_paid":    true,
	"due_date":      true,
	"status":        true,
	"paid_at":       true,
}

// ApproverSortFields contains allowed sort fields for the approver directory
var ApproverSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
}
