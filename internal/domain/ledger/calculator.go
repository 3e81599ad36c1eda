package ledger

import (
	"github.com/farmops/backend/internal/domain/shared/valueobject"
)

// Remaining returns the balance still owed on a header: billed minus paid.
// Exact decimal arithmetic; a negative result means the header is overpaid.
func Remaining(totalBilled, totalPaid valueobject.Money) valueobject.Money {
	return totalBilled.MustSubtract(totalPaid)
}

// StatusFor derives the payment status from total billed and paid amounts.
// Total over all inputs; nothing to report as an error.
func StatusFor(totalBilled, totalPaid valueobject.Money) PaymentStatus {
	remaining := Remaining(totalBilled, totalPaid)
	switch {
	case remaining.IsNegative():
		return PaymentStatusOverpaid
	case remaining.IsZero():
		return PaymentStatusPaid
	case totalPaid.IsZero():
		return PaymentStatusUnpaid
	default:
		return PaymentStatusPartial
	}
}
