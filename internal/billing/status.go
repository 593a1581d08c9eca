package billing

import "github.com/techfront-institute/academy-api/internal/models"

// Month status labels.
const (
	LabelPaid    = "Paid"
	LabelPartial = "Partial"
	LabelUnpaid  = "Unpaid"
)

// MonthStatus classifies one billing month of one enrollment.
type MonthStatus struct {
	Label   string `json:"label"`
	Paid    int64  `json:"paid"`
	Balance int64  `json:"balance"`
}

// ComputeMonthStatus classifies a billing month from its ledger entry, or the
// absence of one. The three labels are mutually exclusive and exhaustive:
// no entry or nothing paid yields Unpaid, a cleared balance yields Paid
// (clamped to zero), anything in between yields Partial.
func ComputeMonthStatus(tx *models.FeeTransaction, agreedFee int64) MonthStatus {
	if tx == nil {
		return MonthStatus{Label: LabelUnpaid, Paid: 0, Balance: agreedFee}
	}
	if tx.Balance <= 0 {
		return MonthStatus{Label: LabelPaid, Paid: tx.Paid, Balance: 0}
	}
	if tx.Paid > 0 {
		return MonthStatus{Label: LabelPartial, Paid: tx.Paid, Balance: tx.Balance}
	}
	return MonthStatus{Label: LabelUnpaid, Paid: 0, Balance: tx.Balance}
}
