package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/techfront-institute/academy-api/internal/models"
)

func TestComputeMonthStatusMissingTransaction(t *testing.T) {
	status := ComputeMonthStatus(nil, 4500)
	assert.Equal(t, LabelUnpaid, status.Label)
	assert.EqualValues(t, 0, status.Paid)
	assert.EqualValues(t, 4500, status.Balance)
}

func TestComputeMonthStatusPartial(t *testing.T) {
	tx := &models.FeeTransaction{Payable: 4500, Paid: 2000, Balance: 2500}
	status := ComputeMonthStatus(tx, 4500)
	assert.Equal(t, LabelPartial, status.Label)
	assert.EqualValues(t, 2000, status.Paid)
	assert.EqualValues(t, 2500, status.Balance)
}

func TestComputeMonthStatusPaidClampsBalance(t *testing.T) {
	tx := &models.FeeTransaction{Payable: 4500, Paid: 4500, Balance: 0}
	status := ComputeMonthStatus(tx, 4500)
	assert.Equal(t, LabelPaid, status.Label)
	assert.EqualValues(t, 0, status.Balance)

	// negative balances from legacy data are still clamped
	tx = &models.FeeTransaction{Payable: 4500, Paid: 5000, Balance: -500}
	status = ComputeMonthStatus(tx, 4500)
	assert.Equal(t, LabelPaid, status.Label)
	assert.EqualValues(t, 0, status.Balance)
}

func TestComputeMonthStatusWaivedOnlyIsPaidWhenCleared(t *testing.T) {
	tx := &models.FeeTransaction{Payable: 4500, Paid: 0, Waived: 4500, Balance: 0}
	status := ComputeMonthStatus(tx, 4500)
	assert.Equal(t, LabelPaid, status.Label)
}

func TestComputeMonthStatusUnpaidWithRecordedZeroPayment(t *testing.T) {
	tx := &models.FeeTransaction{Payable: 4500, Paid: 0, Balance: 4500}
	status := ComputeMonthStatus(tx, 4500)
	assert.Equal(t, LabelUnpaid, status.Label)
	assert.EqualValues(t, 4500, status.Balance)
}

// The three labels partition the (exists, balance, paid) space.
func TestComputeMonthStatusExhaustive(t *testing.T) {
	cases := []struct {
		name  string
		tx    *models.FeeTransaction
		want  string
	}{
		{"missing", nil, LabelUnpaid},
		{"cleared", &models.FeeTransaction{Paid: 4500, Balance: 0}, LabelPaid},
		{"overpaid legacy", &models.FeeTransaction{Paid: 9000, Balance: -4500}, LabelPaid},
		{"partial", &models.FeeTransaction{Paid: 1, Balance: 4499}, LabelPartial},
		{"untouched", &models.FeeTransaction{Paid: 0, Balance: 4500}, LabelUnpaid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ComputeMonthStatus(tc.tx, 4500).Label)
		})
	}
}
