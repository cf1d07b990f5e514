package loans

import (
	"testing"

	"overbank/models"

	"github.com/stretchr/testify/assert"
)

func TestRepaymentMessage(t *testing.T) {
	assert.Equal(t, "🎉 You paid **1,150** coins and your loan is settled!",
		RepaymentMessage(&models.LoanRepayment{Repaid: 1150, FullyPaid: true}))
	assert.Equal(t, "💸 You paid **500** coins. Still owed: **650** coins.",
		RepaymentMessage(&models.LoanRepayment{Repaid: 500, Remaining: 650}))
}
