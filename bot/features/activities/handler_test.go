package activities

import (
	"testing"

	"overbank/models"

	"github.com/stretchr/testify/assert"
)

func TestWorkMessage(t *testing.T) {
	good := WorkMessage(&models.WorkResult{Amount: 75, Account: &models.Account{Balance: 1075}})
	assert.Equal(t, "💼 You worked a shift and earned **75** coins. Hand: **1,075** coins", good)

	bad := WorkMessage(&models.WorkResult{Amount: -40, Account: &models.Account{Balance: 960}})
	assert.Contains(t, bad, "lost **40** coins")
	assert.Contains(t, bad, "Hand: **960** coins")
}

func TestRobMessage(t *testing.T) {
	tests := []struct {
		name     string
		result   *models.RobResult
		expected string
	}{
		{
			name:     "success",
			result:   &models.RobResult{Success: true, Stolen: 300},
			expected: "🦹 You robbed <@7> and got away with **300** coins!",
		},
		{
			name:     "fined",
			result:   &models.RobResult{Fine: 250},
			expected: "🚓 You got caught trying to rob <@7> and paid a **250** coins fine.",
		},
		{
			name:     "broke",
			result:   &models.RobResult{},
			expected: "🚓 You got caught trying to rob <@7>, but you had nothing to pay the fine with.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RobMessage(tt.result, 7))
		})
	}
}
