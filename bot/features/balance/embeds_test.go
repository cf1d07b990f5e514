package balance

import (
	"testing"

	"overbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceEmbed(t *testing.T) {
	account := &models.Account{UserID: 1, Balance: 1200, BankBalance: 800}

	embed := BalanceEmbed("alice", account, nil)
	assert.Equal(t, "alice's balance", embed.Title)
	require.Len(t, embed.Fields, 3)
	assert.Equal(t, "**2,000** coins", embed.Fields[2].Value)

	withLoan := BalanceEmbed("alice", account, &models.Loan{RemainingBalance: 575, TotalRepayment: 1150})
	require.Len(t, withLoan.Fields, 4)
	assert.Equal(t, "**575** coins of **1,150** coins", withLoan.Fields[3].Value)
}

func TestLeaderboardEmbed(t *testing.T) {
	accounts := []*models.Account{
		{UserID: 10, Balance: 5000},
		{UserID: 20, Balance: 1000, BankBalance: 3000},
		{UserID: 30, Balance: 10},
		{UserID: 40, BankBalance: 5},
	}

	embed := LeaderboardEmbed(accounts)
	assert.Equal(t, "🥇 <@10>: **5,000** coins\n"+
		"🥈 <@20>: **4,000** coins\n"+
		"🥉 <@30>: **10** coins\n"+
		"**4.** <@40>: **5** coins", embed.Description)
}

func TestLeaderboardEmbedEmpty(t *testing.T) {
	assert.Equal(t, "Nobody has any coins yet.", LeaderboardEmbed(nil).Description)
}
