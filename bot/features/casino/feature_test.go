package casino

import (
	"testing"

	"overbank/games/roulette"
	"overbank/games/slots"
	"overbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouletteEmbed(t *testing.T) {
	won := RouletteEmbed(&roulette.Result{Bet: roulette.Green, Number: 0, Color: roulette.Green, Won: true, Wager: 100, Payout: 1400})
	assert.Equal(t, "The ball lands on 🟢 **0 green**.\nYou bet **100** coins on green.\n\n🎉 You win **1,400** coins!", won.Description)
	assert.Nil(t, won.Footer)

	lost := RouletteEmbed(&roulette.Result{Bet: roulette.Red, Number: 2, Color: roulette.Black, Wager: 100, Account: &models.Account{Balance: 400}})
	assert.Contains(t, lost.Description, "😔 You lose.")
	require.NotNil(t, lost.Footer)
	assert.Equal(t, "Hand balance: 400 coins", lost.Footer.Text)
}

func TestSlotsEmbed(t *testing.T) {
	jackpot := SlotsEmbed(&slots.Result{Line: [3]slots.Symbol{slots.Seven, slots.Seven, slots.Seven}, Multiplier: 10, Wager: 50, Payout: 500})
	assert.Equal(t, "**[ 7️⃣ | 7️⃣ | 7️⃣ ]**\n\n🎉 10x! You win **500** coins.", jackpot.Description)

	miss := SlotsEmbed(&slots.Result{Line: [3]slots.Symbol{slots.Cherry, slots.Lemon, slots.Grape}, Wager: 50})
	assert.Contains(t, miss.Description, "No match. You lose **50** coins.")
}
