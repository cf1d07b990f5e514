package inventory

import (
	"testing"

	"overbank/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryEmbed(t *testing.T) {
	items := []*models.InventoryItem{
		{ItemName: "Headphones", Quantity: 2, UnitValue: 120},
		{ItemName: "Old Mouse", Quantity: 3, UnitValue: 50},
	}

	embed := InventoryEmbed("alice", items)
	assert.Equal(t, "🎒 alice's inventory", embed.Title)
	assert.Equal(t, "**Headphones** x2 (**120** coins each)\n**Old Mouse** x3 (**50** coins each)", embed.Description)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Sell everything for 390 coins with /sell", embed.Footer.Text)
}

func TestInventoryEmbedEmpty(t *testing.T) {
	embed := InventoryEmbed("alice", nil)
	assert.Contains(t, embed.Description, "/search")
	assert.Nil(t, embed.Footer)
}
