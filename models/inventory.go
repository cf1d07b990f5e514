package models

import (
	"time"
)

// InventoryItem is a stack of identical collectibles
type InventoryItem struct {
	GuildID   int64     `db:"guild_id"`
	UserID    int64     `db:"user_id"`
	ItemName  string    `db:"item_name"`
	Quantity  int       `db:"quantity"`
	UnitValue int64     `db:"unit_value"`
	CreatedAt time.Time `db:"created_at"`
}

// Value is the sell-back value of the whole stack
func (i *InventoryItem) Value() int64 {
	return int64(i.Quantity) * i.UnitValue
}

// SellResult describes a sell-all
type SellResult struct {
	TotalValue int64
	ItemsSold  int // distinct stacks
	Items      []*InventoryItem
	Account    *Account
}
