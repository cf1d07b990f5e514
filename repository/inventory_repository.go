package repository

import (
	"context"
	"fmt"

	"overbank/models"

	"github.com/jackc/pgx/v5"
)

// InventoryRepository implements the InventoryRepository interface
type InventoryRepository struct {
	q       queryable
	guildID int64
}

func newInventoryRepository(tx queryable, guildID int64) *InventoryRepository {
	return &InventoryRepository{
		q:       tx,
		guildID: guildID,
	}
}

// Add inserts the stack or adds quantity to the existing one
func (r *InventoryRepository) Add(ctx context.Context, userID int64, itemName string, quantity int, unitValue int64) (*models.InventoryItem, error) {
	query := `
		INSERT INTO inventory_items (guild_id, user_id, item_name, quantity, unit_value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, user_id, item_name)
		DO UPDATE SET quantity = inventory_items.quantity + EXCLUDED.quantity
		RETURNING guild_id, user_id, item_name, quantity, unit_value, created_at
	`

	rows, err := r.q.Query(ctx, query, r.guildID, userID, itemName, quantity, unitValue)
	if err != nil {
		return nil, fmt.Errorf("failed to add %s for user %d: %w", itemName, userID, err)
	}
	items, err := collectItems(rows)
	if err != nil {
		return nil, err
	}
	if len(items) != 1 {
		return nil, fmt.Errorf("expected one inventory row for %s, got %d", itemName, len(items))
	}
	return items[0], nil
}

// GetByUser returns the user's stacks ordered by name
func (r *InventoryRepository) GetByUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error) {
	query := `
		SELECT guild_id, user_id, item_name, quantity, unit_value, created_at
		FROM inventory_items
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY item_name
	`

	rows, err := r.q.Query(ctx, query, r.guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory for user %d: %w", userID, err)
	}
	return collectItems(rows)
}

// DeleteAllByUser deletes every stack of the user and returns the deleted rows.
// Reading and deleting in one statement keeps two concurrent sells from both seeing the items.
func (r *InventoryRepository) DeleteAllByUser(ctx context.Context, userID int64) ([]*models.InventoryItem, error) {
	query := `
		DELETE FROM inventory_items
		WHERE guild_id = $1 AND user_id = $2
		RETURNING guild_id, user_id, item_name, quantity, unit_value, created_at
	`

	rows, err := r.q.Query(ctx, query, r.guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete inventory for user %d: %w", userID, err)
	}
	return collectItems(rows)
}

func collectItems(rows pgx.Rows) ([]*models.InventoryItem, error) {
	defer rows.Close()

	var items []*models.InventoryItem
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(
			&item.GuildID,
			&item.UserID,
			&item.ItemName,
			&item.Quantity,
			&item.UnitValue,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate inventory: %w", err)
	}

	return items, nil
}
