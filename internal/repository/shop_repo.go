package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/guildhq/backend/internal/models"
)

type ShopRepo struct{}

func NewShopRepo() *ShopRepo {
	return &ShopRepo{}
}

const shopItemColumns = `id, name, price, stock, available, created_at`

func scanShopItem(row interface{ Scan(...any) error }) (*models.ShopItem, error) {
	var it models.ShopItem
	err := row.Scan(&it.ID, &it.Name, &it.Price, &it.Stock, &it.Available, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ShopRepo) List(ctx context.Context, db DBTX) ([]*models.ShopItem, error) {
	rows, err := db.Query(ctx, `SELECT `+shopItemColumns+` FROM shop_items ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.ShopItem
	for rows.Next() {
		it, err := scanShopItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *ShopRepo) Get(ctx context.Context, db DBTX, id uuid.UUID) (*models.ShopItem, error) {
	return scanShopItem(db.QueryRow(ctx, `SELECT `+shopItemColumns+` FROM shop_items WHERE id = $1`, id))
}

func (r *ShopRepo) GetByName(ctx context.Context, db DBTX, name string) (*models.ShopItem, error) {
	return scanShopItem(db.QueryRow(ctx, `SELECT `+shopItemColumns+` FROM shop_items WHERE lower(name) = lower($1)`, name))
}

// DecrementStock atomically takes quantity units off a stock-tracked item.
// Returns false when stock is short; unlimited items never reach this
// statement.
func (r *ShopRepo) DecrementStock(ctx context.Context, db DBTX, id uuid.UUID, quantity int64) (bool, error) {
	tag, err := db.Exec(ctx, `
		UPDATE shop_items SET stock = stock - $1
		WHERE id = $2 AND stock <> $3 AND stock >= $1
	`, quantity, id, models.UnlimitedStock)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AddToInventory increments the (user, item) holding, creating it if absent.
func (r *ShopRepo) AddToInventory(ctx context.Context, db DBTX, userID string, itemID uuid.UUID, quantity int64) error {
	_, err := db.Exec(ctx, `
		INSERT INTO inventory (user_id, item_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id) DO UPDATE SET quantity = inventory.quantity + EXCLUDED.quantity
	`, userID, itemID, quantity)
	return err
}

// QuantityForUpdate locks the holding row and returns its quantity.
// Returns pgx.ErrNoRows when the member holds none. Call within a
// transaction.
func (r *ShopRepo) QuantityForUpdate(ctx context.Context, db DBTX, userID string, itemID uuid.UUID) (int64, error) {
	var q int64
	err := db.QueryRow(ctx, `
		SELECT quantity FROM inventory WHERE user_id = $1 AND item_id = $2 FOR UPDATE
	`, userID, itemID).Scan(&q)
	return q, err
}

func (r *ShopRepo) SetInventoryQuantity(ctx context.Context, db DBTX, userID string, itemID uuid.UUID, quantity int64) error {
	_, err := db.Exec(ctx, `
		UPDATE inventory SET quantity = $3 WHERE user_id = $1 AND item_id = $2
	`, userID, itemID, quantity)
	return err
}

func (r *ShopRepo) DeleteInventory(ctx context.Context, db DBTX, userID string, itemID uuid.UUID) error {
	_, err := db.Exec(ctx, `
		DELETE FROM inventory WHERE user_id = $1 AND item_id = $2
	`, userID, itemID)
	return err
}

func (r *ShopRepo) GetInventoryQuantity(ctx context.Context, db DBTX, userID string, itemID uuid.UUID) (int64, error) {
	var q int64
	err := db.QueryRow(ctx, `
		SELECT coalesce(sum(quantity), 0) FROM inventory WHERE user_id = $1 AND item_id = $2
	`, userID, itemID).Scan(&q)
	return q, err
}

func (r *ShopRepo) ListInventory(ctx context.Context, db DBTX, userID string) ([]*models.InventoryEntry, error) {
	rows, err := db.Query(ctx, `
		SELECT i.user_id, i.item_id, s.name, i.quantity
		FROM inventory i JOIN shop_items s ON s.id = i.item_id
		WHERE i.user_id = $1 ORDER BY s.name
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.InventoryEntry
	for rows.Next() {
		var e models.InventoryEntry
		if err := rows.Scan(&e.UserID, &e.ItemID, &e.ItemName, &e.Quantity); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
