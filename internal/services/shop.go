package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/guildhq/backend/internal/apperr"
	"github.com/guildhq/backend/internal/models"
	"github.com/guildhq/backend/internal/repository"
)

// ShopStore is the shop repository interface used by the service.
type ShopStore interface {
	List(ctx context.Context, db repository.DBTX) ([]*models.ShopItem, error)
	Get(ctx context.Context, db repository.DBTX, id uuid.UUID) (*models.ShopItem, error)
	GetByName(ctx context.Context, db repository.DBTX, name string) (*models.ShopItem, error)
	DecrementStock(ctx context.Context, db repository.DBTX, id uuid.UUID, quantity int64) (bool, error)
	AddToInventory(ctx context.Context, db repository.DBTX, userID string, itemID uuid.UUID, quantity int64) error
	QuantityForUpdate(ctx context.Context, db repository.DBTX, userID string, itemID uuid.UUID) (int64, error)
	SetInventoryQuantity(ctx context.Context, db repository.DBTX, userID string, itemID uuid.UUID, quantity int64) error
	DeleteInventory(ctx context.Context, db repository.DBTX, userID string, itemID uuid.UUID) error
	GetInventoryQuantity(ctx context.Context, db repository.DBTX, userID string, itemID uuid.UUID) (int64, error)
	ListInventory(ctx context.Context, db repository.DBTX, userID string) ([]*models.InventoryEntry, error)
}

// ShopService sells items: one purchase atomically debits the wallet,
// decrements stock on stock-tracked items, and upserts the buyer's
// inventory.
type ShopService struct {
	db       DB
	accounts AccountStore
	log      TransactionLog
	shop     ShopStore
}

func NewShopService(db DB, accounts AccountStore, log TransactionLog, shop ShopStore) *ShopService {
	return &ShopService{db: db, accounts: accounts, log: log, shop: shop}
}

// PurchaseResult is returned by BuyItem.
type PurchaseResult struct {
	Item      *models.ShopItem `json:"item"`
	Quantity  int64            `json:"quantity"`
	TotalCost int64            `json:"total_cost"`
}

// BuyItem purchases quantity units of an item. Stock and balance checks
// before Begin are advisory; the guarded stock decrement and guarded debit
// inside the transaction are authoritative, so two concurrent buyers can
// never oversell stock or overdraw a wallet.
func (s *ShopService) BuyItem(ctx context.Context, userID string, itemID uuid.UUID, quantity int64) (*PurchaseResult, error) {
	if quantity < 1 {
		return nil, apperr.Validation("Quantity must be at least 1")
	}
	item, err := s.item(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Available {
		return nil, apperr.Validation("Item is not available")
	}
	stockTracked := item.Stock != models.UnlimitedStock
	if stockTracked && item.Stock < quantity {
		return nil, apperr.Validation("Not enough stock")
	}
	// price * quantity must not wrap around; a negative totalCost would turn
	// the debit below into a credit.
	if quantity > math.MaxInt64/item.Price {
		return nil, apperr.Validation("Quantity too large")
	}

	totalCost := item.Price * quantity
	buyer, err := s.accounts.GetOrCreate(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if buyer.Balance < totalCost {
		return nil, apperr.Validation("Insufficient funds")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin purchase tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if stockTracked {
		ok, err := s.shop.DecrementStock(ctx, tx, itemID, quantity)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Validation("Not enough stock")
		}
	}
	if _, err := s.accounts.UpdateBalance(ctx, tx, userID, -totalCost); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.Validation("Insufficient funds")
		}
		return nil, err
	}
	if err := s.shop.AddToInventory(ctx, tx, userID, itemID, quantity); err != nil {
		return nil, err
	}
	if _, err := s.log.Append(ctx, tx, userID, models.TxShopPurchase, -totalCost,
		fmt.Sprintf("Bought %dx %s", quantity, item.Name), map[string]any{
			"itemId":   item.ID.String(),
			"itemName": item.Name,
			"quantity": quantity,
		}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase tx: %w", err)
	}

	return &PurchaseResult{Item: item, Quantity: quantity, TotalCost: totalCost}, nil
}

// RemoveFromInventory consumes quantity units of a holding. The row is
// deleted when the remaining quantity would be exactly zero.
func (s *ShopService) RemoveFromInventory(ctx context.Context, userID string, itemID uuid.UUID, quantity int64) error {
	if quantity < 1 {
		return apperr.Validation("Quantity must be at least 1")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin inventory tx: %w", err)
	}
	defer tx.Rollback(ctx)

	held, err := s.shop.QuantityForUpdate(ctx, tx, userID, itemID)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && held < quantity) {
		return apperr.Validation("You do not have enough of this item")
	}
	if err != nil {
		return err
	}
	if held == quantity {
		err = s.shop.DeleteInventory(ctx, tx, userID, itemID)
	} else {
		err = s.shop.SetInventoryQuantity(ctx, tx, userID, itemID, held-quantity)
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit inventory tx: %w", err)
	}
	return nil
}

func (s *ShopService) Items(ctx context.Context) ([]*models.ShopItem, error) {
	return s.shop.List(ctx, s.db)
}

func (s *ShopService) Item(ctx context.Context, itemID uuid.UUID) (*models.ShopItem, error) {
	return s.item(ctx, itemID)
}

func (s *ShopService) item(ctx context.Context, itemID uuid.UUID) (*models.ShopItem, error) {
	it, err := s.shop.Get(ctx, s.db, itemID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Item not found")
	}
	return it, err
}

func (s *ShopService) ItemByName(ctx context.Context, name string) (*models.ShopItem, error) {
	it, err := s.shop.GetByName(ctx, s.db, name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("Item not found")
	}
	return it, err
}

func (s *ShopService) Inventory(ctx context.Context, userID string) ([]*models.InventoryEntry, error) {
	return s.shop.ListInventory(ctx, s.db, userID)
}

func (s *ShopService) HasItem(ctx context.Context, userID string, itemID uuid.UUID) (bool, error) {
	q, err := s.shop.GetInventoryQuantity(ctx, s.db, userID, itemID)
	if err != nil {
		return false, err
	}
	return q > 0, nil
}
