package models

import (
	"context"
	"time"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Inventory is the on-hand count of manufactured pieces, one row per element.
// TotalAmount must stay >= 0 after every committed operation.
type Inventory struct {
	ID          int       `gorm:"primary_key" json:"id"`
	ElementId   int       `gorm:"uniqueIndex;not null" json:"element_id"`
	TotalAmount int       `gorm:"not null;default:0" json:"total_amount"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// InventoryTransaction is the append-only audit log for element inventory.
// ElementId goes NULL if the element is later deleted; the history stays.
type InventoryTransaction struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ElementId     *int      `gorm:"index" json:"element_id"`
	ChangeAmount  int       `gorm:"not null" json:"change_amount"`
	Reason        string    `gorm:"size:255;not null" json:"reason"`
	CorrelationId string    `gorm:"size:36;index" json:"correlation_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// InventoryAllocation is a soft reservation of element inventory against one
// order. It is bookkeeping for the excess computation, not a hard lock, and
// may be trimmed or deleted when requirements shrink or inventory is reduced.
type InventoryAllocation struct {
	ID              int       `gorm:"primary_key" json:"id"`
	OrderId         int       `gorm:"index;not null;uniqueIndex:idx_order_element_alloc" json:"order_id"`
	ElementId       int       `gorm:"index;not null;uniqueIndex:idx_order_element_alloc" json:"element_id"`
	AmountAllocated int       `gorm:"not null;default:0" json:"amount_allocated"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProductStock holds finished boxes not tied to any order.
type ProductStock struct {
	ID               int       `gorm:"primary_key" json:"id"`
	ProductId        int       `gorm:"uniqueIndex;not null" json:"product_id"`
	StockBoxedAmount int       `gorm:"not null;default:0" json:"stock_boxed_amount"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// FirstOrCreateInventory finds or creates the inventory row for an element,
// holding a row lock for the rest of the transaction.
func FirstOrCreateInventory(tx *gorm.DB, elementId int) (*Inventory, error) {
	inventory := Inventory{ElementId: elementId}
	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("element_id = ?", elementId).
		FirstOrCreate(&inventory)
	if result.Error != nil {
		return nil, result.Error
	}
	return &inventory, nil
}

// FirstOrCreateProductStock mirrors FirstOrCreateInventory for finished boxes.
func FirstOrCreateProductStock(tx *gorm.DB, productId int) (*ProductStock, error) {
	stock := ProductStock{ProductId: productId}
	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("product_id = ?", productId).
		FirstOrCreate(&stock)
	if result.Error != nil {
		return nil, result.Error
	}
	return &stock, nil
}

// AllocatedTotal sums every order's soft reservation for one element.
func AllocatedTotal(tx *gorm.DB, elementId int) (int, error) {
	var total int
	err := tx.Model(&InventoryAllocation{}).
		Where("element_id = ?", elementId).
		Select("COALESCE(SUM(amount_allocated), 0)").
		Scan(&total).Error
	return total, err
}

// UpsertAllocation adds amount to the (order, element) reservation, creating
// the row when missing. Negative amounts shrink it; the row is deleted when it
// reaches zero.
func UpsertAllocation(tx *gorm.DB, orderId int, elementId int, amount int) error {
	if amount == 0 {
		return nil
	}
	var allocation InventoryAllocation
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND element_id = ?", orderId, elementId).
		First(&allocation).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if amount < 0 {
			return nil
		}
		return tx.Create(&InventoryAllocation{
			OrderId:         orderId,
			ElementId:       elementId,
			AmountAllocated: amount,
		}).Error
	}
	next := allocation.AmountAllocated + amount
	if next <= 0 {
		return tx.Delete(&allocation).Error
	}
	return tx.Model(&allocation).Update("amount_allocated", next).Error
}

// AppendInventoryTransaction writes an audit row; callers run inside the same
// transaction as the stock movement it records.
func AppendInventoryTransaction(tx *gorm.DB, elementId int, change int, reason string, correlationId string) error {
	id := elementId
	return tx.Create(&InventoryTransaction{
		ElementId:     &id,
		ChangeAmount:  change,
		Reason:        reason,
		CorrelationId: correlationId,
	}).Error
}

// AppendRawMaterialTransaction mirrors AppendInventoryTransaction for bulk
// materials.
func AppendRawMaterialTransaction(tx *gorm.DB, rawMaterialId int, change decimal.Decimal, reason string, correlationId string) error {
	id := rawMaterialId
	return tx.Create(&RawMaterialTransaction{
		RawMaterialId: &id,
		ChangeAmount:  change,
		Reason:        reason,
		CorrelationId: correlationId,
	}).Error
}

// InventorySummary is the per-element stock view served by the inventory list:
// on-hand total, how much of it is soft-reserved for orders, and what is free.
type InventorySummary struct {
	Element        *Element `json:"element"`
	TotalAmount    int      `json:"total_amount"`
	AllocatedTotal int      `json:"allocated_total"`
	FreeAmount     int      `json:"free_amount"`
}

func GetInventorySummaries(ctx context.Context) ([]InventorySummary, error) {
	db := config.GetDB()
	var inventories []Inventory
	if err := db.WithContext(ctx).Order("element_id asc").Find(&inventories).Error; err != nil {
		return nil, err
	}
	summaries := make([]InventorySummary, 0, len(inventories))
	for _, inventory := range inventories {
		var element Element
		if err := db.WithContext(ctx).First(&element, inventory.ElementId).Error; err != nil {
			return nil, err
		}
		allocated, err := AllocatedTotal(db.WithContext(ctx), inventory.ElementId)
		if err != nil {
			return nil, err
		}
		free := inventory.TotalAmount - allocated
		if free < 0 {
			free = 0
		}
		summaries = append(summaries, InventorySummary{
			Element:        &element,
			TotalAmount:    inventory.TotalAmount,
			AllocatedTotal: allocated,
			FreeAmount:     free,
		})
	}
	return summaries, nil
}
