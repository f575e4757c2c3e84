package workflow

import (
	"fmt"

	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ledger is the shared guard-then-decrement + audit-append pattern behind
// both stock tables, parameterized over the entity key. The element inventory
// and the raw material stock are two instances of the same shape.
type Ledger[K comparable] struct {
	Name    string
	Balance func(tx *gorm.DB, key K) (decimal.Decimal, error)
	Apply   func(tx *gorm.DB, key K, change decimal.Decimal) error
	Audit   func(tx *gorm.DB, key K, change decimal.Decimal, reason string, correlationId string) error
	Label   func(tx *gorm.DB, key K) string
}

// Deduct decrements the balance and appends an audit entry. With guard on, a
// shortfall fails the call naming the entity and the missing quantity; the
// enclosing transaction rolls back any earlier deductions of the same batch.
func (l Ledger[K]) Deduct(tx *gorm.DB, key K, amount decimal.Decimal, reason string, correlationId string, guarded bool) error {
	if !amount.IsPositive() {
		return nil
	}
	balance, err := l.Balance(tx, key)
	if err != nil {
		return err
	}
	if guarded && balance.LessThan(amount) {
		return utils.NewBusinessRuleError("insufficient %s for %s: need %s, have %s",
			l.Name, l.Label(tx, key), amount.String(), balance.String())
	}
	if err := l.Apply(tx, key, amount.Neg()); err != nil {
		return err
	}
	return l.Audit(tx, key, amount.Neg(), reason, correlationId)
}

// Add increments the balance and appends an audit entry.
func (l Ledger[K]) Add(tx *gorm.DB, key K, amount decimal.Decimal, reason string, correlationId string) error {
	if !amount.IsPositive() {
		return nil
	}
	if err := l.Apply(tx, key, amount); err != nil {
		return err
	}
	return l.Audit(tx, key, amount, reason, correlationId)
}

// elementLedger: per-element piece counts, integer amounts.
var elementLedger = Ledger[int]{
	Name: "stock",
	Balance: func(tx *gorm.DB, elementId int) (decimal.Decimal, error) {
		inventory, err := models.FirstOrCreateInventory(tx, elementId)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromInt(int64(inventory.TotalAmount)), nil
	},
	Apply: func(tx *gorm.DB, elementId int, change decimal.Decimal) error {
		return tx.Model(&models.Inventory{}).
			Where("element_id = ?", elementId).
			Update("total_amount", gorm.Expr("total_amount + ?", change.IntPart())).Error
	},
	Audit: func(tx *gorm.DB, elementId int, change decimal.Decimal, reason string, correlationId string) error {
		return models.AppendInventoryTransaction(tx, elementId, int(change.IntPart()), reason, correlationId)
	},
	Label: func(tx *gorm.DB, elementId int) string {
		var element models.Element
		if err := tx.First(&element, elementId).Error; err != nil {
			return fmt.Sprintf("element %d", elementId)
		}
		return fmt.Sprintf("element %s", element.UniqueName)
	},
}

// rawMaterialLedger: bulk material quantities in the material's own unit.
var rawMaterialLedger = Ledger[int]{
	Name: "raw material",
	Balance: func(tx *gorm.DB, rawMaterialId int) (decimal.Decimal, error) {
		material, err := models.FetchRawMaterialForUpdate(tx, rawMaterialId)
		if err != nil {
			return decimal.Zero, err
		}
		return material.StockQty, nil
	},
	Apply: func(tx *gorm.DB, rawMaterialId int, change decimal.Decimal) error {
		return tx.Model(&models.RawMaterial{}).
			Where("id = ?", rawMaterialId).
			Update("stock_qty", gorm.Expr("stock_qty + ?", change)).Error
	},
	Audit: func(tx *gorm.DB, rawMaterialId int, change decimal.Decimal, reason string, correlationId string) error {
		return models.AppendRawMaterialTransaction(tx, rawMaterialId, change, reason, correlationId)
	},
	Label: func(tx *gorm.DB, rawMaterialId int) string {
		var material models.RawMaterial
		if err := tx.First(&material, rawMaterialId).Error; err != nil {
			return fmt.Sprintf("raw material %d", rawMaterialId)
		}
		return material.Name
	},
}

func intDecimal(v int) decimal.Decimal {
	return decimal.NewFromInt(int64(v))
}

// DeductionItem is one element decrement within an all-or-nothing batch.
type DeductionItem struct {
	ElementId int
	Amount    int
	Reason    string
}

// deductElementInventory applies a batch of element deductions sequentially.
// Any shortfall aborts the whole batch via the enclosing transaction.
func deductElementInventory(tx *gorm.DB, items []DeductionItem, correlationId string, guarded bool) error {
	for _, item := range items {
		if item.Amount <= 0 {
			continue
		}
		err := elementLedger.Deduct(tx, item.ElementId, decimal.NewFromInt(int64(item.Amount)), item.Reason, correlationId, guarded)
		if err != nil {
			return err
		}
	}
	return nil
}

// deductBoxMaterial guard-then-decrements the product's box material.
func deductBoxMaterial(tx *gorm.DB, rawMaterialId int, amount int, reason string, correlationId string) error {
	return rawMaterialLedger.Deduct(tx, rawMaterialId, decimal.NewFromInt(int64(amount)), reason, correlationId, true)
}
