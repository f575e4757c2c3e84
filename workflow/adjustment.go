package workflow

import (
	"context"
	"fmt"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AdjustInventory applies a signed correction to one element's count, always
// logged. A result below zero rejects the whole operation. After a reduction
// the reservations are reconciled: when more is reserved than exists, the
// newest orders lose their reservation first, because older orders keep
// priority when inventory shrinks.
func AdjustInventory(ctx context.Context, elementId int, changeAmount int, reason string) (*models.Inventory, error) {
	if changeAmount == 0 {
		return nil, utils.NewValidationError("change amount must not be zero")
	}
	if reason == "" {
		return nil, utils.NewValidationError("a reason is required for inventory adjustments")
	}

	var adjusted *models.Inventory
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var element models.Element
		if err := tx.First(&element, elementId).Error; err != nil {
			return utils.NewNotFoundError("element", "element %d not found", elementId)
		}

		inventory, err := models.FirstOrCreateInventory(tx, elementId)
		if err != nil {
			return err
		}
		newTotal := inventory.TotalAmount + changeAmount
		if newTotal < 0 {
			return utils.NewBusinessRuleError(
				"adjustment of %d would drive element %s below zero (currently %d)",
				changeAmount, element.UniqueName, inventory.TotalAmount)
		}

		if err := tx.Model(inventory).Update("total_amount", newTotal).Error; err != nil {
			return err
		}
		inventory.TotalAmount = newTotal

		correlationId := utils.CorrelationId(ctx)
		err = models.AppendInventoryTransaction(tx, elementId, changeAmount,
			fmt.Sprintf("adjustment: %s", reason), correlationId)
		if err != nil {
			return err
		}

		if changeAmount < 0 {
			if err := reconcileAllocations(tx, elementId, newTotal); err != nil {
				return err
			}
		}

		adjusted = inventory
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}

// reconcileAllocations trims reservations for one element until their sum
// fits the new total, newest order first. A reservation that fits entirely
// within the overhang is deleted, otherwise it is partially reduced.
func reconcileAllocations(tx *gorm.DB, elementId int, newTotal int) error {
	allocated, err := models.AllocatedTotal(tx, elementId)
	if err != nil {
		return err
	}
	excess := allocated - newTotal
	if excess <= 0 {
		return nil
	}

	var allocations []models.InventoryAllocation
	err = tx.Joins("JOIN orders ON orders.id = inventory_allocations.order_id").
		Where("inventory_allocations.element_id = ?", elementId).
		Order("orders.order_number DESC").
		Find(&allocations).Error
	if err != nil {
		return err
	}

	for _, allocation := range allocations {
		if excess <= 0 {
			break
		}
		if allocation.AmountAllocated <= excess {
			if err := tx.Delete(&allocation).Error; err != nil {
				return err
			}
			excess -= allocation.AmountAllocated
			continue
		}
		err := tx.Model(&allocation).
			Update("amount_allocated", allocation.AmountAllocated-excess).Error
		if err != nil {
			return err
		}
		excess = 0
	}
	return nil
}

// remainingNeed is how many more pieces of the element the order may still
// reserve before its reservation matches its total need.
func remainingNeed(tx *gorm.DB, orderId int, elementId int) (int, error) {
	need, err := models.SumElementNeed(tx, orderId, elementId)
	if err != nil {
		return 0, err
	}
	var current models.InventoryAllocation
	err = tx.Where("order_id = ? AND element_id = ?", orderId, elementId).First(&current).Error
	if err == gorm.ErrRecordNotFound {
		return need, nil
	}
	if err != nil {
		return 0, err
	}
	return need - current.AmountAllocated, nil
}

// AllocateInventoryToOrder earmarks on-hand pieces for one order, capped at
// both the unreserved inventory and the order's remaining need for the
// element. The cap is applied silently, mirroring production's behavior.
func AllocateInventoryToOrder(ctx context.Context, orderId int, elementId int, amount int) (*models.InventoryAllocation, error) {
	if amount <= 0 {
		return nil, utils.NewValidationError("amount to allocate must be positive, got %d", amount)
	}

	var allocation *models.InventoryAllocation
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := models.FetchOrderForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusShipped {
			return utils.NewBusinessRuleError("order #%d is shipped and needs no reservations", order.OrderNumber)
		}
		if err := ensureManufacturingOrders(tx, order); err != nil {
			return err
		}

		var element models.Element
		if err := tx.First(&element, elementId).Error; err != nil {
			return utils.NewNotFoundError("element", "element %d not found", elementId)
		}

		inventory, err := models.FirstOrCreateInventory(tx, elementId)
		if err != nil {
			return err
		}
		allocated, err := models.AllocatedTotal(tx, elementId)
		if err != nil {
			return err
		}
		free := inventory.TotalAmount - allocated
		if free < 0 {
			free = 0
		}

		remaining, err := remainingNeed(tx, orderId, elementId)
		if err != nil {
			return err
		}

		headroom := remaining
		if headroom > free {
			headroom = free
		}
		if headroom <= 0 {
			return utils.NewBusinessRuleError(
				"nothing to allocate for element %s: free inventory %d, remaining need %d",
				element.UniqueName, free, remaining)
		}
		applied := amount
		if applied > headroom {
			applied = headroom
		}

		if err := models.UpsertAllocation(tx, orderId, elementId, applied); err != nil {
			return err
		}
		var current models.InventoryAllocation
		err = tx.Where("order_id = ? AND element_id = ?", orderId, elementId).First(&current).Error
		if err != nil {
			return err
		}
		allocation = &current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return allocation, nil
}

// AdjustRawMaterialStock books bulk material in or out with an audit entry.
// Reductions are guarded; stock never ends below zero by correction.
func AdjustRawMaterialStock(ctx context.Context, rawMaterialId int, changeAmount decimal.Decimal, reason string) (*models.RawMaterial, error) {
	if changeAmount.IsZero() {
		return nil, utils.NewValidationError("change amount must not be zero")
	}
	if reason == "" {
		return nil, utils.NewValidationError("a reason is required for raw material adjustments")
	}

	var adjusted *models.RawMaterial
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		material, err := models.FetchRawMaterialForUpdate(tx, rawMaterialId)
		if err != nil {
			return err
		}
		newQty := material.StockQty.Add(changeAmount)
		if newQty.IsNegative() {
			return utils.NewBusinessRuleError(
				"adjustment of %s would drive raw material %s below zero (currently %s)",
				changeAmount.String(), material.Name, material.StockQty.String())
		}
		if err := tx.Model(material).Update("stock_qty", newQty).Error; err != nil {
			return err
		}
		material.StockQty = newQty

		correlationId := utils.CorrelationId(ctx)
		err = models.AppendRawMaterialTransaction(tx, rawMaterialId, changeAmount,
			fmt.Sprintf("adjustment: %s", reason), correlationId)
		if err != nil {
			return err
		}
		adjusted = material
		return nil
	})
	if err != nil {
		return nil, err
	}
	return adjusted, nil
}
