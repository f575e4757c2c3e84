package workflow

import (
	"context"
	"fmt"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/utils"
	"gorm.io/gorm"
)

type ProductionResult struct {
	// Remaining is how many pieces of the element the order still needs
	// after this batch was applied.
	Remaining     int  `json:"remaining"`
	OrderComplete bool `json:"order_complete"`
}

// RecordProduction books freshly manufactured pieces of one element against
// an order. The amount is distributed across the order's requirement rows
// first-needed-first; whatever exceeds the order's total need is capped, not
// an error. Inventory grows by the full amount produced. Raw material is
// drawn down unguarded: production may overdraw bulk stock, to be reconciled
// manually later, unlike the guarded assembly-time deduction.
func RecordProduction(ctx context.Context, orderId int, elementId int, amountProduced int) (*ProductionResult, error) {
	logger := config.GetLogger()

	if amountProduced <= 0 {
		return nil, utils.NewValidationError("amount produced must be positive, got %d", amountProduced)
	}

	var result ProductionResult
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := models.FetchOrderForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusInProduction {
			return utils.NewBusinessRuleError("order #%d is not in production", order.OrderNumber)
		}
		if err := ensureManufacturingOrders(tx, order); err != nil {
			return err
		}

		var element models.Element
		if err := tx.First(&element, elementId).Error; err != nil {
			return utils.NewNotFoundError("element", "element %d not found", elementId)
		}

		requirements, err := models.RequirementsForElement(tx, orderId, elementId)
		if err != nil {
			return err
		}
		if len(requirements) == 0 {
			return utils.NewNotFoundError("material requirement",
				"order #%d has no requirement for element %s", order.OrderNumber, element.UniqueName)
		}

		left := amountProduced
		applied := 0
		remaining := 0
		touchedManufacturingOrders := make(map[int]bool)
		for i := range requirements {
			requirement := &requirements[i]
			fill := requirement.Remaining()
			if fill > left {
				fill = left
			}
			if fill > 0 {
				err := tx.Model(requirement).
					Update("quantity_produced", requirement.QuantityProduced+fill).Error
				if err != nil {
					return err
				}
				requirement.QuantityProduced += fill
				left -= fill
				applied += fill
				touchedManufacturingOrders[requirement.ManufacturingOrderId] = true
			}
			remaining += requirement.Remaining()
		}

		correlationId := utils.CorrelationId(ctx)
		reason := fmt.Sprintf("production for order #%d", order.OrderNumber)

		if err := elementLedger.Add(tx, elementId, intDecimal(amountProduced), reason, correlationId); err != nil {
			return err
		}

		if element.RawMaterialId != nil {
			material, err := models.FetchRawMaterialForUpdate(tx, *element.RawMaterialId)
			if err != nil {
				return err
			}
			amount := MaterialAmountForElement(element, amountProduced, material.Unit)
			// unguarded on purpose: see function comment
			if err := rawMaterialLedger.Deduct(tx, material.ID, amount, reason, correlationId, false); err != nil {
				config.LogError(logger, "production.go", "RecordProduction", "DeductRawMaterial", material, err)
				return err
			}
		}

		// produced pieces are earmarked for the order they were made for,
		// but never past what the order still lacks a reservation for
		if applied > 0 {
			headroom, err := remainingNeed(tx, orderId, elementId)
			if err != nil {
				return err
			}
			grant := applied
			if grant > headroom {
				grant = headroom
			}
			if grant > 0 {
				if err := models.UpsertAllocation(tx, orderId, elementId, grant); err != nil {
					return err
				}
			}
		}

		for manufacturingOrderId := range touchedManufacturingOrders {
			if err := refreshManufacturingOrderStatus(tx, manufacturingOrderId); err != nil {
				return err
			}
		}

		orderComplete, err := orderRequirementsComplete(tx, orderId)
		if err != nil {
			return err
		}
		result = ProductionResult{Remaining: remaining, OrderComplete: orderComplete}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// refreshManufacturingOrderStatus flips a manufacturing order to done once
// every requirement is produced in full.
func refreshManufacturingOrderStatus(tx *gorm.DB, manufacturingOrderId int) error {
	var open int64
	err := tx.Model(&models.MaterialRequirement{}).
		Where("manufacturing_order_id = ? AND quantity_produced < quantity_needed", manufacturingOrderId).
		Count(&open).Error
	if err != nil {
		return err
	}
	status := models.ManufacturingOrderStatusDone
	if open > 0 {
		status = models.ManufacturingOrderStatusInProgress
	}
	return tx.Model(&models.ManufacturingOrder{}).
		Where("id = ?", manufacturingOrderId).
		Update("status", status).Error
}

func orderRequirementsComplete(tx *gorm.DB, orderId int) (bool, error) {
	var open int64
	err := tx.Model(&models.MaterialRequirement{}).
		Joins("JOIN manufacturing_orders ON manufacturing_orders.id = material_requirements.manufacturing_order_id").
		Where("manufacturing_orders.order_id = ? AND quantity_produced < quantity_needed", orderId).
		Count(&open).Error
	if err != nil {
		return false, err
	}
	return open == 0, nil
}
