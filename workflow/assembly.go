package workflow

import (
	"context"
	"fmt"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/utils"
	"gorm.io/gorm"
)

type AssemblyResult struct {
	BoxesAssembled int `json:"boxes_assembled"`
	Remaining      int `json:"remaining"`
}

// RecordAssembly turns element inventory into assembled boxes on an order
// item. The item is re-read inside the transaction so two assembly calls for
// the same product cannot both act on a stale count. Element deductions are
// always guarded: assembly must never push inventory negative. ProductStock
// is untouched; order-bound assembly and floating excess stay disjoint.
func RecordAssembly(ctx context.Context, orderId int, productId int, boxes int) (*AssemblyResult, error) {
	logger := config.GetLogger()

	if boxes <= 0 {
		return nil, utils.NewValidationError("boxes to assemble must be positive, got %d", boxes)
	}

	var result AssemblyResult
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := models.FetchOrderForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusInProduction {
			return utils.NewBusinessRuleError("order #%d is not in production", order.OrderNumber)
		}

		item, err := models.FetchOrderItemForUpdate(tx, orderId, productId)
		if err != nil {
			return err
		}
		if item.BoxesAssembled+boxes > item.BoxesNeeded {
			return utils.NewBusinessRuleError(
				"cannot assemble %d boxes, this would exceed needed boxes: at most %d remaining",
				boxes, item.BoxesNeeded-item.BoxesAssembled)
		}

		product, err := fetchProductWithElements(tx, productId)
		if err != nil {
			return err
		}

		correlationId := utils.CorrelationId(ctx)
		reason := fmt.Sprintf("assembly for order #%d", order.OrderNumber)

		deductions, err := assemblyDeductions(tx, product, boxes, reason)
		if err != nil {
			return err
		}
		if err := deductElementInventory(tx, deductions, correlationId, true); err != nil {
			config.LogError(logger, "assembly.go", "RecordAssembly", "deductElementInventory", deductions, err)
			return err
		}
		if product.BoxRawMaterialId != nil {
			if err := deductBoxMaterial(tx, *product.BoxRawMaterialId, boxes, reason, correlationId); err != nil {
				return err
			}
		}

		err = tx.Model(item).Update("boxes_assembled", item.BoxesAssembled+boxes).Error
		if err != nil {
			return err
		}
		item.BoxesAssembled += boxes

		// consumed pieces no longer need their reservation
		for _, deduction := range deductions {
			if err := models.UpsertAllocation(tx, orderId, deduction.ElementId, -deduction.Amount); err != nil {
				return err
			}
		}

		result = AssemblyResult{
			BoxesAssembled: item.BoxesAssembled,
			Remaining:      item.BoxesNeeded - item.BoxesAssembled,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// assemblyDeductions builds the per-element deduction batch for assembling
// the given number of boxes.
func assemblyDeductions(tx *gorm.DB, product *models.Product, boxes int, reason string) ([]DeductionItem, error) {
	units := boxes * product.UnitsPerBox
	deductions := make([]DeductionItem, 0, len(product.Elements))
	for _, productElement := range product.Elements {
		var element models.Element
		if err := tx.First(&element, productElement.ElementId).Error; err != nil {
			return nil, utils.NewNotFoundError("element", "element %d not found", productElement.ElementId)
		}
		deductions = append(deductions, DeductionItem{
			ElementId: productElement.ElementId,
			Amount:    ElementQtyForUnits(productElement, element, units),
			Reason:    reason,
		})
	}
	return deductions, nil
}
