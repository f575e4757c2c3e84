package workflow

import (
	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GenerateManufacturingOrders creates the missing manufacturing order and
// requirement rows for an order. Creation is keyed on (order, product) and
// (manufacturing order, element), so repeated calls never double-create.
// Items that already carry a manufacturing order are left untouched; their
// quantities are owned by the recalculation path.
func GenerateManufacturingOrders(tx *gorm.DB, orderId int) error {
	logger := config.GetLogger()

	var items []models.OrderItem
	if err := tx.Where("order_id = ?", orderId).Order("id").Find(&items).Error; err != nil {
		return err
	}

	for _, item := range items {
		var existing models.ManufacturingOrder
		err := tx.Where("order_id = ? AND product_id = ?", orderId, item.ProductId).
			First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		product, err := fetchProductWithElements(tx, item.ProductId)
		if err != nil {
			config.LogError(logger, "manufacturing.go", "GenerateManufacturingOrders", "fetchProductWithElements", item, err)
			return err
		}

		manufacturingOrder := models.ManufacturingOrder{
			OrderId:        orderId,
			ProductId:      item.ProductId,
			QuantityToMake: item.BoxesNeeded * product.UnitsPerBox,
			Status:         models.ManufacturingOrderStatusInProgress,
		}
		if err := tx.Create(&manufacturingOrder).Error; err != nil {
			return err
		}

		if err := upsertRequirements(tx, &manufacturingOrder, product); err != nil {
			config.LogError(logger, "manufacturing.go", "GenerateManufacturingOrders", "upsertRequirements", manufacturingOrder, err)
			return err
		}
	}
	return nil
}

// RecalculateManufacturingOrder recomputes the quantity still to make for one
// (order, product) from boxes needed minus boxes assembled, re-upserts every
// requirement, then trims the order's allocations down to its fresh needs.
// Applying stock or editing an item must shrink outstanding manufacturing
// demand, not just the box count.
func RecalculateManufacturingOrder(tx *gorm.DB, orderId int, productId int) error {
	item, err := models.FetchOrderItemForUpdate(tx, orderId, productId)
	if err != nil {
		return err
	}

	product, err := fetchProductWithElements(tx, productId)
	if err != nil {
		return err
	}

	quantityToMake := item.BoxesStillNeeded() * product.UnitsPerBox

	var manufacturingOrder models.ManufacturingOrder
	err = tx.Where("order_id = ? AND product_id = ?", orderId, productId).
		First(&manufacturingOrder).Error
	if err == gorm.ErrRecordNotFound {
		manufacturingOrder = models.ManufacturingOrder{
			OrderId:   orderId,
			ProductId: productId,
			Status:    models.ManufacturingOrderStatusInProgress,
		}
		if err := tx.Create(&manufacturingOrder).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	status := models.ManufacturingOrderStatusInProgress
	if quantityToMake == 0 {
		status = models.ManufacturingOrderStatusDone
	}
	err = tx.Model(&manufacturingOrder).Updates(map[string]interface{}{
		"QuantityToMake": quantityToMake,
		"Status":         status,
	}).Error
	if err != nil {
		return err
	}
	manufacturingOrder.QuantityToMake = quantityToMake

	if err := upsertRequirements(tx, &manufacturingOrder, product); err != nil {
		return err
	}

	elementIds := make([]int, 0, len(product.Elements))
	for _, productElement := range product.Elements {
		elementIds = append(elementIds, productElement.ElementId)
	}
	return trimAllocationsToNeed(tx, orderId, elementIds)
}

// upsertRequirements writes one requirement per product element for the
// manufacturing order's current quantity to make. Existing rows keep their
// produced count.
func upsertRequirements(tx *gorm.DB, manufacturingOrder *models.ManufacturingOrder, product *models.Product) error {
	for _, productElement := range product.Elements {
		var element models.Element
		if err := tx.First(&element, productElement.ElementId).Error; err != nil {
			return utils.NewNotFoundError("element", "element %d not found", productElement.ElementId)
		}

		quantityNeeded := ElementQtyForUnits(productElement, element, manufacturingOrder.QuantityToMake)
		totalWeight := element.WeightGrams.Mul(decimal.NewFromInt(int64(quantityNeeded)))

		var requirement models.MaterialRequirement
		err := tx.Where("manufacturing_order_id = ? AND element_id = ?",
			manufacturingOrder.ID, productElement.ElementId).
			First(&requirement).Error
		if err == gorm.ErrRecordNotFound {
			requirement = models.MaterialRequirement{
				ManufacturingOrderId: manufacturingOrder.ID,
				ElementId:            productElement.ElementId,
				QuantityNeeded:       quantityNeeded,
				TotalWeightGrams:     totalWeight,
			}
			if err := tx.Create(&requirement).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
		err = tx.Model(&requirement).Updates(map[string]interface{}{
			"QuantityNeeded":   quantityNeeded,
			"TotalWeightGrams": totalWeight,
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// trimAllocationsToNeed caps the order's reservation for each element at the
// freshly summed need across all of the order's manufacturing orders,
// deleting the reservation when the need reaches zero.
func trimAllocationsToNeed(tx *gorm.DB, orderId int, elementIds []int) error {
	for _, elementId := range elementIds {
		var allocation models.InventoryAllocation
		err := tx.Where("order_id = ? AND element_id = ?", orderId, elementId).
			First(&allocation).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return err
		}

		need, err := models.SumElementNeed(tx, orderId, elementId)
		if err != nil {
			return err
		}
		if need <= 0 {
			if err := tx.Delete(&allocation).Error; err != nil {
				return err
			}
			continue
		}
		if allocation.AmountAllocated > need {
			if err := tx.Model(&allocation).Update("amount_allocated", need).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

// ensureManufacturingOrders retroactively generates the ledger for an order
// that went in_production without one (self-healing on read).
func ensureManufacturingOrders(tx *gorm.DB, order *models.Order) error {
	if order.Status != models.OrderStatusInProduction {
		return nil
	}
	var count int64
	err := tx.Model(&models.ManufacturingOrder{}).
		Where("order_id = ?", order.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return GenerateManufacturingOrders(tx, order.ID)
}

func fetchProductWithElements(tx *gorm.DB, productId int) (*models.Product, error) {
	var product models.Product
	err := tx.Preload("Elements").First(&product, productId).Error
	if err != nil {
		return nil, utils.NewNotFoundError("product", "product %d not found", productId)
	}
	return &product, nil
}
