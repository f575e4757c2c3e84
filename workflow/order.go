package workflow

import (
	"context"
	"time"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/utils"
	"gorm.io/gorm"
)

// CreateOrder assigns the next order number and stores the order with its
// items in one transaction. A request for in_production with insufficient raw
// materials is silently downgraded to pending with the shortage message kept
// in the notes, so creation itself never fails on stock.
func CreateOrder(ctx context.Context, input *models.NewOrder) (*models.Order, error) {
	logger := config.GetLogger()

	if err := input.Validate(ctx); err != nil {
		return nil, err
	}

	requestedStatus := input.Status
	if requestedStatus == "" {
		requestedStatus = models.OrderStatusPending
	}
	if requestedStatus == models.OrderStatusShipped {
		return nil, utils.NewValidationError("an order cannot be created as shipped")
	}

	order := models.Order{
		ClientName:  input.ClientName,
		ClientPhone: input.ClientPhone,
		Status:      models.OrderStatusPending,
		Notes:       input.Notes,
	}
	for _, item := range input.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductId:   item.ProductId,
			BoxesNeeded: item.BoxesNeeded,
		})
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := models.NextOrderNumber(tx)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		if err := tx.Create(&order).Error; err != nil {
			config.LogError(logger, "order.go", "CreateOrder", "Create", order, err)
			return err
		}

		if requestedStatus != models.OrderStatusInProduction {
			return nil
		}

		report, err := materialAvailability(tx, order.ID)
		if err != nil {
			return err
		}
		if !report.Sufficient {
			order.Notes = report.NoteMessage()
			return tx.Model(&order).Update("notes", order.Notes).Error
		}

		order.Status = models.OrderStatusInProduction
		if err := tx.Model(&order).Update("status", order.Status).Error; err != nil {
			return err
		}
		return GenerateManufacturingOrders(tx, order.ID)
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// UpdateOrderStatus runs the pending -> in_production -> shipped state
// machine. Transitions are forward-only and shipped is terminal.
func UpdateOrderStatus(ctx context.Context, orderId int, status models.OrderStatus) (*models.Order, error) {
	logger := config.GetLogger()

	if !status.IsValid() {
		return nil, utils.NewValidationError("unknown order status %q", status)
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	order, err := models.FetchOrderForUpdate(tx, orderId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if order.Status == status {
		tx.Rollback()
		return order, nil
	}
	if order.Status == models.OrderStatusShipped {
		tx.Rollback()
		return nil, utils.NewBusinessRuleError("order #%d is already shipped", order.OrderNumber)
	}

	switch status {
	case models.OrderStatusPending:
		tx.Rollback()
		return nil, utils.NewBusinessRuleError("order #%d cannot go back to pending", order.OrderNumber)

	case models.OrderStatusInProduction:
		report, err := materialAvailability(tx, orderId)
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		if !report.Sufficient {
			// The refusal itself is recorded: commit the note, fail the call.
			note := report.NoteMessage()
			if err := tx.Model(order).Update("notes", note).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
			if err := tx.Commit().Error; err != nil {
				return nil, err
			}
			return nil, utils.NewBusinessRuleError("%s", note)
		}
		if err := tx.Model(order).Update("status", models.OrderStatusInProduction).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		order.Status = models.OrderStatusInProduction
		if err := GenerateManufacturingOrders(tx, orderId); err != nil {
			tx.Rollback()
			config.LogError(logger, "order.go", "UpdateOrderStatus", "GenerateManufacturingOrders", orderId, err)
			return nil, err
		}

	case models.OrderStatusShipped:
		for _, item := range order.Items {
			if item.BoxesAssembled < item.BoxesNeeded {
				tx.Rollback()
				return nil, utils.NewBusinessRuleError(
					"order #%d cannot ship: product %d has %d of %d boxes assembled",
					order.OrderNumber, item.ProductId, item.BoxesAssembled, item.BoxesNeeded)
			}
		}
		now := time.Now()
		err := tx.Model(order).Updates(map[string]interface{}{
			"Status":    models.OrderStatusShipped,
			"ShippedAt": &now,
		}).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
		order.Status = models.OrderStatusShipped
		order.ShippedAt = &now
		// a shipped order holds nothing back: whatever it still had
		// reserved returns to the free pool
		err = tx.Where("order_id = ?", orderId).Delete(&models.InventoryAllocation{}).Error
		if err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return order, nil
}

// AddOrderItem appends a product to an unshipped order. Adding to an order
// already in production extends the manufacturing ledger immediately.
func AddOrderItem(ctx context.Context, orderId int, input *models.NewOrderItem) (*models.OrderItem, error) {
	if input.BoxesNeeded <= 0 {
		return nil, utils.NewValidationError("boxes needed must be positive, got %d", input.BoxesNeeded)
	}
	if err := utils.ValidateResourceId[models.Product](ctx, input.ProductId); err != nil {
		return nil, utils.NewNotFoundError("product", "product %d not found", input.ProductId)
	}

	var item models.OrderItem
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := models.FetchOrderForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusShipped {
			return utils.NewBusinessRuleError("order #%d is shipped and can no longer change", order.OrderNumber)
		}
		for _, existing := range order.Items {
			if existing.ProductId == input.ProductId {
				return utils.NewBusinessRuleError("order #%d already has an item for product %d", order.OrderNumber, input.ProductId)
			}
		}

		item = models.OrderItem{
			OrderId:     orderId,
			ProductId:   input.ProductId,
			BoxesNeeded: input.BoxesNeeded,
		}
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		if order.Status == models.OrderStatusInProduction {
			return GenerateManufacturingOrders(tx, orderId)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateOrderItem changes boxes needed for one item. Reducing below what is
// already assembled is refused; recalculation shrinks outstanding demand and
// trims reservations the order no longer needs.
func UpdateOrderItem(ctx context.Context, orderId int, productId int, boxesNeeded int) (*models.OrderItem, error) {
	if boxesNeeded <= 0 {
		return nil, utils.NewValidationError("boxes needed must be positive, got %d", boxesNeeded)
	}

	var item *models.OrderItem
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := models.FetchOrderForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusShipped {
			return utils.NewBusinessRuleError("order #%d is shipped and can no longer change", order.OrderNumber)
		}

		item, err = models.FetchOrderItemForUpdate(tx, orderId, productId)
		if err != nil {
			return err
		}
		if boxesNeeded < item.BoxesAssembled {
			return utils.NewBusinessRuleError(
				"cannot reduce to %d boxes: %d are already assembled", boxesNeeded, item.BoxesAssembled)
		}

		if err := tx.Model(item).Update("boxes_needed", boxesNeeded).Error; err != nil {
			return err
		}
		item.BoxesNeeded = boxesNeeded

		if order.Status == models.OrderStatusInProduction {
			return RecalculateManufacturingOrder(tx, orderId, productId)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// RemoveOrderItem deletes the item together with its manufacturing order and
// requirements, then drops or trims the order's reservations for the elements
// the removed product needed.
func RemoveOrderItem(ctx context.Context, orderId int, productId int) error {
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := models.FetchOrderForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusShipped {
			return utils.NewBusinessRuleError("order #%d is shipped and can no longer change", order.OrderNumber)
		}

		item, err := models.FetchOrderItemForUpdate(tx, orderId, productId)
		if err != nil {
			return err
		}

		product, err := fetchProductWithElements(tx, productId)
		if err != nil {
			return err
		}

		var manufacturingOrder models.ManufacturingOrder
		err = tx.Where("order_id = ? AND product_id = ?", orderId, productId).
			First(&manufacturingOrder).Error
		if err == nil {
			if err := tx.Where("manufacturing_order_id = ?", manufacturingOrder.ID).
				Delete(&models.MaterialRequirement{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&manufacturingOrder).Error; err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		if err := tx.Delete(item).Error; err != nil {
			return err
		}

		elementIds := make([]int, 0, len(product.Elements))
		for _, productElement := range product.Elements {
			elementIds = append(elementIds, productElement.ElementId)
		}
		return trimAllocationsToNeed(tx, orderId, elementIds)
	})
}

// DeleteOrder removes an unshipped order with its items, manufacturing
// ledger and reservations. Inventory and the audit logs stay as they are.
func DeleteOrder(ctx context.Context, orderId int) error {
	db := config.GetDB()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := models.FetchOrderForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		if order.Status == models.OrderStatusShipped {
			return utils.NewBusinessRuleError("order #%d is shipped and cannot be deleted", order.OrderNumber)
		}

		manufacturingOrders, err := models.GetManufacturingOrders(tx, orderId)
		if err != nil {
			return err
		}
		for _, manufacturingOrder := range manufacturingOrders {
			if err := tx.Where("manufacturing_order_id = ?", manufacturingOrder.ID).
				Delete(&models.MaterialRequirement{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("order_id = ?", orderId).Delete(&models.ManufacturingOrder{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderId).Delete(&models.InventoryAllocation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("order_id = ?", orderId).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
}

// GetOrder loads an order with its items and manufacturing ledger,
// regenerating the ledger for in_production orders found without one.
func GetOrder(ctx context.Context, orderId int) (*models.Order, error) {
	db := config.GetDB()
	var order *models.Order
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		order, err = models.FetchOrderForUpdate(tx, orderId)
		if err != nil {
			return err
		}
		return ensureManufacturingOrders(tx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func GetOrders(ctx context.Context) ([]*models.Order, error) {
	return utils.FetchAllModels[models.Order](ctx, "Items")
}
