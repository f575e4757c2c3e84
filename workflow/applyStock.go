package workflow

import (
	"context"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/utils"
	"gorm.io/gorm"
)

type ApplyStockResult struct {
	BoxesApplied      int `json:"boxes_applied"`
	NewBoxesAssembled int `json:"new_boxes_assembled"`
	NewStockAmount    int `json:"new_stock_amount"`
}

// ApplyStockToOrder draws finished shelf boxes down onto an order item.
// The manufacturing demand is recomputed in the same transaction: applying
// stock must shrink what is still to be made, not just raise the box count.
func ApplyStockToOrder(ctx context.Context, orderId int, productId int, boxes int) (*ApplyStockResult, error) {
	if boxes <= 0 {
		return nil, utils.NewValidationError("boxes to apply must be positive, got %d", boxes)
	}

	var result ApplyStockResult
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
		remaining := item.BoxesNeeded - item.BoxesAssembled
		if remaining <= 0 {
			return utils.NewBusinessRuleError("order #%d needs no more boxes of product %d", order.OrderNumber, productId)
		}
		if boxes > remaining {
			return utils.NewBusinessRuleError("cannot apply %d boxes: only %d remaining on the order", boxes, remaining)
		}

		stock, err := models.FirstOrCreateProductStock(tx, productId)
		if err != nil {
			return err
		}
		if stock.StockBoxedAmount < boxes {
			return utils.NewBusinessRuleError(
				"cannot apply %d boxes: only %d in stock for product %d", boxes, stock.StockBoxedAmount, productId)
		}

		err = tx.Model(item).Update("boxes_assembled", item.BoxesAssembled+boxes).Error
		if err != nil {
			return err
		}
		err = tx.Model(stock).Update("stock_boxed_amount", stock.StockBoxedAmount-boxes).Error
		if err != nil {
			return err
		}

		if err := RecalculateManufacturingOrder(tx, orderId, productId); err != nil {
			return err
		}

		result = ApplyStockResult{
			BoxesApplied:      boxes,
			NewBoxesAssembled: item.BoxesAssembled + boxes,
			NewStockAmount:    stock.StockBoxedAmount - boxes,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
