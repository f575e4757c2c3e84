package workflow

import (
	"context"
	"fmt"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/utils"
	"gorm.io/gorm"
)

type ExcessAssemblyOption struct {
	ProductId    int    `json:"product_id"`
	SerialNumber string `json:"serial_number"`
	Label        string `json:"label"`
	ExcessBoxes  int    `json:"excess_boxes"`
	// Locked products are reported but not actionable: outstanding order
	// boxes come first.
	Locked bool `json:"locked"`
}

type ExcessAssemblyResult struct {
	StockBoxedAmount int `json:"stock_boxed_amount"`
}

// GetExcessAssembly reports, per product, how many boxes could be assembled
// from inventory that no order has a claim on. Only the slice of inventory
// above the summed reservations counts. A product stays locked while any
// in_production order still has unfinished boxes for it.
func GetExcessAssembly(ctx context.Context) ([]ExcessAssemblyOption, error) {
	db := config.GetDB()
	var options []ExcessAssemblyOption
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var products []models.Product
		if err := tx.Preload("Elements").Order("id").Find(&products).Error; err != nil {
			return err
		}
		for _, product := range products {
			if len(product.Elements) == 0 {
				continue
			}
			excess, err := excessBoxesForProduct(tx, &product)
			if err != nil {
				return err
			}
			locked, err := productHasOutstandingOrders(tx, product.ID)
			if err != nil {
				return err
			}
			options = append(options, ExcessAssemblyOption{
				ProductId:    product.ID,
				SerialNumber: product.SerialNumber,
				Label:        product.Label,
				ExcessBoxes:  excess,
				Locked:       locked,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return options, nil
}

// RecordExcessAssembly assembles boxes for the shelf instead of an order.
// The lock and the excess capacity are re-checked inside the transaction,
// then the deduction runs exactly like order-bound assembly, except the
// result lands in ProductStock.
func RecordExcessAssembly(ctx context.Context, productId int, boxes int) (*ExcessAssemblyResult, error) {
	if boxes <= 0 {
		return nil, utils.NewValidationError("boxes to assemble must be positive, got %d", boxes)
	}

	var result ExcessAssemblyResult
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := fetchProductWithElements(tx, productId)
		if err != nil {
			return err
		}
		if len(product.Elements) == 0 {
			return utils.NewBusinessRuleError("product %s has no elements to assemble", product.SerialNumber)
		}

		locked, err := productHasOutstandingOrders(tx, productId)
		if err != nil {
			return err
		}
		if locked {
			return utils.NewBusinessRuleError(
				"product %s still has unfinished boxes on orders in production; excess assembly is locked",
				product.SerialNumber)
		}

		excess, err := excessBoxesForProduct(tx, product)
		if err != nil {
			return err
		}
		if boxes > excess {
			return utils.NewBusinessRuleError(
				"cannot assemble %d boxes for stock: unreserved inventory allows at most %d", boxes, excess)
		}

		correlationId := utils.CorrelationId(ctx)
		reason := fmt.Sprintf("excess assembly of product %s", product.SerialNumber)

		deductions, err := assemblyDeductions(tx, product, boxes, reason)
		if err != nil {
			return err
		}
		if err := deductElementInventory(tx, deductions, correlationId, true); err != nil {
			return err
		}
		if product.BoxRawMaterialId != nil {
			if err := deductBoxMaterial(tx, *product.BoxRawMaterialId, boxes, reason, correlationId); err != nil {
				return err
			}
		}

		stock, err := models.FirstOrCreateProductStock(tx, productId)
		if err != nil {
			return err
		}
		err = tx.Model(stock).Update("stock_boxed_amount", stock.StockBoxedAmount+boxes).Error
		if err != nil {
			return err
		}
		result = ExcessAssemblyResult{StockBoxedAmount: stock.StockBoxedAmount + boxes}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// excessBoxesForProduct: per element, the inventory above every order's
// reservation, divided by the element's per-box quantity; the product's
// excess is the minimum across its elements.
func excessBoxesForProduct(tx *gorm.DB, product *models.Product) (int, error) {
	excess := -1
	for _, productElement := range product.Elements {
		var element models.Element
		if err := tx.First(&element, productElement.ElementId).Error; err != nil {
			return 0, utils.NewNotFoundError("element", "element %d not found", productElement.ElementId)
		}

		var inventory models.Inventory
		total := 0
		err := tx.Where("element_id = ?", productElement.ElementId).First(&inventory).Error
		if err == nil {
			total = inventory.TotalAmount
		} else if err != gorm.ErrRecordNotFound {
			return 0, err
		}

		allocated, err := models.AllocatedTotal(tx, productElement.ElementId)
		if err != nil {
			return 0, err
		}

		available := total - allocated
		if available < 0 {
			available = 0
		}
		qtyPerBox := ElementQtyForUnits(productElement, element, product.UnitsPerBox)
		if qtyPerBox <= 0 {
			continue
		}
		possible := available / qtyPerBox
		if excess < 0 || possible < excess {
			excess = possible
		}
	}
	if excess < 0 {
		excess = 0
	}
	return excess, nil
}

// productHasOutstandingOrders: any in_production order with unfinished boxes
// of this product blocks excess assembly, globally per product.
func productHasOutstandingOrders(tx *gorm.DB, productId int) (bool, error) {
	var count int64
	err := tx.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_id = ? AND orders.status = ? AND order_items.boxes_assembled < order_items.boxes_needed",
			productId, models.OrderStatusInProduction).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
