package workflow_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/workflow"
	"github.com/shopspring/decimal"
)

// setupTestDB points the engine at a throwaway database file and migrates
// the full schema. Each test gets its own file so tests stay independent.
func setupTestDB(t *testing.T) {
	t.Helper()
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
	if err := config.ConnectDatabase(); err != nil {
		t.Fatalf("ConnectDatabase: %v", err)
	}
	models.MigrateTable()
}

func mustCreateMaterial(t *testing.T, ctx context.Context, name, unit string, stock int64) *models.RawMaterial {
	t.Helper()
	material, err := models.CreateRawMaterial(ctx, &models.NewRawMaterial{Name: name, Unit: unit})
	if err != nil {
		t.Fatalf("CreateRawMaterial(%s): %v", name, err)
	}
	if stock > 0 {
		material, err = workflow.AdjustRawMaterialStock(ctx, material.ID, decimal.NewFromInt(stock), "opening stock")
		if err != nil {
			t.Fatalf("AdjustRawMaterialStock(%s): %v", name, err)
		}
	}
	return material
}

func mustCreateElement(t *testing.T, ctx context.Context, input *models.NewElement) *models.Element {
	t.Helper()
	element, err := models.CreateElement(ctx, input)
	if err != nil {
		t.Fatalf("CreateElement(%s): %v", input.UniqueName, err)
	}
	return element
}

func mustCreateProduct(t *testing.T, ctx context.Context, input *models.NewProduct) *models.Product {
	t.Helper()
	product, err := models.CreateProduct(ctx, input)
	if err != nil {
		t.Fatalf("CreateProduct(%s): %v", input.SerialNumber, err)
	}
	return product
}

func mustCreateOrder(t *testing.T, ctx context.Context, status models.OrderStatus, items ...models.NewOrderItem) *models.Order {
	t.Helper()
	order, err := workflow.CreateOrder(ctx, &models.NewOrder{
		ClientName: "Test Client",
		Status:     status,
		Items:      items,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return order
}

func seedInventory(t *testing.T, ctx context.Context, elementId, amount int) {
	t.Helper()
	if _, err := workflow.AdjustInventory(ctx, elementId, amount, "opening stock"); err != nil {
		t.Fatalf("AdjustInventory(element %d, +%d): %v", elementId, amount, err)
	}
}

func inventoryTotal(t *testing.T, elementId int) int {
	t.Helper()
	var inventory models.Inventory
	err := config.GetDB().Where("element_id = ?", elementId).First(&inventory).Error
	if err != nil {
		t.Fatalf("fetch inventory for element %d: %v", elementId, err)
	}
	return inventory.TotalAmount
}

func orderItem(t *testing.T, orderId, productId int) *models.OrderItem {
	t.Helper()
	var item models.OrderItem
	err := config.GetDB().Where("order_id = ? AND product_id = ?", orderId, productId).First(&item).Error
	if err != nil {
		t.Fatalf("fetch order item (order %d, product %d): %v", orderId, productId, err)
	}
	return &item
}

// singleElementProduct builds the standard fixture: one material in grams,
// one single-color element weighing 5g, one product of 4 units per box
// needing 1 element per unit.
func singleElementProduct(t *testing.T, ctx context.Context, materialStock int64) (*models.Element, *models.Product) {
	t.Helper()
	material := mustCreateMaterial(t, ctx, "PE-granulate", models.RawMaterialUnitGram, materialStock)
	element := mustCreateElement(t, ctx, &models.NewElement{
		UniqueName:    "brick-2x4-red",
		Color:         "red",
		WeightGrams:   decimal.NewFromInt(5),
		RawMaterialId: &material.ID,
	})
	product := mustCreateProduct(t, ctx, &models.NewProduct{
		SerialNumber: "SET-001",
		UnitsPerBox:  4,
		Elements:     []models.NewProductElement{{ElementId: element.ID, QuantityNeeded: 1}},
	})
	return element, product
}
