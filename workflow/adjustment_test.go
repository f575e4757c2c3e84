package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/utils"
	"github.com/elionshate/productionapp-sub000/workflow"
	"github.com/shopspring/decimal"
)

func TestAdjustInventory_GuardsBelowZero(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	element, _ := singleElementProduct(t, ctx, 1000)
	seedInventory(t, ctx, element.ID, 10)

	_, err := workflow.AdjustInventory(ctx, element.ID, -11, "miscount")
	var businessErr *utils.BusinessRuleError
	if !errors.As(err, &businessErr) {
		t.Fatalf("want BusinessRuleError driving inventory below zero, got %v", err)
	}
	if got := inventoryTotal(t, element.ID); got != 10 {
		t.Fatalf("inventory must be unchanged after refused adjustment, got %d", got)
	}

	if _, err := workflow.AdjustInventory(ctx, element.ID, -10, "miscount"); err != nil {
		t.Fatalf("adjustment to exactly zero must pass: %v", err)
	}
}

func TestAdjustInventory_RequiresReason(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	element, _ := singleElementProduct(t, ctx, 1000)

	_, err := workflow.AdjustInventory(ctx, element.ID, 5, "")
	var validationErr *utils.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("want ValidationError for empty reason, got %v", err)
	}
}

// Reducing inventory below the reserved sum trims reservations newest order
// first: the higher order number loses its allocation before older orders
// are touched.
func TestAdjustInventory_TrimsNewestAllocationsFirst(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	element, product := singleElementProduct(t, ctx, 1000)
	seedInventory(t, ctx, element.ID, 30)

	first := mustCreateOrder(t, ctx, models.OrderStatusInProduction,
		models.NewOrderItem{ProductId: product.ID, BoxesNeeded: 10})
	second := mustCreateOrder(t, ctx, models.OrderStatusInProduction,
		models.NewOrderItem{ProductId: product.ID, BoxesNeeded: 10})

	if _, err := workflow.AllocateInventoryToOrder(ctx, first.ID, element.ID, 20); err != nil {
		t.Fatalf("allocate to first order: %v", err)
	}
	if _, err := workflow.AllocateInventoryToOrder(ctx, second.ID, element.ID, 10); err != nil {
		t.Fatalf("allocate to second order: %v", err)
	}

	if _, err := workflow.AdjustInventory(ctx, element.ID, -20, "correction"); err != nil {
		t.Fatalf("AdjustInventory: %v", err)
	}

	db := config.GetDB()
	var secondAlloc models.InventoryAllocation
	err := db.Where("order_id = ? AND element_id = ?", second.ID, element.ID).First(&secondAlloc).Error
	if err == nil {
		t.Fatalf("newest order's allocation must be deleted, still has %d", secondAlloc.AmountAllocated)
	}

	var firstAlloc models.InventoryAllocation
	if err := db.Where("order_id = ? AND element_id = ?", first.ID, element.ID).First(&firstAlloc).Error; err != nil {
		t.Fatalf("oldest order's allocation must survive: %v", err)
	}
	if firstAlloc.AmountAllocated != 10 {
		t.Fatalf("want oldest allocation trimmed to 10, got %d", firstAlloc.AmountAllocated)
	}
}

func TestAllocateInventoryToOrder_CapsAtNeedAndFree(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	element, product := singleElementProduct(t, ctx, 1000)
	seedInventory(t, ctx, element.ID, 100)

	order := mustCreateOrder(t, ctx, models.OrderStatusInProduction,
		models.NewOrderItem{ProductId: product.ID, BoxesNeeded: 10})

	// the order needs 40; asking for 100 silently caps
	allocation, err := workflow.AllocateInventoryToOrder(ctx, order.ID, element.ID, 100)
	if err != nil {
		t.Fatalf("AllocateInventoryToOrder: %v", err)
	}
	if allocation.AmountAllocated != 40 {
		t.Fatalf("want allocation capped at 40, got %d", allocation.AmountAllocated)
	}

	// no headroom left
	_, err = workflow.AllocateInventoryToOrder(ctx, order.ID, element.ID, 1)
	var businessErr *utils.BusinessRuleError
	if !errors.As(err, &businessErr) {
		t.Fatalf("want BusinessRuleError with no headroom, got %v", err)
	}
}

func TestAdjustRawMaterialStock_GuardedWithAudit(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	material := mustCreateMaterial(t, ctx, "cardboard", models.RawMaterialUnitPiece, 50)

	_, err := workflow.AdjustRawMaterialStock(ctx, material.ID, decimal.NewFromInt(-60), "stocktake")
	var businessErr *utils.BusinessRuleError
	if !errors.As(err, &businessErr) {
		t.Fatalf("want BusinessRuleError overdrawing raw material, got %v", err)
	}

	adjusted, err := workflow.AdjustRawMaterialStock(ctx, material.ID, decimal.NewFromInt(-20), "stocktake")
	if err != nil {
		t.Fatalf("AdjustRawMaterialStock: %v", err)
	}
	if !adjusted.StockQty.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("want stock 30, got %s", adjusted.StockQty)
	}

	var count int64
	err = config.GetDB().Model(&models.RawMaterialTransaction{}).
		Where("raw_material_id = ?", material.ID).Count(&count).Error
	if err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	// opening stock + stocktake
	if count != 2 {
		t.Fatalf("want 2 audit rows, got %d", count)
	}
}
