package workflow_test

import (
	"context"
	"testing"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/workflow"
	"github.com/shopspring/decimal"
)

// Moving an order into production must expand its items into manufacturing
// orders with per-element requirements and total weights.
func TestMoveToProduction_GeneratesManufacturingOrders(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	element, product := singleElementProduct(t, ctx, 1000)

	order := mustCreateOrder(t, ctx, models.OrderStatusPending,
		models.NewOrderItem{ProductId: product.ID, BoxesNeeded: 10})

	updated, err := workflow.UpdateOrderStatus(ctx, order.ID, models.OrderStatusInProduction)
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if updated.Status != models.OrderStatusInProduction {
		t.Fatalf("want status in_production, got %s", updated.Status)
	}

	manufacturingOrders, err := models.GetManufacturingOrders(config.GetDB(), order.ID)
	if err != nil {
		t.Fatalf("GetManufacturingOrders: %v", err)
	}
	if len(manufacturingOrders) != 1 {
		t.Fatalf("want 1 manufacturing order, got %d", len(manufacturingOrders))
	}
	mfg := manufacturingOrders[0]
	if mfg.QuantityToMake != 40 {
		t.Fatalf("want quantityToMake 40 (10 boxes * 4 units), got %d", mfg.QuantityToMake)
	}
	if len(mfg.Requirements) != 1 {
		t.Fatalf("want 1 requirement, got %d", len(mfg.Requirements))
	}
	req := mfg.Requirements[0]
	if req.ElementId != element.ID || req.QuantityNeeded != 40 {
		t.Fatalf("want 40 of element %d, got %d of element %d",
			element.ID, req.QuantityNeeded, req.ElementId)
	}
	if !req.TotalWeightGrams.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("want totalWeightGrams 200, got %s", req.TotalWeightGrams)
	}
}

// Re-running the transition must not duplicate manufacturing orders, and an
// order with enough stock can be created directly in production.
func TestCreateOrderInProduction_Generation(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	_, product := singleElementProduct(t, ctx, 1000)

	order := mustCreateOrder(t, ctx, models.OrderStatusInProduction,
		models.NewOrderItem{ProductId: product.ID, BoxesNeeded: 3})
	if order.Status != models.OrderStatusInProduction {
		t.Fatalf("want in_production, got %s", order.Status)
	}

	// fetching the order self-heals missing manufacturing orders but must
	// not duplicate existing ones
	if _, err := workflow.GetOrder(ctx, order.ID); err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	manufacturingOrders, err := models.GetManufacturingOrders(config.GetDB(), order.ID)
	if err != nil {
		t.Fatalf("GetManufacturingOrders: %v", err)
	}
	if len(manufacturingOrders) != 1 {
		t.Fatalf("want 1 manufacturing order, got %d", len(manufacturingOrders))
	}
	if manufacturingOrders[0].QuantityToMake != 12 {
		t.Fatalf("want quantityToMake 12, got %d", manufacturingOrders[0].QuantityToMake)
	}
}

// Creating an order as in_production without enough raw material silently
// downgrades it to pending and records the shortage in the notes.
func TestCreateOrderInProduction_InsufficientMaterialDowngrades(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	_, product := singleElementProduct(t, ctx, 10) // 10g on hand, 200g needed

	order := mustCreateOrder(t, ctx, models.OrderStatusInProduction,
		models.NewOrderItem{ProductId: product.ID, BoxesNeeded: 10})
	if order.Status != models.OrderStatusPending {
		t.Fatalf("want downgrade to pending, got %s", order.Status)
	}
	if order.Notes == "" {
		t.Fatal("want shortage note on downgraded order, got empty notes")
	}

	manufacturingOrders, err := models.GetManufacturingOrders(config.GetDB(), order.ID)
	if err != nil {
		t.Fatalf("GetManufacturingOrders: %v", err)
	}
	if len(manufacturingOrders) != 0 {
		t.Fatalf("pending order must have no manufacturing orders, got %d", len(manufacturingOrders))
	}
}

// Shrinking an item recomputes quantityToMake from the boxes still missing.
func TestUpdateOrderItem_RecalculatesManufacturing(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	element, product := singleElementProduct(t, ctx, 1000)

	order := mustCreateOrder(t, ctx, models.OrderStatusInProduction,
		models.NewOrderItem{ProductId: product.ID, BoxesNeeded: 10})

	if _, err := workflow.UpdateOrderItem(ctx, order.ID, product.ID, 5); err != nil {
		t.Fatalf("UpdateOrderItem: %v", err)
	}

	manufacturingOrders, err := models.GetManufacturingOrders(config.GetDB(), order.ID)
	if err != nil {
		t.Fatalf("GetManufacturingOrders: %v", err)
	}
	if len(manufacturingOrders) != 1 {
		t.Fatalf("want 1 manufacturing order, got %d", len(manufacturingOrders))
	}
	if manufacturingOrders[0].QuantityToMake != 20 {
		t.Fatalf("want quantityToMake 20 after shrink, got %d", manufacturingOrders[0].QuantityToMake)
	}
	need, err := models.SumElementNeed(config.GetDB(), order.ID, element.ID)
	if err != nil {
		t.Fatalf("SumElementNeed: %v", err)
	}
	if need != 20 {
		t.Fatalf("want element need 20 after shrink, got %d", need)
	}
}

// An item cannot shrink below what is already assembled.
func TestUpdateOrderItem_BelowAssembledRejected(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	element, product := singleElementProduct(t, ctx, 1000)
	order := mustCreateOrder(t, ctx, models.OrderStatusInProduction,
		models.NewOrderItem{ProductId: product.ID, BoxesNeeded: 10})

	seedInventory(t, ctx, element.ID, 40)
	if _, err := workflow.RecordAssembly(ctx, order.ID, product.ID, 4); err != nil {
		t.Fatalf("RecordAssembly: %v", err)
	}

	if _, err := workflow.UpdateOrderItem(ctx, order.ID, product.ID, 3); err == nil {
		t.Fatal("want error shrinking below assembled count, got nil")
	}
}
