package workflow_test

import (
	"testing"

	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/workflow"
	"github.com/shopspring/decimal"
)

func TestElementQtyForUnits_SingleColor(t *testing.T) {
	pe := models.ProductElement{QuantityNeeded: 3}
	element := models.Element{IsDualColor: false}
	if got := workflow.ElementQtyForUnits(pe, element, 5); got != 15 {
		t.Fatalf("single color: want 15 pieces, got %d", got)
	}
}

func TestElementQtyForUnits_DualColorRoundsUp(t *testing.T) {
	pe := models.ProductElement{QuantityNeeded: 3}
	element := models.Element{IsDualColor: true}
	// 3 * 5 = 15 halves -> 8 physical pieces
	if got := workflow.ElementQtyForUnits(pe, element, 5); got != 8 {
		t.Fatalf("dual color: want 8 pieces, got %d", got)
	}
	pe.QuantityNeeded = 2
	// even raw count needs no rounding
	if got := workflow.ElementQtyForUnits(pe, element, 5); got != 5 {
		t.Fatalf("dual color even: want 5 pieces, got %d", got)
	}
}

func TestMaterialAmountForElement_Units(t *testing.T) {
	element := models.Element{WeightGrams: decimal.NewFromInt(5)}

	grams := workflow.MaterialAmountForElement(element, 40, models.RawMaterialUnitGram)
	if !grams.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("grams: want 200, got %s", grams)
	}

	kg := workflow.MaterialAmountForElement(element, 40, models.RawMaterialUnitKilogram)
	if !kg.Equal(decimal.NewFromFloat(0.2)) {
		t.Fatalf("kilograms: want 0.2, got %s", kg)
	}
}
