package workflow

import (
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/utils"
	"github.com/shopspring/decimal"
)

// ElementQtyForUnits computes how many physical pieces of an element are
// needed to build the given number of product units. A dual-color element is
// manufactured as one piece that yields two color halves, so half as many
// pieces are required, rounded up.
func ElementQtyForUnits(productElement models.ProductElement, element models.Element, units int) int {
	raw := productElement.QuantityNeeded * units
	if element.IsDualColor {
		return utils.CeilDiv(raw, 2)
	}
	return raw
}

// MaterialAmountForElement computes the raw material consumed by
// manufacturing elementQty pieces, expressed in the material's own unit.
// Weights are tracked in grams; kg-denominated materials divide by 1000.
// No rounding here: stored quantities keep full precision.
func MaterialAmountForElement(element models.Element, elementQty int, unit string) decimal.Decimal {
	grams := element.WeightGrams.Mul(decimal.NewFromInt(int64(elementQty)))
	if unit == models.RawMaterialUnitKilogram {
		return grams.Div(decimal.NewFromInt(1000))
	}
	return grams
}
