package workflow

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MaterialShortage struct {
	RawMaterialId int             `json:"raw_material_id"`
	Name          string          `json:"name"`
	Unit          string          `json:"unit"`
	Needed        decimal.Decimal `json:"needed"`
	Available     decimal.Decimal `json:"available"`
	Shortfall     decimal.Decimal `json:"shortfall"`
}

type ShortageReport struct {
	Shortages  []MaterialShortage `json:"shortages"`
	Sufficient bool               `json:"sufficient"`
}

// NoteMessage renders the report as the human-readable note attached to an
// order whose move to production was refused.
func (r ShortageReport) NoteMessage() string {
	if r.Sufficient {
		return ""
	}
	parts := make([]string, 0, len(r.Shortages))
	for _, shortage := range r.Shortages {
		parts = append(parts, fmt.Sprintf("%s needs %s %s, in stock %s %s",
			shortage.Name, shortage.Needed.String(), shortage.Unit,
			shortage.Available.String(), shortage.Unit))
	}
	return "Insufficient raw materials: " + strings.Join(parts, "; ")
}

// CheckMaterialAvailability aggregates the raw material demand of everything
// the order still has to assemble and compares it with current stock.
func CheckMaterialAvailability(ctx context.Context, orderId int) (*ShortageReport, error) {
	db := config.GetDB()
	var report *ShortageReport
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, orderId).Error; err != nil {
			return utils.NewNotFoundError("order", "order %d not found", orderId)
		}
		var err error
		report, err = materialAvailability(tx, orderId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// materialAvailability sums demand per raw material across the order's items.
// Fully assembled items contribute nothing: already-fulfilled demand must not
// block new checks. Quantities are compared at full precision and rounded to
// two decimals only in the report.
func materialAvailability(tx *gorm.DB, orderId int) (*ShortageReport, error) {
	var items []models.OrderItem
	if err := tx.Where("order_id = ?", orderId).Find(&items).Error; err != nil {
		return nil, err
	}

	demand := make(map[int]decimal.Decimal)
	materials := make(map[int]*models.RawMaterial)

	fetchMaterial := func(id int) (*models.RawMaterial, error) {
		if material, ok := materials[id]; ok {
			return material, nil
		}
		var material models.RawMaterial
		if err := tx.First(&material, id).Error; err != nil {
			return nil, utils.NewNotFoundError("raw material", "raw material %d not found", id)
		}
		materials[id] = &material
		return &material, nil
	}

	for _, item := range items {
		boxesStillNeeded := item.BoxesStillNeeded()
		if boxesStillNeeded <= 0 {
			continue
		}

		product, err := fetchProductWithElements(tx, item.ProductId)
		if err != nil {
			return nil, err
		}
		units := boxesStillNeeded * product.UnitsPerBox

		for _, productElement := range product.Elements {
			var element models.Element
			if err := tx.First(&element, productElement.ElementId).Error; err != nil {
				return nil, utils.NewNotFoundError("element", "element %d not found", productElement.ElementId)
			}
			if element.RawMaterialId == nil {
				continue
			}
			material, err := fetchMaterial(*element.RawMaterialId)
			if err != nil {
				return nil, err
			}
			elementQty := ElementQtyForUnits(productElement, element, units)
			amount := MaterialAmountForElement(element, elementQty, material.Unit)
			demand[material.ID] = demand[material.ID].Add(amount)
		}

		// one unit of box material per box
		if product.BoxRawMaterialId != nil {
			if _, err := fetchMaterial(*product.BoxRawMaterialId); err != nil {
				return nil, err
			}
			demand[*product.BoxRawMaterialId] = demand[*product.BoxRawMaterialId].
				Add(decimal.NewFromInt(int64(boxesStillNeeded)))
		}
	}

	report := &ShortageReport{Shortages: []MaterialShortage{}, Sufficient: true}
	for materialId, needed := range demand {
		material := materials[materialId]
		if material.StockQty.GreaterThanOrEqual(needed) {
			continue
		}
		report.Shortages = append(report.Shortages, MaterialShortage{
			RawMaterialId: material.ID,
			Name:          material.Name,
			Unit:          material.Unit,
			Needed:        utils.Round2(needed),
			Available:     utils.Round2(material.StockQty),
			Shortfall:     utils.Round2(needed.Sub(material.StockQty)),
		})
	}
	sort.Slice(report.Shortages, func(i, j int) bool {
		return report.Shortages[i].Name < report.Shortages[j].Name
	})
	report.Sufficient = len(report.Shortages) == 0
	return report, nil
}
