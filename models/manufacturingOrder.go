package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ManufacturingOrder: quantity of product units still to manufacture for one
// order, one row per (order, product).
type ManufacturingOrder struct {
	ID             int                      `gorm:"primary_key" json:"id"`
	OrderId        int                      `gorm:"index;not null;uniqueIndex:idx_order_product_mfg" json:"order_id"`
	ProductId      int                      `gorm:"index;not null;uniqueIndex:idx_order_product_mfg" json:"product_id"`
	QuantityToMake int                      `gorm:"not null" json:"quantity_to_make"`
	Status         ManufacturingOrderStatus `gorm:"size:20;not null;default:in_progress" json:"status"`
	Requirements   []MaterialRequirement    `gorm:"foreignKey:ManufacturingOrderId" json:"requirements"`
	CreatedAt      time.Time                `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time                `gorm:"autoUpdateTime" json:"updated_at"`
}

// MaterialRequirement: one element's needed vs produced count within a
// manufacturing order.
type MaterialRequirement struct {
	ID                   int             `gorm:"primary_key" json:"id"`
	ManufacturingOrderId int             `gorm:"index;not null;uniqueIndex:idx_mfg_element" json:"manufacturing_order_id"`
	ElementId            int             `gorm:"index;not null;uniqueIndex:idx_mfg_element" json:"element_id"`
	QuantityNeeded       int             `gorm:"not null" json:"quantity_needed"`
	QuantityProduced     int             `gorm:"not null;default:0" json:"quantity_produced"`
	TotalWeightGrams     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_weight_grams"`
	CreatedAt            time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (req MaterialRequirement) Remaining() int {
	remaining := req.QuantityNeeded - req.QuantityProduced
	if remaining < 0 {
		return 0
	}
	return remaining
}

func GetManufacturingOrders(tx *gorm.DB, orderId int) ([]ManufacturingOrder, error) {
	var orders []ManufacturingOrder
	err := tx.Where("order_id = ?", orderId).Order("id").
		Preload("Requirements").
		Find(&orders).Error
	return orders, err
}

// RequirementsForElement returns every requirement row the order carries for
// one element, oldest manufacturing order first. Production fills them in this
// order.
func RequirementsForElement(tx *gorm.DB, orderId int, elementId int) ([]MaterialRequirement, error) {
	var requirements []MaterialRequirement
	err := tx.Joins("JOIN manufacturing_orders ON manufacturing_orders.id = material_requirements.manufacturing_order_id").
		Where("manufacturing_orders.order_id = ? AND material_requirements.element_id = ?", orderId, elementId).
		Order("material_requirements.manufacturing_order_id, material_requirements.id").
		Find(&requirements).Error
	return requirements, err
}

// SumElementNeed totals quantity_needed for one element across all of the
// order's manufacturing orders.
func SumElementNeed(tx *gorm.DB, orderId int, elementId int) (int, error) {
	var total int
	err := tx.Model(&MaterialRequirement{}).
		Joins("JOIN manufacturing_orders ON manufacturing_orders.id = material_requirements.manufacturing_order_id").
		Where("manufacturing_orders.order_id = ? AND material_requirements.element_id = ?", orderId, elementId).
		Select("COALESCE(SUM(quantity_needed), 0)").
		Scan(&total).Error
	return total, err
}
