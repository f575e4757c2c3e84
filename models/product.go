package models

import (
	"context"
	"time"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/utils"
	"gorm.io/gorm"
)

type Product struct {
	ID               int              `gorm:"primary_key" json:"id"`
	SerialNumber     string           `gorm:"uniqueIndex;size:50;not null" json:"serial_number"`
	Category         string           `gorm:"size:50" json:"category"`
	Label            string           `gorm:"size:100" json:"label"`
	UnitsPerBox      int              `gorm:"not null;default:1" json:"units_per_box"`
	BoxRawMaterialId *int             `gorm:"index" json:"box_raw_material_id"`
	ImageUrl         string           `gorm:"size:255" json:"image_url"`
	Elements         []ProductElement `gorm:"foreignKey:ProductId" json:"elements"`
	CreatedAt        time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProductElement: how many pieces of an element one unit of the product needs.
type ProductElement struct {
	ID             int `gorm:"primary_key" json:"id"`
	ProductId      int `gorm:"index;not null;uniqueIndex:idx_product_element" json:"product_id"`
	ElementId      int `gorm:"index;not null;uniqueIndex:idx_product_element" json:"element_id"`
	QuantityNeeded int `gorm:"not null" json:"quantity_needed"`
}

type NewProduct struct {
	SerialNumber     string              `json:"serial_number" binding:"required"`
	Category         string              `json:"category"`
	Label            string              `json:"label"`
	UnitsPerBox      int                 `json:"units_per_box" binding:"required,gt=0"`
	BoxRawMaterialId *int                `json:"box_raw_material_id"`
	ImageUrl         string              `json:"image_url"`
	Elements         []NewProductElement `json:"elements"`
}

type NewProductElement struct {
	ElementId      int `json:"element_id" binding:"required"`
	QuantityNeeded int `json:"quantity_needed" binding:"required,gt=0"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewProduct) validate(ctx context.Context, id int) error {
	if input.SerialNumber == "" {
		return utils.NewValidationError("serial number is required")
	}
	if input.UnitsPerBox <= 0 {
		return utils.NewValidationError("units per box must be positive, got %d", input.UnitsPerBox)
	}
	if err := utils.ValidateUnique[Product](ctx, "serial_number", input.SerialNumber, id); err != nil {
		return err
	}
	if input.BoxRawMaterialId != nil {
		if err := utils.ValidateResourceId[RawMaterial](ctx, *input.BoxRawMaterialId); err != nil {
			return utils.NewNotFoundError("raw material", "box raw material %d not found", *input.BoxRawMaterialId)
		}
	}
	seen := make(map[int]bool)
	for _, pe := range input.Elements {
		if pe.QuantityNeeded <= 0 {
			return utils.NewValidationError("element quantity must be positive, got %d", pe.QuantityNeeded)
		}
		if seen[pe.ElementId] {
			return utils.NewValidationError("element %d is listed twice", pe.ElementId)
		}
		seen[pe.ElementId] = true
		if err := utils.ValidateResourceId[Element](ctx, pe.ElementId); err != nil {
			return utils.NewNotFoundError("element", "element %d not found", pe.ElementId)
		}
	}
	return nil
}

func mapProductElements(input []NewProductElement, productId int) []ProductElement {
	elements := make([]ProductElement, 0, len(input))
	for _, pe := range input {
		elements = append(elements, ProductElement{
			ProductId:      productId,
			ElementId:      pe.ElementId,
			QuantityNeeded: pe.QuantityNeeded,
		})
	}
	return elements
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	product := Product{
		SerialNumber:     input.SerialNumber,
		Category:         input.Category,
		Label:            input.Label,
		UnitsPerBox:      input.UnitsPerBox,
		BoxRawMaterialId: input.BoxRawMaterialId,
		ImageUrl:         input.ImageUrl,
		Elements:         mapProductElements(input.Elements, 0),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}

	return &product, nil
}

// UpdateProduct replaces the element composition wholesale.
func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	product, err := utils.FetchModel[Product](ctx, id, "Elements")
	if err != nil {
		return nil, utils.NewNotFoundError("product", "product %d not found", id)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(product).Updates(map[string]interface{}{
			"SerialNumber":     input.SerialNumber,
			"Category":         input.Category,
			"Label":            input.Label,
			"UnitsPerBox":      input.UnitsPerBox,
			"BoxRawMaterialId": input.BoxRawMaterialId,
			"ImageUrl":         input.ImageUrl,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&ProductElement{}).Error; err != nil {
			return err
		}
		elements := mapProductElements(input.Elements, id)
		if len(elements) == 0 {
			return nil
		}
		return tx.Create(&elements).Error
	})
	if err != nil {
		return nil, err
	}

	return utils.FetchModel[Product](ctx, id, "Elements")
}

func DeleteProduct(ctx context.Context, id int) (*Product, error) {

	product, err := utils.FetchModel[Product](ctx, id, "Elements")
	if err != nil {
		return nil, utils.NewNotFoundError("product", "product %d not found", id)
	}

	refs, err := utils.ResourceCountWhere[OrderItem](ctx, "product_id = ?", id)
	if err != nil {
		return nil, err
	}
	if refs > 0 {
		return nil, utils.NewBusinessRuleError("product %s appears on %d order item(s) and cannot be deleted", product.SerialNumber, refs)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&ProductElement{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&ProductStock{}).Error; err != nil {
			return err
		}
		return tx.Delete(product).Error
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	product, err := utils.FetchModel[Product](ctx, id, "Elements")
	if err != nil {
		return nil, utils.NewNotFoundError("product", "product %d not found", id)
	}
	return product, nil
}

func GetProducts(ctx context.Context) ([]*Product, error) {
	return utils.FetchAllModels[Product](ctx, "Elements")
}
