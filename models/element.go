package models

import (
	"context"
	"time"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Element struct {
	ID            int             `gorm:"primary_key" json:"id"`
	UniqueName    string          `gorm:"uniqueIndex;size:100;not null" json:"unique_name"`
	Label         string          `gorm:"size:100" json:"label"`
	Color         string          `gorm:"size:50" json:"color"`
	Color2        *string         `gorm:"size:50" json:"color2"`
	IsDualColor   bool            `gorm:"not null;default:false" json:"is_dual_color"`
	Material      string          `gorm:"size:50" json:"material"`
	WeightGrams   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"weight_grams"`
	RawMaterialId *int            `gorm:"index" json:"raw_material_id"`
	ImageUrl      string          `gorm:"size:255" json:"image_url"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewElement struct {
	UniqueName    string          `json:"unique_name" binding:"required"`
	Label         string          `json:"label"`
	Color         string          `json:"color"`
	Color2        *string         `json:"color2"`
	IsDualColor   bool            `json:"is_dual_color"`
	Material      string          `json:"material"`
	WeightGrams   decimal.Decimal `json:"weight_grams"`
	RawMaterialId *int            `json:"raw_material_id"`
	ImageUrl      string          `json:"image_url"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewElement) validate(ctx context.Context, id int) error {
	if input.UniqueName == "" {
		return utils.NewValidationError("unique name is required")
	}
	if input.WeightGrams.IsNegative() {
		return utils.NewValidationError("weight cannot be negative, got %s", input.WeightGrams)
	}
	if err := utils.ValidateUnique[Element](ctx, "unique_name", input.UniqueName, id); err != nil {
		return err
	}
	if input.RawMaterialId != nil {
		if err := utils.ValidateResourceId[RawMaterial](ctx, *input.RawMaterialId); err != nil {
			return utils.NewNotFoundError("raw material", "raw material %d not found", *input.RawMaterialId)
		}
	}
	return nil
}

func CreateElement(ctx context.Context, input *NewElement) (*Element, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	element := Element{
		UniqueName:    input.UniqueName,
		Label:         input.Label,
		Color:         input.Color,
		Color2:        input.Color2,
		IsDualColor:   input.IsDualColor,
		Material:      input.Material,
		WeightGrams:   input.WeightGrams,
		RawMaterialId: input.RawMaterialId,
		ImageUrl:      input.ImageUrl,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&element).Error; err != nil {
			return err
		}
		// every element carries an inventory row from day one
		return tx.Create(&Inventory{ElementId: element.ID, TotalAmount: 0}).Error
	})
	if err != nil {
		return nil, err
	}

	return &element, nil
}

func UpdateElement(ctx context.Context, id int, input *NewElement) (*Element, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	element, err := utils.FetchModel[Element](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("element", "element %d not found", id)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(element).Updates(map[string]interface{}{
		"UniqueName":    input.UniqueName,
		"Label":         input.Label,
		"Color":         input.Color,
		"Color2":        input.Color2,
		"IsDualColor":   input.IsDualColor,
		"Material":      input.Material,
		"WeightGrams":   input.WeightGrams,
		"RawMaterialId": input.RawMaterialId,
		"ImageUrl":      input.ImageUrl,
	}).Error
	if err != nil {
		return nil, err
	}

	return element, nil
}

// DeleteElement refuses while any product still composes the element. The
// audit log survives the delete with a nulled element reference.
func DeleteElement(ctx context.Context, id int) (*Element, error) {

	element, err := utils.FetchModel[Element](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("element", "element %d not found", id)
	}

	refs, err := utils.ResourceCountWhere[ProductElement](ctx, "element_id = ?", id)
	if err != nil {
		return nil, err
	}
	if refs > 0 {
		return nil, utils.NewBusinessRuleError("element %s is used by %d product(s) and cannot be deleted", element.UniqueName, refs)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&InventoryTransaction{}).Where("element_id = ?", id).
			Update("element_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("element_id = ?", id).Delete(&InventoryAllocation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("element_id = ?", id).Delete(&Inventory{}).Error; err != nil {
			return err
		}
		return tx.Delete(element).Error
	})
	if err != nil {
		return nil, err
	}

	return element, nil
}

func GetElement(ctx context.Context, id int) (*Element, error) {
	element, err := utils.FetchModel[Element](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("element", "element %d not found", id)
	}
	return element, nil
}

func GetElements(ctx context.Context) ([]*Element, error) {
	return utils.FetchAllModels[Element](ctx)
}
