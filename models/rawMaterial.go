package models

import (
	"context"
	"time"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RawMaterial struct {
	ID        int             `gorm:"primary_key" json:"id"`
	Name      string          `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Unit      string          `gorm:"size:10;not null;default:g" json:"unit"`
	StockQty  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"stock_qty"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// RawMaterialTransaction is the append-only audit log for bulk material stock.
// Rows are only written as part of a committed operation and never edited.
type RawMaterialTransaction struct {
	ID            int             `gorm:"primary_key" json:"id"`
	RawMaterialId *int            `gorm:"index" json:"raw_material_id"`
	ChangeAmount  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"change_amount"`
	Reason        string          `gorm:"size:255;not null" json:"reason"`
	CorrelationId string          `gorm:"size:36;index" json:"correlation_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewRawMaterial struct {
	Name string `json:"name" binding:"required"`
	Unit string `json:"unit" binding:"required"`
}

func (input *NewRawMaterial) validate(ctx context.Context, id int) error {
	if input.Name == "" {
		return utils.NewValidationError("name is required")
	}
	if input.Unit == "" {
		return utils.NewValidationError("unit is required")
	}
	return utils.ValidateUnique[RawMaterial](ctx, "name", input.Name, id)
}

func CreateRawMaterial(ctx context.Context, input *NewRawMaterial) (*RawMaterial, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	material := RawMaterial{
		Name:     input.Name,
		Unit:     input.Unit,
		StockQty: decimal.Zero,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&material).Error; err != nil {
		return nil, err
	}

	return &material, nil
}

func UpdateRawMaterial(ctx context.Context, id int, input *NewRawMaterial) (*RawMaterial, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	material, err := utils.FetchModel[RawMaterial](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("raw material", "raw material %d not found", id)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(material).Updates(map[string]interface{}{
		"Name": input.Name,
		"Unit": input.Unit,
	}).Error
	if err != nil {
		return nil, err
	}

	return material, nil
}

func DeleteRawMaterial(ctx context.Context, id int) (*RawMaterial, error) {

	material, err := utils.FetchModel[RawMaterial](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("raw material", "raw material %d not found", id)
	}

	elementRefs, err := utils.ResourceCountWhere[Element](ctx, "raw_material_id = ?", id)
	if err != nil {
		return nil, err
	}
	boxRefs, err := utils.ResourceCountWhere[Product](ctx, "box_raw_material_id = ?", id)
	if err != nil {
		return nil, err
	}
	if elementRefs+boxRefs > 0 {
		return nil, utils.NewBusinessRuleError("raw material %s is referenced by %d element(s)/product(s) and cannot be deleted", material.Name, elementRefs+boxRefs)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&RawMaterialTransaction{}).Where("raw_material_id = ?", id).
			Update("raw_material_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(material).Error
	})
	if err != nil {
		return nil, err
	}

	return material, nil
}

func GetRawMaterial(ctx context.Context, id int) (*RawMaterial, error) {
	material, err := utils.FetchModel[RawMaterial](ctx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("raw material", "raw material %d not found", id)
	}
	return material, nil
}

func GetRawMaterials(ctx context.Context) ([]*RawMaterial, error) {
	return utils.FetchAllModels[RawMaterial](ctx)
}

// FetchRawMaterialForUpdate re-reads a raw material row inside an open
// transaction with a row lock.
func FetchRawMaterialForUpdate(tx *gorm.DB, id int) (*RawMaterial, error) {
	material, err := utils.FetchModelForUpdate[RawMaterial](tx, id)
	if err != nil {
		return nil, utils.NewNotFoundError("raw material", "raw material %d not found", id)
	}
	return material, nil
}
