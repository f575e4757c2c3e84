package models

import (
	"log"

	"github.com/elionshate/productionapp-sub000/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&RawMaterial{}, &RawMaterialTransaction{},
		&Element{}, &Product{}, &ProductElement{},
		&Order{}, &OrderItem{},
		&ManufacturingOrder{}, &MaterialRequirement{},
		&Inventory{}, &InventoryTransaction{}, &InventoryAllocation{},
		&ProductStock{},
	)
	if err != nil {
		log.Fatal("Failed to migrate tables. \nError: ", err)
	}
}
