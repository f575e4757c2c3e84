package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/workflow"
	"github.com/xuri/excelize/v2"
)

// Exports the raw material shortfalls of every in-production order to an
// xlsx workbook, one row per (order, material) shortage.
func main() {
	output := flag.String("out", "shortage-report.xlsx", "Output xlsx path")
	flag.Parse()

	config.MustConnectDatabase()
	db := config.GetDB()
	ctx := context.Background()

	var orders []*models.Order
	err := db.WithContext(ctx).
		Where("status = ?", models.OrderStatusInProduction).
		Order("order_number asc").
		Find(&orders).Error
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to list orders: %v\n", err)
		os.Exit(1)
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet("Sheet1"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create sheet: %v\n", err)
		os.Exit(1)
	}

	f.SetCellValue("Sheet1", "A1", "OrderNumber")
	f.SetCellValue("Sheet1", "B1", "Client")
	f.SetCellValue("Sheet1", "C1", "Material")
	f.SetCellValue("Sheet1", "D1", "Unit")
	f.SetCellValue("Sheet1", "E1", "Needed")
	f.SetCellValue("Sheet1", "F1", "Available")
	f.SetCellValue("Sheet1", "G1", "Shortfall")

	row := 2
	for _, order := range orders {
		report, err := workflow.CheckMaterialAvailability(ctx, order.ID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "order %d: %v\n", order.OrderNumber, err)
			os.Exit(1)
		}
		for _, shortage := range report.Shortages {
			f.SetCellValue("Sheet1", "A"+fmt.Sprint(row), order.OrderNumber)
			f.SetCellValue("Sheet1", "B"+fmt.Sprint(row), order.ClientName)
			f.SetCellValue("Sheet1", "C"+fmt.Sprint(row), shortage.Name)
			f.SetCellValue("Sheet1", "D"+fmt.Sprint(row), shortage.Unit)
			f.SetCellValue("Sheet1", "E"+fmt.Sprint(row), shortage.Needed.String())
			f.SetCellValue("Sheet1", "F"+fmt.Sprint(row), shortage.Available.String())
			f.SetCellValue("Sheet1", "G"+fmt.Sprint(row), shortage.Shortfall.String())
			row++
		}
	}

	if err := f.SaveAs(*output); err != nil {
		fmt.Fprintf(os.Stderr, "failed to save %s: %v\n", *output, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d shortage rows to %s\n", row-2, *output)
}
