package main

import (
	"fmt"

	"github.com/elionshate/productionapp-sub000/config"
	"github.com/elionshate/productionapp-sub000/models"
)

func main() {
	config.MustConnectDatabase()
	models.MigrateTable()
	fmt.Println("migrations applied")
}
