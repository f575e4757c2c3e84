package handlers

import (
	"net/http"

	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/workflow"
	"github.com/gin-gonic/gin"
)

type recordProductionRequest struct {
	OrderId        int `json:"order_id" binding:"required"`
	ElementId      int `json:"element_id" binding:"required"`
	AmountProduced int `json:"amount_produced" binding:"required,gt=0"`
}

func recordProduction(c *gin.Context) {
	var input recordProductionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := workflow.RecordProduction(c.Request.Context(), input.OrderId, input.ElementId, input.AmountProduced)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type recordAssemblyRequest struct {
	OrderId   int `json:"order_id" binding:"required"`
	ProductId int `json:"product_id" binding:"required"`
	Boxes     int `json:"boxes" binding:"required,gt=0"`
}

func recordAssembly(c *gin.Context) {
	var input recordAssemblyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := workflow.RecordAssembly(c.Request.Context(), input.OrderId, input.ProductId, input.Boxes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func getExcessAssembly(c *gin.Context) {
	options, err := workflow.GetExcessAssembly(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

type recordExcessAssemblyRequest struct {
	ProductId int `json:"product_id" binding:"required"`
	Boxes     int `json:"boxes" binding:"required,gt=0"`
}

func recordExcessAssembly(c *gin.Context) {
	var input recordExcessAssemblyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := workflow.RecordExcessAssembly(c.Request.Context(), input.ProductId, input.Boxes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func listInventory(c *gin.Context) {
	summaries, err := models.GetInventorySummaries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

type adjustInventoryRequest struct {
	ElementId    int    `json:"element_id" binding:"required"`
	ChangeAmount int    `json:"change_amount" binding:"required"`
	Reason       string `json:"reason" binding:"required"`
}

func adjustInventory(c *gin.Context) {
	var input adjustInventoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	inventory, err := workflow.AdjustInventory(c.Request.Context(), input.ElementId, input.ChangeAmount, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventory)
}
