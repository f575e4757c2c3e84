package handlers

import (
	"net/http"

	"github.com/elionshate/productionapp-sub000/models"
	"github.com/elionshate/productionapp-sub000/workflow"
	"github.com/gin-gonic/gin"
)

func createOrder(c *gin.Context) {
	var input models.NewOrder
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := workflow.CreateOrder(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func listOrders(c *gin.Context) {
	orders, err := workflow.GetOrders(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func getOrder(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	order, err := workflow.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func deleteOrder(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	if err := workflow.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

type updateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func updateOrderStatus(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input updateOrderStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := workflow.UpdateOrderStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func checkMaterialAvailability(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	report, err := workflow.CheckMaterialAvailability(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func addOrderItem(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input models.NewOrderItem
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := workflow.AddOrderItem(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

type updateOrderItemRequest struct {
	BoxesNeeded int `json:"boxes_needed" binding:"required,gt=0"`
}

func updateOrderItem(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	productId, ok := pathId(c, "productId")
	if !ok {
		return
	}
	var input updateOrderItemRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := workflow.UpdateOrderItem(c.Request.Context(), id, productId, input.BoxesNeeded)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func removeOrderItem(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	productId, ok := pathId(c, "productId")
	if !ok {
		return
	}
	if err := workflow.RemoveOrderItem(c.Request.Context(), id, productId); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_id": id, "product_id": productId})
}

type applyStockRequest struct {
	ProductId int `json:"product_id" binding:"required"`
	Boxes     int `json:"boxes" binding:"required,gt=0"`
}

func applyStockToOrder(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input applyStockRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	result, err := workflow.ApplyStockToOrder(c.Request.Context(), id, input.ProductId, input.Boxes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type allocateInventoryRequest struct {
	ElementId int `json:"element_id" binding:"required"`
	Amount    int `json:"amount" binding:"required,gt=0"`
}

func allocateInventory(c *gin.Context) {
	id, ok := pathId(c, "id")
	if !ok {
		return
	}
	var input allocateInventoryRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}
	allocation, err := workflow.AllocateInventoryToOrder(c.Request.Context(), id, input.ElementId, input.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, allocation)
}
