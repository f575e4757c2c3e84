package handlers

import (
	"errors"
	"net/http"

	"github.com/elionshate/productionapp-sub000/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// RegisterRoutes wires the engine operations onto the router. Handlers bind
// and validate payloads, call into models/workflow and translate typed
// errors; no business logic lives here.
func RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	elements := r.Group("/elements")
	{
		elements.POST("", createElement)
		elements.GET("", listElements)
		elements.GET("/:id", getElement)
		elements.PUT("/:id", updateElement)
		elements.DELETE("/:id", deleteElement)
	}

	products := r.Group("/products")
	{
		products.POST("", createProduct)
		products.GET("", listProducts)
		products.GET("/:id", getProduct)
		products.PUT("/:id", updateProduct)
		products.DELETE("/:id", deleteProduct)
	}

	rawMaterials := r.Group("/raw-materials")
	{
		rawMaterials.POST("", createRawMaterial)
		rawMaterials.GET("", listRawMaterials)
		rawMaterials.PUT("/:id", updateRawMaterial)
		rawMaterials.DELETE("/:id", deleteRawMaterial)
		rawMaterials.POST("/:id/adjust", adjustRawMaterialStock)
	}

	orders := r.Group("/orders")
	{
		orders.POST("", createOrder)
		orders.GET("", listOrders)
		orders.GET("/:id", getOrder)
		orders.DELETE("/:id", deleteOrder)
		orders.PATCH("/:id/status", updateOrderStatus)
		orders.GET("/:id/materials", checkMaterialAvailability)
		orders.POST("/:id/items", addOrderItem)
		orders.PATCH("/:id/items/:productId", updateOrderItem)
		orders.DELETE("/:id/items/:productId", removeOrderItem)
		orders.POST("/:id/apply-stock", applyStockToOrder)
		orders.POST("/:id/allocate", allocateInventory)
	}

	r.POST("/production", recordProduction)
	r.POST("/assembly", recordAssembly)
	r.GET("/assembly/excess", getExcessAssembly)
	r.POST("/assembly/excess", recordExcessAssembly)

	inventory := r.Group("/inventory")
	{
		inventory.GET("", listInventory)
		inventory.POST("/adjust", adjustInventory)
	}
}

// respondError maps the engine's error taxonomy onto status codes.
func respondError(c *gin.Context, err error) {
	var validationErr *utils.ValidationError
	var notFoundErr *utils.NotFoundError
	var businessErr *utils.BusinessRuleError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Message})
	case errors.As(err, &businessErr):
		c.JSON(http.StatusConflict, gin.H{"error": businessErr.Message})
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// respondBindError distinguishes field-level validation failures from
// malformed JSON.
func respondBindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
