package models

import (
	"context"
	"time"

	"github.com/elionshate/productionapp-sub000/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Order struct {
	ID          int         `gorm:"primary_key" json:"id"`
	OrderNumber int         `gorm:"uniqueIndex;not null" json:"order_number"`
	ClientName  string      `gorm:"size:100;not null" json:"client_name"`
	ClientPhone string      `gorm:"size:30" json:"client_phone"`
	Status      OrderStatus `gorm:"size:20;not null;default:pending" json:"status"`
	Notes       string      `gorm:"type:text" json:"notes"`
	Items       []OrderItem `gorm:"foreignKey:OrderId" json:"items"`
	CreatedAt   time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
	ShippedAt   *time.Time  `json:"shipped_at"`
}

// OrderItem: boxes of one product on one order. BoxesAssembled can never pass
// BoxesNeeded.
type OrderItem struct {
	ID             int       `gorm:"primary_key" json:"id"`
	OrderId        int       `gorm:"index;not null;uniqueIndex:idx_order_product_item" json:"order_id"`
	ProductId      int       `gorm:"index;not null;uniqueIndex:idx_order_product_item" json:"product_id"`
	BoxesNeeded    int       `gorm:"not null" json:"boxes_needed"`
	BoxesAssembled int       `gorm:"not null;default:0" json:"boxes_assembled"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (item OrderItem) BoxesStillNeeded() int {
	remaining := item.BoxesNeeded - item.BoxesAssembled
	if remaining < 0 {
		return 0
	}
	return remaining
}

type NewOrder struct {
	ClientName  string         `json:"client_name" binding:"required"`
	ClientPhone string         `json:"client_phone"`
	Status      OrderStatus    `json:"status"`
	Notes       string         `json:"notes"`
	Items       []NewOrderItem `json:"items"`
}

type NewOrderItem struct {
	ProductId   int `json:"product_id" binding:"required"`
	BoxesNeeded int `json:"boxes_needed" binding:"required,gt=0"`
}

func (input *NewOrder) Validate(ctx context.Context) error {
	if input.ClientName == "" {
		return utils.NewValidationError("client name is required")
	}
	if input.ClientPhone != "" {
		if err := utils.ValidatePhoneNumber(input.ClientPhone, utils.CountryCode); err != nil {
			return utils.NewValidationError("client phone is not valid: %v", err)
		}
	}
	if input.Status != "" && !input.Status.IsValid() {
		return utils.NewValidationError("unknown order status %q", input.Status)
	}
	seen := make(map[int]bool)
	for _, item := range input.Items {
		if item.BoxesNeeded <= 0 {
			return utils.NewValidationError("boxes needed must be positive, got %d", item.BoxesNeeded)
		}
		if seen[item.ProductId] {
			return utils.NewValidationError("product %d is listed twice", item.ProductId)
		}
		seen[item.ProductId] = true
		if err := utils.ValidateResourceId[Product](ctx, item.ProductId); err != nil {
			return utils.NewNotFoundError("product", "product %d not found", item.ProductId)
		}
	}
	return nil
}

// NextOrderNumber assigns max(order_number)+1 inside the creating transaction
// so concurrent creates cannot collide.
func NextOrderNumber(tx *gorm.DB) (int, error) {
	var current int
	err := tx.Model(&Order{}).
		Select("COALESCE(MAX(order_number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

// FetchOrderForUpdate locks the order row for the rest of the transaction and
// loads its items fresh, never reusing a snapshot taken before the transaction
// began.
func FetchOrderForUpdate(tx *gorm.DB, orderId int) (*Order, error) {
	order, err := utils.FetchModelForUpdate[Order](tx, orderId)
	if err != nil {
		return nil, utils.NewNotFoundError("order", "order %d not found", orderId)
	}
	if err := tx.Where("order_id = ?", orderId).Order("id").Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FetchOrderItemForUpdate re-reads the (order, product) item inside the
// transaction with a row lock; two assembly calls for the same product cannot
// both see the stale pre-write count.
func FetchOrderItemForUpdate(tx *gorm.DB, orderId int, productId int) (*OrderItem, error) {
	var item OrderItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND product_id = ?", orderId, productId).
		First(&item).Error
	if err != nil {
		return nil, utils.NewNotFoundError("order item", "order %d has no item for product %d", orderId, productId)
	}
	return &item, nil
}
