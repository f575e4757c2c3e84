package models

type OrderStatus string

const (
	OrderStatusPending      OrderStatus = "pending"
	OrderStatusInProduction OrderStatus = "in_production"
	OrderStatusShipped      OrderStatus = "shipped"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProduction, OrderStatusShipped:
		return true
	}
	return false
}

type ManufacturingOrderStatus string

const (
	ManufacturingOrderStatusInProgress ManufacturingOrderStatus = "in_progress"
	ManufacturingOrderStatusDone       ManufacturingOrderStatus = "done"
)

const (
	RawMaterialUnitGram     = "g"
	RawMaterialUnitKilogram = "kg"
	RawMaterialUnitPiece    = "pcs"
)
