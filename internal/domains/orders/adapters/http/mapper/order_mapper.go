package mapper

import (
	"time"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/application/types"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// Order is the JSON shape served by the orders handlers.
type Order struct {
	ID        int64      `json:"id"`
	ProductID int64      `json:"productId"`
	Quantity  int64      `json:"quantity"`
	Date      *time.Time `json:"date"`
	Status    string     `json:"status"`
	Complete  bool       `json:"complete"`
}

// NewOrder is the create request body.
type NewOrder struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// EditedOrder is the patch request body. Omitted fields reset to their zero values.
type EditedOrder struct {
	Status   string `json:"status"`
	Complete bool   `json:"complete"`
	Quantity int64  `json:"quantity"`
}

// ToNewOrderInput converts a create body into the application input.
func ToNewOrderInput(body NewOrder) types.NewOrderInput {
	return types.NewOrderInput{ProductID: body.ProductID, Quantity: body.Quantity}
}

// ToEditOrderInput converts a patch body into the application input.
func ToEditOrderInput(body EditedOrder) types.EditOrderInput {
	return types.EditOrderInput{Status: body.Status, Complete: body.Complete, Quantity: body.Quantity}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:        order.ID,
		ProductID: order.ProductID,
		Quantity:  order.Quantity,
		Status:    string(order.Status),
		Complete:  order.Complete,
	}
	if order.Date != nil {
		date := *order.Date
		out.Date = &date
	}
	return out
}

// FromDomainOrders keeps store order and never returns nil, so empty lists encode as [].
func FromDomainOrders(orders []*domain.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, order := range orders {
		out = append(out, FromDomainOrder(order))
	}
	return out
}
