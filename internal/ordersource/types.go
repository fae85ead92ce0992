package ordersource

import (
	"context"
	"time"
)

// Status is the coarse whole-order status tracked by the order service.
// The kitchen core derives its finer-grained view from these plus its own
// per-item overlay.
type Status string

const (
	StatusPlaced    Status = "placed"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusServed    Status = "served"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status ends an order's kitchen lifecycle.
func (s Status) Terminal() bool {
	return s == StatusServed || s == StatusCompleted || s == StatusCancelled
}

// Writable reports whether the kitchen is allowed to write this status back
// to the order service.
func (s Status) Writable() bool {
	switch s {
	case StatusPreparing, StatusReady, StatusServed, StatusCancelled:
		return true
	}
	return false
}

// Line is one dish line on a raw order. Some upstream writers populate
// DishName instead of Name; the adapter accepts either.
type Line struct {
	Name     string  `json:"name"`
	DishName string  `json:"dishName,omitempty"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Note     string  `json:"note,omitempty"`
}

// Order is the raw record as the order service returns it.
type Order struct {
	ID              string     `json:"id"`
	OrderNumber     string     `json:"orderNumber"`
	TableNumber     string     `json:"tableNumber,omitempty"`
	CustomerName    string     `json:"customerName,omitempty"`
	Type            string     `json:"type"`
	Items           []Line     `json:"items"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	StatusUpdatedAt *time.Time `json:"statusUpdatedAt,omitempty"`
}

// Source is the order service boundary the kitchen core consumes. All durable
// order state lives behind it; the core holds only caches.
type Source interface {
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) error
}
