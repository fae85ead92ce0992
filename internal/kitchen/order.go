package kitchen

import (
	"time"

	"brigade/internal/ordersource"
	"brigade/internal/station"
)

// OrderStatus is the kitchen-side aggregate status of an order.
type OrderStatus string

const (
	OrderNew       OrderStatus = "NEW"
	OrderCooking   OrderStatus = "COOKING"
	OrderReady     OrderStatus = "READY"
	OrderDelivered OrderStatus = "DELIVERED"
)

// ItemStatus is the per-item production status. It only ever advances:
// PENDING -> PREPARING -> COMPLETED.
type ItemStatus string

const (
	ItemPending   ItemStatus = "PENDING"
	ItemPreparing ItemStatus = "PREPARING"
	ItemCompleted ItemStatus = "COMPLETED"
)

// rank orders item statuses by progress so re-derivation can be kept
// monotonic.
func (s ItemStatus) rank() int {
	switch s {
	case ItemPreparing:
		return 1
	case ItemCompleted:
		return 2
	}
	return 0
}

// AtLeast reports whether s is as advanced as other.
func (s ItemStatus) AtLeast(other ItemStatus) bool {
	return s.rank() >= other.rank()
}

// Priority flags an order for the expo line. High is reserved for manual
// escalation; the adapter only ever derives normal and urgent.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// OrderKind distinguishes table service from packed orders.
type OrderKind string

const (
	KindDineIn OrderKind = "DINE_IN"
	KindParcel OrderKind = "PARCEL"
)

// Item is one dish line of a kitchen order.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Station     station.Station `json:"station"`
	Status      ItemStatus      `json:"status"`
	Note        string          `json:"note,omitempty"`
	PrepSeconds int             `json:"prepSeconds"`
	StartedAt   *time.Time      `json:"startedAt,omitempty"`
}

// Order is one order as the kitchen sees it. It is rebuilt from the raw
// order service record on every sync cycle; station code never mutates it
// directly except through the terminal session's transitions.
type Order struct {
	ID               string      `json:"id"`
	Number           string      `json:"number"`
	Label            string      `json:"label"`
	Kind             OrderKind   `json:"kind"`
	GuestCount       int         `json:"guestCount"`
	Items            []Item      `json:"items"`
	Status           OrderStatus `json:"status"`
	Priority         Priority    `json:"priority"`
	CreatedAt        time.Time   `json:"createdAt"`
	TotalPrepSeconds int         `json:"totalPrepSeconds"`
}

// HasStationWork reports whether at least one item routes to the station.
func (o Order) HasStationWork(s station.Station) bool {
	for _, it := range o.Items {
		if it.Station == s {
			return true
		}
	}
	return false
}

// StatusFromRaw maps the order service's coarse status to the kitchen
// aggregate status.
func StatusFromRaw(s ordersource.Status) OrderStatus {
	switch s {
	case ordersource.StatusPreparing:
		return OrderCooking
	case ordersource.StatusReady:
		return OrderReady
	case ordersource.StatusServed, ordersource.StatusCompleted, ordersource.StatusCancelled:
		return OrderDelivered
	}
	return OrderNew
}
