package kitchen

import (
	"fmt"
	"strings"
	"time"

	"brigade/internal/ordersource"
	"brigade/internal/station"
)

// DefaultPrepSeconds is the estimated preparation time assumed for every
// dish line; the order service carries no per-dish timing.
const DefaultPrepSeconds = 300

// urgentAfter is how old a still-unaccepted order may get before the adapter
// escalates its priority.
const urgentAfter = 5 * time.Minute

// ItemID builds the deterministic item identity for a line of an order.
// It must stay stable across re-adaptation or overlay lookups break.
func ItemID(orderID string, index int) string {
	return fmt.Sprintf("%s-%d", orderID, index)
}

// Adapt converts one raw order service record into a kitchen order,
// consulting the overlay for per-item state recorded by this terminal.
// Malformed lines are defaulted rather than rejected; one bad line must
// never drop a whole order from the queue. Given an unchanged raw record and
// overlay, Adapt is idempotent.
func Adapt(raw ordersource.Order, overlay *Overlay, now time.Time) Order {
	status := StatusFromRaw(raw.Status)

	order := Order{
		ID:        raw.ID,
		Number:    raw.OrderNumber,
		Label:     orderLabel(raw),
		Kind:      kindFromRaw(raw.Type),
		Status:    status,
		Priority:  derivePriority(status, raw.CreatedAt, now),
		CreatedAt: raw.CreatedAt,
		Items:     make([]Item, 0, len(raw.Items)),
	}

	for i, line := range raw.Items {
		item := adaptLine(raw.ID, i, line, status, overlay, now)
		order.TotalPrepSeconds += item.Quantity * item.PrepSeconds
		order.Items = append(order.Items, item)
	}

	order.GuestCount = guestCount(len(order.Items))
	return order
}

func adaptLine(orderID string, index int, line ordersource.Line, orderStatus OrderStatus, overlay *Overlay, now time.Time) Item {
	name := line.Name
	if name == "" {
		name = line.DishName
	}
	if name == "" {
		name = "Unknown Item"
	}
	quantity := line.Quantity
	if quantity < 1 {
		quantity = 1
	}

	item := Item{
		ID:          ItemID(orderID, index),
		Name:        name,
		Quantity:    quantity,
		Station:     station.Classify(name),
		Note:        line.Note,
		PrepSeconds: DefaultPrepSeconds,
	}

	if state, ok := overlay.Get(item.ID); ok {
		item.Status = state.Status
		item.StartedAt = state.StartedAt
		return item
	}

	// No local record for this item; fall back to what the whole-order
	// status implies.
	switch orderStatus {
	case OrderReady, OrderDelivered:
		item.Status = ItemCompleted
	case OrderCooking:
		// The order is in production but we never saw this item start,
		// so the best start estimate is now.
		started := now
		item.Status = ItemPreparing
		item.StartedAt = &started
	default:
		item.Status = ItemPending
	}
	return item
}

func orderLabel(raw ordersource.Order) string {
	if raw.TableNumber != "" {
		return raw.TableNumber
	}
	return raw.CustomerName
}

func kindFromRaw(orderType string) OrderKind {
	t := strings.ToLower(orderType)
	if strings.Contains(t, "takeaway") || strings.Contains(t, "parcel") {
		return KindParcel
	}
	return KindDineIn
}

func derivePriority(status OrderStatus, createdAt, now time.Time) Priority {
	if status == OrderNew && now.Sub(createdAt) > urgentAfter {
		return PriorityUrgent
	}
	return PriorityNormal
}

// guestCount estimates covers from the line count: roughly one dish per two
// guests, never below one.
func guestCount(lines int) int {
	n := (lines + 1) / 2
	if n < 1 {
		n = 1
	}
	return n
}
