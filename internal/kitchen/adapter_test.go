package kitchen

import (
	"reflect"
	"testing"
	"time"

	"brigade/internal/ordersource"
	"brigade/internal/station"
)

func rawOrder(status ordersource.Status, age time.Duration, items ...ordersource.Line) ordersource.Order {
	return ordersource.Order{
		ID:          "ORD-1",
		OrderNumber: "#4521",
		TableNumber: "T-01",
		Type:        "dine-in",
		Items:       items,
		Status:      status,
		CreatedAt:   time.Now().Add(-age),
	}
}

func TestAdapt_PlacedOrder(t *testing.T) {
	raw := rawOrder(ordersource.StatusPlaced, time.Minute,
		ordersource.Line{Name: "Butter Chicken", Quantity: 2})

	order := Adapt(raw, NewOverlay(), time.Now())

	if order.Status != OrderNew {
		t.Errorf("order.Status = %q, want %q", order.Status, OrderNew)
	}
	if order.Priority != PriorityNormal {
		t.Errorf("order.Priority = %q, want %q", order.Priority, PriorityNormal)
	}
	if len(order.Items) != 1 {
		t.Fatalf("len(order.Items) = %d, want 1", len(order.Items))
	}

	item := order.Items[0]
	if item.ID != "ORD-1-0" {
		t.Errorf("item.ID = %q, want %q", item.ID, "ORD-1-0")
	}
	if item.Station != station.Curry {
		t.Errorf("item.Station = %q, want %q", item.Station, station.Curry)
	}
	if item.Status != ItemPending {
		t.Errorf("item.Status = %q, want %q", item.Status, ItemPending)
	}
	if item.Quantity != 2 {
		t.Errorf("item.Quantity = %d, want 2", item.Quantity)
	}
	if order.TotalPrepSeconds != 2*DefaultPrepSeconds {
		t.Errorf("order.TotalPrepSeconds = %d, want %d", order.TotalPrepSeconds, 2*DefaultPrepSeconds)
	}
}

func TestAdapt_Idempotent(t *testing.T) {
	raw := rawOrder(ordersource.StatusPreparing, 3*time.Minute,
		ordersource.Line{Name: "Paneer Tikka", Quantity: 1},
		ordersource.Line{Name: "Jeera Rice", Quantity: 2})
	overlay := NewOverlay()
	started := time.Now().Add(-time.Minute)
	overlay.Set("ORD-1-0", ItemPreparing, &started)

	now := time.Now()
	first := Adapt(raw, overlay, now)
	second := Adapt(raw, overlay, now)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Adapt is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestAdapt_StatusMap(t *testing.T) {
	cases := []struct {
		raw  ordersource.Status
		want OrderStatus
	}{
		{ordersource.StatusPlaced, OrderNew},
		{ordersource.StatusPreparing, OrderCooking},
		{ordersource.StatusReady, OrderReady},
		{ordersource.StatusServed, OrderDelivered},
		{ordersource.StatusCompleted, OrderDelivered},
		{ordersource.StatusCancelled, OrderDelivered},
	}
	for _, tc := range cases {
		raw := rawOrder(tc.raw, time.Minute, ordersource.Line{Name: "Dal Makhani", Quantity: 1})
		if got := Adapt(raw, NewOverlay(), time.Now()).Status; got != tc.want {
			t.Errorf("Adapt(status=%q).Status = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestAdapt_UrgentPriority(t *testing.T) {
	raw := rawOrder(ordersource.StatusPlaced, 6*time.Minute,
		ordersource.Line{Name: "Veg Biryani", Quantity: 1})

	order := Adapt(raw, NewOverlay(), time.Now())
	if order.Priority != PriorityUrgent {
		t.Errorf("old NEW order priority = %q, want %q", order.Priority, PriorityUrgent)
	}

	// Age alone does not escalate an order already in production.
	raw.Status = ordersource.StatusPreparing
	order = Adapt(raw, NewOverlay(), time.Now())
	if order.Priority != PriorityNormal {
		t.Errorf("old COOKING order priority = %q, want %q", order.Priority, PriorityNormal)
	}
}

func TestAdapt_ReadyWithoutOverlay(t *testing.T) {
	// The order flipped to ready externally before this terminal recorded
	// any item state: the item must derive as completed.
	raw := rawOrder(ordersource.StatusReady, 10*time.Minute,
		ordersource.Line{Name: "Masala Dosa", Quantity: 1})

	order := Adapt(raw, NewOverlay(), time.Now())
	if order.Status != OrderReady {
		t.Errorf("order.Status = %q, want %q", order.Status, OrderReady)
	}
	if order.Items[0].Status != ItemCompleted {
		t.Errorf("item.Status = %q, want %q", order.Items[0].Status, ItemCompleted)
	}
}

func TestAdapt_CookingWithoutOverlay(t *testing.T) {
	raw := rawOrder(ordersource.StatusPreparing, 4*time.Minute,
		ordersource.Line{Name: "Tandoori Chicken", Quantity: 1})

	now := time.Now()
	order := Adapt(raw, NewOverlay(), now)

	item := order.Items[0]
	if item.Status != ItemPreparing {
		t.Errorf("item.Status = %q, want %q", item.Status, ItemPreparing)
	}
	if item.StartedAt == nil || !item.StartedAt.Equal(now) {
		t.Errorf("item.StartedAt = %v, want %v (exact start unknown)", item.StartedAt, now)
	}
}

func TestAdapt_OverlayWins(t *testing.T) {
	raw := rawOrder(ordersource.StatusPreparing, 4*time.Minute,
		ordersource.Line{Name: "Seekh Kebab", Quantity: 1},
		ordersource.Line{Name: "Butter Naan", Quantity: 2})

	overlay := NewOverlay()
	overlay.Set("ORD-1-0", ItemCompleted, nil)

	order := Adapt(raw, overlay, time.Now())
	if order.Items[0].Status != ItemCompleted {
		t.Errorf("item 0 status = %q, want overlay's %q", order.Items[0].Status, ItemCompleted)
	}
	if order.Items[1].Status != ItemPreparing {
		t.Errorf("item 1 status = %q, want derived %q", order.Items[1].Status, ItemPreparing)
	}
}

func TestAdapt_MalformedLineDefaults(t *testing.T) {
	raw := rawOrder(ordersource.StatusPlaced, time.Minute,
		ordersource.Line{Quantity: 0},
		ordersource.Line{DishName: "Mango Lassi", Quantity: 2})

	order := Adapt(raw, NewOverlay(), time.Now())
	if len(order.Items) != 2 {
		t.Fatalf("len(order.Items) = %d, want 2; malformed lines must not drop an order", len(order.Items))
	}
	if order.Items[0].Name != "Unknown Item" {
		t.Errorf("defaulted name = %q, want %q", order.Items[0].Name, "Unknown Item")
	}
	if order.Items[0].Quantity != 1 {
		t.Errorf("defaulted quantity = %d, want 1", order.Items[0].Quantity)
	}
	if order.Items[1].Name != "Mango Lassi" {
		t.Errorf("dishName fallback = %q, want %q", order.Items[1].Name, "Mango Lassi")
	}
}

func TestAdapt_KindAndLabel(t *testing.T) {
	raw := rawOrder(ordersource.StatusPlaced, time.Minute, ordersource.Line{Name: "Chicken 65", Quantity: 1})
	if got := Adapt(raw, NewOverlay(), time.Now()).Kind; got != KindDineIn {
		t.Errorf("dine-in kind = %q, want %q", got, KindDineIn)
	}

	raw.Type = "takeaway"
	raw.TableNumber = ""
	raw.CustomerName = "Asha"
	order := Adapt(raw, NewOverlay(), time.Now())
	if order.Kind != KindParcel {
		t.Errorf("takeaway kind = %q, want %q", order.Kind, KindParcel)
	}
	if order.Label != "Asha" {
		t.Errorf("label = %q, want customer name fallback", order.Label)
	}
}

func TestAdapt_GuestCount(t *testing.T) {
	cases := []struct {
		lines int
		want  int
	}{
		{0, 1},
		{1, 1},
		{2, 1},
		{3, 2},
		{6, 3},
	}
	for _, tc := range cases {
		items := make([]ordersource.Line, tc.lines)
		for i := range items {
			items[i] = ordersource.Line{Name: "Green Salad", Quantity: 1}
		}
		raw := rawOrder(ordersource.StatusPlaced, time.Minute, items...)
		if got := Adapt(raw, NewOverlay(), time.Now()).GuestCount; got != tc.want {
			t.Errorf("GuestCount with %d lines = %d, want %d", tc.lines, got, tc.want)
		}
	}
}
