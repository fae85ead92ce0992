package kitchen

import (
	"testing"
	"time"

	"brigade/internal/station"
)

func viewOrder(id string, status OrderStatus, age time.Duration, items ...Item) Order {
	return Order{
		ID:        id,
		Number:    "#" + id,
		Kind:      KindDineIn,
		Items:     items,
		Status:    status,
		Priority:  PriorityNormal,
		CreatedAt: time.Now().Add(-age),
	}
}

func TestCompose_StationFilter(t *testing.T) {
	working := []Order{
		viewOrder("A", OrderNew, time.Minute,
			Item{ID: "A-0", Name: "Butter Chicken", Quantity: 1, Station: station.Curry, Status: ItemPending}),
		viewOrder("B", OrderNew, time.Minute,
			Item{ID: "B-0", Name: "Paneer Tikka", Quantity: 1, Station: station.Grill, Status: ItemPending}),
		viewOrder("C", OrderCooking, time.Minute,
			Item{ID: "C-0", Name: "Dal Fry", Quantity: 1, Station: station.Curry, Status: ItemPreparing},
			Item{ID: "C-1", Name: "Tandoori Roti", Quantity: 2, Station: station.Grill, Status: ItemPending}),
	}

	lanes := Compose(working, station.Curry, KindFilterAll)
	if len(lanes.New) != 1 || lanes.New[0].ID != "A" {
		t.Errorf("curry NEW lane = %+v, want only order A", lanes.New)
	}
	if len(lanes.Cooking) != 1 || lanes.Cooking[0].ID != "C" {
		t.Errorf("curry COOKING lane = %+v, want only order C", lanes.Cooking)
	}
	if len(lanes.Ready) != 0 {
		t.Errorf("curry READY lane = %+v, want empty", lanes.Ready)
	}
}

func TestCompose_HeadChefSeesAll(t *testing.T) {
	working := []Order{
		viewOrder("A", OrderNew, time.Minute,
			Item{ID: "A-0", Name: "Butter Chicken", Quantity: 1, Station: station.Curry, Status: ItemPending}),
		viewOrder("B", OrderReady, time.Minute,
			Item{ID: "B-0", Name: "Gulab Jamun", Quantity: 4, Station: station.Dessert, Status: ItemCompleted}),
	}

	lanes := Compose(working, station.HeadChef, KindFilterAll)
	if len(lanes.New)+len(lanes.Cooking)+len(lanes.Ready) != 2 {
		t.Errorf("head chef sees %d orders, want 2", len(lanes.New)+len(lanes.Cooking)+len(lanes.Ready))
	}
}

func TestCompose_KindFilter(t *testing.T) {
	dine := viewOrder("A", OrderNew, time.Minute,
		Item{ID: "A-0", Name: "Thali", Quantity: 1, Station: station.Curry, Status: ItemPending})
	parcel := viewOrder("B", OrderNew, time.Minute,
		Item{ID: "B-0", Name: "Veg Biryani", Quantity: 1, Station: station.Rice, Status: ItemPending})
	parcel.Kind = KindParcel

	lanes := Compose([]Order{dine, parcel}, station.HeadChef, string(KindParcel))
	if len(lanes.New) != 1 || lanes.New[0].ID != "B" {
		t.Errorf("PARCEL filter lane = %+v, want only order B", lanes.New)
	}

	lanes = Compose([]Order{dine, parcel}, station.HeadChef, KindFilterAll)
	if len(lanes.New) != 2 {
		t.Errorf("ALL filter sees %d orders, want 2", len(lanes.New))
	}
}

func TestCompose_FIFO(t *testing.T) {
	working := []Order{
		viewOrder("newer", OrderNew, 2*time.Minute,
			Item{ID: "newer-0", Name: "Samosa", Quantity: 2, Station: station.Fry, Status: ItemPending}),
		viewOrder("oldest", OrderNew, 9*time.Minute,
			Item{ID: "oldest-0", Name: "Vada", Quantity: 2, Station: station.Fry, Status: ItemPending}),
		viewOrder("middle", OrderNew, 5*time.Minute,
			Item{ID: "middle-0", Name: "Pakora", Quantity: 1, Station: station.Fry, Status: ItemPending}),
	}

	lanes := Compose(working, station.Fry, KindFilterAll)
	want := []string{"oldest", "middle", "newer"}
	for i, id := range want {
		if lanes.New[i].ID != id {
			t.Fatalf("lane order = %v, want oldest first", idsOf(lanes.New))
		}
	}
}

func idsOf(orders []Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	return ids
}

func TestSummarize(t *testing.T) {
	urgent := viewOrder("A", OrderNew, 6*time.Minute,
		Item{ID: "A-0", Name: "Chai", Quantity: 1, Station: station.Dessert, Status: ItemPending})
	urgent.Priority = PriorityUrgent

	lanes := Lanes{
		New: []Order{urgent},
		Cooking: []Order{viewOrder("B", OrderCooking, time.Minute,
			Item{ID: "B-0", Name: "Kadai Paneer", Quantity: 1, Station: station.Curry, Status: ItemPreparing})},
		Ready: []Order{viewOrder("C", OrderReady, time.Minute,
			Item{ID: "C-0", Name: "Kheer", Quantity: 1, Station: station.Dessert, Status: ItemCompleted})},
	}

	stats := Summarize(lanes)
	if stats.New != 1 || stats.Cooking != 1 || stats.Ready != 1 || stats.Urgent != 1 {
		t.Errorf("Summarize = %+v, want 1/1/1/1", stats)
	}
}

func TestAgeColor(t *testing.T) {
	now := time.Now()
	cases := []struct {
		age  time.Duration
		want string
	}{
		{time.Minute, "green"},
		{5*time.Minute - time.Second, "green"},
		{5 * time.Minute, "orange"},
		{10*time.Minute - time.Second, "orange"},
		{10 * time.Minute, "red"},
		{time.Hour, "red"},
	}
	for _, tc := range cases {
		if got := AgeColor(now, now.Add(-tc.age)); got != tc.want {
			t.Errorf("AgeColor(age=%v) = %q, want %q", tc.age, got, tc.want)
		}
	}
}

func TestDelayLevel(t *testing.T) {
	now := time.Now()
	cases := []struct {
		name   string
		status OrderStatus
		age    time.Duration
		want   string
	}{
		{"fresh", OrderNew, time.Minute, ""},
		{"warning", OrderNew, 16 * time.Minute, "warning"},
		{"cooking under bottleneck", OrderCooking, 18 * time.Minute, "warning"},
		{"bottleneck", OrderCooking, 21 * time.Minute, "bottleneck"},
		{"new past twenty stays warning", OrderNew, 25 * time.Minute, "warning"},
		{"critical", OrderNew, 31 * time.Minute, "critical"},
		{"critical beats bottleneck", OrderCooking, 35 * time.Minute, "critical"},
		{"delivered never flagged", OrderDelivered, time.Hour, ""},
	}
	for _, tc := range cases {
		o := viewOrder("X", tc.status, tc.age)
		if got := DelayLevel(now, o); got != tc.want {
			t.Errorf("%s: DelayLevel = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestSortForManagement(t *testing.T) {
	now := time.Now()
	orders := []Order{
		viewOrder("fresh", OrderNew, time.Minute),
		viewOrder("critical", OrderCooking, 40*time.Minute),
		viewOrder("bottleneck", OrderCooking, 25*time.Minute),
		viewOrder("olderCritical", OrderNew, 50*time.Minute),
	}

	sorted := SortForManagement(orders, now)
	want := []string{"olderCritical", "critical", "bottleneck", "fresh"}
	for i, id := range want {
		if sorted[i].ID != id {
			t.Fatalf("sorted = %v, want %v", idsOf(sorted), want)
		}
	}

	// The input slice must not be reordered.
	if orders[0].ID != "fresh" {
		t.Error("SortForManagement mutated its input")
	}
}
