package kitchen

import (
	"testing"
	"time"

	"brigade/internal/station"
)

func TestAggregateBatches_GroupsByNameAndStation(t *testing.T) {
	visible := []Order{
		viewOrder("A", OrderNew, time.Minute,
			Item{ID: "A-0", Name: "Butter Naan", Quantity: 2, Station: station.Grill, Status: ItemPending},
			Item{ID: "A-1", Name: "Dal Makhani", Quantity: 1, Station: station.Curry, Status: ItemPending}),
		viewOrder("B", OrderCooking, 2*time.Minute,
			Item{ID: "B-0", Name: "Butter Naan", Quantity: 3, Station: station.Grill, Status: ItemPreparing},
			Item{ID: "B-1", Name: "Jeera Rice", Quantity: 1, Station: station.Rice, Status: ItemPending}),
	}

	batches := AggregateBatches(visible)
	if len(batches) != 3 {
		t.Fatalf("len(batches) = %d, want 3", len(batches))
	}

	// Largest run first.
	naan := batches[0]
	if naan.Name != "Butter Naan" || naan.Station != station.Grill {
		t.Fatalf("batches[0] = %+v, want the Butter Naan grill batch", naan)
	}
	if naan.Total != 5 {
		t.Errorf("naan.Total = %d, want 5", naan.Total)
	}
	if naan.Pending != 2 {
		t.Errorf("naan.Pending = %d, want 2", naan.Pending)
	}
	if naan.Preparing != 3 {
		t.Errorf("naan.Preparing = %d, want 3", naan.Preparing)
	}
	if len(naan.Instances) != 2 {
		t.Fatalf("len(naan.Instances) = %d, want 2", len(naan.Instances))
	}
	if naan.Instances[0].OrderID != "A" || naan.Instances[0].ItemID != "A-0" {
		t.Errorf("naan.Instances[0] = %+v, want item A-0 of order A", naan.Instances[0])
	}
}

func TestAggregateBatches_CountsStayConsistent(t *testing.T) {
	visible := []Order{
		viewOrder("A", OrderCooking, time.Minute,
			Item{ID: "A-0", Name: "Samosa", Quantity: 4, Station: station.Fry, Status: ItemPending},
			Item{ID: "A-1", Name: "Samosa", Quantity: 2, Station: station.Fry, Status: ItemPreparing},
			Item{ID: "A-2", Name: "Samosa", Quantity: 1, Station: station.Fry, Status: ItemCompleted}),
	}

	batches := AggregateBatches(visible)
	if len(batches) != 1 {
		t.Fatalf("len(batches) = %d, want 1", len(batches))
	}
	b := batches[0]
	if b.Pending+b.Preparing != b.Total {
		t.Errorf("Pending(%d) + Preparing(%d) != Total(%d)", b.Pending, b.Preparing, b.Total)
	}
	if b.Total != 6 {
		t.Errorf("Total = %d, want 6; completed items must not count", b.Total)
	}
}

func TestAggregateBatches_SkipsSettledOrders(t *testing.T) {
	visible := []Order{
		viewOrder("A", OrderReady, time.Minute,
			Item{ID: "A-0", Name: "Kulfi", Quantity: 2, Station: station.Dessert, Status: ItemCompleted}),
		viewOrder("B", OrderDelivered, time.Minute,
			Item{ID: "B-0", Name: "Kulfi", Quantity: 1, Station: station.Dessert, Status: ItemCompleted}),
	}

	if batches := AggregateBatches(visible); len(batches) != 0 {
		t.Errorf("batches from READY/DELIVERED orders = %+v, want none", batches)
	}
}

func TestAggregateBatches_SortDescendingWithNameTieBreak(t *testing.T) {
	visible := []Order{
		viewOrder("A", OrderNew, time.Minute,
			Item{ID: "A-0", Name: "Veg Pulao", Quantity: 2, Station: station.Rice, Status: ItemPending},
			Item{ID: "A-1", Name: "Chicken 65", Quantity: 2, Station: station.Fry, Status: ItemPending},
			Item{ID: "A-2", Name: "Seekh Kebab", Quantity: 5, Station: station.Grill, Status: ItemPending}),
	}

	batches := AggregateBatches(visible)
	want := []string{"Seekh Kebab", "Chicken 65", "Veg Pulao"}
	for i, name := range want {
		if batches[i].Name != name {
			names := make([]string, len(batches))
			for j, b := range batches {
				names[j] = b.Name
			}
			t.Fatalf("batch order = %v, want %v", names, want)
		}
	}
}

func TestAggregateBatches_SameDishDifferentStations(t *testing.T) {
	// The same label can route differently if two menu entries share a name;
	// station is part of the grouping key.
	visible := []Order{
		viewOrder("A", OrderNew, time.Minute,
			Item{ID: "A-0", Name: "Special", Quantity: 1, Station: station.Fry, Status: ItemPending}),
		viewOrder("B", OrderNew, time.Minute,
			Item{ID: "B-0", Name: "Special", Quantity: 1, Station: station.Grill, Status: ItemPending}),
	}

	if batches := AggregateBatches(visible); len(batches) != 2 {
		t.Errorf("len(batches) = %d, want 2 separate station batches", len(batches))
	}
}
