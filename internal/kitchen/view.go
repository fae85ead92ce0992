package kitchen

import (
	"sort"
	"time"

	"brigade/internal/station"
)

// KindFilterAll passes orders of every kind through Compose.
const KindFilterAll = "ALL"

// Lanes is the three-bucket partition a terminal displays. Delivered orders
// never appear; they leave the working set entirely.
type Lanes struct {
	New     []Order `json:"new"`
	Cooking []Order `json:"cooking"`
	Ready   []Order `json:"ready"`
}

// Stats summarizes a composed view for the terminal header.
type Stats struct {
	New     int `json:"new"`
	Cooking int `json:"cooking"`
	Ready   int `json:"ready"`
	Urgent  int `json:"urgent"`
}

// Compose filters and partitions the working set for one terminal. The head
// chef sees every order; a station terminal sees only orders with at least
// one item routed to it. Each lane is sorted oldest first — the kitchen
// works FIFO.
func Compose(workingSet []Order, terminal station.Station, kindFilter string) Lanes {
	var lanes Lanes

	visible := make([]Order, 0, len(workingSet))
	for _, o := range workingSet {
		if terminal != station.HeadChef && !o.HasStationWork(terminal) {
			continue
		}
		if kindFilter != "" && kindFilter != KindFilterAll && string(o.Kind) != kindFilter {
			continue
		}
		visible = append(visible, o)
	}

	sort.SliceStable(visible, func(i, j int) bool {
		return visible[i].CreatedAt.Before(visible[j].CreatedAt)
	})

	for _, o := range visible {
		switch o.Status {
		case OrderNew:
			lanes.New = append(lanes.New, o)
		case OrderCooking:
			lanes.Cooking = append(lanes.Cooking, o)
		case OrderReady:
			lanes.Ready = append(lanes.Ready, o)
		}
	}
	return lanes
}

// Summarize computes the header counts for a composed view.
func Summarize(lanes Lanes) Stats {
	stats := Stats{
		New:     len(lanes.New),
		Cooking: len(lanes.Cooking),
		Ready:   len(lanes.Ready),
	}
	for _, lane := range [][]Order{lanes.New, lanes.Cooking, lanes.Ready} {
		for _, o := range lane {
			if o.Priority == PriorityUrgent {
				stats.Urgent++
			}
		}
	}
	return stats
}

// AgeColor grades an order's age for the ticket clock: green under five
// minutes, orange under ten, red after that.
func AgeColor(now, createdAt time.Time) string {
	age := now.Sub(createdAt)
	switch {
	case age < 5*time.Minute:
		return "green"
	case age < 10*time.Minute:
		return "orange"
	}
	return "red"
}

// DelayLevel grades how far behind a non-terminal order is running.
// Bottleneck flags cooking orders stuck past twenty minutes; critical and
// warning apply to any open order past thirty and fifteen minutes.
func DelayLevel(now time.Time, o Order) string {
	if o.Status == OrderDelivered {
		return ""
	}
	age := now.Sub(o.CreatedAt)
	switch {
	case age > 30*time.Minute:
		return "critical"
	case o.Status == OrderCooking && age > 20*time.Minute:
		return "bottleneck"
	case age > 15*time.Minute:
		return "warning"
	}
	return ""
}

// SortForManagement orders a combined list for the aggregate order-management
// view: critical first, then bottlenecked, then everything else, FIFO within
// each group. Single-station lanes stay strict FIFO and do not use this.
func SortForManagement(orders []Order, now time.Time) []Order {
	sorted := make([]Order, len(orders))
	copy(sorted, orders)

	weight := func(o Order) int {
		switch DelayLevel(now, o) {
		case "critical":
			return 0
		case "bottleneck":
			return 1
		}
		return 2
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		wi, wj := weight(sorted[i]), weight(sorted[j])
		if wi != wj {
			return wi < wj
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})
	return sorted
}
