package kitchen

import (
	"sort"

	"brigade/internal/station"
)

// BatchInstance points at one concrete item inside one order that a batch
// action will transition.
type BatchInstance struct {
	OrderID string     `json:"orderId"`
	ItemID  string     `json:"itemId"`
	Status  ItemStatus `json:"status"`
}

// Batch groups identical dishes on the same station across all visible
// orders so a cook can produce them as one run. Batches are derived fresh on
// every render and never persisted.
type Batch struct {
	Name      string          `json:"name"`
	Station   station.Station `json:"station"`
	Total     int             `json:"total"`
	Pending   int             `json:"pending"`
	Preparing int             `json:"preparing"`
	Instances []BatchInstance `json:"instances"`
}

// AggregateBatches builds the batch view from visible orders. Only NEW and
// COOKING orders contribute, and only items that still need work. Batches
// come back largest production run first.
func AggregateBatches(visible []Order) []Batch {
	type key struct {
		name    string
		station station.Station
	}
	groups := make(map[key]*Batch)
	var keys []key

	for _, o := range visible {
		if o.Status != OrderNew && o.Status != OrderCooking {
			continue
		}
		for _, it := range o.Items {
			if it.Status == ItemCompleted {
				continue
			}
			k := key{name: it.Name, station: it.Station}
			b, ok := groups[k]
			if !ok {
				b = &Batch{Name: it.Name, Station: it.Station}
				groups[k] = b
				keys = append(keys, k)
			}
			b.Total += it.Quantity
			switch it.Status {
			case ItemPending:
				b.Pending += it.Quantity
			case ItemPreparing:
				b.Preparing += it.Quantity
			}
			b.Instances = append(b.Instances, BatchInstance{
				OrderID: o.ID,
				ItemID:  it.ID,
				Status:  it.Status,
			})
		}
	}

	batches := make([]Batch, 0, len(keys))
	for _, k := range keys {
		batches = append(batches, *groups[k])
	}
	sort.SliceStable(batches, func(i, j int) bool {
		if batches[i].Total != batches[j].Total {
			return batches[i].Total > batches[j].Total
		}
		return batches[i].Name < batches[j].Name
	})
	return batches
}
