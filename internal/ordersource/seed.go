package ordersource

import (
	"fmt"
	"time"
)

// Seed loads a small demo service into an empty store: a spread of orders
// touching every cooking station, at varying ages and statuses.
func (s *Store) Seed() error {
	existing, err := s.List()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now()
	demo := []Order{
		{
			ID:          "ORD-101",
			OrderNumber: "#4521",
			TableNumber: "T-01",
			Type:        "dine-in",
			Status:      StatusPlaced,
			CreatedAt:   now.Add(-2 * time.Minute),
			Items: []Line{
				{Name: "Vegetable Spring Rolls", Quantity: 2, Price: 180, Note: "Extra spicy"},
				{Name: "Butter Chicken", Quantity: 1, Price: 320},
				{Name: "Butter Naan", Quantity: 4, Price: 40},
			},
		},
		{
			ID:          "ORD-102",
			OrderNumber: "#4522",
			TableNumber: "T-04",
			Type:        "dine-in",
			Status:      StatusPreparing,
			CreatedAt:   now.Add(-8 * time.Minute),
			Items: []Line{
				{Name: "Chicken Biryani", Quantity: 2, Price: 280},
				{Name: "Boondi Raita", Quantity: 2, Price: 60},
			},
		},
		{
			ID:           "ORD-103",
			OrderNumber:  "#4523",
			CustomerName: "Asha",
			Type:         "takeaway",
			Status:       StatusPlaced,
			CreatedAt:    now.Add(-6 * time.Minute),
			Items: []Line{
				{Name: "Paneer Tikka", Quantity: 1, Price: 240},
				{Name: "Dal Makhani", Quantity: 1, Price: 220},
				{Name: "Jeera Rice", Quantity: 1, Price: 150},
				{Name: "Mango Lassi", Quantity: 2, Price: 90},
			},
		},
		{
			ID:          "ORD-104",
			OrderNumber: "#4524",
			TableNumber: "T-07",
			Type:        "dine-in",
			Status:      StatusReady,
			CreatedAt:   now.Add(-22 * time.Minute),
			Items: []Line{
				{Name: "Masala Dosa", Quantity: 2, Price: 140},
				{Name: "Filter Coffee", Quantity: 2, Price: 60},
			},
		},
	}

	for _, o := range demo {
		if err := s.Create(o); err != nil {
			return fmt.Errorf("failed to seed order %s: %w", o.ID, err)
		}
	}
	return nil
}
