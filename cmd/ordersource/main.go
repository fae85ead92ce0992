package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"

	"brigade/internal/ordersource"
)

var (
	port   = flag.Int("port", 8090, "Order service port")
	dbPath = flag.String("db", "orders.db", "Path to the sqlite order database")
	seed   = flag.Bool("seed", false, "Seed demo orders into an empty database")
)

// The reference order service: a stand-in for the real order-management
// system during development and demos.
func main() {
	flag.Parse()

	store, err := ordersource.OpenStore(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open order store: %v", err)
	}
	defer store.Close()

	if *seed {
		if err := store.Seed(); err != nil {
			log.Fatalf("Failed to seed demo orders: %v", err)
		}
	}

	server := ordersource.NewServer(store)

	log.Printf("Starting order service on port %d", *port)
	if err := server.Router.Run(fmt.Sprintf(":%d", *port)); err != http.ErrServerClosed {
		log.Fatalf("Order service error: %v", err)
	}
}
