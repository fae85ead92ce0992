package ordersource

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Server is the reference order service used for development and demos. A
// production deployment points the kitchen at the real order-management
// system instead.
type Server struct {
	Router *gin.Engine
	store  *Store
}

// NewServer wires the order service routes onto a fresh router.
func NewServer(store *Store) *Server {
	s := &Server{
		Router: gin.Default(),
		store:  store,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.Router.GET("/orders", s.listOrders)
	s.Router.POST("/orders", s.placeOrder)
	s.Router.PUT("/orders/:id/status", s.updateStatus)
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.store.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) placeOrder(c *gin.Context) {
	var order Order
	if err := c.ShouldBindJSON(&order); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.OrderNumber == "" {
		order.OrderNumber = fmt.Sprintf("#%s", order.ID[:4])
	}
	order.Status = StatusPlaced
	order.CreatedAt = time.Now()

	if err := s.store.Create(order); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (s *Server) updateStatus(c *gin.Context) {
	var req struct {
		Status Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Writable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("status %q is not writable", req.Status)})
		return
	}

	if err := s.store.SetStatus(c.Param("id"), req.Status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}
