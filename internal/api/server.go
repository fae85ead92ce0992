package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"brigade/internal/kitchen"
	"brigade/internal/metrics"
	"brigade/internal/ordersource"
	"brigade/internal/station"
	"brigade/internal/terminal"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

// Server is the HTTP surface of one kitchen terminal server. Terminals log
// in for a station, receive a token, and then drive their production queue
// through it.
type Server struct {
	Router    *gin.Engine
	source    ordersource.Source
	secret    []byte
	collector *metrics.Collector

	pollInterval time.Duration
	tickInterval time.Duration

	mu       sync.Mutex
	sessions map[string]*terminal.Session
	hubs     map[string]*hub
}

// Options configures the terminal server.
type Options struct {
	Secret       string
	Metrics      *metrics.Collector
	PollInterval time.Duration
	TickInterval time.Duration
}

// NewServer creates a terminal server against the given order source.
func NewServer(source ordersource.Source, opts Options) *Server {
	s := &Server{
		Router:       gin.Default(),
		source:       source,
		secret:       []byte(opts.Secret),
		collector:    opts.Metrics,
		pollInterval: opts.PollInterval,
		tickInterval: opts.TickInterval,
		sessions:     make(map[string]*terminal.Session),
		hubs:         make(map[string]*hub),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Brigade KDS is running"})
	})

	v1 := s.Router.Group("/api/v1")
	v1.POST("/login", s.login)

	auth := v1.Group("")
	auth.Use(s.authMiddleware())
	{
		auth.POST("/logout", s.logout)

		auth.GET("/queue", s.getQueue)
		auth.GET("/batches", s.getBatches)
		auth.GET("/recall", s.recall)

		auth.POST("/orders/:id/accept", s.acceptOrder)
		auth.POST("/orders/:id/ready", s.markReady)
		auth.POST("/orders/:id/deliver", s.deliverOrder)
		auth.POST("/orders/:id/reject", s.rejectOrder)
		auth.POST("/orders/:id/items/:itemId/start", s.startItem)
		auth.POST("/orders/:id/items/:itemId/finish", s.finishItem)

		auth.POST("/batches/start", s.startBatch)
		auth.POST("/batches/finish", s.finishBatch)
	}

	s.Router.GET("/ws", s.handleWebSocket)
}

// login opens a terminal session for a station and issues its token.
func (s *Server) login(c *gin.Context) {
	var req struct {
		Station station.Station `json:"station"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !station.Valid(req.Station) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown station"})
		return
	}

	h := newHub()
	sess := terminal.NewSession(s.source, req.Station, terminal.Options{
		PollInterval: s.pollInterval,
		TickInterval: s.tickInterval,
		Metrics:      s.collector,
		OnChange:     h.broadcast,
	})
	sess.Start(context.Background())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.hubs[sess.ID] = h
	s.mu.Unlock()
	if s.collector != nil {
		s.collector.SessionOpened()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":     sess.ID,
		"station": string(req.Station),
		"exp":     time.Now().Add(12 * time.Hour).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   signed,
		"session": sess.ID,
		"station": req.Station,
	})
}

// logout stops the session's timers and forgets it. A poll still in flight
// resolves into a cancelled context and is discarded.
func (s *Server) logout(c *gin.Context) {
	sess := s.session(c)

	s.mu.Lock()
	delete(s.sessions, sess.ID)
	h := s.hubs[sess.ID]
	delete(s.hubs, sess.ID)
	s.mu.Unlock()

	sess.Stop()
	if h != nil {
		h.close()
	}
	if s.collector != nil {
		s.collector.SessionClosed()
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// authMiddleware validates the terminal token and loads its session.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		sess, err := s.sessionForToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		c.Set("session", sess)
		c.Next()
	}
}

func (s *Server) sessionForToken(tokenString string) (*terminal.Session, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}
	sid, _ := claims["sid"].(string)

	s.mu.Lock()
	sess, ok := s.sessions[sid]
	s.mu.Unlock()
	if !ok {
		return nil, errors.New("session not found")
	}
	return sess, nil
}

func (s *Server) session(c *gin.Context) *terminal.Session {
	return c.MustGet("session").(*terminal.Session)
}

func (s *Server) getQueue(c *gin.Context) {
	sess := s.session(c)
	kindFilter := c.DefaultQuery("type", kitchen.KindFilterAll)

	lanes := sess.View(kindFilter)
	c.JSON(http.StatusOK, gin.H{
		"station": sess.Station,
		"lanes":   lanes,
		"stats":   kitchen.Summarize(lanes),
		"at":      sess.Now(),
	})
}

func (s *Server) getBatches(c *gin.Context) {
	sess := s.session(c)
	c.JSON(http.StatusOK, gin.H{"batches": sess.Batches()})
}

func (s *Server) recall(c *gin.Context) {
	sess := s.session(c)
	query := c.Query("q")

	order, ok := sess.Recall(query)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) acceptOrder(c *gin.Context) {
	s.transition(c, func(sess *terminal.Session) error {
		return sess.AcceptOrder(c.Request.Context(), c.Param("id"))
	})
}

func (s *Server) markReady(c *gin.Context) {
	s.transition(c, func(sess *terminal.Session) error {
		return sess.MarkReady(c.Request.Context(), c.Param("id"))
	})
}

func (s *Server) deliverOrder(c *gin.Context) {
	s.transition(c, func(sess *terminal.Session) error {
		return sess.DeliverOrder(c.Request.Context(), c.Param("id"))
	})
}

func (s *Server) rejectOrder(c *gin.Context) {
	s.transition(c, func(sess *terminal.Session) error {
		return sess.RejectOrder(c.Request.Context(), c.Param("id"))
	})
}

func (s *Server) startItem(c *gin.Context) {
	s.transition(c, func(sess *terminal.Session) error {
		return sess.StartItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	})
}

func (s *Server) finishItem(c *gin.Context) {
	s.transition(c, func(sess *terminal.Session) error {
		return sess.FinishItem(c.Request.Context(), c.Param("id"), c.Param("itemId"))
	})
}

func (s *Server) transition(c *gin.Context, op func(*terminal.Session) error) {
	sess := s.session(c)
	if err := op(sess); err != nil {
		c.JSON(transitionStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}

func transitionStatus(err error) int {
	switch {
	case errors.Is(err, terminal.ErrOrderNotFound), errors.Is(err, terminal.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, terminal.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, terminal.ErrSessionClosed):
		return http.StatusUnauthorized
	}
	// The order service call itself failed; local state is untouched and
	// the terminal may retry.
	return http.StatusBadGateway
}

func (s *Server) startBatch(c *gin.Context) {
	s.batchAction(c, func(sess *terminal.Session, instances []kitchen.BatchInstance) terminal.BatchResult {
		return sess.StartAll(c.Request.Context(), instances)
	})
}

func (s *Server) finishBatch(c *gin.Context) {
	s.batchAction(c, func(sess *terminal.Session, instances []kitchen.BatchInstance) terminal.BatchResult {
		return sess.FinishAll(c.Request.Context(), instances)
	})
}

func (s *Server) batchAction(c *gin.Context, op func(*terminal.Session, []kitchen.BatchInstance) terminal.BatchResult) {
	var req struct {
		Instances []kitchen.BatchInstance `json:"instances"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := op(s.session(c), req.Instances)
	c.JSON(http.StatusOK, result)
}

// Shutdown stops every open session.
func (s *Server) Shutdown() {
	s.mu.Lock()
	sessions := make([]*terminal.Session, 0, len(s.sessions))
	hubs := make([]*hub, 0, len(s.hubs))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	for _, h := range s.hubs {
		hubs = append(hubs, h)
	}
	s.sessions = make(map[string]*terminal.Session)
	s.hubs = make(map[string]*hub)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Stop()
	}
	for _, h := range hubs {
		h.close()
	}
}
