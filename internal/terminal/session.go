package terminal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"brigade/internal/kitchen"
	"brigade/internal/metrics"
	"brigade/internal/ordersource"
	"brigade/internal/station"

	"github.com/google/uuid"
)

// Sentinel errors for transition validation.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrSessionClosed     = errors.New("session closed")
)

// DefaultPollInterval and DefaultTickInterval drive the two timers of the
// sync loop: a slow order poll and a fast clock used only for age displays.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultTickInterval = time.Second
)

// Snapshot is one consistent rendering of a terminal's queue, pushed to
// connected displays whenever the working set changes.
type Snapshot struct {
	Station station.Station `json:"station"`
	Lanes   kitchen.Lanes   `json:"lanes"`
	Stats   kitchen.Stats   `json:"stats"`
	Batches []kitchen.Batch `json:"batches"`
	At      time.Time       `json:"at"`
}

// Options configures a terminal session.
type Options struct {
	PollInterval time.Duration
	TickInterval time.Duration
	Metrics      *metrics.Collector
	OnChange     func(Snapshot)
}

// Session is the state of one logged-in kitchen terminal: its working set of
// open orders, its private item overlay, and the timers that keep both
// fresh. All durable state stays in the order service; everything here is a
// cache that the next poll can rebuild.
type Session struct {
	ID      string
	Station station.Station

	source    ordersource.Source
	overlay   *kitchen.Overlay
	collector *metrics.Collector
	onChange  func(Snapshot)

	pollInterval time.Duration
	tickInterval time.Duration

	mu      sync.Mutex
	raws    map[string]ordersource.Order
	working []kitchen.Order
	now     time.Time
	closed  bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSession creates a session for one terminal station.
func NewSession(source ordersource.Source, st station.Station, opts Options) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	return &Session{
		ID:           uuid.NewString(),
		Station:      st,
		source:       source,
		overlay:      kitchen.NewOverlay(),
		collector:    opts.Metrics,
		onChange:     opts.OnChange,
		pollInterval: opts.PollInterval,
		tickInterval: opts.TickInterval,
		raws:         make(map[string]ordersource.Order),
		now:          time.Now(),
	}
}

// Start performs an initial sync and launches the poll and clock timers.
// Both stop when ctx is cancelled or Stop is called.
func (s *Session) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.refresh(ctx)

	s.wg.Add(2)
	go s.pollLoop(ctx)
	go s.clockLoop(ctx)
}

// Stop cancels both timers and marks the session closed. A network call
// that resolves after Stop is discarded, never applied to session state.
func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *Session) pollLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Session) clockLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			s.mu.Lock()
			s.now = t
			s.mu.Unlock()
		}
	}
}

// refresh polls the order service and replaces the working set. Terminal
// orders are dropped; a fetch failure keeps the previous set so one bad poll
// never blanks a busy queue.
func (s *Session) refresh(ctx context.Context) {
	orders, err := s.source.List(ctx)
	if err != nil {
		log.Printf("terminal %s: order poll failed: %v", s.Station, err)
		s.recordPoll(false)
		return
	}
	if ctx.Err() != nil {
		// Resolved after logout; discard.
		return
	}

	now := time.Now()
	s.mu.Lock()
	s.raws = make(map[string]ordersource.Order, len(orders))
	s.working = s.working[:0]
	openIDs := make([]string, 0, len(orders))
	for _, raw := range orders {
		if raw.Status.Terminal() {
			continue
		}
		s.raws[raw.ID] = raw
		s.working = append(s.working, kitchen.Adapt(raw, s.overlay, now))
		openIDs = append(openIDs, raw.ID)
	}
	s.overlay.Prune(openIDs)
	s.now = now
	open := len(s.working)
	s.mu.Unlock()

	s.recordPoll(true)
	if s.collector != nil {
		s.collector.SetOpenOrders(string(s.Station), open)
	}
	s.notify()
}

// Now returns the clock value age and countdown displays derive from.
func (s *Session) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// WorkingSet returns a copy of the open orders.
func (s *Session) WorkingSet() []kitchen.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]kitchen.Order, len(s.working))
	copy(out, s.working)
	return out
}

// View composes the three-lane display for this terminal, optionally
// filtered by order kind (ALL, DINE_IN, PARCEL).
func (s *Session) View(kindFilter string) kitchen.Lanes {
	return kitchen.Compose(s.WorkingSet(), s.Station, kindFilter)
}

// Batches derives the batch production view from the orders visible to this
// terminal.
func (s *Session) Batches() []kitchen.Batch {
	lanes := s.View(kitchen.KindFilterAll)
	visible := make([]kitchen.Order, 0, len(lanes.New)+len(lanes.Cooking))
	visible = append(visible, lanes.New...)
	visible = append(visible, lanes.Cooking...)
	return kitchen.AggregateBatches(visible)
}

// Recall finds an open order by substring match on its display number, raw
// id, or table label. Orders that have left the working set are not
// recallable.
func (s *Session) Recall(query string) (kitchen.Order, bool) {
	if query == "" {
		return kitchen.Order{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.working {
		if contains(o.Number, query) || contains(o.ID, query) || contains(o.Label, query) {
			return o, true
		}
	}
	return kitchen.Order{}, false
}

// AcceptOrder moves a NEW order into production: the order service is told
// it is preparing and every item starts cooking now.
func (s *Session) AcceptOrder(ctx context.Context, orderID string) error {
	o, err := s.validateOrder(orderID, kitchen.OrderNew)
	if err != nil {
		s.recordTransition("accept", false)
		return err
	}
	if err := s.source.UpdateStatus(ctx, orderID, ordersource.StatusPreparing); err != nil {
		s.recordTransition("accept", false)
		return err
	}

	now := time.Now()
	for _, it := range o.Items {
		s.overlay.Set(it.ID, kitchen.ItemPreparing, &now)
	}
	s.applyRawStatus(orderID, ordersource.StatusPreparing, now)
	s.recordTransition("accept", true)
	return nil
}

// StartItem moves one PENDING item to PREPARING. Starting the first item of
// a NEW order promotes the whole order to preparing at the order service.
func (s *Session) StartItem(ctx context.Context, orderID, itemID string) error {
	o, it, err := s.validateItem(orderID, itemID)
	if err != nil {
		s.recordTransition("start_item", false)
		return err
	}
	if it.Status != kitchen.ItemPending {
		s.recordTransition("start_item", false)
		return fmt.Errorf("%w: item %s is %s, not %s", ErrInvalidTransition, itemID, it.Status, kitchen.ItemPending)
	}

	promote := o.Status == kitchen.OrderNew
	if promote {
		if err := s.source.UpdateStatus(ctx, orderID, ordersource.StatusPreparing); err != nil {
			s.recordTransition("start_item", false)
			return err
		}
	}

	now := time.Now()
	s.overlay.Set(itemID, kitchen.ItemPreparing, &now)
	if promote {
		s.applyRawStatus(orderID, ordersource.StatusPreparing, now)
	} else {
		s.readapt(orderID, now)
	}
	s.recordTransition("start_item", true)
	return nil
}

// FinishItem completes one item. Finishing the last open item of an order
// marks the whole order ready at the order service.
func (s *Session) FinishItem(ctx context.Context, orderID, itemID string) error {
	o, it, err := s.validateItem(orderID, itemID)
	if err != nil {
		s.recordTransition("finish_item", false)
		return err
	}
	if it.Status == kitchen.ItemCompleted {
		s.recordTransition("finish_item", false)
		return fmt.Errorf("%w: item %s is already %s", ErrInvalidTransition, itemID, kitchen.ItemCompleted)
	}

	last := true
	for _, other := range o.Items {
		if other.ID != itemID && other.Status != kitchen.ItemCompleted {
			last = false
			break
		}
	}
	if last {
		if err := s.source.UpdateStatus(ctx, orderID, ordersource.StatusReady); err != nil {
			s.recordTransition("finish_item", false)
			return err
		}
	}

	now := time.Now()
	s.overlay.Set(itemID, kitchen.ItemCompleted, nil)
	if last {
		s.applyRawStatus(orderID, ordersource.StatusReady, now)
	} else {
		s.readapt(orderID, now)
	}
	s.recordTransition("finish_item", true)
	return nil
}

// MarkReady force-completes a COOKING order: every item is completed and the
// order service is told it is ready.
func (s *Session) MarkReady(ctx context.Context, orderID string) error {
	o, err := s.validateOrder(orderID, kitchen.OrderCooking)
	if err != nil {
		s.recordTransition("mark_ready", false)
		return err
	}
	if err := s.source.UpdateStatus(ctx, orderID, ordersource.StatusReady); err != nil {
		s.recordTransition("mark_ready", false)
		return err
	}

	now := time.Now()
	for _, it := range o.Items {
		s.overlay.Set(it.ID, kitchen.ItemCompleted, nil)
	}
	s.applyRawStatus(orderID, ordersource.StatusReady, now)
	s.recordTransition("mark_ready", true)
	return nil
}

// DeliverOrder hands a READY order to service and drops it from the working
// set immediately rather than waiting for the next poll.
func (s *Session) DeliverOrder(ctx context.Context, orderID string) error {
	if _, err := s.validateOrder(orderID, kitchen.OrderReady); err != nil {
		s.recordTransition("deliver", false)
		return err
	}
	if err := s.source.UpdateStatus(ctx, orderID, ordersource.StatusServed); err != nil {
		s.recordTransition("deliver", false)
		return err
	}
	s.remove(orderID)
	s.recordTransition("deliver", true)
	return nil
}

// RejectOrder cancels an order that has not gone past cooking.
func (s *Session) RejectOrder(ctx context.Context, orderID string) error {
	o, ok := s.findOrder(orderID)
	if !ok {
		s.recordTransition("reject", false)
		return fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if o.Status != kitchen.OrderNew && o.Status != kitchen.OrderCooking {
		s.recordTransition("reject", false)
		return fmt.Errorf("%w: order %s is %s, cannot be rejected", ErrInvalidTransition, orderID, o.Status)
	}
	if err := s.source.UpdateStatus(ctx, orderID, ordersource.StatusCancelled); err != nil {
		s.recordTransition("reject", false)
		return err
	}
	s.remove(orderID)
	s.recordTransition("reject", true)
	return nil
}

// BatchFailure records one item a batch action could not transition.
type BatchFailure struct {
	OrderID string `json:"orderId"`
	ItemID  string `json:"itemId"`
	Err     string `json:"error"`
}

// BatchResult reports how a batch action went. Partial application is an
// expected outcome: each item transitions independently and one failure
// never blocks the rest.
type BatchResult struct {
	Applied  int            `json:"applied"`
	Failures []BatchFailure `json:"failures,omitempty"`
}

// StartAll starts every still-pending instance of a batch.
func (s *Session) StartAll(ctx context.Context, instances []kitchen.BatchInstance) BatchResult {
	var res BatchResult
	for _, inst := range instances {
		if inst.Status != kitchen.ItemPending {
			continue
		}
		if err := s.StartItem(ctx, inst.OrderID, inst.ItemID); err != nil {
			res.Failures = append(res.Failures, BatchFailure{OrderID: inst.OrderID, ItemID: inst.ItemID, Err: err.Error()})
			continue
		}
		res.Applied++
	}
	return res
}

// FinishAll completes every not-yet-completed instance of a batch.
func (s *Session) FinishAll(ctx context.Context, instances []kitchen.BatchInstance) BatchResult {
	var res BatchResult
	for _, inst := range instances {
		if inst.Status == kitchen.ItemCompleted {
			continue
		}
		if err := s.FinishItem(ctx, inst.OrderID, inst.ItemID); err != nil {
			res.Failures = append(res.Failures, BatchFailure{OrderID: inst.OrderID, ItemID: inst.ItemID, Err: err.Error()})
			continue
		}
		res.Applied++
	}
	return res
}

// Snapshot renders the current queue state for push delivery.
func (s *Session) Snapshot() Snapshot {
	lanes := s.View(kitchen.KindFilterAll)
	return Snapshot{
		Station: s.Station,
		Lanes:   lanes,
		Stats:   kitchen.Summarize(lanes),
		Batches: s.Batches(),
		At:      s.Now(),
	}
}

func (s *Session) findOrder(orderID string) (kitchen.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.working {
		if o.ID == orderID {
			return o, true
		}
	}
	return kitchen.Order{}, false
}

func (s *Session) validateOrder(orderID string, want kitchen.OrderStatus) (kitchen.Order, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return kitchen.Order{}, ErrSessionClosed
	}
	o, ok := s.findOrder(orderID)
	if !ok {
		return kitchen.Order{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	if o.Status != want {
		return kitchen.Order{}, fmt.Errorf("%w: order %s is %s, not %s", ErrInvalidTransition, orderID, o.Status, want)
	}
	return o, nil
}

func (s *Session) validateItem(orderID, itemID string) (kitchen.Order, kitchen.Item, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return kitchen.Order{}, kitchen.Item{}, ErrSessionClosed
	}
	o, ok := s.findOrder(orderID)
	if !ok {
		return kitchen.Order{}, kitchen.Item{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	for _, it := range o.Items {
		if it.ID == itemID {
			return o, it, nil
		}
	}
	return kitchen.Order{}, kitchen.Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
}

// applyRawStatus patches the cached raw record and re-adapts the order so
// the change shows before the next poll.
func (s *Session) applyRawStatus(orderID string, status ordersource.Status, now time.Time) {
	s.mu.Lock()
	if raw, ok := s.raws[orderID]; ok {
		raw.Status = status
		raw.StatusUpdatedAt = &now
		s.raws[orderID] = raw
	}
	s.mu.Unlock()
	s.readapt(orderID, now)
}

// readapt rebuilds one working-set entry from its cached raw record and the
// overlay.
func (s *Session) readapt(orderID string, now time.Time) {
	s.mu.Lock()
	raw, ok := s.raws[orderID]
	if ok {
		for i, o := range s.working {
			if o.ID == orderID {
				s.working[i] = kitchen.Adapt(raw, s.overlay, now)
				break
			}
		}
	}
	s.mu.Unlock()
	s.notify()
}

// remove drops an order from the working set optimistically.
func (s *Session) remove(orderID string) {
	s.mu.Lock()
	delete(s.raws, orderID)
	for i, o := range s.working {
		if o.ID == orderID {
			s.working = append(s.working[:i], s.working[i+1:]...)
			break
		}
	}
	open := len(s.working)
	s.mu.Unlock()

	if s.collector != nil {
		s.collector.SetOpenOrders(string(s.Station), open)
	}
	s.notify()
}

func (s *Session) notify() {
	if s.onChange == nil {
		return
	}
	s.onChange(s.Snapshot())
}

func (s *Session) recordPoll(ok bool) {
	if s.collector != nil {
		s.collector.RecordPoll(ok)
	}
}

func (s *Session) recordTransition(operation string, ok bool) {
	if s.collector != nil {
		s.collector.RecordTransition(operation, ok)
	}
}

func contains(haystack, needle string) bool {
	return haystack != "" && strings.Contains(haystack, needle)
}
