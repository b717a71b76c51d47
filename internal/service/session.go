package service

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hudsonjuan/digno-acai/internal/enum"
	"github.com/hudsonjuan/digno-acai/internal/kiosk"
	"github.com/hudsonjuan/digno-acai/internal/order"
	"github.com/hudsonjuan/digno-acai/internal/store"
	"github.com/hudsonjuan/digno-acai/internal/ws"
	"github.com/shopspring/decimal"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// SnapshotStore is the device-local order cache.
// Satisfied by *store.Snapshots; narrow interface for testability.
type SnapshotStore interface {
	Save(terminal string, blob []byte) error
	Load(terminal string) ([]byte, error)
	Clear(terminal string) error
}

// Broadcaster pushes events to the kiosk screen. Satisfied by *ws.Hub.
type Broadcaster interface {
	BroadcastToSession(sessionID uuid.UUID, event ws.Event)
}

// Config holds the session service knobs.
type Config struct {
	IdleTimeout     time.Duration
	ResetDelay      time.Duration
	WhatsAppNumber  string
	PixKey          string
	DefaultTerminal string
}

// Session is one terminal's order plus its kiosk state machine.
type Session struct {
	ID       uuid.UUID
	Terminal string

	mu    sync.Mutex
	order *order.Order
	kiosk *kiosk.Session
}

// SessionState is a point-in-time copy of a session, safe to serialize.
type SessionState struct {
	ID           uuid.UUID
	Terminal     string
	KioskActive  bool
	KioskState   string
	CustomerName string
	ScrollLocked bool
	Order        order.Order
}

// CheckoutResult is everything the shell needs to confirm and hand off an
// order.
type CheckoutResult struct {
	Summary      []order.SummaryLine
	Message      string
	WhatsAppLink string
}

// SessionService owns the live sessions and wires the order engine, the
// kiosk state machine, persistence and the event hub together.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	engine    *order.Engine
	formatter *order.Formatter
	snapshots SnapshotStore
	names     *store.SessionNames
	hub       Broadcaster
	cfg       Config
	clock     kiosk.Clock
}

// Option configures a SessionService.
type Option func(*SessionService)

// WithClock replaces the runtime clock driving kiosk timers, for tests.
func WithClock(c kiosk.Clock) Option {
	return func(s *SessionService) { s.clock = c }
}

// NewSessionService creates a SessionService.
func NewSessionService(engine *order.Engine, formatter *order.Formatter, snapshots SnapshotStore, names *store.SessionNames, hub Broadcaster, cfg Config, opts ...Option) *SessionService {
	s := &SessionService{
		sessions:  make(map[uuid.UUID]*Session),
		engine:    engine,
		formatter: formatter,
		snapshots: snapshots,
		names:     names,
		hub:       hub,
		cfg:       cfg,
		clock:     kiosk.NewClock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create starts a session for a terminal, rehydrating the order from the
// device snapshot when one is present. kioskMode comes from the entry URL's
// kiosk flag.
func (s *SessionService) Create(terminal string, kioskMode bool) (SessionState, error) {
	if terminal == "" {
		terminal = s.cfg.DefaultTerminal
	}

	blob, err := s.snapshots.Load(terminal)
	if err != nil {
		if errors.Is(err, store.ErrInvalidTerminal) {
			return SessionState{}, err
		}
		// A broken cache never blocks startup; fall back to defaults.
		log.Printf("ERROR: load snapshot for %s: %v", terminal, err)
		blob = nil
	}

	id := uuid.New()
	sess := &Session{
		ID:       id,
		Terminal: terminal,
		order:    s.engine.Restore(blob),
	}
	sess.kiosk = kiosk.New(kioskMode,
		kiosk.Config{IdleTimeout: s.cfg.IdleTimeout, ResetDelay: s.cfg.ResetDelay},
		kiosk.WithClock(s.clock),
		kiosk.WithNameSlot(s.names.Bind(id)),
	)
	sess.kiosk.OnReset(func() { s.resetOrder(sess) })
	sess.kiosk.OnStateChange(func(state string) { s.broadcastKioskState(sess, state) })

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	return s.view(sess), nil
}

// Get returns the current state of a session.
func (s *SessionService) Get(id uuid.UUID) (SessionState, error) {
	sess, err := s.session(id)
	if err != nil {
		return SessionState{}, err
	}
	return s.view(sess), nil
}

// Destroy tears a session down: timers cancelled, name slot dropped.
func (s *SessionService) Destroy(id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.kiosk.Stop()
	s.names.Clear(id)
	return nil
}

// --- Order mutators ---
// Every mutation persists the snapshot and counts as a qualifying kiosk
// interaction.

// SelectSize sets the order size.
func (s *SessionService) SelectSize(id uuid.UUID, sizeID string) (SessionState, error) {
	return s.mutate(id, func(o *order.Order) error {
		return s.engine.SelectSize(o, sizeID)
	})
}

// ToggleFruit adds or removes a fruit.
func (s *SessionService) ToggleFruit(id uuid.UUID, fruitID string, selected bool) (SessionState, error) {
	return s.mutate(id, func(o *order.Order) error {
		return s.engine.ToggleFruit(o, fruitID, selected)
	})
}

// ToggleIceCream adds or removes an ice cream flavor.
func (s *SessionService) ToggleIceCream(id uuid.UUID, iceCreamID string, selected bool) (SessionState, error) {
	return s.mutate(id, func(o *order.Order) error {
		return s.engine.ToggleIceCream(o, iceCreamID, selected)
	})
}

// ToggleTopping adds or removes a topping, enforcing syrup exclusivity.
func (s *SessionService) ToggleTopping(id uuid.UUID, toppingID string, selected bool) (SessionState, error) {
	return s.mutate(id, func(o *order.Order) error {
		return s.engine.ToggleTopping(o, toppingID, selected)
	})
}

// SetNotes replaces the free-text note.
func (s *SessionService) SetNotes(id uuid.UUID, text string) (SessionState, error) {
	return s.mutate(id, func(o *order.Order) error {
		s.engine.SetNotes(o, text)
		return nil
	})
}

// SetPayment records the payment selection.
func (s *SessionService) SetPayment(id uuid.UUID, method string, tendered decimal.Decimal) (SessionState, error) {
	return s.mutate(id, func(o *order.Order) error {
		return s.engine.SetPayment(o, method, tendered)
	})
}

// Checkout renders the confirmation summary, the outbound message (with the
// kiosk customer line when captured) and the messaging deep link.
func (s *SessionService) Checkout(id uuid.UUID) (*CheckoutResult, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	msg, err := s.formatter.BuildOrderMessage(sess.order)
	if err != nil {
		sess.mu.Unlock()
		return nil, err
	}
	summary := s.formatter.BuildSummary(sess.order)
	sess.mu.Unlock()

	sess.kiosk.Touch()
	msg = sess.kiosk.DecorateMessage(msg)

	return &CheckoutResult{
		Summary:      summary,
		Message:      msg,
		WhatsAppLink: order.WhatsAppLink(s.cfg.WhatsAppNumber, msg),
	}, nil
}

// Reset returns the order to defaults, clears the device snapshot and, on a
// kiosk session, runs the full reset flow (reset message, name re-capture).
func (s *SessionService) Reset(id uuid.UUID) (SessionState, error) {
	sess, err := s.session(id)
	if err != nil {
		return SessionState{}, err
	}
	s.resetOrder(sess)
	sess.kiosk.ForceReset()
	return s.view(sess), nil
}

// --- Kiosk operations ---

// SubmitName captures the kiosk customer name. A no-op on non-kiosk
// sessions.
func (s *SessionService) SubmitName(id uuid.UUID, name string) (SessionState, error) {
	sess, err := s.session(id)
	if err != nil {
		return SessionState{}, err
	}
	if err := sess.kiosk.SubmitName(name); err != nil {
		return SessionState{}, err
	}
	return s.view(sess), nil
}

// Touch records a qualifying interaction. When the shell reports a detected
// return from the messaging app, the session is reset as if the idle timer
// had elapsed.
func (s *SessionService) Touch(id uuid.UUID, returnedFromApp bool) (SessionState, error) {
	sess, err := s.session(id)
	if err != nil {
		return SessionState{}, err
	}
	if returnedFromApp {
		sess.kiosk.ForceReset()
	} else {
		sess.kiosk.Touch()
	}
	return s.view(sess), nil
}

// --- Internals ---

func (s *SessionService) session(id uuid.UUID) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// mutate applies an engine operation, persists the snapshot, touches the
// kiosk timer and broadcasts the updated order.
func (s *SessionService) mutate(id uuid.UUID, fn func(o *order.Order) error) (SessionState, error) {
	sess, err := s.session(id)
	if err != nil {
		return SessionState{}, err
	}

	sess.mu.Lock()
	if err := fn(sess.order); err != nil {
		sess.mu.Unlock()
		return SessionState{}, err
	}
	s.persist(sess)
	state := s.viewLocked(sess)
	sess.mu.Unlock()

	sess.kiosk.Touch()
	s.broadcastOrder(sess.ID, state.Order)
	return state, nil
}

// resetOrder swaps in a default order and clears the snapshot. Runs both for
// explicit resets and as the kiosk reset hook.
func (s *SessionService) resetOrder(sess *Session) {
	sess.mu.Lock()
	sess.order = s.engine.NewOrder()
	if err := s.snapshots.Clear(sess.Terminal); err != nil {
		log.Printf("ERROR: clear snapshot for %s: %v", sess.Terminal, err)
	}
	state := s.viewLocked(sess)
	sess.mu.Unlock()

	s.broadcastOrder(sess.ID, state.Order)
}

// persist writes the device snapshot. Persistence failures are logged, never
// surfaced: the in-memory order stays authoritative.
func (s *SessionService) persist(sess *Session) {
	if err := s.snapshots.Save(sess.Terminal, s.engine.Snapshot(sess.order)); err != nil {
		log.Printf("ERROR: save snapshot for %s: %v", sess.Terminal, err)
	}
}

func (s *SessionService) view(sess *Session) SessionState {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return s.viewLocked(sess)
}

// viewLocked copies the session state. Caller must hold sess.mu.
func (s *SessionService) viewLocked(sess *Session) SessionState {
	o := *sess.order
	o.Fruits = append([]string(nil), o.Fruits...)
	o.IceCreams = append([]string(nil), o.IceCreams...)
	o.Toppings = append([]string(nil), o.Toppings...)
	if sess.order.Payment != nil {
		p := *sess.order.Payment
		o.Payment = &p
	}
	return SessionState{
		ID:           sess.ID,
		Terminal:     sess.Terminal,
		KioskActive:  sess.kiosk.Active(),
		KioskState:   sess.kiosk.State(),
		CustomerName: sess.kiosk.CustomerName(),
		ScrollLocked: sess.kiosk.ScrollLocked(),
		Order:        o,
	}
}

// --- Event payloads ---

type orderPayload struct {
	SizeID    string   `json:"size_id"`
	Fruits    []string `json:"fruits"`
	IceCreams []string `json:"ice_creams"`
	Toppings  []string `json:"toppings"`
	Notes     string   `json:"notes"`
	Total     string   `json:"total"`
}

type kioskPayload struct {
	State        string `json:"state"`
	CustomerName string `json:"customer_name,omitempty"`
	ScrollLocked bool   `json:"scroll_locked"`
}

func (s *SessionService) broadcastOrder(id uuid.UUID, o order.Order) {
	s.broadcast(id, enum.EventOrderUpdated, orderPayload{
		SizeID:    o.Size.ID,
		Fruits:    o.Fruits,
		IceCreams: o.IceCreams,
		Toppings:  o.Toppings,
		Notes:     o.Notes,
		Total:     o.Total.StringFixed(2),
	})
}

// kioskEventType maps a kiosk state to the event announcing it. Inactive has
// no event: non-kiosk screens only follow the order.
func kioskEventType(state string) (string, bool) {
	switch state {
	case enum.KioskStateReady:
		return enum.EventNameCaptured, true
	case enum.KioskStateResetting:
		return enum.EventSessionResetting, true
	case enum.KioskStateAwaitingName:
		return enum.EventSessionReset, true
	}
	return "", false
}

func (s *SessionService) broadcastKioskState(sess *Session, state string) {
	eventType, ok := kioskEventType(state)
	if !ok {
		return
	}
	s.broadcast(sess.ID, eventType, kioskPayload{
		State:        state,
		CustomerName: sess.kiosk.CustomerName(),
		ScrollLocked: sess.kiosk.ScrollLocked(),
	})
}

// ReplayEvents builds the events describing a session's current state, used
// by the hub to catch up a (re)connecting kiosk screen. Unknown sessions get
// nothing.
func (s *SessionService) ReplayEvents(id uuid.UUID) []ws.Event {
	sess, err := s.session(id)
	if err != nil {
		return nil
	}
	state := s.view(sess)

	events := make([]ws.Event, 0, 2)
	if raw, err := json.Marshal(orderPayload{
		SizeID:    state.Order.Size.ID,
		Fruits:    state.Order.Fruits,
		IceCreams: state.Order.IceCreams,
		Toppings:  state.Order.Toppings,
		Notes:     state.Order.Notes,
		Total:     state.Order.Total.StringFixed(2),
	}); err == nil {
		events = append(events, ws.Event{Type: enum.EventOrderUpdated, Payload: raw})
	}

	if eventType, ok := kioskEventType(state.KioskState); ok {
		if raw, err := json.Marshal(kioskPayload{
			State:        state.KioskState,
			CustomerName: state.CustomerName,
			ScrollLocked: state.ScrollLocked,
		}); err == nil {
			events = append(events, ws.Event{Type: eventType, Payload: raw})
		}
	}
	return events
}

func (s *SessionService) broadcast(id uuid.UUID, eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: marshal %s payload: %v", eventType, err)
		return
	}
	s.hub.BroadcastToSession(id, ws.Event{Type: eventType, Payload: raw})
}
