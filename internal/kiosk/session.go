package kiosk

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hudsonjuan/digno-acai/internal/enum"
)

// ErrEmptyName is returned when a submitted customer name is empty after
// trimming.
var ErrEmptyName = errors.New("customer name is required")

// NameSlot is the session-scoped customer name storage. It lives and dies
// with the browser tab, unlike the order snapshot which survives reloads.
type NameSlot interface {
	Set(name string)
	Get() string
	Clear()
}

// memorySlot is the fallback NameSlot when none is provided.
type memorySlot struct {
	mu   sync.Mutex
	name string
}

func (s *memorySlot) Set(name string) { s.mu.Lock(); s.name = name; s.mu.Unlock() }
func (s *memorySlot) Get() string     { s.mu.Lock(); defer s.mu.Unlock(); return s.name }
func (s *memorySlot) Clear()          { s.mu.Lock(); s.name = ""; s.mu.Unlock() }

// Config holds the kiosk timing knobs.
type Config struct {
	// IdleTimeout is how long the terminal may sit without a qualifying
	// interaction before a reset is forced.
	IdleTimeout time.Duration
	// ResetDelay is the pause between announcing the reset and performing it,
	// so the screen can show a "restarting" message.
	ResetDelay time.Duration
}

// Session is the idle-timeout state machine for one kiosk terminal:
//
//	Inactive -> (kiosk flag set) AwaitingName -> Ready -> Resetting -> AwaitingName
//
// An inactive session (no kiosk flag on entry) turns every method into a
// no-op. At most one idle timer is ever pending: every qualifying interaction
// cancels and reschedules it.
type Session struct {
	mu     sync.Mutex
	cfg    Config
	clock  Clock
	slot   NameSlot
	state  string
	locked bool

	idleTimer  Timer
	resetTimer Timer
	resetting  bool

	onReset []func()
	onState []func(state string)
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces the runtime clock, for tests.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithNameSlot stores the customer name in the given slot instead of the
// built-in in-memory one.
func WithNameSlot(slot NameSlot) Option {
	return func(s *Session) { s.slot = slot }
}

// New creates a Session. active comes from the entry URL's kiosk flag and is
// immutable for the session's lifetime. An active session starts in
// AwaitingName with scroll locked and the idle timer running.
func New(active bool, cfg Config, opts ...Option) *Session {
	s := &Session{
		cfg:   cfg,
		clock: NewClock(),
		slot:  &memorySlot{},
		state: enum.KioskStateInactive,
	}
	for _, opt := range opts {
		opt(s)
	}
	if active {
		s.state = enum.KioskStateAwaitingName
		s.locked = true
		s.mu.Lock()
		s.rescheduleIdle()
		s.mu.Unlock()
	}
	return s
}

// OnReset registers a hook invoked when a reset lands (after the reset
// delay). Hooks are how collaborators clear the order and its snapshot.
func (s *Session) OnReset(fn func()) {
	s.mu.Lock()
	s.onReset = append(s.onReset, fn)
	s.mu.Unlock()
}

// OnStateChange registers a hook invoked after every state transition.
func (s *Session) OnStateChange(fn func(state string)) {
	s.mu.Lock()
	s.onState = append(s.onState, fn)
	s.mu.Unlock()
}

// Active reports whether kiosk mode is on for this session.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != enum.KioskStateInactive
}

// State returns the current state name.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ScrollLocked reports whether the terminal should refuse scrolling. The
// lock holds while a customer name is being collected.
func (s *Session) ScrollLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// CustomerName returns the captured name, or "" when none was captured.
func (s *Session) CustomerName() string {
	if !s.Active() {
		return ""
	}
	return s.slot.Get()
}

// SubmitName captures the customer name, unlocks scroll and moves to Ready.
// The name is trimmed; an empty result is rejected.
func (s *Session) SubmitName(name string) error {
	s.mu.Lock()
	if s.state == enum.KioskStateInactive {
		s.mu.Unlock()
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		s.mu.Unlock()
		return ErrEmptyName
	}
	s.slot.Set(name)
	s.locked = false
	s.state = enum.KioskStateReady
	s.rescheduleIdle()
	cbs := s.stateCallbacks()
	s.mu.Unlock()

	runState(cbs, enum.KioskStateReady)
	return nil
}

// Touch records a qualifying interaction: the idle timer is cancelled and
// rescheduled. It is ignored while a reset is in flight.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == enum.KioskStateInactive || s.resetting {
		return
	}
	s.rescheduleIdle()
}

// ForceReset triggers the reset flow immediately, as if the idle timer had
// elapsed. Used for explicit resets and for the detected return from the
// messaging app.
func (s *Session) ForceReset() {
	s.beginReset()
}

// DecorateMessage prepends the customer line to an outbound order message
// when a name was captured. Inactive sessions return the message untouched.
func (s *Session) DecorateMessage(msg string) string {
	if name := s.CustomerName(); name != "" {
		return "Cliente: " + name + "\n\n" + msg
	}
	return msg
}

// Stop cancels any pending timers. For session teardown.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
	if s.resetTimer != nil {
		s.resetTimer.Stop()
		s.resetTimer = nil
	}
}

// beginReset enters Resetting and schedules the landing after the reset
// delay. A reset already in progress suppresses the request.
func (s *Session) beginReset() {
	s.mu.Lock()
	if s.state == enum.KioskStateInactive || s.resetting {
		s.mu.Unlock()
		return
	}
	s.resetting = true
	if s.idleTimer != nil {
		s.idleTimer.Stop()
		s.idleTimer = nil
	}
	s.state = enum.KioskStateResetting
	s.resetTimer = s.clock.AfterFunc(s.cfg.ResetDelay, s.finishReset)
	cbs := s.stateCallbacks()
	s.mu.Unlock()

	runState(cbs, enum.KioskStateResetting)
}

// finishReset lands the reset: clear the name, notify reset hooks, re-lock
// scroll and start a fresh AwaitingName cycle.
func (s *Session) finishReset() {
	s.mu.Lock()
	if !s.resetting {
		s.mu.Unlock()
		return
	}
	s.slot.Clear()
	s.locked = true
	s.state = enum.KioskStateAwaitingName
	s.resetting = false
	s.resetTimer = nil
	s.rescheduleIdle()
	resetCbs := make([]func(), len(s.onReset))
	copy(resetCbs, s.onReset)
	stateCbs := s.stateCallbacks()
	s.mu.Unlock()

	for _, fn := range resetCbs {
		fn()
	}
	runState(stateCbs, enum.KioskStateAwaitingName)
}

// rescheduleIdle cancels and reschedules the single idle timer. Caller must
// hold s.mu.
func (s *Session) rescheduleIdle() {
	if s.idleTimer != nil {
		s.idleTimer.Stop()
	}
	s.idleTimer = s.clock.AfterFunc(s.cfg.IdleTimeout, s.beginReset)
}

// stateCallbacks snapshots the transition hooks. Caller must hold s.mu;
// hooks run after unlock so they can call back into the session.
func (s *Session) stateCallbacks() []func(string) {
	cbs := make([]func(string), len(s.onState))
	copy(cbs, s.onState)
	return cbs
}

func runState(cbs []func(string), state string) {
	for _, fn := range cbs {
		fn(state)
	}
}
