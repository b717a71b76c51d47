package kiosk

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hudsonjuan/digno-acai/internal/enum"
)

// --- Fake clock ---

// fakeTimer fires only when the test says so.
type fakeTimer struct {
	mu      sync.Mutex
	d       time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// fire runs the callback unless the timer was stopped. Returns whether it ran.
func (t *fakeTimer) fire() bool {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	fn := t.fn
	t.mu.Unlock()
	fn()
	return true
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// last returns the most recently scheduled timer.
func (c *fakeClock) last() *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return nil
	}
	return c.timers[len(c.timers)-1]
}

func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		t.mu.Lock()
		if !t.stopped && !t.fired {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

func testConfig() Config {
	return Config{IdleTimeout: 90 * time.Second, ResetDelay: 3 * time.Second}
}

func newTestSession(active bool) (*Session, *fakeClock) {
	clock := &fakeClock{}
	return New(active, testConfig(), WithClock(clock)), clock
}

// --- Tests ---

func TestInactiveSessionIsNoOp(t *testing.T) {
	s, clock := newTestSession(false)

	if s.Active() {
		t.Fatal("session without the kiosk flag must be inactive")
	}
	if s.State() != enum.KioskStateInactive {
		t.Fatalf("state = %s, want INACTIVE", s.State())
	}
	if clock.last() != nil {
		t.Fatal("inactive session must not schedule timers")
	}

	// every operation is a no-op
	if err := s.SubmitName("Maria"); err != nil {
		t.Fatalf("SubmitName on inactive session: %v", err)
	}
	s.Touch()
	s.ForceReset()
	if s.State() != enum.KioskStateInactive {
		t.Fatalf("state = %s after no-ops, want INACTIVE", s.State())
	}
	if got := s.DecorateMessage("pedido"); got != "pedido" {
		t.Fatalf("DecorateMessage = %q, want untouched", got)
	}
}

func TestActivationStartsAwaitingName(t *testing.T) {
	s, clock := newTestSession(true)

	if s.State() != enum.KioskStateAwaitingName {
		t.Fatalf("state = %s, want AWAITING_NAME", s.State())
	}
	if !s.ScrollLocked() {
		t.Fatal("scroll must be locked while collecting the name")
	}
	idle := clock.last()
	if idle == nil || idle.d != 90*time.Second {
		t.Fatalf("idle timer = %+v, want one pending at 90s", idle)
	}
}

func TestSubmitName(t *testing.T) {
	s, _ := newTestSession(true)

	if err := s.SubmitName("   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got: %v", err)
	}

	if err := s.SubmitName("  João  "); err != nil {
		t.Fatalf("SubmitName: %v", err)
	}
	if s.State() != enum.KioskStateReady {
		t.Fatalf("state = %s, want READY", s.State())
	}
	if s.CustomerName() != "João" {
		t.Fatalf("name = %q, want trimmed", s.CustomerName())
	}
	if s.ScrollLocked() {
		t.Fatal("scroll must unlock once the name is captured")
	}
}

func TestIdleTimeoutResetCycle(t *testing.T) {
	s, clock := newTestSession(true)
	if err := s.SubmitName("Ana"); err != nil {
		t.Fatal(err)
	}

	var resets int
	s.OnReset(func() { resets++ })
	var states []string
	s.OnStateChange(func(state string) { states = append(states, state) })

	// the idle timer elapses
	idle := clock.last()
	if !idle.fire() {
		t.Fatal("idle timer should have been pending")
	}
	if s.State() != enum.KioskStateResetting {
		t.Fatalf("state = %s, want RESETTING", s.State())
	}
	if resets != 0 {
		t.Fatal("reset hooks must not fire before the reset delay")
	}

	// the reset-delay timer lands the reset
	delay := clock.last()
	if delay.d != 3*time.Second {
		t.Fatalf("reset delay = %v, want 3s", delay.d)
	}
	if !delay.fire() {
		t.Fatal("reset delay timer should have been pending")
	}

	if s.State() != enum.KioskStateAwaitingName {
		t.Fatalf("state = %s, want AWAITING_NAME after reset", s.State())
	}
	if resets != 1 {
		t.Fatalf("reset hooks ran %d times, want 1", resets)
	}
	if s.CustomerName() != "" {
		t.Fatalf("name = %q, want cleared", s.CustomerName())
	}
	if !s.ScrollLocked() {
		t.Fatal("scroll must re-lock for the next customer")
	}

	wantStates := []string{enum.KioskStateResetting, enum.KioskStateAwaitingName}
	if len(states) != 2 || states[0] != wantStates[0] || states[1] != wantStates[1] {
		t.Fatalf("transitions = %v, want %v", states, wantStates)
	}
}

func TestTouchReschedulesIdleTimer(t *testing.T) {
	s, clock := newTestSession(true)
	if err := s.SubmitName("Ana"); err != nil {
		t.Fatal(err)
	}

	before := clock.last()
	s.Touch()
	after := clock.last()

	if before == after {
		t.Fatal("Touch must reschedule the idle timer")
	}
	// the superseded timer was cancelled: firing it does nothing
	if before.fire() {
		t.Fatal("superseded idle timer should have been stopped")
	}
	if s.State() != enum.KioskStateReady {
		t.Fatalf("state = %s, want READY", s.State())
	}
	// only one idle timer is ever pending
	if n := clock.pending(); n != 1 {
		t.Fatalf("%d timers pending, want 1", n)
	}
}

func TestResetReentrancyGuard(t *testing.T) {
	s, clock := newTestSession(true)
	if err := s.SubmitName("Ana"); err != nil {
		t.Fatal(err)
	}

	var resets int
	s.OnReset(func() { resets++ })

	s.ForceReset()
	delay := clock.last()

	// a second reset while one is in flight is suppressed
	s.ForceReset()
	s.Touch() // interactions during the reset are ignored too
	if clock.last() != delay {
		t.Fatal("concurrent reset request must not schedule more timers")
	}

	delay.fire()
	if resets != 1 {
		t.Fatalf("reset hooks ran %d times, want 1", resets)
	}
}

func TestForceResetEqualsIdleTimeout(t *testing.T) {
	s, clock := newTestSession(true)
	if err := s.SubmitName("Bia"); err != nil {
		t.Fatal(err)
	}

	// as after a detected return from the messaging app
	s.ForceReset()
	if s.State() != enum.KioskStateResetting {
		t.Fatalf("state = %s, want RESETTING", s.State())
	}
	clock.last().fire()
	if s.State() != enum.KioskStateAwaitingName {
		t.Fatalf("state = %s, want AWAITING_NAME", s.State())
	}
	if s.CustomerName() != "" {
		t.Fatal("name must be cleared")
	}
}

func TestDecorateMessage(t *testing.T) {
	s, _ := newTestSession(true)

	if got := s.DecorateMessage("pedido"); got != "pedido" {
		t.Fatalf("no name captured: DecorateMessage = %q, want untouched", got)
	}

	if err := s.SubmitName("Carlos"); err != nil {
		t.Fatal(err)
	}
	want := "Cliente: Carlos\n\npedido"
	if got := s.DecorateMessage("pedido"); got != want {
		t.Fatalf("DecorateMessage = %q, want %q", got, want)
	}
}

func TestStopCancelsTimers(t *testing.T) {
	s, clock := newTestSession(true)
	if err := s.SubmitName("Ana"); err != nil {
		t.Fatal(err)
	}

	s.Stop()
	if n := clock.pending(); n != 0 {
		t.Fatalf("%d timers pending after Stop, want 0", n)
	}
}
