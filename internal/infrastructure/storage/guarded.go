package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while a Guarded store is rejecting calls
var ErrCircuitOpen = errors.New("storage: circuit open")

// State is the breaker position of a Guarded store
type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// GuardSettings configures when a Guarded store stops calling its backend
type GuardSettings struct {
	// MaxFailures is the number of consecutive failures that opens the circuit
	MaxFailures int
	// Cooldown is how long the circuit stays open before one probe is let through
	Cooldown time.Duration
	// OnStateChange is called whenever the state changes
	OnStateChange func(from, to State)
}

// DefaultGuardSettings returns the settings used by the server
func DefaultGuardSettings() GuardSettings {
	return GuardSettings{
		MaxFailures: 5,
		Cooldown:    30 * time.Second,
	}
}

// Guarded wraps a Store with a circuit breaker. After MaxFailures
// consecutive ErrUnavailable results every call fails fast with
// ErrCircuitOpen until Cooldown has passed. ErrNotFound counts as success.
// Calls abandoned by their own context count as neither.
type Guarded struct {
	store    Store
	settings GuardSettings

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probing  bool
	now      func() time.Time
}

// NewGuarded creates a guarded store, replacing non-positive settings with defaults
func NewGuarded(store Store, settings GuardSettings) *Guarded {
	defaults := DefaultGuardSettings()
	if settings.MaxFailures <= 0 {
		settings.MaxFailures = defaults.MaxFailures
	}
	if settings.Cooldown <= 0 {
		settings.Cooldown = defaults.Cooldown
	}
	return &Guarded{store: store, settings: settings, now: time.Now}
}

// State returns the current breaker state
func (g *Guarded) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentLocked()
}

// Unwrap returns the guarded backend
func (g *Guarded) Unwrap() Store {
	return g.store
}

// Close closes the backend if it holds resources
func (g *Guarded) Close() error {
	if closer, ok := g.store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Get reads key through the breaker
func (g *Guarded) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := g.do(func() error {
		var err error
		value, err = g.store.Get(ctx, key)
		return err
	})
	return value, err
}

// Set writes key through the breaker
func (g *Guarded) Set(ctx context.Context, key string, value []byte) error {
	return g.do(func() error { return g.store.Set(ctx, key, value) })
}

// Delete removes key through the breaker
func (g *Guarded) Delete(ctx context.Context, key string) error {
	return g.do(func() error { return g.store.Delete(ctx, key) })
}

// Keys lists keys through the breaker
func (g *Guarded) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := g.do(func() error {
		var err error
		keys, err = g.store.Keys(ctx, prefix)
		return err
	})
	return keys, err
}

func (g *Guarded) do(call func() error) error {
	if err := g.before(); err != nil {
		return err
	}
	err := call()
	switch {
	case err == nil, errors.Is(err, ErrNotFound):
		g.after(outcomeSuccess)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		g.after(outcomeAbandoned)
	default:
		g.after(outcomeFailure)
	}
	return err
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeFailure
	outcomeAbandoned
)

func (g *Guarded) before() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.currentLocked() {
	case StateOpen:
		return fmt.Errorf("%w: %w", ErrUnavailable, ErrCircuitOpen)
	case StateHalfOpen:
		if g.probing {
			return fmt.Errorf("%w: %w", ErrUnavailable, ErrCircuitOpen)
		}
		g.probing = true
	}
	return nil
}

func (g *Guarded) after(result outcome) {
	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.currentLocked()
	if state == StateHalfOpen {
		g.probing = false
	}

	switch result {
	case outcomeAbandoned:
		return
	case outcomeSuccess:
		g.failures = 0
		g.setLocked(StateClosed)
		return
	}

	g.failures++
	if state == StateHalfOpen || g.failures >= g.settings.MaxFailures {
		g.openedAt = g.now()
		g.setLocked(StateOpen)
	}
}

// currentLocked moves an expired open circuit to half-open
func (g *Guarded) currentLocked() State {
	if g.state == StateOpen && g.now().Sub(g.openedAt) >= g.settings.Cooldown {
		g.setLocked(StateHalfOpen)
	}
	return g.state
}

func (g *Guarded) setLocked(state State) {
	if g.state == state {
		return
	}
	prev := g.state
	g.state = state
	if state != StateOpen {
		g.failures = 0
	}
	if g.settings.OnStateChange != nil {
		g.settings.OnStateChange(prev, state)
	}
}
