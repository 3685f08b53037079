package images

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("images: circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// Breaker counts consecutive failures. Once the threshold is reached calls
// fail fast until the cooldown elapses; then a single trial call decides
// whether the circuit closes again.
type Breaker struct {
	threshold int
	cooldown  time.Duration

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	now      func() time.Time
}

func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		state:     StateClosed,
		now:       time.Now,
	}
}

// Execute runs fn unless the circuit is open. fn runs without holding the lock.
func (b *Breaker) Execute(fn func() error) error {
	return b.ExecuteContext(context.Background(), fn)
}

// ExecuteContext is Execute for calls bound to ctx. A failure observed after
// ctx is done belongs to the caller, not the provider, and is not counted.
func (b *Breaker) ExecuteContext(ctx context.Context, fn func() error) (err error) {
	if !b.allow() {
		return ErrCircuitOpen
	}
	defer func() {
		if r := recover(); r != nil {
			b.record(fmt.Errorf("panic: %v", r))
			panic(r)
		}
	}()

	err = fn()
	if err != nil && ctx.Err() != nil {
		b.release()
		return err
	}
	b.record(err)
	return err
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			return false
		}
		b.state = StateHalfOpen
		return true
	case StateHalfOpen:
		// a trial is already in flight
		return false
	default:
		return true
	}
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		b.failures = 0
		b.state = StateClosed
		return
	}

	b.failures++
	if b.state == StateHalfOpen || b.failures >= b.threshold {
		b.state = StateOpen
		b.openedAt = b.now()
	}
}

// release ends a call without a verdict. An abandoned half-open trial returns
// the circuit to open with the cooldown already elapsed, so the next call
// becomes the trial.
func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.state = StateOpen
	}
}

// Healthy is false while the circuit is open and cooling down.
func (b *Breaker) Healthy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		return b.now().Sub(b.openedAt) >= b.cooldown
	case StateHalfOpen:
		return false
	default:
		return true
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
