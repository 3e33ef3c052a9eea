package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

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

var ErrOpen = errors.New("circuit breaker is open")

type Config struct {
	// consecutive failures before opening
	FailureThreshold int
	// successes in half-open before closing
	SuccessThreshold int
	// how long to stay open before probing
	Timeout time.Duration
	// concurrent probes allowed while half-open
	HalfOpenMaxRequests int
}

func DefaultConfig() Config {
	return Config{
		FailureThreshold:    5,
		SuccessThreshold:    2,
		Timeout:             30 * time.Second,
		HalfOpenMaxRequests: 3,
	}
}

// IgnoreFunc reports errors that should not count as failures, such as a
// caller cancelling its own context.
type IgnoreFunc func(err error) bool

type CircuitBreaker struct {
	config Config
	ignore IgnoreFunc
	now    func() time.Time

	onStateChange func(from, to State)

	mu            sync.Mutex
	state         State
	failureCount  int
	successCount  int
	halfOpenCount int
	stateSince    time.Time
}

func New(config Config) *CircuitBreaker {
	cb := &CircuitBreaker{
		config: config,
		now:    time.Now,
		ignore: func(err error) bool { return errors.Is(err, context.Canceled) },
	}
	cb.stateSince = cb.now()
	return cb
}

// OnStateChange registers a callback invoked under the breaker lock.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) *CircuitBreaker {
	cb.onStateChange = fn
	return cb
}

func (cb *CircuitBreaker) WithIgnore(fn IgnoreFunc) *CircuitBreaker {
	cb.ignore = fn
	return cb
}

// Execute runs fn unless the breaker is open.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(context.Context) error) error {
	if err := cb.allow(); err != nil {
		return err
	}

	err := fn(ctx)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	if err != nil && (cb.ignore == nil || !cb.ignore(err)) {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
	return err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateOpen && cb.now().Sub(cb.stateSince) >= cb.config.Timeout {
		cb.setState(StateHalfOpen)
	}

	switch cb.state {
	case StateOpen:
		return ErrOpen
	case StateHalfOpen:
		if cb.halfOpenCount >= cb.config.HalfOpenMaxRequests {
			return ErrOpen
		}
		cb.halfOpenCount++
	}
	return nil
}

func (cb *CircuitBreaker) onFailure() {
	switch cb.state {
	case StateHalfOpen:
		cb.setState(StateOpen)
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.setState(StateOpen)
		}
	}
}

func (cb *CircuitBreaker) onSuccess() {
	switch cb.state {
	case StateHalfOpen:
		cb.successCount++
		cb.halfOpenCount--
		if cb.successCount >= cb.config.SuccessThreshold {
			cb.setState(StateClosed)
		}
	case StateClosed:
		cb.failureCount = 0
	}
}

func (cb *CircuitBreaker) setState(to State) {
	from := cb.state
	cb.state = to
	cb.stateSince = cb.now()
	cb.failureCount = 0
	cb.successCount = 0
	cb.halfOpenCount = 0
	if from != to && cb.onStateChange != nil {
		cb.onStateChange(from, to)
	}
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.setState(StateClosed)
}
