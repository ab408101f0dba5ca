package goform

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ErrorSetter reports a domain-level rejection for one field from inside a
// submit handler (e.g. "email already registered"). Calls made after the
// handler returns are dropped.
type ErrorSetter func(field, message string)

// SubmitHandler receives the validated values. Returning nil without calling
// setError means success. A returned error is a transport failure.
type SubmitHandler func(ctx context.Context, values ValueMap, setError ErrorSetter) error

// Outcome summarizes what a Submit call did.
type Outcome int

const (
	OutcomeIgnored   Outcome = iota // Submit was not attempted (in flight or already succeeded).
	OutcomeInvalid                  // Validation rejected the values; the handler was not called.
	OutcomeRejected                 // The handler reported field errors.
	OutcomeFailed                   // The handler or the evaluator returned an error.
	OutcomeSucceeded
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInvalid:
		return "invalid"
	case OutcomeRejected:
		return "rejected"
	case OutcomeFailed:
		return "failed"
	case OutcomeSucceeded:
		return "succeeded"
	default:
		return "ignored"
	}
}

// Controller sequences validate -> submit handler -> status for one form.
//
// Transitions:
//
//	Idle --submit, invalid-->   Idle (errors populated, no Submitting)
//	Idle --submit, valid-->     Submitting
//	Submitting --ok-->          Succeeded (terminal until a new Form)
//	Submitting --rejected-->    Failed --> Idle
type Controller struct {
	store     *Store
	validator Validator
	handler   SubmitHandler
	next      func()
	logger    *slog.Logger

	mu       sync.Mutex
	status   Status
	inFlight bool
	subs     []statusSub
	nextSub  int
}

type statusSub struct {
	id int
	fn func(Status)
}

// ControllerOpt configures a Controller.
type ControllerOpt struct {
	Validator Validator
	Handler   SubmitHandler
	Next      func()
	Logger    *slog.Logger
}

// NewController builds a controller in the Idle state.
func NewController(store *Store, opt ControllerOpt) *Controller {
	logger := opt.Logger
	if logger == nil {
		logger = discardLogger()
	}
	return &Controller{
		store:     store,
		validator: opt.Validator,
		handler:   opt.Handler,
		next:      opt.Next,
		logger:    logger,
	}
}

// Status returns the current lifecycle state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// IsSubmitting reports whether the handler is running.
func (c *Controller) IsSubmitting() bool { return c.Status() == Submitting }

// IsSubmitSuccessful reports whether the last submission succeeded.
func (c *Controller) IsSubmitSuccessful() bool { return c.Status() == Succeeded }

// OnStatus registers fn for every status transition. fn runs synchronously on
// the submitting goroutine.
func (c *Controller) OnStatus(fn func(Status)) (cancel func()) {
	if fn == nil {
		return func() {}
	}
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, statusSub{id: id, fn: fn})
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Submit validates the current values and, when they pass, invokes the
// submit handler once. A request arriving while another is in flight is
// ignored and reported with ErrSubmitInProgress.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	switch {
	case c.inFlight:
		c.mu.Unlock()
		c.logger.Debug("submit ignored", slog.String("reason", "in flight"))
		return OutcomeIgnored, ErrSubmitInProgress
	case c.status == Succeeded:
		c.mu.Unlock()
		c.logger.Debug("submit ignored", slog.String("reason", "already succeeded"))
		return OutcomeIgnored, ErrAlreadySubmitted
	}
	c.inFlight = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	c.store.ClearErrors()
	values := c.store.Snapshot()
	res := Validate(ctx, c.validator, values)
	if res.Err != nil {
		c.logger.Error("validator failed", slog.Any("error", res.Err))
		return OutcomeFailed, fmt.Errorf("validate: %w", res.Err)
	}
	if !res.OK {
		c.store.ReplaceErrors(res.Errors)
		c.logger.Debug("validation rejected", slog.Int("fields", len(res.Errors)))
		return OutcomeInvalid, nil
	}

	c.setStatus(Submitting)

	var rejected, done atomic.Bool
	setError := func(field, message string) {
		if done.Load() {
			c.logger.Warn("error setter called after handler returned", slog.String("field", field))
			return
		}
		rejected.Store(true)
		c.store.SetError(field, message)
	}
	var err error
	if c.handler != nil {
		err = c.handler(ctx, values.Clone(), setError)
	}
	done.Store(true)

	if err != nil || rejected.Load() {
		c.setStatus(Failed)
		c.setStatus(Idle)
		if err != nil {
			c.logger.Error("submit handler failed", slog.Any("error", err))
			return OutcomeFailed, fmt.Errorf("submit: %w", err)
		}
		c.logger.Debug("submission rejected", slog.Int("fields", len(c.store.Errors())))
		return OutcomeRejected, nil
	}

	c.setStatus(Succeeded)
	if c.next != nil {
		c.next()
	}
	return OutcomeSucceeded, nil
}

func (c *Controller) setStatus(s Status) {
	c.mu.Lock()
	from := c.status
	c.status = s
	subs := append([]statusSub(nil), c.subs...)
	c.mu.Unlock()

	c.logger.Debug("status", slog.String("from", from.String()), slog.String("to", s.String()))
	for _, sub := range subs {
		sub.fn(s)
	}
}
