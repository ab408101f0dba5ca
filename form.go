package goform

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Options configures a Form. Every field is optional.
type Options struct {
	// Name identifies the form in logs and sinks (e.g. "register").
	Name string
	// Validator is run on every submit. nil accepts all values.
	Validator Validator
	// Masks transforms change events per field before storage.
	Masks MaskSet
	// OnSubmit receives the validated values.
	OnSubmit SubmitHandler
	// OnChange observes the ValueMap after every value change.
	OnChange func(ValueMap)
	// Next runs once after a successful submission (e.g. navigation).
	Next func()
	// LoadingDelay debounces the loading flag; 0 means DefaultLoadingDelay,
	// negative means immediate.
	LoadingDelay time.Duration
	// Logger defaults to a handler that discards everything.
	Logger *slog.Logger
}

// Form ties a store, its registry, and its submission controller together.
// One Form is one mounted form instance; remounting means building a new Form.
type Form struct {
	id         string
	name       string
	store      *Store
	registry   *Registry
	controller *Controller
	loading    *Loading
	logger     *slog.Logger
}

// New mounts a form in the Idle state.
func New(opts Options) *Form {
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}
	logger = logger.With(slog.String("form", opts.Name), slog.String("form_id", id))

	store := NewStore()
	if opts.OnChange != nil {
		store.Subscribe(opts.OnChange)
	}
	f := &Form{
		id:       id,
		name:     opts.Name,
		store:    store,
		registry: NewRegistry(store, opts.Masks, logger),
		controller: NewController(store, ControllerOpt{
			Validator: opts.Validator,
			Handler:   opts.OnSubmit,
			Next:      opts.Next,
			Logger:    logger,
		}),
		loading: NewLoading(opts.LoadingDelay),
		logger:  logger,
	}
	f.controller.OnStatus(f.loading.Observe)
	logger.Debug("form mounted")
	return f
}

// ID returns the identifier of this mount.
func (f *Form) ID() string { return f.id }

// Name returns the configured form name.
func (f *Form) Name() string { return f.name }

// Flags reports the store flags of a field. Writes go through a Binding.
func (f *Form) Flags(name string) FieldFlag { return f.store.Flags(name) }

// Subscribe registers fn for every value change, read-only.
func (f *Form) Subscribe(fn func(ValueMap)) (cancel func()) { return f.store.Subscribe(fn) }

// Logger returns the form's logger.
func (f *Form) Logger() *slog.Logger { return f.logger }

// Register binds a control to a field; see Registry.Register.
func (f *Form) Register(name string, opts ...RegisterOpt) (*Binding, error) {
	return f.registry.Register(name, opts...)
}

// Fields lists registered field names in registration order.
func (f *Form) Fields() []string { return f.registry.Names() }

// Values returns the current ValueMap.
func (f *Form) Values() ValueMap { return f.store.Snapshot() }

// Error returns the current message for a field.
func (f *Form) Error(name string) (string, bool) { return f.store.Error(name) }

// Errors returns the current ErrorMap.
func (f *Form) Errors() ErrorMap { return f.store.Errors() }

// Submit runs the submission state machine; see Controller.Submit.
func (f *Form) Submit(ctx context.Context) (Outcome, error) { return f.controller.Submit(ctx) }

// Status returns the submission status.
func (f *Form) Status() Status { return f.controller.Status() }

func (f *Form) IsSubmitting() bool       { return f.controller.IsSubmitting() }
func (f *Form) IsSubmitSuccessful() bool { return f.controller.IsSubmitSuccessful() }

// OnStatus observes submission status transitions.
func (f *Form) OnStatus(fn func(Status)) (cancel func()) { return f.controller.OnStatus(fn) }

// Loading returns the debounced loading indicator.
func (f *Form) Loading() *Loading { return f.loading }

// Unmount stops pending timers. Bindings stay readable; the last values remain
// in the store.
func (f *Form) Unmount() {
	f.loading.Stop()
	f.logger.Debug("form unmounted")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
