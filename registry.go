package goform

import (
	"log/slog"
	"sync"
)

// RegisterOpt tunes a single registration.
type RegisterOpt struct {
	// Exclude keeps the field out of the ValueMap. The control still reads and
	// writes its value through the store.
	Exclude bool
}

// Registry hands out bindings keyed by field name.
//
// Registering the same name twice is supported: both bindings share the one
// value held by the store (mirrored inputs such as a hidden input driving
// slot rendering).
type Registry struct {
	store  *Store
	masks  MaskSet
	logger *slog.Logger

	mu    sync.Mutex
	names []string
}

// NewRegistry builds a registry over store using masks for change events.
func NewRegistry(store *Store, masks MaskSet, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = discardLogger()
	}
	return &Registry{store: store, masks: masks, logger: logger}
}

// Register returns a binding for name, seeding the field as Absent on first
// registration.
func (r *Registry) Register(name string, opts ...RegisterOpt) (*Binding, error) {
	if name == "" {
		return nil, ErrEmptyFieldName
	}
	var opt RegisterOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}

	r.mu.Lock()
	if !r.store.Flags(name).Has(FieldRegistered) {
		r.names = append(r.names, name)
	}
	r.store.seed(name, !opt.Exclude)
	r.mu.Unlock()

	return &Binding{name: name, store: r.store, masks: r.masks, logger: r.logger}, nil
}

// Names lists registered field names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// Binding is the read/write handle a control holds for its own field. It
// cannot reach any other field's entry.
type Binding struct {
	name   string
	store  *Store
	masks  MaskSet
	logger *slog.Logger
}

// Name returns the bound field name.
func (b *Binding) Name() string { return b.name }

// Value returns the current value from the store.
func (b *Binding) Value() Value { return b.store.Value(b.name) }

// Set writes v as the field's value, bypassing masks.
func (b *Binding) Set(v Value) { b.store.SetValue(b.name, v) }

// Change runs ev through the mask pipeline, then through post in order, and
// stores the result. When the mask fails the previous value is kept and the
// error is returned.
func (b *Binding) Change(ev ChangeEvent, post ...func(Value) Value) (Value, error) {
	v, err := ApplyMask(b.masks, b.name, ev)
	if err != nil {
		b.logger.Error("mask failed; change discarded", slog.String("field", b.name), slog.Any("error", err))
		return b.Value(), err
	}
	for _, p := range post {
		v = p(v)
	}
	b.store.SetValue(b.name, v)
	return v, nil
}

// OnChange registers fn to run after every write to this field.
func (b *Binding) OnChange(fn func(Value)) (cancel func()) {
	return b.store.Watch(b.name, fn)
}

// Error returns the field's current error message.
func (b *Binding) Error() (string, bool) { return b.store.Error(b.name) }
