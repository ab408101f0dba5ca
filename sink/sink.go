// Package sink persists submitted forms and turns unique-key conflicts into
// field errors.
package sink

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	goform "github.com/reoring/goform"
	"github.com/reoring/goform/i18n"
)

// ErrConflict is matched by every *ConflictError.
var ErrConflict = errors.New("sink: unique value already stored")

// Submission is one accepted form payload.
type Submission struct {
	ID     string
	Form   string
	Values goform.ValueMap
	// Unique lists fields whose value must not repeat across submissions of
	// the same form.
	Unique []string
	At     time.Time
}

// Sink stores submissions. Save returns a *ConflictError when a unique field
// repeats a stored value.
type Sink interface {
	Save(ctx context.Context, s Submission) error
}

// ConflictError names the field whose value is already taken.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("sink: %s %q already stored", e.Field, e.Value)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// HandlerOpt configures Handler.
type HandlerOpt struct {
	// Unique fields are checked for conflicts.
	Unique []string
	// Messages overrides the conflict message per field. The default comes
	// from i18n ("conflict").
	Messages map[string]string
	Logger   *slog.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// Handler adapts s to a submit handler for the named form. Conflicts become
// field errors through the setter; any other failure is returned.
func Handler(s Sink, form string, opt HandlerOpt) goform.SubmitHandler {
	now := opt.Now
	if now == nil {
		now = time.Now
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(ctx context.Context, values goform.ValueMap, setError goform.ErrorSetter) error {
		sub := Submission{
			ID:     uuid.NewString(),
			Form:   form,
			Values: values,
			Unique: opt.Unique,
			At:     now().UTC(),
		}
		err := s.Save(ctx, sub)
		var ce *ConflictError
		switch {
		case err == nil:
			logger.Info("submission stored", slog.String("form", form), slog.String("submission_id", sub.ID))
			return nil
		case errors.As(err, &ce):
			msg, ok := opt.Messages[ce.Field]
			if !ok {
				msg = i18n.T(goform.CodeConflict, map[string]string{"field": ce.Field})
			}
			logger.Info("submission rejected", slog.String("form", form), slog.String("field", ce.Field))
			setError(ce.Field, msg)
			return nil
		default:
			return fmt.Errorf("sink: save %s: %w", form, err)
		}
	}
}

// Memory is an in-process Sink.
type Memory struct {
	mu     sync.Mutex
	subs   []Submission
	unique map[string]map[string]string // form/field -> value -> submission id
}

func NewMemory() *Memory {
	return &Memory{unique: map[string]map[string]string{}}
}

func (m *Memory) Save(ctx context.Context, s Submission) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range s.Unique {
		v, ok := s.Values[f]
		if !ok || v.IsAbsent() {
			continue
		}
		if _, taken := m.unique[s.Form+"/"+f][v.String()]; taken {
			return &ConflictError{Field: f, Value: v.String()}
		}
	}
	for _, f := range s.Unique {
		v, ok := s.Values[f]
		if !ok || v.IsAbsent() {
			continue
		}
		key := s.Form + "/" + f
		if m.unique[key] == nil {
			m.unique[key] = map[string]string{}
		}
		m.unique[key][v.String()] = s.ID
	}
	s.Values = s.Values.Clone()
	m.subs = append(m.subs, s)
	return nil
}

// Submissions returns stored submissions for form in save order.
func (m *Memory) Submissions(form string) []Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Submission
	for _, s := range m.subs {
		if s.Form == form {
			out = append(out, s)
		}
	}
	return out
}
