// ABOUTME: Generic form controller holding a string draft, field errors and submit state
// ABOUTME: Validates on submit, saves through the entity service, and reports via a Notifier
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator"
	"github.com/harperreed/crmdesk/models"
	"go.uber.org/zap"
)

// State is the controller lifecycle: Closed, then Editing, then Submitting.
type State int

const (
	StateClosed State = iota
	StateEditing
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	}
	return "unknown"
}

var (
	ErrNotEditing   = errors.New("form is not open for editing")
	ErrSubmitting   = errors.New("form is already submitting")
	ErrUnknownField = errors.New("unknown form field")
)

// Rule pairs a validator tag with the message shown when it fails.
type Rule struct {
	Tag     string
	Message string
}

// Field describes one input of a form.
type Field struct {
	Key         string
	Label       string
	Placeholder string
	Default     string
	Options     []string
	Multiline   bool
	Rules       []Rule

	// SkipUnchanged applies Rules only once the value differs from the opened record.
	SkipUnchanged bool
}

// Draft holds the raw text of every field, keyed by UI field name.
type Draft map[string]string

func (d Draft) clone() Draft {
	out := make(Draft, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Get returns the trimmed value of key.
func (d Draft) Get(key string) string {
	return strings.TrimSpace(d[key])
}

// Schema binds a record type to its fields and draft conversions.
type Schema[T any] struct {
	Entity string
	Fields []Field
	ID     func(T) int
	// ToDraft renders a record into field text.
	ToDraft func(T) Draft
	// FromDraft overlays the draft onto base so fields the form does not
	// edit survive a full replacement.
	FromDraft func(base T, d Draft) T
}

// Service is what a controller needs from an entity service.
type Service[T any] interface {
	GetByID(ctx context.Context, id int) (T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id int, rec T) (T, error)
}

// Level of a notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
	LevelWarning
)

// Notifier receives the outcome of every submit.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) { f(level, message) }

// LogNotifier reports outcomes to a zap logger.
func LogNotifier(logger *zap.Logger) Notifier {
	return NotifierFunc(func(level Level, message string) {
		switch level {
		case LevelError:
			logger.Error(message)
		case LevelWarning:
			logger.Warn(message)
		default:
			logger.Info(message)
		}
	})
}

// Form is the type-erased view of a Controller used by front-ends.
type Form interface {
	Entity() string
	Fields() []Field
	OpenNew()
	OpenByID(ctx context.Context, id int) error
	Close()
	Set(key, value string) error
	Value(key string) string
	Errors() map[string]string
	State() State
	RecordID() int
	Save(ctx context.Context) (int, error)
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	notifier Notifier
	now      func() time.Time
	logger   *zap.Logger
}

func WithNotifier(n Notifier) Option { return func(o *options) { o.notifier = n } }

func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

func WithLogger(logger *zap.Logger) Option { return func(o *options) { o.logger = logger } }

// Controller drives one entity form.
type Controller[T any] struct {
	mu       sync.Mutex
	schema   Schema[T]
	service  Service[T]
	validate *validator.Validate
	notifier Notifier
	logger   *zap.Logger

	state   State
	id      int
	base    T
	initial Draft
	draft   Draft
	errors  map[string]string
}

// NewController builds a closed controller.
func NewController[T any](schema Schema[T], service Service[T], opts ...Option) (*Controller[T], error) {
	o := options{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.notifier == nil {
		o.notifier = LogNotifier(o.logger)
	}

	v, err := newValidator(o.now)
	if err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	return &Controller[T]{
		schema:   schema,
		service:  service,
		validate: v,
		notifier: o.notifier,
		logger:   o.logger.Named("form").With(zap.String("entity", schema.Entity)),
		errors:   map[string]string{},
	}, nil
}

func (c *Controller[T]) Entity() string  { return c.schema.Entity }
func (c *Controller[T]) Fields() []Field { return c.schema.Fields }

func (c *Controller[T]) field(key string) (Field, bool) {
	for _, f := range c.schema.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

func (c *Controller[T]) defaults() Draft {
	d := Draft{}
	for _, f := range c.schema.Fields {
		d[f.Key] = f.Default
	}
	return d
}

// Open seeds the draft. A nil record opens a blank form with field defaults.
func (c *Controller[T]) Open(rec *T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.base = zero
	c.id = 0
	c.draft = c.defaults()
	if rec != nil {
		c.base = *rec
		c.id = c.schema.ID(*rec)
		for k, v := range c.schema.ToDraft(*rec) {
			c.draft[k] = v
		}
	}
	c.initial = c.draft.clone()
	c.errors = map[string]string{}
	c.state = StateEditing
}

func (c *Controller[T]) OpenNew() { c.Open(nil) }

// OpenByID loads the record and opens it for editing.
func (c *Controller[T]) OpenByID(ctx context.Context, id int) error {
	rec, err := c.service.GetByID(ctx, id)
	if err != nil {
		return err
	}
	c.Open(&rec)
	return nil
}

// Close discards the draft.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateClosed
	c.draft = nil
	c.initial = nil
	c.errors = map[string]string{}
}

// Set updates one field and clears its error immediately.
func (c *Controller[T]) Set(key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateClosed:
		return ErrNotEditing
	case StateSubmitting:
		return ErrSubmitting
	}
	if _, ok := c.field(key); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	c.draft[key] = value
	delete(c.errors, key)
	return nil
}

func (c *Controller[T]) Value(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft[key]
}

// Draft returns a copy of the current draft.
func (c *Controller[T]) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.clone()
}

// Errors returns a copy of the current field errors.
func (c *Controller[T]) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

func (c *Controller[T]) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// RecordID is the id being edited, or 0 for a new record.
func (c *Controller[T]) RecordID() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func (c *Controller[T]) check() map[string]string {
	errs := map[string]string{}
	for _, f := range c.schema.Fields {
		value := c.draft.Get(f.Key)
		if f.SkipUnchanged && c.id != 0 && value == strings.TrimSpace(c.initial[f.Key]) {
			continue
		}
		for _, r := range f.Rules {
			if err := c.validate.Var(value, r.Tag); err != nil {
				errs[f.Key] = r.Message
				break
			}
		}
	}
	return errs
}

// Validate recomputes the error map and reports whether the draft is valid.
func (c *Controller[T]) Validate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateEditing {
		return false
	}
	c.errors = c.check()
	return len(c.errors) == 0
}

// Submit validates and saves the draft. On failure the draft is kept and
// the form stays open; on success it closes.
func (c *Controller[T]) Submit(ctx context.Context) (T, error) {
	var zero T

	c.mu.Lock()
	switch c.state {
	case StateClosed:
		c.mu.Unlock()
		return zero, ErrNotEditing
	case StateSubmitting:
		c.mu.Unlock()
		return zero, ErrSubmitting
	}
	c.errors = c.check()
	if len(c.errors) > 0 {
		verr := &models.ValidationError{Fields: make(map[string]string, len(c.errors))}
		for k, v := range c.errors {
			verr.Fields[k] = v
		}
		c.mu.Unlock()
		return zero, verr
	}
	c.state = StateSubmitting
	id := c.id
	rec := c.schema.FromDraft(c.base, c.draft.clone())
	c.mu.Unlock()

	var saved T
	var err error
	if id == 0 {
		saved, err = c.service.Create(ctx, rec)
	} else {
		saved, err = c.service.Update(ctx, id, rec)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	entity := strings.ToLower(c.schema.Entity)

	if err != nil {
		c.state = StateEditing
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			for k, v := range verr.Fields {
				c.errors[k] = v
			}
		}
		c.logger.Warn("save failed", zap.Int("id", id), zap.Error(err))
		c.notifier.Notify(LevelError, fmt.Sprintf("Failed to save %s: %v", entity, err))
		return zero, err
	}

	verb := "updated"
	if id == 0 {
		verb = "created"
	}
	c.notifier.Notify(LevelSuccess, fmt.Sprintf("%s %s successfully", c.schema.Entity, verb))
	c.state = StateClosed
	c.draft = nil
	c.initial = nil
	c.errors = map[string]string{}
	return saved, nil
}

// Save submits and returns the saved record's id.
func (c *Controller[T]) Save(ctx context.Context) (int, error) {
	saved, err := c.Submit(ctx)
	if err != nil {
		return 0, err
	}
	return c.schema.ID(saved), nil
}
