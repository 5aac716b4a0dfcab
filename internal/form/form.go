// Package form implements the form controller used by the create and edit
// screens: per-field rules, touched/dirty tracking and guarded submission.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/amcham/internal/domain"
)

// webURLPattern accepts bare hosts ("amcham.sn") as well as http(s) URLs.
var webURLPattern = regexp.MustCompile(`^(https?://)?([\w-]+\.)+[\w-]{2,}(:\d+)?(/[\w\-./?%&=#~+]*)?$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the custom "weburl" rule
// registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		if err := validate.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
			return webURLPattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(fmt.Sprintf("register weburl rule: %v", err))
		}
	})
	return validate
}

// Field declares one input and its validator rules, e.g. "required,email"
// or "omitempty,weburl".
type Field struct {
	Name  string
	Rules string
}

// Values holds the raw string value of each field.
type Values map[string]string

// Int64 parses field name, returning 0 when empty or invalid.
func (v Values) Int64(name string) int64 {
	n, _ := strconv.ParseInt(strings.TrimSpace(v[name]), 10, 64)
	return n
}

// Submitter receives trimmed values of a valid form.
type Submitter func(ctx context.Context, values Values) error

// Refresher is the owning list view, re-read after a successful submit.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Schema describes a form. It is immutable and shared by controllers.
type Schema struct {
	name   string
	fields []Field
}

// NewSchema returns a schema for fields. Field names must be unique.
func NewSchema(name string, fields ...Field) *Schema {
	return &Schema{name: name, fields: slices.Clone(fields)}
}

// Name returns the form name.
func (s *Schema) Name() string { return s.name }

// Fields returns the declared fields in order.
func (s *Schema) Fields() []Field { return slices.Clone(s.fields) }

// Controller tracks the state of one form instance.
type Controller struct {
	schema *Schema
	submit Submitter
	list   Refresher
	log    *slog.Logger

	mu      sync.Mutex
	values  Values
	initial Values
	touched map[string]bool
	dirty   map[string]bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithRefresher sets the list view refreshed after each successful submit.
func WithRefresher(r Refresher) Option {
	return func(c *Controller) { c.list = r }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// New returns a controller for s, initialised with initial values (an edit
// form) or empty (a create form).
func (s *Schema) New(initial Values, submit Submitter, opts ...Option) *Controller {
	c := &Controller{
		schema:  s,
		submit:  submit,
		initial: maps.Clone(initial),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.reset()
	return c
}

// Set stores value for name and marks the field dirty.
func (c *Controller) Set(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.has(name) {
		return
	}
	c.values[name] = value
	c.dirty[name] = true
}

// Touch marks name as visited.
func (c *Controller) Touch(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.has(name) {
		c.touched[name] = true
	}
}

// Value returns the current raw value of name.
func (c *Controller) Value(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[name]
}

// Values returns a copy of the current raw values.
func (c *Controller) Values() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.values)
}

// IsFieldInvalid reports whether name fails its rules and the user has
// already interacted with it.
func (c *Controller) IsFieldInvalid(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.touched[name] && !c.dirty[name] {
		return false
	}
	return c.failedRule(name) != ""
}

// Valid reports whether every field passes its rules.
func (c *Controller) Valid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.failures()) == 0
}

// Errors returns the failing rule of each field that is both invalid and
// visible (touched or dirty).
func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string)
	for name, rule := range c.failures() {
		if c.touched[name] || c.dirty[name] {
			out[name] = rule
		}
	}
	return out
}

// Submit validates the form. An invalid form has every field marked touched
// and returns a validation error without calling the submitter. A valid form
// hands trimmed values to the submitter, then resets and refreshes the owning
// list.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if failures := c.failures(); len(failures) > 0 {
		for _, f := range c.schema.fields {
			c.touched[f.Name] = true
		}
		c.mu.Unlock()
		return &ValidationError{Form: c.schema.name, Fields: failures}
	}
	values := make(Values, len(c.values))
	for k, v := range c.values {
		values[k] = strings.TrimSpace(v)
	}
	c.mu.Unlock()

	if c.submit == nil {
		return errors.New("form: no submitter configured")
	}
	if err := c.submit(ctx, values); err != nil {
		return err
	}

	c.mu.Lock()
	c.initial = nil
	c.reset()
	c.mu.Unlock()

	if c.list != nil {
		if err := c.list.Refresh(ctx); err != nil {
			c.log.WarnContext(ctx, "list refresh after submit failed",
				slog.String("form", c.schema.name), slog.Any("error", err))
		}
	}
	return nil
}

// Reset restores the initial values and clears touched and dirty flags.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Controller) reset() {
	c.values = make(Values, len(c.schema.fields))
	for _, f := range c.schema.fields {
		c.values[f.Name] = c.initial[f.Name]
	}
	c.touched = make(map[string]bool)
	c.dirty = make(map[string]bool)
}

func (c *Controller) has(name string) bool {
	return slices.ContainsFunc(c.schema.fields, func(f Field) bool { return f.Name == name })
}

func (c *Controller) failures() map[string]string {
	out := make(map[string]string)
	for _, f := range c.schema.fields {
		if rule := c.failedRule(f.Name); rule != "" {
			out[f.Name] = rule
		}
	}
	return out
}

// failedRule returns the first failing rule ("min=2", "email"), or "".
func (c *Controller) failedRule(name string) string {
	idx := slices.IndexFunc(c.schema.fields, func(f Field) bool { return f.Name == name })
	if idx < 0 || c.schema.fields[idx].Rules == "" {
		return ""
	}
	err := Validator().Var(strings.TrimSpace(c.values[name]), c.schema.fields[idx].Rules)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if p := verrs[0].Param(); p != "" {
			return verrs[0].Tag() + "=" + p
		}
		return verrs[0].Tag()
	}
	return "invalid"
}

// ValidationError lists the failing rule per field of a rejected submit.
type ValidationError struct {
	Form   string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := slices.Sorted(maps.Keys(e.Fields))
	return fmt.Sprintf("form %s: invalid fields: %s", e.Form, strings.Join(names, ", "))
}

// FieldErrors returns the failing rule per field.
func (e *ValidationError) FieldErrors() map[string]string { return maps.Clone(e.Fields) }

// Unwrap lets errors.Is match domain.ErrValidation.
func (e *ValidationError) Unwrap() error { return domain.ErrValidation }
