package jsonapi

import (
	"errors"
	"reflect"
	"slices"

	"go.uber.org/zap"
)

// Observer receives the outcome of every encode and decode call. It is
// called synchronously and must be safe for concurrent use.
type Observer interface {
	ObserveEncode(resources int, err error)
	ObserveDecode(resources int, issues Issues, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveEncode(int, error)         {}
func (nopObserver) ObserveDecode(int, Issues, error) {}

// Builder collects resource types and converters for a Converter. It is not
// safe for concurrent use.
type Builder struct {
	types      []any
	converters []TypeConverter
	logger     *zap.Logger
	observer   Observer
	duplicates bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// AddResourceTypes registers resource types given as prototype values
// (Article{}, (*Article)(nil)) or reflect.Types.
func (b *Builder) AddResourceTypes(types ...any) *Builder {
	b.types = append(b.types, types...)
	return b
}

// AddConverters appends converters; earlier converters take priority.
func (b *Builder) AddConverters(cs ...TypeConverter) *Builder {
	b.converters = append(b.converters, cs...)
	return b
}

// WithLogger sets the logger used for build and decode diagnostics.
func (b *Builder) WithLogger(l *zap.Logger) *Builder {
	b.logger = l
	return b
}

// WithObserver sets the Observer notified of encode and decode outcomes.
func (b *Builder) WithObserver(o Observer) *Builder {
	b.observer = o
	return b
}

// DetectDuplicateMembers makes decoding report a duplicate_member Issue for
// every repeated object member in the input.
func (b *Builder) DetectDuplicateMembers() *Builder {
	b.duplicates = true
	return b
}

// Build compiles the registered types. It fails with a *SchemaError on the
// first invalid type.
func (b *Builder) Build() (*Converter, error) {
	c := &Converter{
		reg:        newRegistry(),
		conv:       NewConverters(b.converters...),
		logger:     b.logger,
		observer:   b.observer,
		duplicates: b.duplicates,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}

	for _, v := range b.types {
		t, ok := resourceStructType(v)
		if !ok {
			return nil, schemaErrorf(nil, "", "nil resource type")
		}
		if _, err := c.reg.register(t); err != nil {
			return nil, err
		}
	}
	for _, name := range c.reg.names {
		s := c.reg.byName[name]
		id, attrs, err := buildFields(s.Type, c.conv, c.reg.supports)
		if err != nil {
			return nil, withDiscriminator(err, name)
		}
		h, err := findHook(s.Type)
		if err != nil {
			return nil, withDiscriminator(err, name)
		}
		s.ID, s.Attributes, s.hook = id, attrs, h
		c.logger.Debug("registered resource type",
			zap.String("type", name),
			zap.Stringer("go_type", s.Type),
			zap.Bool("has_id", id != nil),
			zap.Int("attributes", len(attrs)),
			zap.Bool("post_create", h != nil),
		)
	}
	return c, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Converter {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

func withDiscriminator(err error, disc string) error {
	var se *SchemaError
	if errors.As(err, &se) && se.Discriminator == "" {
		se.Discriminator = disc
	}
	return err
}

// Converter encodes and decodes JSON:API documents for a fixed set of
// resource types. It is immutable and safe for concurrent use.
type Converter struct {
	reg        *registry
	conv       *Converters
	logger     *zap.Logger
	observer   Observer
	duplicates bool
}

// Supports reports whether the type of v (a prototype value or
// reflect.Type) is a registered resource type.
func (c *Converter) Supports(v any) bool {
	t, ok := resourceStructType(v)
	return ok && c.reg.supports(t)
}

// Schema returns a copy of the schema registered for disc.
func (c *Converter) Schema(disc string) (ResourceSchema, bool) {
	s, ok := c.reg.lookup(disc)
	if !ok {
		return ResourceSchema{}, false
	}
	out := *s
	out.Attributes = slices.Clone(s.Attributes)
	if s.ID != nil {
		id := *s.ID
		out.ID = &id
	}
	return out, true
}

// Discriminators lists registered resource types in registration order.
func (c *Converter) Discriminators() []string { return c.reg.discriminators() }

// Converters returns the scalar conversion registry used by c.
func (c *Converter) Converters() *Converters { return c.conv }

// schemaFor resolves the schema of a runtime value's struct type.
func (c *Converter) schemaFor(t reflect.Type) (*ResourceSchema, error) {
	disc, ok := discriminatorOf(t)
	if !ok {
		return nil, &TypeMismatchError{Type: t}
	}
	s, ok := c.reg.lookup(disc)
	if !ok {
		return nil, &TypeMismatchError{Type: t, Discriminator: disc}
	}
	if s.Type != t {
		return nil, &TypeMismatchError{Type: t, Discriminator: disc, Registered: s.Type}
	}
	return s, nil
}
