// Package param converts raw command parameter values into typed ones.
//
// A command's usage pattern declares a type tag per placeholder; the
// Registry maps each tag to a Converter. Converters distinguish between
// malformed raw text (*FormatError) and well-formed text whose referent
// cannot be resolved (*ValueError), so callers can phrase user-facing
// errors accordingly.
package param

import (
	"context"
	"fmt"
	"sort"

	"github.com/puzpuzpuz/xsync/v3"
)

// Converter turns a raw string into a typed value. The lookup capability is
// supplied by the platform adapter and may be nil for converters that do
// not resolve entities. A converter may block on the lookup; it propagates
// ctx for the platform to enforce timeouts around it.
type Converter func(ctx context.Context, raw string, lookup Lookup) (any, error)

// Entity is a platform entity resolved from a mention id.
type Entity struct {
	ID   uint64
	Name string
}

// Lookup resolves platform entity ids to entities. Implementations return
// (nil, nil) when the id is well-formed but refers to nothing, and a
// non-nil error when the platform itself failed. Lookups may block the
// calling invocation or be satisfied asynchronously by the platform; the
// converter contract tolerates either.
type Lookup interface {
	ChannelByID(ctx context.Context, id uint64) (*Entity, error)
	UserByID(ctx context.Context, id uint64) (*Entity, error)
}

// Typed is a converted command parameter. It lives for one command
// invocation.
type Typed struct {
	Name  string
	Tag   string
	Value any
}

// FormatError reports raw text that is syntactically invalid for its type
// tag. It is recoverable and surfaced to the end user.
type FormatError struct {
	Tag string
	Raw string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid %s value %q", e.Tag, e.Raw)
}

// ValueError reports well-formed raw text whose referent could not be
// resolved, e.g. a mention of a channel that no longer exists. It is
// recoverable and surfaced to the end user.
type ValueError struct {
	Tag string
	Raw string
	Err error // underlying lookup failure, if any
}

func (e *ValueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot resolve %s value %q: %s", e.Tag, e.Raw, e.Err)
	}
	return fmt.Sprintf("cannot resolve %s value %q", e.Tag, e.Raw)
}

func (e *ValueError) Unwrap() error {
	return e.Err
}

// Registry maps type tags to converters. It is safe for concurrent Convert
// calls against rare Register calls.
type Registry struct {
	converters *xsync.MapOf[string, Converter]
}

// NewRegistry creates a Registry with all built-in converters registered.
func NewRegistry() *Registry {
	r := &Registry{
		converters: xsync.NewMapOf[string, Converter](),
	}
	for tag, conv := range builtins {
		r.Register(tag, conv)
	}
	return r
}

// Register registers a converter for the given type tag. If the tag is
// already registered, it is overwritten.
func (r *Registry) Register(tag string, conv Converter) {
	r.converters.Store(tag, conv)
}

// Has reports whether a converter is registered for the given type tag.
// Command registration uses this to reject unknown tags up front: an
// unregistered tag is a configuration error, never a runtime one.
func (r *Registry) Has(tag string) bool {
	_, ok := r.converters.Load(tag)
	return ok
}

// Tags returns all registered type tags, sorted.
func (r *Registry) Tags() []string {
	var tags []string
	r.converters.Range(func(tag string, _ Converter) bool {
		tags = append(tags, tag)
		return true
	})
	sort.Strings(tags)
	return tags
}

// Convert converts raw text using the converter registered for tag.
// It returns a *FormatError or *ValueError for user errors, or a plain
// error for an unregistered tag.
func (r *Registry) Convert(ctx context.Context, tag, raw string, lookup Lookup) (any, error) {
	conv, ok := r.converters.Load(tag)
	if !ok {
		return nil, fmt.Errorf("no converter registered for type tag %q", tag)
	}
	return conv(ctx, raw, lookup)
}
