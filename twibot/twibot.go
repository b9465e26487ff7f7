// Package twibot implements the command-resolution core of a message-driven
// bot framework: given raw text addressed to the bot, it determines which
// registered command applies, extracts and type-converts its parameters,
// and decides whether the invoking context is permitted to run it.
//
// The package owns no transport: a platform adapter hands Resolve the raw
// text and an invocation class, and receives back typed parameters or a
// decision error. Command manifests for platforms that need an upfront
// schema come from [Registry.Manifest].
package twibot

import (
	"context"

	"github.com/twipi/twibot/param"
	"github.com/twipi/twibot/restrict"
	"github.com/twipi/twibot/usage"
)

// HandlerFunc is the command body invoked with bound, typed parameters.
type HandlerFunc func(ctx context.Context, inv *Invocation) error

// Command declares a bot command. Commands are registered once at startup;
// the compiled usage pattern is immutable and shared across concurrent
// resolutions.
type Command struct {
	// Name is the primary command name. It doubles as the alias when
	// Aliases is empty.
	Name string
	// Aliases are slash-segmented alias paths with up to three segments:
	// command, command/subcommand, command/group/subcommand.
	Aliases []string
	// Description is mandatory for commands participating in the manifest.
	Description string
	// Usage is the usage pattern for the command's argument text, compiled
	// with [usage.Compile] at registration.
	Usage string
	// Handler runs the command.
	Handler HandlerFunc
}

// Invocation is one resolved command invocation. It lives for a single
// command execution.
type Invocation struct {
	Command *Command
	// Args holds the raw placeholder bindings in declaration order.
	Args *usage.Bindings
	// Params holds the converted parameters, one per binding, in the same
	// order.
	Params []param.Typed

	class restrict.Class
}

// Class returns the runtime class of the invoking context, satisfying
// [restrict.Invocation].
func (inv *Invocation) Class() restrict.Class {
	return inv.class
}

// Param returns the first converted value bound to name.
func (inv *Invocation) Param(name string) (any, bool) {
	for _, p := range inv.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return nil, false
}

// ParamValues returns every converted value bound to name, in capture
// order. Repeatable placeholders bind more than one.
func (inv *Invocation) ParamValues(name string) []any {
	var values []any
	for _, p := range inv.Params {
		if p.Name == name {
			values = append(values, p.Value)
		}
	}
	return values
}
