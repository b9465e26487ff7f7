package twibot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twipi/twibot/internal/slogctx"
	"github.com/twipi/twibot/param"
	"github.com/twipi/twibot/restrict"
)

// Sentinel errors for resolution outcomes the platform adapter usually
// maps to its own responses. Parse and conversion failures are returned as
// *usage.ParseError, *param.FormatError and *param.ValueError instead.
var (
	// ErrNotCommand means the message body did not carry the bot prefix.
	// Adapters commonly ignore these messages silently.
	ErrNotCommand = errors.New("message is not a command")
	// ErrUnknownCommand means no registered alias matched the leading
	// words of the message.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrRestricted means the resolved restriction policy denied the
	// invocation.
	ErrRestricted = errors.New("command restricted")
)

// Resolver runs the full command-resolution pipeline: prefix strip, alias
// lookup, pattern match, parameter conversion and restriction check. A
// Resolver must be safe for concurrent use; the platform adapter calls
// Resolve once per incoming message, however it schedules those.
type Resolver struct {
	// Registry holds the resolvable commands.
	Registry *Registry
	// Params converts raw parameter values. Usually the same registry the
	// commands were validated against.
	Params *param.Registry
	// Restrictions resolves permission policies per invocation class.
	// When nil, every invocation is allowed.
	Restrictions *restrict.Directory
	// Lookup is the platform entity lookup handed to converters. May be
	// nil when no registered command uses mention-style parameters.
	Lookup param.Lookup
	// Prefix decides whether a message addresses the bot. When nil, every
	// message is treated as a command.
	Prefix PrefixFunc
	// Logger logs resolution outcomes at debug level. When nil, the
	// context logger is used.
	Logger *slog.Logger
	// Metrics counts resolution outcomes. Optional.
	Metrics *Metrics
	// DenyUnrestricted flips the default for invocations whose class has
	// no registered restriction policy. The default is to allow them.
	DenyUnrestricted bool
}

// maxAliasDepth is the deepest registrable alias path: command, subcommand
// group, subcommand.
const maxAliasDepth = 3

// Resolve resolves the given message body for an invoking context of the
// given class. On success the returned Invocation carries the bound, typed
// parameters; the command body has not been run yet. See [Resolver.Run].
func (r *Resolver) Resolve(ctx context.Context, class restrict.Class, body string) (*Invocation, error) {
	logger := r.logger(ctx)

	if r.Prefix != nil {
		stripped, ok := r.Prefix(body)
		if !ok {
			r.Metrics.observe(outcomeNotCommand)
			return nil, ErrNotCommand
		}
		body = stripped
	}

	reg, args, err := r.lookupCommand(body)
	if err != nil {
		if errors.Is(err, ErrUnknownCommand) {
			r.Metrics.observe(outcomeUnknown)
		} else {
			r.Metrics.observe(outcomeError)
		}
		return nil, err
	}

	logger = logger.With("command", reg.Command.Name)

	binds, err := reg.Pattern.Match(args)
	if err != nil {
		logger.Debug("argument text does not match usage", "err", err)
		r.Metrics.observe(outcomeParseError)
		return nil, err
	}

	inv := &Invocation{
		Command: reg.Command,
		Args:    binds,
		Params:  make([]param.Typed, 0, binds.Len()),
		class:   class,
	}

	types := make(map[string]string, len(reg.Pattern.Placeholders()))
	for _, ph := range reg.Pattern.Placeholders() {
		types[ph.Name] = ph.Type
	}

	for _, bind := range binds.All() {
		tag := types[bind.Name]
		if tag == "" {
			tag = "string"
		}

		value, err := r.Params.Convert(ctx, tag, bind.Value, r.Lookup)
		if err != nil {
			logger.Debug("parameter conversion failed",
				"param", bind.Name,
				"err", err)
			r.Metrics.observe(outcomeConvertError)
			return nil, err
		}

		inv.Params = append(inv.Params, param.Typed{
			Name:  bind.Name,
			Tag:   tag,
			Value: value,
		})
	}

	allowed, err := r.authorize(ctx, inv)
	if err != nil {
		r.Metrics.observe(outcomeError)
		return nil, err
	}
	if !allowed {
		logger.Debug("invocation restricted", "class", class.Name)
		r.Metrics.observe(outcomeRestricted)
		return nil, fmt.Errorf("%w: %s", ErrRestricted, reg.Command.Name)
	}

	logger.Debug("command resolved", "params", len(inv.Params))
	r.Metrics.observe(outcomeOK)
	return inv, nil
}

// Run resolves the message body and invokes the command handler with the
// bound parameters.
func (r *Resolver) Run(ctx context.Context, class restrict.Class, body string) error {
	inv, err := r.Resolve(ctx, class, body)
	if err != nil {
		return err
	}
	if inv.Command.Handler == nil {
		return fmt.Errorf("command %q has no handler", inv.Command.Name)
	}
	return inv.Command.Handler(ctx, inv)
}

// lookupCommand pops up to maxAliasDepth leading words and finds the
// longest registered alias path among them. The scanner's tail after the
// matched words is the argument text.
func (r *Resolver) lookupCommand(body string) (*Registered, string, error) {
	scanner := NewWordScanner(body)

	// Argument text is allowed to contain characters the word scanner
	// rejects, so a scan error past the first word only caps the path
	// depth; the words scanned so far still name a command.
	var words []string
	tails := make([]string, 0, maxAliasDepth)
	for len(words) < maxAliasDepth && scanner.Scan() {
		words = append(words, scanner.Word())
		tails = append(tails, scanner.Tail())
	}
	if len(words) == 0 {
		// A body whose first word cannot even be scanned is malformed, not
		// unknown; adapters get the scan error itself to respond to.
		if err := scanner.Err(); err != nil {
			return nil, "", err
		}
		return nil, "", ErrUnknownCommand
	}

	for n := len(words); n > 0; n-- {
		if reg, ok := r.Registry.Lookup(words[:n]...); ok {
			return reg, tails[n-1], nil
		}
	}
	return nil, "", fmt.Errorf("%w: %q", ErrUnknownCommand, words[0])
}

func (r *Resolver) authorize(ctx context.Context, inv *Invocation) (bool, error) {
	if r.Restrictions == nil {
		return true, nil
	}

	policy, ok := r.Restrictions.Resolve(inv.Class())
	if !ok {
		// No policy anywhere in the class chain. The default belongs to
		// the embedding adapter, hence the explicit knob.
		return !r.DenyUnrestricted, nil
	}

	allowed, err := policy.Allow(ctx, inv)
	if err != nil {
		return false, fmt.Errorf("restriction policy for %q: %w", inv.Command.Name, err)
	}
	return allowed, nil
}

func (r *Resolver) logger(ctx context.Context) *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slogctx.From(ctx)
}
