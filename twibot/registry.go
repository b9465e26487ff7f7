package twibot

import (
	"fmt"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/twipi/twibot/cmdtree"
	"github.com/twipi/twibot/internal/xiter"
	"github.com/twipi/twibot/param"
	"github.com/twipi/twibot/usage"
)

// Registered is a command with its compiled usage pattern.
type Registered struct {
	Command *Command
	Pattern *usage.Pattern
}

// Registry holds registered commands keyed by alias path. Registration
// normally happens once at startup before traffic begins; lookups are safe
// against rare late registrations.
type Registry struct {
	params  *param.Registry
	byAlias *xsync.MapOf[string, *Registered]

	mu      sync.Mutex
	ordered []*Registered
}

// NewRegistry creates a Registry validating type tags against the given
// parameter registry.
func NewRegistry(params *param.Registry) *Registry {
	return &Registry{
		params:  params,
		byAlias: xsync.NewMapOf[string, *Registered](),
	}
}

// Register registers a command. It fails on configuration errors, all of
// which are fatal for the command: an empty name, a usage pattern that
// does not compile, a placeholder with an unregistered type tag, a
// malformed alias, or an alias already taken by another command.
func (r *Registry) Register(cmd *Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command with empty name")
	}

	pattern, err := usage.Compile(cmd.Usage)
	if err != nil {
		return fmt.Errorf("command %q: %w", cmd.Name, err)
	}

	for _, ph := range pattern.Placeholders() {
		if ph.Type == "" {
			continue
		}
		if !r.params.Has(ph.Type) {
			return fmt.Errorf(
				"command %q: placeholder %q: no converter registered for type tag %q",
				cmd.Name, ph.Name, ph.Type)
		}
	}

	aliases := cmd.Aliases
	if len(aliases) == 0 {
		aliases = []string{cmd.Name}
	}
	for _, alias := range aliases {
		if _, err := cmdtree.SplitAlias(alias); err != nil {
			return fmt.Errorf("command %q: %w", cmd.Name, err)
		}
	}

	reg := &Registered{Command: cmd, Pattern: pattern}

	for _, alias := range aliases {
		key := aliasKey(strings.Split(alias, "/")...)
		if _, taken := r.byAlias.LoadOrStore(key, reg); taken {
			return fmt.Errorf("command %q: alias %q already registered", cmd.Name, alias)
		}
	}

	r.mu.Lock()
	r.ordered = append(r.ordered, reg)
	r.mu.Unlock()

	return nil
}

// MustRegister registers commands and panics on any configuration error.
// It is meant for startup-time registration, where such an error must
// abort the process.
func (r *Registry) MustRegister(cmds ...*Command) {
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			panic("twibot: " + err.Error())
		}
	}
}

// Lookup finds the command registered for the given alias path segments.
func (r *Registry) Lookup(segments ...string) (*Registered, bool) {
	return r.byAlias.Load(aliasKey(segments...))
}

// All returns the registered commands in registration order.
func (r *Registry) All() xiter.Seq[*Registered] {
	r.mu.Lock()
	ordered := append([]*Registered(nil), r.ordered...)
	r.mu.Unlock()
	return xiter.FromSlice(ordered)
}

// Manifest builds the nested command-schema tree from every registered
// command's aliases, deriving each leaf's options from its compiled usage
// pattern. It fails if any participating command lacks a description or
// declares conflicting aliases.
func (r *Registry) Manifest() ([]cmdtree.Node, error) {
	var entries []cmdtree.Entry

	r.mu.Lock()
	ordered := append([]*Registered(nil), r.ordered...)
	r.mu.Unlock()

	for _, reg := range ordered {
		options := optionsFromPattern(reg.Pattern)

		aliases := reg.Command.Aliases
		if len(aliases) == 0 {
			aliases = []string{reg.Command.Name}
		}
		for _, alias := range aliases {
			entries = append(entries, cmdtree.Entry{
				Alias:       alias,
				Description: reg.Command.Description,
				Options:     options,
			})
		}
	}

	return cmdtree.Build(entries)
}

// optionsFromPattern derives manifest options from a pattern's
// placeholders. Untyped placeholders surface as plain strings.
func optionsFromPattern(pattern *usage.Pattern) []cmdtree.Option {
	var options []cmdtree.Option
	for _, ph := range pattern.Placeholders() {
		tag := ph.Type
		if tag == "" {
			tag = "string"
		}
		options = append(options, cmdtree.Option{
			Name:     ph.Name,
			Type:     tag,
			Required: ph.Required,
			Repeated: ph.Repeated,
		})
	}
	return options
}

func aliasKey(segments ...string) string {
	return strings.Join(segments, "/")
}
