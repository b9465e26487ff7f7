package twibot

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/twipi/twibot/param"
	"github.com/twipi/twibot/restrict"
	"github.com/twipi/twibot/usage"
)

type staticLookup struct {
	users map[uint64]*param.Entity
}

func (l *staticLookup) ChannelByID(ctx context.Context, id uint64) (*param.Entity, error) {
	return nil, nil
}

func (l *staticLookup) UserByID(ctx context.Context, id uint64) (*param.Entity, error) {
	return l.users[id], nil
}

type decided struct{ allow bool }

func (p *decided) Allow(ctx context.Context, inv restrict.Invocation) (bool, error) {
	return p.allow, nil
}

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	params := param.NewRegistry()

	reg := NewRegistry(params)
	reg.MustRegister(
		&Command{
			Name:        "ban",
			Description: "Ban a user.",
			Usage:       "<user:user_mention> [<days:number>] <reason>",
		},
		&Command{
			Name:        "role-add",
			Aliases:     []string{"role/add"},
			Description: "Add a role.",
			Usage:       "<name>",
		},
		&Command{
			Name:        "ping",
			Description: "Ping the bot.",
			Usage:       "[<nonce>]",
		},
	)

	return &Resolver{
		Registry: reg,
		Params:   params,
		Lookup: &staticLookup{
			users: map[uint64]*param.Entity{420: {ID: 420, Name: "diamond"}},
		},
	}
}

func TestResolver_resolve(t *testing.T) {
	r := newTestResolver(t)
	ctx := context.Background()
	class := restrict.NewClass("MessageContext")

	inv, err := r.Resolve(ctx, class, "ban <@420> 7 being too based")
	assert.NoError(t, err)
	assert.Equal(t, "ban", inv.Command.Name)

	user, ok := inv.Param("user")
	assert.True(t, ok)
	assert.Equal(t, &param.Entity{ID: 420, Name: "diamond"}, user.(*param.Entity))

	days, ok := inv.Param("days")
	assert.True(t, ok)
	assert.Equal(t, 0, days.(*big.Int).Cmp(big.NewInt(7)))

	reason, ok := inv.Param("reason")
	assert.True(t, ok)
	assert.Equal(t, "being too based", reason.(string))
}

func TestResolver_optionalOmitted(t *testing.T) {
	r := newTestResolver(t)
	class := restrict.NewClass("MessageContext")

	inv, err := r.Resolve(context.Background(), class, "ban <@420>")
	assert.NoError(t, err)

	_, ok := inv.Param("days")
	assert.False(t, ok)

	reason, _ := inv.Param("reason")
	assert.Equal(t, "", reason.(string))

	// Matching is type-blind: a lone word after the mention binds to the
	// optional days placeholder first, so conversion rejects it.
	_, err = r.Resolve(context.Background(), class, "ban <@420> gone")
	var formatErr *param.FormatError
	assert.True(t, errors.As(err, &formatErr))
}

func TestResolver_subcommandPath(t *testing.T) {
	r := newTestResolver(t)
	class := restrict.NewClass("MessageContext")

	inv, err := r.Resolve(context.Background(), class, "role add moderators")
	assert.NoError(t, err)
	assert.Equal(t, "role-add", inv.Command.Name)

	name, _ := inv.Param("name")
	assert.Equal(t, "moderators", name.(string))
}

func TestResolver_prefix(t *testing.T) {
	r := newTestResolver(t)
	r.Prefix = NewSigilPrefix("!")
	class := restrict.NewClass("MessageContext")

	_, err := r.Resolve(context.Background(), class, "ping")
	assert.True(t, errors.Is(err, ErrNotCommand))

	inv, err := r.Resolve(context.Background(), class, "!ping abc")
	assert.NoError(t, err)
	assert.Equal(t, "ping", inv.Command.Name)
}

func TestResolver_unknownCommand(t *testing.T) {
	r := newTestResolver(t)
	class := restrict.NewClass("MessageContext")

	_, err := r.Resolve(context.Background(), class, "frobnicate hard")
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}

func TestResolver_malformedBody(t *testing.T) {
	r := newTestResolver(t)
	class := restrict.NewClass("MessageContext")

	// An unterminated quote fails word scanning before any command word is
	// popped. That is a scan error, not an unknown command.
	_, err := r.Resolve(context.Background(), class, "'unterminated")
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrUnknownCommand))
	assert.False(t, errors.Is(err, ErrNotCommand))
}

func TestResolver_parseError(t *testing.T) {
	r := newTestResolver(t)
	class := restrict.NewClass("MessageContext")

	_, err := r.Resolve(context.Background(), class, "ban")

	var parseErr *usage.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestResolver_formatError(t *testing.T) {
	r := newTestResolver(t)
	class := restrict.NewClass("MessageContext")

	_, err := r.Resolve(context.Background(), class, "ban notamention 7 reason")

	var formatErr *param.FormatError
	assert.True(t, errors.As(err, &formatErr))
}

func TestResolver_valueError(t *testing.T) {
	r := newTestResolver(t)
	class := restrict.NewClass("MessageContext")

	_, err := r.Resolve(context.Background(), class, "ban <@1> 7 reason")

	var valueErr *param.ValueError
	assert.True(t, errors.As(err, &valueErr))
}

func TestResolver_restrictions(t *testing.T) {
	r := newTestResolver(t)
	r.Restrictions = restrict.NewDirectory()
	r.Restrictions.Add(
		restrict.Entry{Class: "GuildContext", Policy: &decided{allow: true}},
		restrict.Entry{Class: "DMContext", Policy: &decided{allow: false}},
	)

	ctx := context.Background()

	_, err := r.Resolve(ctx, restrict.NewClass("GuildContext"), "ping")
	assert.NoError(t, err)

	_, err = r.Resolve(ctx, restrict.NewClass("DMContext"), "ping")
	assert.True(t, errors.Is(err, ErrRestricted))

	// Proxied subtype resolves to the nearest registered policy.
	proxied := restrict.NewClass("DMContext").Derive("proxy$DMContext")
	_, err = r.Resolve(ctx, proxied, "ping")
	assert.True(t, errors.Is(err, ErrRestricted))
}

func TestResolver_denyUnrestricted(t *testing.T) {
	r := newTestResolver(t)
	r.Restrictions = restrict.NewDirectory()
	ctx := context.Background()
	class := restrict.NewClass("MessageContext")

	_, err := r.Resolve(ctx, class, "ping")
	assert.NoError(t, err, "absent policy allows by default")

	r.DenyUnrestricted = true
	_, err = r.Resolve(ctx, class, "ping")
	assert.True(t, errors.Is(err, ErrRestricted))
}

func TestResolver_run(t *testing.T) {
	params := param.NewRegistry()
	reg := NewRegistry(params)

	var gotText string
	reg.MustRegister(&Command{
		Name:        "say",
		Description: "Echo text back.",
		Usage:       "<text>",
		Handler: func(ctx context.Context, inv *Invocation) error {
			text, _ := inv.Param("text")
			gotText = text.(string)
			return nil
		},
	})

	r := &Resolver{Registry: reg, Params: params}

	err := r.Run(context.Background(), restrict.NewClass("MessageContext"), "say hello there")
	assert.NoError(t, err)
	assert.Equal(t, "hello there", gotText)
}

func TestResolver_repeatedParams(t *testing.T) {
	params := param.NewRegistry()
	reg := NewRegistry(params)
	reg.MustRegister(&Command{
		Name:        "purge",
		Description: "Purge messages.",
		Usage:       "<ids:number...>",
	})

	r := &Resolver{Registry: reg, Params: params}

	inv, err := r.Resolve(context.Background(), restrict.NewClass("MessageContext"), "purge 1 2 3")
	assert.NoError(t, err)

	ids := inv.ParamValues("ids")
	assert.Equal(t, 3, len(ids))
	assert.Equal(t, 0, ids[2].(*big.Int).Cmp(big.NewInt(3)))
}
