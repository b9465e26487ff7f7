package usage

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyntaxError describes a malformed usage pattern. It is fatal for the
// registration of the command declaring the pattern.
type SyntaxError struct {
	Pattern  string
	Pos      int    // byte offset into Pattern
	Expected string // description of what was expected at Pos
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf(
		"invalid usage pattern %q at offset %d: expected %s",
		e.Pattern, e.Pos, e.Expected)
}

// Compile parses the given usage pattern text into an immutable Pattern.
// It returns a *SyntaxError if the text violates the pattern grammar or
// declares the same placeholder name twice. Compile is pure: it never
// touches any runtime context.
func Compile(src string) (*Pattern, error) {
	c := &compiler{
		src:   src,
		names: make(map[string]struct{}),
	}

	root, err := c.sequence(true)
	if err != nil {
		return nil, err
	}

	c.skipSpace()
	if c.pos != len(c.src) {
		return nil, c.errorf("end of pattern, got %q", c.rest())
	}

	markGreedy(&root, c.meta)

	return &Pattern{
		src:          src,
		root:         root,
		placeholders: c.meta,
	}, nil
}

// markGreedy flags the last top-level element as greedy if it is a plain
// placeholder. Repeatable placeholders already consume word by word, and
// placeholders nested in optionals or alternatives are never greedy.
func markGreedy(root *Sequence, meta []Placeholder) {
	if len(root.Children) == 0 {
		return
	}

	last := len(root.Children) - 1
	ph, ok := root.Children[last].(Placeholder)
	if !ok || ph.Repeated {
		return
	}

	ph.Greedy = true
	root.Children[last] = ph

	for i := range meta {
		if meta[i].Name == ph.Name {
			meta[i].Greedy = true
		}
	}
}

type compiler struct {
	src   string
	pos   int
	names map[string]struct{}
	meta  []Placeholder
}

// sequence parses pattern elements until end of input or a closing
// delimiter. required is false inside optional groups and alternatives
// branches, where a placeholder is not guaranteed to bind.
func (c *compiler) sequence(required bool) (Sequence, error) {
	var seq Sequence

	for {
		c.skipSpace()
		if c.pos == len(c.src) {
			return seq, nil
		}

		switch c.src[c.pos] {
		case ']', ')', '|':
			return seq, nil
		case '[':
			opt, err := c.optional()
			if err != nil {
				return seq, err
			}
			seq.Children = append(seq.Children, opt)
		case '(':
			alt, err := c.alternatives()
			if err != nil {
				return seq, err
			}
			seq.Children = append(seq.Children, alt)
		case '<':
			ph, err := c.placeholder(required)
			if err != nil {
				return seq, err
			}
			seq.Children = append(seq.Children, ph)
		case '>':
			return seq, c.errorf("a pattern element, got stray %q", ">")
		default:
			seq.Children = append(seq.Children, c.literal())
		}
	}
}

func (c *compiler) optional() (Optional, error) {
	c.pos++ // '['

	child, err := c.sequence(false)
	if err != nil {
		return Optional{}, err
	}

	if !c.consume(']') {
		return Optional{}, c.errorf("%q closing the optional group", "]")
	}
	return Optional{Child: child}, nil
}

func (c *compiler) alternatives() (Alternatives, error) {
	c.pos++ // '('

	var alt Alternatives
	for {
		start := c.pos
		branch, err := c.sequence(false)
		if err != nil {
			return alt, err
		}
		if len(branch.Children) == 0 {
			c.pos = start
			return alt, c.errorf("a non-empty alternatives branch")
		}
		alt.Branches = append(alt.Branches, branch)

		if c.consume('|') {
			continue
		}
		if c.consume(')') {
			return alt, nil
		}
		return alt, c.errorf("%q or %q after the alternatives branch", "|", ")")
	}
}

func (c *compiler) placeholder(required bool) (Placeholder, error) {
	c.pos++ // '<'

	name := c.ident()
	if name == "" {
		return Placeholder{}, c.errorf("a placeholder name")
	}

	ph := Placeholder{Name: name, Required: required}

	if c.consume(':') {
		ph.Type = c.ident()
		if ph.Type == "" {
			return ph, c.errorf("a type tag after %q", ":")
		}
	}

	if strings.HasPrefix(c.src[c.pos:], "...") {
		c.pos += len("...")
		ph.Repeated = true
	}

	if !c.consume('>') {
		return ph, c.errorf("%q closing the placeholder", ">")
	}

	if _, ok := c.names[name]; ok {
		return ph, c.errorf("a unique placeholder name, but %q is declared twice", name)
	}
	c.names[name] = struct{}{}

	c.meta = append(c.meta, ph)
	return ph, nil
}

// literal consumes a run of characters up to whitespace or a delimiter.
func (c *compiler) literal() Literal {
	start := c.pos
	for c.pos < len(c.src) {
		r, size := utf8.DecodeRuneInString(c.src[c.pos:])
		if unicode.IsSpace(r) || strings.ContainsRune("[]()|<>", r) {
			break
		}
		c.pos += size
	}
	return Literal{Text: c.src[start:c.pos]}
}

// ident consumes a placeholder name or type tag.
func (c *compiler) ident() string {
	start := c.pos
	for c.pos < len(c.src) {
		r, size := utf8.DecodeRuneInString(c.src[c.pos:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			break
		}
		c.pos += size
	}
	return c.src[start:c.pos]
}

func (c *compiler) consume(b byte) bool {
	if c.pos < len(c.src) && c.src[c.pos] == b {
		c.pos++
		return true
	}
	return false
}

func (c *compiler) skipSpace() {
	for c.pos < len(c.src) {
		r, size := utf8.DecodeRuneInString(c.src[c.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		c.pos += size
	}
}

func (c *compiler) rest() string {
	const maxContext = 24
	rest := c.src[c.pos:]
	if len(rest) > maxContext {
		rest = rest[:maxContext] + "…"
	}
	return rest
}

func (c *compiler) errorf(format string, args ...any) error {
	return &SyntaxError{
		Pattern:  c.src,
		Pos:      c.pos,
		Expected: fmt.Sprintf(format, args...),
	}
}
