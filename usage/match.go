package usage

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseError reports argument text that does not match a compiled pattern.
// It is recoverable: callers surface it to the end user as a usage-help
// response.
type ParseError struct {
	Name    string // offending placeholder name, when known
	Value   string // offending raw value, when known
	Message string
}

func (e *ParseError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("parameter %q: %s", e.Name, e.Message)
	}
	return e.Message
}

// Binding is a single raw placeholder value.
type Binding struct {
	Name  string
	Value string
}

// Bindings holds raw placeholder values in declaration order. A repeatable
// placeholder contributes one binding per captured word.
type Bindings struct {
	pairs []Binding
}

// Len returns the number of bound values.
func (b *Bindings) Len() int {
	return len(b.pairs)
}

// All returns all bindings in declaration order.
func (b *Bindings) All() []Binding {
	return b.pairs
}

// Get returns the first value bound to name.
func (b *Bindings) Get(name string) (string, bool) {
	for _, p := range b.pairs {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Values returns every value bound to name, in capture order.
func (b *Bindings) Values(name string) []string {
	var values []string
	for _, p := range b.pairs {
		if p.Name == name {
			values = append(values, p.Value)
		}
	}
	return values
}

func (b *Bindings) add(name, value string) {
	b.pairs = append(b.pairs, Binding{Name: name, Value: value})
}

// mark and rewind implement the checkpoint discipline the backtracking
// matcher uses to roll back bindings from abandoned branches.
func (b *Bindings) mark() int {
	return len(b.pairs)
}

func (b *Bindings) rewind(mark int) {
	b.pairs = b.pairs[:mark]
}

// Match matches raw argument text against the pattern and returns the
// bound placeholder values. Matching is ordered-choice with full
// backtracking: branches and optionals are retried when a later element of
// the pattern fails to match. End-of-input is checked after the first
// complete pattern match, so leftover non-whitespace text is a *ParseError
// citing the offending text rather than a reason to retry.
func (p *Pattern) Match(text string) (*Bindings, error) {
	m := &matcher{
		input: text,
		binds: &Bindings{},
	}

	var end int
	ok := m.seq(p.root.Children, 0, m.skipSpace(0), func(pos int) bool {
		end = pos
		return true
	})
	if !ok {
		return nil, m.fail()
	}

	if rest := strings.TrimSpace(m.input[end:]); rest != "" {
		return nil, &ParseError{
			Value:   rest,
			Message: fmt.Sprintf("unexpected trailing text %q", rest),
		}
	}
	return m.binds, nil
}

type matcher struct {
	input string
	binds *Bindings

	// Farthest failure seen, for error reporting only.
	farPos  int
	farName string
	farWant string
}

// seq matches nodes[i:] starting at pos, then calls cont with the cursor
// position after the last node. Returning false unwinds to the nearest
// alternative or optional still holding an untried choice.
func (m *matcher) seq(nodes []Node, i, pos int, cont func(pos int) bool) bool {
	if i == len(nodes) {
		return cont(pos)
	}
	return m.node(nodes[i], pos, func(next int) bool {
		return m.seq(nodes, i+1, next, cont)
	})
}

func (m *matcher) node(n Node, pos int, cont func(pos int) bool) bool {
	switch n := n.(type) {
	case Literal:
		if !strings.HasPrefix(m.input[pos:], n.Text) {
			m.expect(pos, "", fmt.Sprintf("%q", n.Text))
			return false
		}
		return cont(m.skipSpace(pos + len(n.Text)))

	case Placeholder:
		return m.placeholder(n, pos, cont)

	case Optional:
		if m.seq(n.Child.Children, 0, pos, cont) {
			return true
		}
		return cont(pos)

	case Alternatives:
		for _, branch := range n.Branches {
			if m.seq(branch.Children, 0, pos, cont) {
				return true
			}
		}
		return false

	case Sequence:
		return m.seq(n.Children, 0, pos, cont)

	default:
		return false
	}
}

func (m *matcher) placeholder(ph Placeholder, pos int, cont func(pos int) bool) bool {
	if ph.Greedy {
		// The greedy placeholder ends the top-level sequence and captures
		// everything left, embedded whitespace included. It never fails,
		// even on empty input.
		mark := m.binds.mark()
		m.binds.add(ph.Name, strings.TrimSpace(m.input[pos:]))
		if cont(len(m.input)) {
			return true
		}
		m.binds.rewind(mark)
		return false
	}

	if ph.Repeated {
		return m.repeated(ph, pos, cont)
	}

	word, next := m.word(pos)
	if word == "" {
		m.expect(pos, ph.Name, fmt.Sprintf("a value for %q", ph.Name))
		return false
	}

	mark := m.binds.mark()
	m.binds.add(ph.Name, word)
	if cont(next) {
		return true
	}
	m.binds.rewind(mark)
	return false
}

// repeated captures one or more words, preferring the longest capture and
// giving words back one at a time when the rest of the pattern cannot
// match.
func (m *matcher) repeated(ph Placeholder, pos int, cont func(pos int) bool) bool {
	word, next := m.word(pos)
	if word == "" {
		m.expect(pos, ph.Name, fmt.Sprintf("a value for %q", ph.Name))
		return false
	}

	mark := m.binds.mark()
	m.binds.add(ph.Name, word)
	if m.repeatMore(ph, next, cont) || cont(next) {
		return true
	}
	m.binds.rewind(mark)
	return false
}

func (m *matcher) repeatMore(ph Placeholder, pos int, cont func(pos int) bool) bool {
	word, next := m.word(pos)
	if word == "" {
		return false
	}

	mark := m.binds.mark()
	m.binds.add(ph.Name, word)
	if m.repeatMore(ph, next, cont) || cont(next) {
		return true
	}
	m.binds.rewind(mark)
	return false
}

// word returns the run of non-whitespace characters at pos and the cursor
// position after the run and its trailing whitespace.
func (m *matcher) word(pos int) (string, int) {
	end := pos
	for end < len(m.input) {
		r, size := utf8.DecodeRuneInString(m.input[end:])
		if unicode.IsSpace(r) {
			break
		}
		end += size
	}
	return m.input[pos:end], m.skipSpace(end)
}

func (m *matcher) skipSpace(pos int) int {
	for pos < len(m.input) {
		r, size := utf8.DecodeRuneInString(m.input[pos:])
		if !unicode.IsSpace(r) {
			return pos
		}
		pos += size
	}
	return pos
}

// expect records a failure for error reporting, keeping the farthest one.
func (m *matcher) expect(pos int, name, want string) {
	if pos < m.farPos {
		return
	}
	m.farPos = pos
	m.farName = name
	m.farWant = want
}

func (m *matcher) fail() *ParseError {
	if m.farName != "" {
		return &ParseError{
			Name:    m.farName,
			Message: "missing or invalid value",
		}
	}

	got, _ := m.word(m.farPos)
	if got == "" {
		return &ParseError{
			Message: fmt.Sprintf("expected %s, got end of input", m.farWant),
		}
	}
	return &ParseError{
		Value:   got,
		Message: fmt.Sprintf("expected %s, got %q", m.farWant, got),
	}
}
