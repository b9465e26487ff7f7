// Package usage compiles declarative command usage patterns and matches raw
// argument text against them.
//
// A usage pattern is a whitespace-separated sequence of literal words and
// named placeholders, with optional groups and ordered alternatives nesting
// to arbitrary depth:
//
//	ban <user:user_mention> [<days:number>] <reason>
//	role (add|remove) <user:user_mention> <roles...>
//
// Placeholders are written <name> or <name:type>; a trailing ... marks the
// placeholder as repeatable. A plain placeholder that ends the top-level
// sequence is greedy: it captures all remaining input verbatim, embedded
// whitespace included. Compiled patterns are immutable and may be matched
// concurrently.
package usage

// Node is a single element of a compiled usage pattern.
type Node interface {
	node()
}

// Literal is a word that the argument text must contain verbatim.
type Literal struct {
	Text string
}

// Placeholder is a named capture slot.
type Placeholder struct {
	Name     string
	Type     string // type tag, empty when undeclared
	Required bool   // false inside an optional group or alternatives branch
	Repeated bool   // declared with a trailing ...
	Greedy   bool   // plain placeholder ending the top-level sequence
}

// Optional is a sub-sequence that may be absent from the argument text.
type Optional struct {
	Child Sequence
}

// Alternatives is an ordered list of branches. Branches are attempted in
// declared order with full backtracking: a branch is accepted only if it
// lets the remainder of the pattern match too.
type Alternatives struct {
	Branches []Sequence
}

// Sequence is an ordered run of nodes that must all match.
type Sequence struct {
	Children []Node
}

func (Literal) node()      {}
func (Placeholder) node()  {}
func (Optional) node()     {}
func (Alternatives) node() {}
func (Sequence) node()     {}

// Pattern is a compiled usage pattern.
type Pattern struct {
	src          string
	root         Sequence
	placeholders []Placeholder
}

// String returns the pattern source text.
func (p *Pattern) String() string {
	return p.src
}

// Root returns the top-level sequence of the pattern.
func (p *Pattern) Root() Sequence {
	return p.root
}

// Placeholders returns the pattern's placeholders in declaration order.
// The returned slice is a copy.
func (p *Pattern) Placeholders() []Placeholder {
	return append([]Placeholder(nil), p.placeholders...)
}
