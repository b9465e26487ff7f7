// Package cmdtree aggregates slash-segmented command aliases into a nested
// command-schema tree for platforms that register a structured command
// manifest up front.
//
// An alias has 1 to 3 segments: command, command/subcommand, or
// command/subcommand-group/subcommand. The resulting tree is built once at
// startup from the full alias set and is immutable afterward; a
// collaborator serializes it to whatever schema its transport expects.
package cmdtree

import (
	"fmt"
	"strings"
)

// AliasParts is a declared alias split on "/". A two-segment alias puts its
// second segment in Sub with an empty Group sentinel; only three-segment
// aliases name a subcommand group.
type AliasParts struct {
	Command string
	Group   string
	Sub     string
}

// SplitAlias splits an alias into its parts. Any segment count other than
// 1, 2 or 3, or an empty segment, is a configuration error that must abort
// the registration of the declaring command.
func SplitAlias(alias string) (AliasParts, error) {
	segments := strings.Split(alias, "/")
	if len(segments) > 3 {
		return AliasParts{}, fmt.Errorf(
			"alias %q: expected 1 to 3 slash-separated segments, got %d",
			alias, len(segments))
	}

	for _, seg := range segments {
		if seg == "" {
			return AliasParts{}, fmt.Errorf("alias %q: empty segment", alias)
		}
	}

	parts := AliasParts{Command: segments[0]}
	switch len(segments) {
	case 2:
		parts.Sub = segments[1]
	case 3:
		parts.Group = segments[1]
		parts.Sub = segments[2]
	}
	return parts, nil
}

// Option describes a parameter of a leaf command in the manifest.
type Option struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Repeated    bool
}

// Entry is one alias a command contributes to the manifest, along with the
// command's description and parameter options.
type Entry struct {
	Alias       string
	Description string
	Options     []Option
}

// Node is a node of the built command tree: a flat leaf command, a
// composite command with subcommand and subcommand-group children, a
// subcommand group, or a subcommand leaf.
type Node struct {
	Name        string
	Description string
	Options     []Option // leaf nodes only
	Children    []Node   // composite and group nodes only
}

// syntheticDescription fills composite top-level nodes, whose children
// carry the real descriptions.
const syntheticDescription = "Subcommands."

// Build groups every entry's alias into a validated command tree. Entries
// group by command segment, then by subcommand-group segment with "" as
// the sentinel for aliases without one. A command whose aliases are all
// single-segment yields a flat leaf; anything else yields a composite node
// whose children are direct subcommands (two-segment aliases) and
// subcommand groups holding subcommand leaves (three-segment aliases).
// Node order is first-encounter order at every level. A missing
// description or malformed alias fails the whole build with an error
// naming the offending alias.
func Build(entries []Entry) ([]Node, error) {
	grouped, order, err := group(entries)
	if err != nil {
		return nil, err
	}

	var nodes []Node
	for _, command := range order {
		node, err := buildCommand(command, grouped[command])
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// parted is an Entry with its alias already split.
type parted struct {
	Entry
	parts AliasParts
}

func group(entries []Entry) (map[string][]parted, []string, error) {
	grouped := make(map[string][]parted)
	var order []string

	for _, e := range entries {
		parts, err := SplitAlias(e.Alias)
		if err != nil {
			return nil, nil, err
		}

		if _, ok := grouped[parts.Command]; !ok {
			order = append(order, parts.Command)
		}
		grouped[parts.Command] = append(grouped[parts.Command], parted{Entry: e, parts: parts})
	}

	return grouped, order, nil
}

func buildCommand(command string, entries []parted) (Node, error) {
	flat := true
	for _, e := range entries {
		if e.parts.Group != "" || e.parts.Sub != "" {
			flat = false
			break
		}
	}

	if flat {
		// Single-segment aliases only: a plain leaf command carrying its
		// own description and options.
		e := entries[0]
		if e.Description == "" {
			return Node{}, missingDescription(e.Alias)
		}
		return Node{
			Name:        command,
			Description: e.Description,
			Options:     e.Options,
		}, nil
	}

	node := Node{
		Name:        command,
		Description: syntheticDescription,
	}

	// Group by subcommand-group segment, keeping first-encounter order.
	byGroup := make(map[string][]parted)
	var groupOrder []string
	for _, e := range entries {
		if e.parts.Group == "" && e.parts.Sub == "" {
			return Node{}, fmt.Errorf(
				"alias %q: bare command alias conflicts with the subcommands of %q",
				e.Alias, command)
		}
		if _, ok := byGroup[e.parts.Group]; !ok {
			groupOrder = append(groupOrder, e.parts.Group)
		}
		byGroup[e.parts.Group] = append(byGroup[e.parts.Group], e)
	}

	for _, groupName := range groupOrder {
		group := byGroup[groupName]

		if groupName == "" {
			// Two-segment aliases: each becomes a direct subcommand of
			// the composite node.
			for _, e := range group {
				if e.Description == "" {
					return Node{}, missingDescription(e.Alias)
				}
				node.Children = append(node.Children, Node{
					Name:        e.parts.Sub,
					Description: e.Description,
					Options:     e.Options,
				})
			}
			continue
		}

		// Three-segment aliases: the middle segment anchors a subcommand
		// group node, described by the first entry encountered for it.
		if group[0].Description == "" {
			return Node{}, missingDescription(group[0].Alias)
		}
		groupNode := Node{
			Name:        groupName,
			Description: group[0].Description,
		}
		for _, e := range group {
			if e.Description == "" {
				return Node{}, missingDescription(e.Alias)
			}
			groupNode.Children = append(groupNode.Children, Node{
				Name:        e.parts.Sub,
				Description: e.Description,
				Options:     e.Options,
			})
		}
		node.Children = append(node.Children, groupNode)
	}

	return node, nil
}

func missingDescription(alias string) error {
	return fmt.Errorf("alias %q: missing mandatory description", alias)
}
