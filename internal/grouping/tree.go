// Package grouping builds the three-level category tree used by the
// "categorized" views (industry → role → relationship or job type).
package grouping

import (
	"strings"

	"github.com/justsurfingit/career-tracker/internal/models"
)

// Level describes one tree level: its key prefix, the label used when the
// value is blank, and how to read the value from an item.
type Level[T any] struct {
	Name    string
	Default string
	Value   func(T) string
}

func (l Level[T]) valueOf(item T) string {
	if v := strings.TrimSpace(l.Value(item)); v != "" {
		return v
	}
	return l.Default
}

type Node[T any] struct {
	Key      string     `json:"key"`
	Level    string     `json:"level"`
	Value    string     `json:"value"`
	Count    int        `json:"count"`
	Children []*Node[T] `json:"children,omitempty"`
	Items    []T        `json:"items,omitempty"`

	index map[string]*Node[T]
}

type Tree[T any] struct {
	Roots []*Node[T] `json:"roots"`

	index map[string]*Node[T]
}

// Build groups items into primary → secondary → tertiary nodes. At every
// level, nodes appear in the order their value was first seen.
func Build[T any](items []T, levels [3]Level[T]) *Tree[T] {
	tree := &Tree[T]{index: map[string]*Node[T]{}}

	for _, item := range items {
		var (
			siblings = &tree.Roots
			index    = tree.index
			key      string
			node     *Node[T]
		)
		for _, lvl := range levels {
			value := lvl.valueOf(item)
			if key == "" {
				key = lvl.Name + "-" + value
			} else {
				key = key + "-" + lvl.Name + "-" + value
			}

			node = index[value]
			if node == nil {
				node = &Node[T]{Key: key, Level: lvl.Name, Value: value, index: map[string]*Node[T]{}}
				index[value] = node
				*siblings = append(*siblings, node)
			}
			node.Count++
			siblings = &node.Children
			index = node.index
		}
		node.Items = append(node.Items, item)
	}
	return tree
}

// Flatten concatenates the leaf lists in traversal order.
func (t *Tree[T]) Flatten() []T {
	var out []T
	var walk func(nodes []*Node[T])
	walk = func(nodes []*Node[T]) {
		for _, n := range nodes {
			out = append(out, n.Items...)
			walk(n.Children)
		}
	}
	walk(t.Roots)
	return out
}

// TopLevelKeys returns the keys of the primary nodes in order.
func (t *Tree[T]) TopLevelKeys() []string {
	keys := make([]string, len(t.Roots))
	for i, n := range t.Roots {
		keys[i] = n.Key
	}
	return keys
}

// ContactLevels groups contacts by industry, role, then relationship type.
func ContactLevels() [3]Level[models.Contact] {
	return [3]Level[models.Contact]{
		{Name: "industry", Default: "Uncategorized", Value: func(c models.Contact) string { return c.Industry }},
		{Name: "role", Default: "No Role", Value: func(c models.Contact) string { return c.Title }},
		{Name: "type", Default: "No Type", Value: func(c models.Contact) string { return c.RelationshipType }},
	}
}

// JobLevels groups jobs by industry, title, then job type.
func JobLevels() [3]Level[models.Job] {
	return [3]Level[models.Job]{
		{Name: "industry", Default: "Uncategorized", Value: func(j models.Job) string { return j.Industry }},
		{Name: "role", Default: "No Role", Value: func(j models.Job) string { return j.Title }},
		{Name: "type", Default: "No Type", Value: func(j models.Job) string { return j.JobType }},
	}
}
