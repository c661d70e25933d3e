// Package scopename holds the value types a scope name is built from:
// an ordered sequence of components, each either a span-carrying
// identifier token or a static interpolation fragment.
package scopename

import "strings"

// Span is a half-open byte range [Start, End) into the minified
// source. Only IdentifierToken components carry one.
type Span struct {
	Start int
	End   int
}

// Component is a single piece of a ScopeName. Exactly one of the two
// constructors below should be used to build one; the zero value is
// not meaningful.
type Component struct {
	text       string
	span       Span
	hasSpan    bool
}

// IdentifierToken is a component carrying source text plus the byte
// span it came from. This is the only component kind later remapped
// through a source map.
func IdentifierToken(text string, span Span) Component {
	return Component{text: text, span: span, hasSpan: true}
}

// Interpolation is static text with no span — separators like ".",
// "new ", "get ", "<computed>". Never remapped.
func Interpolation(text string) Component {
	return Component{text: text}
}

// Text returns the component's literal text, always defined.
func (c Component) Text() string { return c.text }

// Span returns the component's span and whether it has one. Only
// IdentifierToken components have a span.
func (c Component) Span() (Span, bool) { return c.span, c.hasSpan }

// Name is an ordered sequence of components. Rendering concatenates
// component texts with no added separator — separators are
// themselves Interpolation components pushed by the collector.
type Name struct {
	components []Component
}

// New builds a Name from components in order.
func New(components ...Component) *Name {
	return &Name{components: append([]Component(nil), components...)}
}

// PushFront prepends a component.
func (n *Name) PushFront(c Component) {
	n.components = append([]Component{c}, n.components...)
}

// PushBack appends a component.
func (n *Name) PushBack(c Component) {
	n.components = append(n.components, c)
}

// PopBack removes and returns the last component, or the zero
// Component and false if the name has none. A no-op on a nil or
// empty Name, mirroring the deque semantics the ancestor-inference
// walk relies on when an own declared identifier overrides the
// innermost inferred component.
func (n *Name) PopBack() (Component, bool) {
	if n == nil || len(n.components) == 0 {
		return Component{}, false
	}
	last := n.components[len(n.components)-1]
	n.components = n.components[:len(n.components)-1]
	return last, true
}

// Empty reports whether the name has zero components — semantically
// equivalent to "no name".
func (n *Name) Empty() bool {
	return n == nil || len(n.components) == 0
}

// Components returns the name's components in order. The returned
// slice must not be mutated.
func (n *Name) Components() []Component {
	if n == nil {
		return nil
	}
	return n.components
}

// Render concatenates all component texts in order.
func (n *Name) Render() string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range n.components {
		b.WriteString(c.text)
	}
	return b.String()
}

// Entry pairs a function-like construct's full source span with its
// inferred name, or nil when inference yielded nothing (truly
// anonymous).
type Entry struct {
	Span Span
	Name *Name
}
