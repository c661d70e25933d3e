// Package scopecollect walks the normalized AST produced by jsast and
// computes a ScopeName for every function-like construct, following
// an ancestor-path inference: at each visited node the collector
// walks the explicit stack of enclosing nodes (innermost first) and
// case-analyzes each ancestor's kind to build up a compound name.
//
// No AST node carries a parent pointer; the ancestor path is built by
// the walker as a plain slice, pushed on descent and popped on
// return, so the collector never needs shared ownership of the tree.
package scopecollect

import (
	"github.com/standardbeagle/jsscopes/internal/jsast"
	"github.com/standardbeagle/jsscopes/internal/scopename"
)

// Extract walks prog and returns one ScopeEntry per function
// declaration/expression, arrow function, class declaration/
// expression, and object-literal getter/setter, in traversal order.
// Order is not part of the contract; callers that need a stable
// ordering sort the result (see scopeindex).
func Extract(prog *jsast.Program) []scopename.Entry {
	c := &collector{}
	if prog != nil && prog.Root != nil {
		c.walk(prog.Root, nil)
	}
	return c.entries
}

type collector struct {
	entries []scopename.Entry
}

// isVisitTarget reports whether a node kind gets its own ScopeEntry.
// Class methods are deliberately excluded: their inner function body
// is visited as a plain KindFunction node instead, named purely by
// ancestor inference through the wrapping KindClassMethod node.
func isVisitTarget(k jsast.Kind) bool {
	switch k {
	case jsast.KindFunction, jsast.KindArrowFunction, jsast.KindClass, jsast.KindObjectGetterSetter:
		return true
	default:
		return false
	}
}

func (c *collector) walk(n *jsast.Node, ancestors []*jsast.Node) {
	if n == nil {
		return
	}

	if isVisitTarget(n.NodeKind) {
		var name *scopename.Name
		switch n.NodeKind {
		case jsast.KindFunction:
			name = ownNameOrInferred(n, ancestors)
		case jsast.KindArrowFunction:
			name = inferName(ancestors)
		case jsast.KindClass:
			name = inferClassName(n, ancestors)
		case jsast.KindObjectGetterSetter:
			name = inferGetterSetterName(n, ancestors)
		}
		c.entries = append(c.entries, scopename.Entry{
			Span: toScopeSpan(n.Span),
			Name: name,
		})
	}

	nextAncestors := append(append([]*jsast.Node(nil), ancestors...), n)
	for _, child := range n.Children {
		c.walk(child, nextAncestors)
	}
}

func toScopeSpan(s jsast.Span) scopename.Span {
	return scopename.Span{Start: s.Start, End: s.End}
}

// ownNameOrInferred implements the "declared identifier if present,
// else inferred from context" rule shared by function declarations
// and expressions. The ancestor walk always runs first; a declared
// identifier then overrides only the innermost component it
// produced, so outer context (an enclosing variable or class name)
// still prefixes the declared name instead of being discarded by it
// — e.g. `const obj = { named_prop: function named_fun(){} }` yields
// "obj.named_fun", not bare "named_fun".
func ownNameOrInferred(n *jsast.Node, ancestors []*jsast.Node) *scopename.Name {
	return nameFromIdentOrContext(n.Name, ancestors)
}

// inferClassName implements the class declaration/expression naming
// rule via the same own-identifier-overrides-innermost-component
// logic as ownNameOrInferred, prefixing the result with "new " when
// it ends up non-empty.
func inferClassName(n *jsast.Node, ancestors []*jsast.Node) *scopename.Name {
	name := nameFromIdentOrContext(n.ClassName, ancestors)
	if name.Empty() {
		return nil
	}
	name.PushFront(scopename.Interpolation("new "))
	return name
}

// nameFromIdentOrContext always computes the ancestor-inferred name
// first. If ident is non-nil, it then replaces the innermost
// component inferName collected (the one nearest the construct being
// named, e.g. a property key) with ident itself, leaving any outer
// compounded context (an enclosing variable or class name) in place.
func nameFromIdentOrContext(ident *jsast.Identifier, ancestors []*jsast.Node) *scopename.Name {
	name := inferName(ancestors)
	if ident == nil {
		return name
	}
	if name == nil {
		name = scopename.New()
	}
	name.PopBack()
	name.PushBack(scopename.IdentifierToken(ident.Name, scopename.Span{Start: ident.Span.Start, End: ident.Span.End}))
	return name
}

// inferGetterSetterName implements the object-literal getter/setter
// naming rule: "<prefix>.<propName>" where prefix comes from context
// inference (empty if none), prefixed with "get "/"set ".
func inferGetterSetterName(n *jsast.Node, ancestors []*jsast.Node) *scopename.Name {
	name := scopename.New()
	if prefix := inferName(ancestors); !prefix.Empty() {
		for _, comp := range prefix.Components() {
			name.PushBack(comp)
		}
		name.PushBack(scopename.Interpolation("."))
	}
	if n.Key != nil {
		appendKeyText(name, n.Key)
	}
	applyMethodPrefixTo(name, n.MKind)
	return name
}

// propNameComponent renders a property/method key the way any
// object-literal-method, class-method, or getter/setter key renders
// when it is not itself the innermost identifier overridden by an
// own name: identifier keys carry their span, literal keys render
// bracketed (`<"bar">`, `<1.7>`, `<1n>`), and anything else — a
// computed key whose expression is not itself a literal or bare
// identifier — renders as the generic `<computed>` fragment.
func propNameComponent(key *jsast.PropertyKey) scopename.Component {
	switch {
	case key.Identifier != nil:
		return scopename.IdentifierToken(key.Identifier.Name, scopename.Span{Start: key.Identifier.Span.Start, End: key.Identifier.Span.End})
	case key.Private != nil:
		return scopename.IdentifierToken(key.Private.Name, scopename.Span{Start: key.Private.Span.Start, End: key.Private.Span.End})
	case key.StringKey != nil:
		return scopename.Interpolation("<\"" + *key.StringKey + "\">")
	case key.NumberLit != nil:
		return scopename.Interpolation("<" + *key.NumberLit + ">")
	case key.BigIntLit != nil:
		return scopename.Interpolation("<" + *key.BigIntLit + "n>")
	default:
		return scopename.Interpolation("<computed>")
	}
}

func appendKeyText(name *scopename.Name, key *jsast.PropertyKey) {
	if key.Private != nil {
		name.PushBack(scopename.Interpolation("#"))
	}
	name.PushBack(propNameComponent(key))
}

// methodContext accumulates getter/setter status discovered while
// walking ancestors, applied as a prefix once the walk finds a name
// (or exhausts itself inside an object literal).
type methodContext struct {
	kind jsast.MethodKind
}

// inferName implements the ancestor-path inference table from the
// scope-name specification. ancestors is ordered outermost-first;
// the walk below consumes it innermost-first.
func inferName(ancestors []*jsast.Node) *scopename.Name {
	name := scopename.New()
	ctx := methodContext{}
	inObjectLiteral := false
	collectedAny := false

	applyMethodPrefix := func() {
		switch ctx.kind {
		case jsast.MethodGetter:
			name.PushFront(scopename.Interpolation("get "))
		case jsast.MethodSetter:
			name.PushFront(scopename.Interpolation("set "))
		}
	}

	for i := len(ancestors) - 1; i >= 0; i-- {
		a := ancestors[i]

		switch a.NodeKind {
		case jsast.KindFunction, jsast.KindArrowFunction, jsast.KindObjectGetterSetter, jsast.KindConstructor:
			// Another function scope encloses the node being named;
			// its name cannot extend past this boundary. A constructor
			// never gets its own name (isVisitTarget excludes it) but
			// still bounds inference the same way a function body does.
			if !collectedAny {
				return nil
			}
			if inObjectLiteral {
				name.PushFront(scopename.Interpolation("<object>."))
			}
			applyMethodPrefix()
			return name

		case jsast.KindObjectMethod:
			if a.Key != nil {
				pushPropertyKey(name, a.Key, collectedAny)
			}
			collectedAny = true

		case jsast.KindObjectProperty:
			if a.Key != nil && a.Key.Identifier != nil {
				pushPropertyKey(name, a.Key, collectedAny)
				collectedAny = true
			}

		case jsast.KindClassMethod:
			if a.Key != nil {
				pushPropertyKeyNoSeparator(name, a.Key)
				collectedAny = true
			}
			ctx.kind = a.MKind

		case jsast.KindClass:
			if a.ClassName != nil {
				pushSep(name)
				pushIdentifierSpan(name, a.ClassName.Name, a.ClassName.Span)
				applyMethodPrefix()
				return name
			}
			// Anonymous class expression: not a boundary, keep walking.

		case jsast.KindVariableDeclarator:
			if a.DeclName != nil {
				pushSep(name)
				pushIdentifierSpan(name, a.DeclName.Name, a.DeclName.Span)
				applyMethodPrefix()
				return name
			}

		case jsast.KindAssignment:
			if a.Target == nil {
				continue
			}
			if a.Target.Identifier != nil {
				pushSep(name)
				pushIdentifierSpan(name, a.Target.Identifier.Name, a.Target.Identifier.Span)
				applyMethodPrefix()
				return name
			}
			if a.Target.Member != nil {
				if lowered := lowerMemberChain(a.Target.Member); lowered != nil {
					applyMethodPrefixTo(lowered, ctx.kind)
					return lowered
				}
				return nil
			}

		case jsast.KindObjectLiteral:
			inObjectLiteral = true

		default:
			// Ignore and continue walking.
		}
	}

	if inObjectLiteral && collectedAny {
		name.PushFront(scopename.Interpolation("<object>."))
		applyMethodPrefix()
		return name
	}

	if !collectedAny {
		return nil
	}
	applyMethodPrefix()
	return name
}

// pushSep prepends a "." separator only when name already has a
// component — mirroring push_sep's "don't separate from nothing"
// guard. Terminal ancestors (VariableDeclarator, ClassDecl,
// Assignment) share this: reaching them first (no inner property
// key or method already collected) must yield the bare identifier,
// not a leading or trailing dot.
func pushSep(name *scopename.Name) {
	if !name.Empty() {
		name.PushFront(scopename.Interpolation("."))
	}
}

func pushIdentifierSpan(name *scopename.Name, text string, span jsast.Span) {
	name.PushFront(scopename.IdentifierToken(text, scopename.Span{Start: span.Start, End: span.End}))
}

// pushPropertyKey pushes an object-literal method key to the front,
// prepending a "." separator when a name has already been collected
// (i.e. this property is not the innermost component). Non-identifier
// keys render bracketed via propNameComponent, matching how any
// object-literal method/getter/setter key renders.
func pushPropertyKey(name *scopename.Name, key *jsast.PropertyKey, needSeparator bool) {
	if needSeparator {
		name.PushFront(scopename.Interpolation("."))
	}
	name.PushFront(propNameComponent(key))
}

// pushPropertyKeyNoSeparator pushes a class-method key with no
// separator; the enclosing class provides it. A private key gets a
// "#" prefix of its own; the key's own rendering otherwise follows
// propNameComponent like any other method key.
func pushPropertyKeyNoSeparator(name *scopename.Name, key *jsast.PropertyKey) {
	name.PushFront(propNameComponent(key))
	if key.Private != nil {
		name.PushFront(scopename.Interpolation("#"))
	}
}

// lowerMemberChain renders a classified MemberChain into a ScopeName,
// per the member-expression lowering rules: identifiers carry spans,
// everything else is an interpolation fragment.
func lowerMemberChain(chain *jsast.MemberChain) *scopename.Name {
	if chain == nil || len(chain.Steps) == 0 {
		return nil
	}
	name := scopename.New()
	for i, step := range chain.Steps {
		if i > 0 {
			switch step.Kind {
			case jsast.StepComputedLiteral, jsast.StepComputedIdentifier, jsast.StepComputedOther:
				// bracket steps render without a leading "."
			default:
				name.PushBack(scopename.Interpolation("."))
			}
		}
		switch step.Kind {
		case jsast.StepThis:
			name.PushBack(scopename.Interpolation("this"))
		case jsast.StepBase, jsast.StepProperty:
			name.PushBack(scopename.IdentifierToken(step.Text, scopename.Span{Start: step.Span.Start, End: step.Span.End}))
		case jsast.StepComputedLiteral:
			name.PushBack(scopename.Interpolation("[" + step.Text + "]"))
		case jsast.StepComputedIdentifier:
			name.PushBack(scopename.Interpolation("["))
			name.PushBack(scopename.IdentifierToken(step.Text, scopename.Span{Start: step.Span.Start, End: step.Span.End}))
			name.PushBack(scopename.Interpolation("]"))
		case jsast.StepComputedOther:
			name.PushBack(scopename.Interpolation("[<computed>]"))
		case jsast.StepUnsupported:
			return nil
		}
	}
	return name
}

func applyMethodPrefixTo(name *scopename.Name, kind jsast.MethodKind) {
	switch kind {
	case jsast.MethodGetter:
		name.PushFront(scopename.Interpolation("get "))
	case jsast.MethodSetter:
		name.PushFront(scopename.Interpolation("set "))
	}
}
