// Package jsast is the parser adapter: it wraps go-fast's ECMAScript
// parser and emits a normalized tree with stable byte spans and an
// explicit, walkable shape. Nothing downstream touches go-fast's own
// AST types directly, so the rest of the engine does not need to
// track the parser's internal representation.
package jsast

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// Kind tags the variant of a Node so ancestor case analysis (done by
// the scope collector) can be exhaustive without type assertions.
type Kind int

const (
	KindProgram Kind = iota
	KindFunction
	KindArrowFunction
	// KindConstructor is a class constructor's body. It bounds ancestor
	// inference exactly like KindFunction (a name cannot extend past
	// it) but is never itself a named scope: a constructor never gets
	// its own ScopeName entry.
	KindConstructor
	KindClass
	KindClassMethod
	KindClassField
	KindObjectLiteral
	KindObjectMethod
	KindObjectProperty
	KindObjectGetterSetter
	KindVariableDeclarator
	KindAssignment
	KindOther
)

// MethodKind distinguishes plain methods from accessors.
type MethodKind int

const (
	MethodPlain MethodKind = iota
	MethodGetter
	MethodSetter
)

// Identifier is a bound name together with the span of its token.
type Identifier struct {
	Name string
	Span Span
}

// PropertyKey is the key of an object or class member: exactly one of
// its fields is set, or none (a computed key whose expression is not
// itself a literal or bare identifier).
type PropertyKey struct {
	Identifier *Identifier
	Private    *Identifier
	StringKey  *string // string-literal key, text without quotes
	NumberLit  *string // number-literal key, verbatim source text
	BigIntLit  *string // bigint-literal key, digits without trailing "n"
}

// Node is one element of the normalized tree. Only the fields that
// apply to Kind are meaningful; the rest are zero. Nodes hold no
// parent pointer — ancestor context is supplied by the walker as an
// explicit stack, not stored in the tree.
type Node struct {
	Span     Span
	NodeKind Kind
	Children []*Node

	// Function / ArrowFunction / ClassMethod (method value) / ObjectMethod
	Name *Identifier // declared identifier, nil if anonymous

	// Class
	ClassName *Identifier

	// ClassMethod / ClassField / ObjectMethod / ObjectProperty / ObjectGetterSetter
	Key        *PropertyKey
	MKind      MethodKind
	IsStatic   bool

	// VariableDeclarator
	DeclName *Identifier // nil when the binding is a destructuring pattern

	// Assignment
	Target *AssignTarget
}

// AssignTarget is the left-hand side of an assignment expression,
// pre-classified into the two shapes the inference table cares about.
type AssignTarget struct {
	Identifier *Identifier
	Member     *MemberChain
}

// MemberChain is a `a.b.c` / `a.b[c]` access path, outermost step
// first (the base identifier or `this`), innermost step last.
type MemberChain struct {
	Steps []MemberStep
}

// MemberStepKind classifies one link of a member-expression chain for
// the member-expression lowering rules in the inference table.
type MemberStepKind int

const (
	StepThis MemberStepKind = iota
	StepBase
	StepProperty
	StepComputedLiteral
	StepComputedIdentifier
	StepComputedOther
	StepUnsupported
)

// MemberStep is one link of a MemberChain. Span is set for steps that
// carry an identifier (StepBase, StepProperty, StepComputedIdentifier)
// so the name resolver can later remap them through a source map.
type MemberStep struct {
	Kind MemberStepKind
	Text string
	Span Span
}

// Program is the root of a parsed source file.
type Program struct {
	Source string
	Root   *Node
}
