package jsast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/jsscopes/internal/scopecollect"
)

// These tests exercise Parse end to end against go-fast, then run the
// real collector over the result — the same pipeline internal/batch
// drives in production. internal/scopecollect's own tests pin down
// ancestor-walk behavior against hand-built trees; these confirm Parse
// actually produces the shapes that collector depends on.

func renderAll(t *testing.T, source string) []string {
	t.Helper()
	prog, err := Parse(source)
	require.NoError(t, err)

	entries := scopecollect.Extract(prog)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name.Render()
	}
	return names
}

func TestParse_FunctionDeclaration(t *testing.T) {
	names := renderAll(t, "function named() { return 1; }")
	require.Equal(t, []string{"named"}, names)
}

func TestParse_NamedFunctionExpressionAssignedToVariable(t *testing.T) {
	names := renderAll(t, "var f = function inner() { return 1; };")
	require.Contains(t, names, "inner")
}

func TestParse_ClassDeclarationWithMethod(t *testing.T) {
	names := renderAll(t, "class Klass { method() { return 1; } }")
	require.Contains(t, names, "Klass.method")
}

func TestParse_ClassConstructorBoundsButIsNotNamed(t *testing.T) {
	names := renderAll(t, "class Klass { constructor() { return 1; } }")
	require.NotContains(t, names, "Klass.constructor")
}

func TestParse_PrototypeMethodAssignment(t *testing.T) {
	names := renderAll(t, "Klass.prototype.method = function() { return 1; };")
	require.Contains(t, names, "Klass.prototype.method")
}

func TestParse_ObjectLiteralMethodShorthand(t *testing.T) {
	names := renderAll(t, "var obj = { method() { return 1; } };")
	require.Contains(t, names, "obj.method")
}

func TestParse_EmptyProgramHasNoEntries(t *testing.T) {
	names := renderAll(t, "")
	require.Empty(t, names)
}

func TestParse_SyntaxErrorReturnsError(t *testing.T) {
	_, err := Parse("function ( { {")
	require.Error(t, err)
}

// The following drive the real go-fast pipeline through
// internal/jsast/convert.go's propertyKeyFromExpr and
// memberPropertyStep rather than hand-built jsast.Node trees, so a
// mismatch between go-fast's actual field semantics (e.g. whether
// BigIntLiteral.Literal already carries the trailing "n") and
// convert.go's assumptions would show up here.

func TestParse_ObjectMethodNonIdentifierKeys(t *testing.T) {
	names := renderAll(t, `a = { ["foo"+123](){}, 1.7(){}, "bar"(){}, 1n(){} };`)
	require.Contains(t, names, `a.<computed>`)
	require.Contains(t, names, `a.<1.7>`)
	require.Contains(t, names, `a.<"bar">`)
	require.Contains(t, names, `a.<1n>`)
}

func TestParse_PrototypeComputedLiteralKey(t *testing.T) {
	names := renderAll(t, `Klass.prototype[42] = function() {};`)
	require.Contains(t, names, "Klass.prototype[42]")
}

func TestParse_PrototypeComputedIdentifierKey(t *testing.T) {
	names := renderAll(t, `Klass.prototype[method] = function() {};`)
	require.Contains(t, names, "Klass.prototype[method]")
}

func TestParse_PrototypeComputedOtherKey(t *testing.T) {
	names := renderAll(t, `Klass.prototype[computeKey()] = function() {};`)
	require.Contains(t, names, "Klass.prototype[<computed>]")
}

func TestParse_ObjectLiteralGetterSetter(t *testing.T) {
	names := renderAll(t, `var obj = { get foo() { return this._f; }, set foo(v) { this._f = v; } };`)
	require.Contains(t, names, "get obj.foo")
	require.Contains(t, names, "set obj.foo")
}

func TestParse_ClassGetterSetter(t *testing.T) {
	names := renderAll(t, `class A { get foo() { return this._f; } set foo(v) { this._f = v; } }`)
	require.Contains(t, names, "get A.foo")
	require.Contains(t, names, "set A.foo")
}

func TestParse_NestedObjectLiteralMethodInsideIIFE(t *testing.T) {
	names := renderAll(t, `(function(){ return { children: { children: { onSubmitError(){} } } }; })();`)
	require.Contains(t, names, "<object>.children.children.onSubmitError")
}
