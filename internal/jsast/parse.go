package jsast

import (
	"fmt"

	gofast "github.com/t14raptor/go-fast/ast"
	"github.com/t14raptor/go-fast/parser"

	jsscopeserrors "github.com/standardbeagle/jsscopes/internal/errors"
)

// Parse runs go-fast over source and converts its AST into the
// normalized tree the scope collector walks. A parser failure is
// surfaced as a *errors.ParseError carrying whatever position
// information go-fast attached to the error.
func Parse(source string) (*Program, error) {
	prog, err := parser.ParseFile(source)
	if err != nil {
		start, end := positionFromParseError(err)
		return nil, jsscopeserrors.NewParseError(start, end, err.Error(), err)
	}

	conv := &converter{source: source}
	root := &Node{
		Span:     Span{Start: 0, End: len(source)},
		NodeKind: KindProgram,
	}
	for _, item := range prog.Body {
		if n := conv.convertStmt(item.Stmt); n != nil {
			root.Children = append(root.Children, n...)
		}
	}

	return &Program{Source: source, Root: root}, nil
}

// positionFromParseError best-effort extracts a byte offset range
// from go-fast's error value. go-fast does not guarantee a typed
// error with exported position fields across versions, so this falls
// back to 0:0 when the offset cannot be determined.
func positionFromParseError(err error) (int, int) {
	type offsetErr interface{ Offset() int }
	if oe, ok := err.(offsetErr); ok {
		return oe.Offset(), oe.Offset()
	}
	type posErr interface{ Position() (int, int) }
	if pe, ok := err.(posErr); ok {
		s, e := pe.Position()
		return s, e
	}
	return 0, 0
}

func idxSpan(idx int, text string) Span {
	return Span{Start: idx, End: idx + len(text)}
}

var _ = fmt.Sprintf // keep fmt imported if position helpers above shrink

// converter carries state while walking the go-fast AST exactly once.
type converter struct {
	source string
}

func (c *converter) identFromGoFast(id *gofast.Identifier) *Identifier {
	if id == nil {
		return nil
	}
	return &Identifier{Name: id.Name, Span: idxSpan(int(id.Idx), id.Name)}
}
