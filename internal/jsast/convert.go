package jsast

import (
	gofast "github.com/t14raptor/go-fast/ast"
)

// convertStmt converts one go-fast statement into zero or more
// normalized nodes (a statement usually contributes exactly one node,
// but a variable declaration with several declarators contributes
// one VariableDeclarator node per declarator).
func (c *converter) convertStmt(stmt gofast.Stmt) []*Node {
	if stmt == nil {
		return nil
	}

	switch s := stmt.(type) {
	case *gofast.FunctionDeclaration:
		if n := c.convertFunctionLiteral(s.Function, false); n != nil {
			return []*Node{n}
		}

	case *gofast.ClassDeclaration:
		if n := c.convertClassLiteral(s.Class); n != nil {
			return []*Node{n}
		}

	case *gofast.VariableDeclaration:
		return c.convertVariableDeclaration(s)

	case *gofast.ExpressionStatement:
		if s.Expression != nil {
			if n := c.convertExpr(s.Expression.Expr); n != nil {
				return []*Node{n}
			}
		}

	case *gofast.BlockStatement:
		var out []*Node
		for _, item := range s.List {
			out = append(out, c.convertStmt(item.Stmt)...)
		}
		return out

	case *gofast.ReturnStatement:
		if s.Argument != nil {
			if n := c.convertExpr(s.Argument.Expr); n != nil {
				return []*Node{n}
			}
		}

	case *gofast.IfStatement:
		var out []*Node
		if s.Test != nil {
			if n := c.convertExpr(s.Test.Expr); n != nil {
				out = append(out, n)
			}
		}
		out = append(out, c.convertStmt(s.Consequent.Stmt)...)
		out = append(out, c.convertStmt(s.Alternate.Stmt)...)
		return out

	case *gofast.ForStatement:
		var out []*Node
		out = append(out, c.convertStmt(s.Body.Stmt)...)
		return out

	case *gofast.WhileStatement:
		var out []*Node
		if s.Test != nil {
			if n := c.convertExpr(s.Test.Expr); n != nil {
				out = append(out, n)
			}
		}
		out = append(out, c.convertStmt(s.Body.Stmt)...)
		return out

	case *gofast.TryStatement:
		var out []*Node
		if s.Body != nil {
			out = append(out, c.convertStmt(s.Body)...)
		}
		if s.Finally != nil {
			out = append(out, c.convertStmt(s.Finally)...)
		}
		return out

	case *gofast.LabelledStatement:
		return c.convertStmt(s.Statement.Stmt)

	case *gofast.SwitchStatement:
		var out []*Node
		for _, cc := range s.Body {
			for _, item := range cc.Consequent {
				out = append(out, c.convertStmt(item.Stmt)...)
			}
		}
		return out
	}

	return nil
}

// convertExpr converts a go-fast expression into a normalized node.
// Only expression kinds that can introduce function scopes or that
// the inference tables reference are handled explicitly; anything
// else returns nil (ignored by the collector, matching the "anything
// else: ignore" row of the inference table).
func (c *converter) convertExpr(expr gofast.Expr) *Node {
	if expr == nil {
		return nil
	}

	switch e := expr.(type) {
	case *gofast.FunctionLiteral:
		return c.convertFunctionLiteral(e, false)

	case *gofast.ArrowFunctionLiteral:
		return c.convertArrowFunctionLiteral(e)

	case *gofast.ClassLiteral:
		return c.convertClassLiteral(e)

	case *gofast.ObjectLiteral:
		return c.convertObjectLiteral(e)

	case *gofast.AssignExpression:
		return c.convertAssignExpression(e)

	case *gofast.CallExpression:
		n := &Node{NodeKind: KindOther, Span: idxSpan(int(e.LeftParenthesis), "")}
		if e.Callee != nil {
			if cn := c.convertExpr(e.Callee.Expr); cn != nil {
				n.Children = append(n.Children, cn)
			}
		}
		for _, arg := range e.ArgumentList {
			if an := c.convertExpr(arg.Expr); an != nil {
				n.Children = append(n.Children, an)
			}
		}
		return n

	case *gofast.AwaitExpression:
		if e.Argument != nil {
			return c.convertExpr(e.Argument.Expr)
		}

	case *gofast.SequenceExpression:
		n := &Node{NodeKind: KindOther}
		for _, item := range e.Sequence {
			if cn := c.convertExpr(item.Expr); cn != nil {
				n.Children = append(n.Children, cn)
			}
		}
		return n

	case *gofast.ConditionalExpression:
		n := &Node{NodeKind: KindOther}
		if e.Consequent != nil {
			if cn := c.convertExpr(e.Consequent.Expr); cn != nil {
				n.Children = append(n.Children, cn)
			}
		}
		if e.Alternate != nil {
			if cn := c.convertExpr(e.Alternate.Expr); cn != nil {
				n.Children = append(n.Children, cn)
			}
		}
		return n
	}

	return nil
}

func (c *converter) convertFunctionLiteral(fn *gofast.FunctionLiteral, _ bool) *Node {
	if fn == nil {
		return nil
	}
	n := &Node{
		NodeKind: KindFunction,
		Span:     idxSpan(int(fn.Function), ""),
		Name:     c.identFromGoFast(fn.Name),
	}
	if fn.Body != nil {
		for _, item := range fn.Body.List {
			n.Children = append(n.Children, c.convertStmt(item.Stmt)...)
		}
	}
	return n
}

func (c *converter) convertArrowFunctionLiteral(fn *gofast.ArrowFunctionLiteral) *Node {
	if fn == nil {
		return nil
	}
	n := &Node{
		NodeKind: KindArrowFunction,
		Span:     idxSpan(int(fn.Arrow), ""),
	}
	if fn.Body != nil {
		if fn.Body.BlockStatement != nil {
			for _, item := range fn.Body.BlockStatement.List {
				n.Children = append(n.Children, c.convertStmt(item.Stmt)...)
			}
		}
		if fn.Body.Expression != nil {
			if cn := c.convertExpr(fn.Body.Expression.Expr); cn != nil {
				n.Children = append(n.Children, cn)
			}
		}
	}
	return n
}

func (c *converter) convertClassLiteral(cl *gofast.ClassLiteral) *Node {
	if cl == nil {
		return nil
	}
	n := &Node{
		NodeKind:  KindClass,
		Span:      idxSpan(int(cl.Class), ""),
		ClassName: c.identFromGoFast(cl.Name),
	}
	for _, item := range cl.Body {
		switch el := item.Element.(type) {
		case *gofast.MethodDefinition:
			mn := c.convertFunctionLiteral(el.Body, false)
			if mn == nil {
				continue
			}
			if string(el.Kind) == "constructor" {
				mn.NodeKind = KindConstructor
				n.Children = append(n.Children, mn)
				continue
			}
			wrapper := &Node{
				NodeKind: KindClassMethod,
				Span:     mn.Span,
				Key:      propertyKeyFromExpr(el.Key.Expr),
				MKind:    methodKindFromGoFast(el.Kind),
				IsStatic: el.Static,
			}
			mn.NodeKind = KindFunction
			wrapper.Children = []*Node{mn}
			n.Children = append(n.Children, wrapper)

		case *gofast.FieldDefinition:
			if el.Initializer != nil {
				if fn := c.convertExpr(el.Initializer.Expr); fn != nil {
					n.Children = append(n.Children, fn)
				}
			}
		}
	}
	return n
}

func (c *converter) convertObjectLiteral(ol *gofast.ObjectLiteral) *Node {
	if ol == nil {
		return nil
	}
	n := &Node{NodeKind: KindObjectLiteral}
	for _, item := range ol.Value {
		switch p := item.(type) {
		case *gofast.PropertyKeyed:
			key := propertyKeyFromExpr(p.Key)
			switch p.Kind {
			case "get", "set":
				fnLit, _ := p.Value.(*gofast.FunctionLiteral)
				mn := c.convertFunctionLiteral(fnLit, false)
				if mn == nil {
					continue
				}
				getset := &Node{
					NodeKind: KindObjectGetterSetter,
					Span:     mn.Span,
					Key:      key,
					MKind:    methodKindFromString(p.Kind),
					Children: mn.Children,
				}
				n.Children = append(n.Children, getset)
			case "method":
				fnLit, _ := p.Value.(*gofast.FunctionLiteral)
				mn := c.convertFunctionLiteral(fnLit, false)
				if mn == nil {
					continue
				}
				wrapper := &Node{NodeKind: KindObjectMethod, Span: mn.Span, Key: key}
				wrapper.Children = []*Node{mn}
				n.Children = append(n.Children, wrapper)
			default:
				valueNode := c.convertExpr(p.Value)
				if valueNode == nil {
					continue
				}
				wrapper := &Node{NodeKind: KindObjectProperty, Span: valueNode.Span, Key: key}
				wrapper.Children = []*Node{valueNode}
				n.Children = append(n.Children, wrapper)
			}
		}
	}
	return n
}

func (c *converter) convertVariableDeclaration(decl *gofast.VariableDeclaration) []*Node {
	var out []*Node
	for _, binding := range decl.List {
		if binding.Target == nil {
			continue
		}
		var declName *Identifier
		if ident, ok := binding.Target.Target.(*gofast.Identifier); ok {
			declName = c.identFromGoFast(ident)
		}

		var initNode *Node
		if binding.Initializer != nil {
			initNode = c.convertExpr(binding.Initializer.Expr)
		}

		if declName == nil || initNode == nil {
			if initNode != nil {
				out = append(out, initNode)
			}
			continue
		}

		wrapper := &Node{
			NodeKind: KindVariableDeclarator,
			Span:     initNode.Span,
			DeclName: declName,
		}
		wrapper.Children = []*Node{initNode}
		out = append(out, wrapper)
	}
	return out
}

func (c *converter) convertAssignExpression(assign *gofast.AssignExpression) *Node {
	if assign == nil || assign.Operator.String() != "=" {
		if assign != nil && assign.Right != nil {
			return c.convertExpr(assign.Right.Expr)
		}
		return nil
	}

	target := c.classifyAssignTarget(assign.Left)
	var initNode *Node
	if assign.Right != nil {
		initNode = c.convertExpr(assign.Right.Expr)
	}
	if target == nil || initNode == nil {
		return initNode
	}

	wrapper := &Node{NodeKind: KindAssignment, Span: initNode.Span, Target: target}
	wrapper.Children = []*Node{initNode}
	return wrapper
}

func (c *converter) classifyAssignTarget(lhs *gofast.Expression) *AssignTarget {
	if lhs == nil || lhs.Expr == nil {
		return nil
	}
	switch l := lhs.Expr.(type) {
	case *gofast.Identifier:
		return &AssignTarget{Identifier: c.identFromGoFast(l)}
	case *gofast.MemberExpression:
		if chain := c.lowerMemberExpression(l); chain != nil {
			return &AssignTarget{Member: chain}
		}
	}
	return nil
}

// lowerMemberExpression flattens a `a.b.c` / `a.b[c]` chain into an
// outermost-to-innermost sequence of steps per the member-expression
// lowering rules.
func (c *converter) lowerMemberExpression(me *gofast.MemberExpression) *MemberChain {
	var steps []MemberStep
	var walk func(expr gofast.Expr) bool
	walk = func(expr gofast.Expr) bool {
		switch e := expr.(type) {
		case *gofast.MemberExpression:
			if !walk(e.Object.Expr) {
				return false
			}
			steps = append(steps, memberPropertyStep(e))
			return true
		case *gofast.Identifier:
			steps = append(steps, MemberStep{Kind: StepBase, Text: e.Name, Span: idxSpan(int(e.Idx), e.Name)})
			return true
		case *gofast.ThisExpression:
			steps = append(steps, MemberStep{Kind: StepThis, Text: "this"})
			return true
		default:
			return false
		}
	}
	if !walk(me) {
		return nil
	}
	return &MemberChain{Steps: steps}
}

func memberPropertyStep(me *gofast.MemberExpression) MemberStep {
	if !me.Computed {
		if ident, ok := me.Property.Prop.(*gofast.Identifier); ok {
			return MemberStep{Kind: StepProperty, Text: ident.Name, Span: idxSpan(int(ident.Idx), ident.Name)}
		}
		return MemberStep{Kind: StepComputedOther, Text: "<computed>"}
	}
	switch p := me.Property.Prop.(type) {
	case *gofast.StringLiteral:
		return MemberStep{Kind: StepComputedLiteral, Text: "\"" + p.Value + "\""}
	case *gofast.NumberLiteral:
		return MemberStep{Kind: StepComputedLiteral, Text: p.Literal}
	case *gofast.BooleanLiteral:
		return MemberStep{Kind: StepComputedLiteral, Text: boolLiteralText(p.Value)}
	case *gofast.NullLiteral:
		return MemberStep{Kind: StepComputedLiteral, Text: "null"}
	case *gofast.BigIntLiteral:
		return MemberStep{Kind: StepComputedLiteral, Text: p.Literal + "n"}
	case *gofast.RegExpLiteral:
		return MemberStep{Kind: StepComputedLiteral, Text: p.Literal}
	case *gofast.Identifier:
		return MemberStep{Kind: StepComputedIdentifier, Text: p.Name, Span: idxSpan(int(p.Idx), p.Name)}
	default:
		return MemberStep{Kind: StepComputedOther, Text: "<computed>"}
	}
}

func boolLiteralText(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// propertyKeyFromExpr classifies a member/method/property key
// expression. A computed key whose expression is neither a literal
// nor a bare identifier returns a non-nil PropertyKey with every
// field nil — the generic "<computed>" case.
func propertyKeyFromExpr(expr gofast.Expr) *PropertyKey {
	switch e := expr.(type) {
	case *gofast.Identifier:
		ident := &Identifier{Name: e.Name, Span: idxSpan(int(e.Idx), e.Name)}
		return &PropertyKey{Identifier: ident}
	case *gofast.PrivateIdentifier:
		if e.Identifier != nil {
			ident := &Identifier{Name: e.Identifier.Name, Span: idxSpan(int(e.Identifier.Idx), e.Identifier.Name)}
			return &PropertyKey{Private: ident}
		}
	case *gofast.StringLiteral:
		v := e.Value
		return &PropertyKey{StringKey: &v}
	case *gofast.NumberLiteral:
		v := e.Literal
		return &PropertyKey{NumberLit: &v}
	case *gofast.BigIntLiteral:
		v := e.Literal
		return &PropertyKey{BigIntLit: &v}
	}
	// A computed key whose expression is none of the above (e.g. a
	// binary expression): the key exists but carries no literal or
	// identifier text, renders as the generic "<computed>" fragment.
	return &PropertyKey{}
}

func methodKindFromGoFast(kind gofast.PropertyKind) MethodKind {
	return methodKindFromString(string(kind))
}

func methodKindFromString(kind string) MethodKind {
	switch kind {
	case "get":
		return MethodGetter
	case "set":
		return MethodSetter
	default:
		return MethodPlain
	}
}
