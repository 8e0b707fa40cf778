package scope

import (
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"
)

// binder describes where and how a binding pattern declares its names.
type binder struct {
	kind  DeclKind
	scope ScopeID
	write bool
}

func (a *analyzer) expression(expr ast.Expression, seg string) {
	if expr == nil {
		return
	}
	a.push(seg)
	a.expr(expr)
	a.pop()
}

func (a *analyzer) expressions(list []ast.Expression, field string) {
	for i, e := range list {
		a.expression(e, index(field, i))
	}
}

func (a *analyzer) expr(expr ast.Expression) {
	switch n := any(expr).(type) {
	case *ast.Identifier:
		a.reference(n, Read)
	case *ast.AssignExpression:
		access := ReadWrite
		if n.Operator == token.ASSIGN {
			access = Write
		}
		a.assignTarget(n.Left, "Left", access)
		a.expression(n.Right, "Right")
	case *ast.UnaryExpression:
		if n.Operator == token.INCREMENT || n.Operator == token.DECREMENT {
			a.assignTarget(n.Operand, "Operand", ReadWrite)
			return
		}
		a.expression(n.Operand, "Operand")
	case *ast.BinaryExpression:
		a.expression(n.Left, "Left")
		a.expression(n.Right, "Right")
	case *ast.ConditionalExpression:
		a.expression(n.Test, "Test")
		a.expression(n.Consequent, "Consequent")
		a.expression(n.Alternate, "Alternate")
	case *ast.SequenceExpression:
		a.expressions(n.Sequence, "Sequence")
	case *ast.CallExpression:
		if callee, ok := n.Callee.(*ast.Identifier); ok && callee.Name == "eval" {
			// direct eval may introduce bindings into the calling scope
			a.current().dynamic = true
		}
		a.expression(n.Callee, "Callee")
		a.expressions(n.ArgumentList, "ArgumentList")
	case *ast.NewExpression:
		a.expression(n.Callee, "Callee")
		a.expressions(n.ArgumentList, "ArgumentList")
	case *ast.DotExpression:
		a.expression(n.Left, "Left")
	case *ast.PrivateDotExpression:
		a.expression(n.Left, "Left")
	case *ast.BracketExpression:
		a.expression(n.Left, "Left")
		a.expression(n.Member, "Member")
	case *ast.ObjectLiteral:
		a.objectLiteral(n)
	case *ast.ArrayLiteral:
		a.expressions(n.Value, "Value")
	case *ast.TemplateLiteral:
		a.expression(n.Tag, "Tag")
		a.expressions(n.Expressions, "Expressions")
	case *ast.SpreadElement:
		a.expression(n.Expression, "Expression")
	case *ast.YieldExpression:
		a.expression(n.Argument, "Argument")
	case *ast.AwaitExpression:
		a.expression(n.Argument, "Argument")
	case *ast.OptionalChain:
		a.expression(n.Expression, "Expression")
	case *ast.Optional:
		a.expression(n.Expression, "Expression")
	case *ast.FunctionLiteral:
		a.functionExpression(n)
	case *ast.ArrowFunctionLiteral:
		a.arrowFunction(n)
	case *ast.ClassLiteral:
		a.class(n, n)
	case *ast.StringLiteral, *ast.NumberLiteral, *ast.BooleanLiteral, *ast.NullLiteral,
		*ast.RegExpLiteral, *ast.ThisExpression, *ast.SuperExpression, *ast.MetaProperty,
		*ast.PrivateIdentifier:
	default:
		a.unsupported(expr)
	}
}

func (a *analyzer) objectLiteral(n *ast.ObjectLiteral) {
	for i, prop := range n.Value {
		a.push(index("Value", i))
		switch p := any(prop).(type) {
		case *ast.PropertyShort:
			a.push("Name")
			a.reference(&p.Name, Read)
			a.pop()
			a.expression(p.Initializer, "Initializer")
		case *ast.PropertyKeyed:
			if p.Computed {
				a.expression(p.Key, "Key")
			}
			if fn, ok := p.Value.(*ast.FunctionLiteral); ok && p.Kind != ast.PropertyKindValue {
				a.push("Value")
				a.function(fn, KindFunction, fn)
				a.pop()
			} else {
				a.expression(p.Value, "Value")
			}
		case *ast.SpreadElement:
			a.expression(p.Expression, "Expression")
		default:
			a.unsupported(prop)
		}
		a.pop()
	}
}

// assignTarget walks the left-hand side of an assignment or update. Names in
// destructuring patterns are always plain writes.
func (a *analyzer) assignTarget(expr ast.Expression, seg string, access Accessibility) {
	if expr == nil {
		return
	}
	a.push(seg)
	defer a.pop()

	switch n := any(expr).(type) {
	case *ast.Identifier:
		a.reference(n, access)
	case *ast.ArrayPattern:
		for i, el := range n.Elements {
			a.assignTarget(el, index("Elements", i), Write)
		}
		a.assignTarget(n.Rest, "Rest", Write)
	case *ast.ArrayLiteral:
		for i, el := range n.Value {
			a.assignTarget(el, index("Value", i), Write)
		}
	case *ast.ObjectPattern:
		a.assignProperties(n.Properties, "Properties")
		a.assignTarget(n.Rest, "Rest", Write)
	case *ast.ObjectLiteral:
		a.assignProperties(n.Value, "Value")
	case *ast.AssignExpression:
		// default value inside a pattern
		a.assignTarget(n.Left, "Left", Write)
		a.expression(n.Right, "Right")
	case *ast.SpreadElement:
		a.assignTarget(n.Expression, "Expression", Write)
	default:
		a.expr(expr)
	}
}

func (a *analyzer) assignProperties(props []ast.Property, field string) {
	for i, prop := range props {
		a.push(index(field, i))
		switch p := any(prop).(type) {
		case *ast.PropertyShort:
			a.push("Name")
			a.reference(&p.Name, Write)
			a.pop()
			a.expression(p.Initializer, "Initializer")
		case *ast.PropertyKeyed:
			if p.Computed {
				a.expression(p.Key, "Key")
			}
			a.assignTarget(p.Value, "Value", Write)
		case *ast.SpreadElement:
			a.assignTarget(p.Expression, "Expression", Write)
		default:
			a.unsupported(prop)
		}
		a.pop()
	}
}

// bindingTarget declares every name of a binding pattern.
func (a *analyzer) bindingTarget(target ast.Expression, seg string, b binder) {
	if target == nil {
		return
	}
	a.push(seg)
	defer a.pop()

	switch n := any(target).(type) {
	case *ast.Identifier:
		a.declare(b.scope, n, b.kind)
		if b.write {
			a.reference(n, Write)
		}
	case *ast.ArrayPattern:
		for i, el := range n.Elements {
			a.bindingTarget(el, index("Elements", i), b)
		}
		a.bindingTarget(n.Rest, "Rest", b)
	case *ast.ObjectPattern:
		for i, prop := range n.Properties {
			a.push(index("Properties", i))
			switch p := any(prop).(type) {
			case *ast.PropertyShort:
				a.bindingTarget(&p.Name, "Name", b)
				a.expression(p.Initializer, "Initializer")
			case *ast.PropertyKeyed:
				if p.Computed {
					a.expression(p.Key, "Key")
				}
				a.bindingTarget(p.Value, "Value", b)
			default:
				a.unsupported(prop)
			}
			a.pop()
		}
		a.bindingTarget(n.Rest, "Rest", b)
	case *ast.AssignExpression:
		a.bindingTarget(n.Left, "Left", b)
		a.expression(n.Right, "Right")
	default:
		a.unsupported(target)
	}
}

// hasParameterExpressions reports whether evaluating the parameter list runs
// user code: default values or computed destructuring keys.
func hasParameterExpressions(params *ast.ParameterList) bool {
	if params == nil {
		return false
	}
	for _, b := range params.List {
		if b.Initializer != nil || patternHasExpressions(b.Target) {
			return true
		}
	}
	return patternHasExpressions(params.Rest)
}

func patternHasExpressions(target ast.Expression) bool {
	switch n := any(target).(type) {
	case *ast.ArrayPattern:
		for _, el := range n.Elements {
			if patternHasExpressions(el) {
				return true
			}
		}
		return patternHasExpressions(n.Rest)
	case *ast.ObjectPattern:
		for _, prop := range n.Properties {
			switch p := any(prop).(type) {
			case *ast.PropertyShort:
				if p.Initializer != nil {
					return true
				}
			case *ast.PropertyKeyed:
				if p.Computed || patternHasExpressions(p.Value) {
					return true
				}
			}
		}
		return patternHasExpressions(n.Rest)
	case *ast.AssignExpression:
		return true
	default:
		return false
	}
}
