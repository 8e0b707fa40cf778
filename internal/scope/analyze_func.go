package scope

import (
	"github.com/dop251/goja/ast"
)

// functionDeclaration binds the function name in the current scope. Outside a
// var scope that binding is block-level and, in sloppy code, may gain an
// Annex B companion in the enclosing var scope.
func (a *analyzer) functionDeclaration(n *ast.FunctionDeclaration) {
	fn := n.Function
	a.push("Function")
	defer a.pop()
	if fn.Name != nil {
		a.push("Name")
		cur := a.current()
		a.declare(cur.ID, fn.Name, DeclFunctionDeclaration)
		if !cur.Kind.IsVarScope() && !cur.strict {
			a.b33 = append(a.b33, b33Candidate{
				id:       fn.Name,
				block:    cur.ID,
				varScope: a.varScope(),
				path:     a.currentPath(),
			})
		}
		a.pop()
	}
	a.function(n, KindFunction, fn)
}

// functionExpression wraps a named function expression in a FunctionName
// scope that only binds the function's own name.
func (a *analyzer) functionExpression(fn *ast.FunctionLiteral) {
	if fn.Name == nil {
		a.function(fn, KindFunction, fn)
		return
	}
	outer := a.enter(KindFunctionName, fn)
	a.push("Name")
	a.declare(outer, fn.Name, DeclFunctionName)
	a.pop()
	a.function(fn, KindFunction, fn)
	a.leave(outer)
}

func (a *analyzer) function(anchor ast.Node, kind Kind, fn *ast.FunctionLiteral) {
	var body []ast.Statement
	if fn.Body != nil {
		body = fn.Body.List
	}
	a.callable(anchor, kind, fn.ParameterList, body, nil)
}

func (a *analyzer) arrowFunction(n *ast.ArrowFunctionLiteral) {
	switch body := any(n.Body).(type) {
	case *ast.BlockStatement:
		a.callable(n, KindArrowFunction, n.ParameterList, body.List, nil)
	case *ast.ExpressionBody:
		a.callable(n, KindArrowFunction, n.ParameterList, nil, body.Expression)
	default:
		a.unsupported(n.Body)
	}
}

// callable builds the scopes of a function-like construct: an optional
// Parameters scope when parameters evaluate expressions, then the body scope.
// Exactly one of body and expr is used.
func (a *analyzer) callable(anchor ast.Node, kind Kind, params *ast.ParameterList, body []ast.Statement, expr ast.Expression) {
	strict := a.current().strict || hasUseStrict(body)

	var paramScope, fnScope ScopeID
	if hasParameterExpressions(params) {
		paramScope = a.enter(KindParameters, params)
		a.scopes.Get(paramScope).strict = strict
		a.parameters(params, paramScope)
		fnScope = a.enter(kind, anchor)
		a.scopes.Get(fnScope).strict = strict
	} else {
		fnScope = a.enter(kind, anchor)
		a.scopes.Get(fnScope).strict = strict
		a.parameters(params, fnScope)
	}

	if expr != nil {
		a.push("Body")
		a.expression(expr, "Expression")
		a.pop()
	} else {
		a.push("Body")
		a.statements(body, "List")
		a.pop()
	}

	a.finishVarScope(fnScope)
	if kind == KindFunction {
		a.synthesizeArguments(fnScope, paramScope)
	}
	a.leave(fnScope)
	if paramScope.IsValid() {
		a.leave(paramScope)
	}
}

func (a *analyzer) parameters(params *ast.ParameterList, target ScopeID) {
	if params == nil {
		return
	}
	a.push("ParameterList")
	b := binder{kind: DeclParam, scope: target}
	for i, p := range params.List {
		a.push(index("List", i))
		a.bindingTarget(p.Target, "Target", b)
		a.expression(p.Initializer, "Initializer")
		a.pop()
	}
	a.bindingTarget(params.Rest, "Rest", b)
	a.pop()
}

// classDeclaration binds the class name in the current scope and again inside
// the class scope for self-reference.
func (a *analyzer) classDeclaration(n *ast.ClassDeclaration) {
	cls := n.Class
	a.push("Class")
	defer a.pop()
	if cls.Name != nil {
		a.push("Name")
		a.declare(a.currentID(), cls.Name, DeclClassDeclaration)
		a.pop()
	}
	a.class(n, cls)
}

// class builds the strict ClassName scope holding the heritage expression,
// computed keys, field initializers, methods and static blocks.
func (a *analyzer) class(anchor ast.Node, cls *ast.ClassLiteral) {
	id := a.enter(KindClassName, anchor)
	a.scopes.Get(id).strict = true
	if cls.Name != nil {
		a.push("Name")
		a.declare(id, cls.Name, DeclClassName)
		a.pop()
	}
	a.expression(cls.SuperClass, "SuperClass")
	for i, el := range cls.Body {
		a.push(index("Body", i))
		switch e := any(el).(type) {
		case *ast.FieldDefinition:
			if e.Computed {
				a.expression(e.Key, "Key")
			}
			a.expression(e.Initializer, "Initializer")
		case *ast.MethodDefinition:
			if e.Computed {
				a.expression(e.Key, "Key")
			}
			a.push("Body")
			a.function(e.Body, KindFunction, e.Body)
			a.pop()
		case *ast.ClassStaticBlock:
			sb := a.enter(KindStaticBlock, e)
			a.push("Block")
			a.statements(e.Block.List, "List")
			a.pop()
			a.finishVarScope(sb)
			a.leave(sb)
		default:
			a.unsupported(el)
		}
		a.pop()
	}
	a.leave(id)
}
