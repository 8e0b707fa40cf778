package scope

import (
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"
)

func (a *analyzer) statements(list []ast.Statement, field string) {
	for i, st := range list {
		a.statement(st, index(field, i))
	}
}

func (a *analyzer) statement(st ast.Statement, seg string) {
	if st == nil {
		return
	}
	a.push(seg)
	defer a.pop()

	switch n := any(st).(type) {
	case *ast.BlockStatement:
		a.blockBody(n)
	case *ast.ExpressionStatement:
		a.expression(n.Expression, "Expression")
	case *ast.VariableStatement:
		a.bindings(n.List, "List", DeclVar)
	case *ast.LexicalDeclaration:
		a.bindings(n.List, "List", lexicalKind(n.Token))
	case *ast.FunctionDeclaration:
		a.functionDeclaration(n)
	case *ast.ClassDeclaration:
		a.classDeclaration(n)
	case *ast.IfStatement:
		a.expression(n.Test, "Test")
		a.statement(n.Consequent, "Consequent")
		a.statement(n.Alternate, "Alternate")
	case *ast.ForStatement:
		a.forStatement(n)
	case *ast.ForInStatement:
		a.forInto(n, n.Into, n.Source, n.Body)
	case *ast.ForOfStatement:
		a.forInto(n, n.Into, n.Source, n.Body)
	case *ast.WhileStatement:
		a.expression(n.Test, "Test")
		a.statement(n.Body, "Body")
	case *ast.DoWhileStatement:
		a.statement(n.Body, "Body")
		a.expression(n.Test, "Test")
	case *ast.SwitchStatement:
		a.expression(n.Discriminant, "Discriminant")
		id := a.enter(KindBlock, n)
		for i, c := range n.Body {
			a.push(index("Body", i))
			a.expression(c.Test, "Test")
			a.statements(c.Consequent, "Consequent")
			a.pop()
		}
		a.leave(id)
	case *ast.TryStatement:
		a.block(n.Body, "Body")
		if n.Catch != nil {
			a.catchClause(n.Catch)
		}
		if n.Finally != nil {
			a.block(n.Finally, "Finally")
		}
	case *ast.WithStatement:
		a.expression(n.Object, "Object")
		id := a.enter(KindWith, n)
		a.scopes.Get(id).dynamic = true
		a.statement(n.Body, "Body")
		a.leave(id)
	case *ast.LabelledStatement:
		a.statement(n.Statement, "Statement")
	case *ast.ReturnStatement:
		a.expression(n.Argument, "Argument")
	case *ast.ThrowStatement:
		a.expression(n.Argument, "Argument")
	case *ast.BranchStatement, *ast.EmptyStatement, *ast.DebuggerStatement:
	default:
		a.unsupported(st)
	}
}

func lexicalKind(tok token.Token) DeclKind {
	if tok == token.CONST {
		return DeclConst
	}
	return DeclLet
}

// block walks a nested block statement reached through field seg.
func (a *analyzer) block(b *ast.BlockStatement, seg string) {
	a.push(seg)
	a.blockBody(b)
	a.pop()
}

func (a *analyzer) blockBody(b *ast.BlockStatement) {
	id := a.enter(KindBlock, b)
	a.statements(b.List, "List")
	a.leave(id)
}

// bindings declares each declarator of a var/let/const list. A declarator
// with an initializer also writes every name it binds.
func (a *analyzer) bindings(list []*ast.Binding, field string, kind DeclKind) {
	target := a.currentID()
	if kind == DeclVar {
		target = a.varScope()
	}
	for i, b := range list {
		a.push(index(field, i))
		a.bindingTarget(b.Target, "Target", binder{kind: kind, scope: target, write: b.Initializer != nil})
		a.expression(b.Initializer, "Initializer")
		a.pop()
	}
}

func (a *analyzer) forStatement(n *ast.ForStatement) {
	id := a.enter(KindBlock, n)
	if n.Initializer != nil {
		a.push("Initializer")
		switch init := any(n.Initializer).(type) {
		case *ast.ForLoopInitializerExpression:
			a.expression(init.Expression, "Expression")
		case *ast.ForLoopInitializerVarDeclList:
			a.bindings(init.List, "List", DeclVar)
		case *ast.ForLoopInitializerLexicalDecl:
			a.push("LexicalDeclaration")
			a.bindings(init.LexicalDeclaration.List, "List", lexicalKind(init.LexicalDeclaration.Token))
			a.pop()
		default:
			a.unsupported(init)
		}
		a.pop()
	}
	a.expression(n.Test, "Test")
	a.expression(n.Update, "Update")
	a.statement(n.Body, "Body")
	a.leave(id)
}

// forInto walks for-in and for-of loops. The loop head always assigns.
func (a *analyzer) forInto(node ast.Node, into ast.ForInto, source ast.Expression, body ast.Statement) {
	id := a.enter(KindBlock, node)
	a.push("Into")
	switch n := any(into).(type) {
	case *ast.ForIntoVar:
		a.push("Binding")
		a.bindingTarget(n.Binding.Target, "Target", binder{kind: DeclVar, scope: a.varScope(), write: true})
		a.expression(n.Binding.Initializer, "Initializer")
		a.pop()
	case *ast.ForDeclaration:
		kind := DeclLet
		if n.IsConst {
			kind = DeclConst
		}
		a.bindingTarget(n.Target, "Target", binder{kind: kind, scope: id, write: true})
	case *ast.ForIntoExpression:
		a.assignTarget(n.Expression, "Expression", Write)
	default:
		a.unsupported(into)
	}
	a.pop()
	a.expression(source, "Source")
	a.statement(body, "Body")
	a.leave(id)
}

func (a *analyzer) catchClause(c *ast.CatchStatement) {
	a.push("Catch")
	id := a.enter(KindCatch, c)
	if c.Parameter != nil {
		a.bindingTarget(c.Parameter, "Parameter", binder{kind: DeclCatchParam, scope: id})
	}
	a.block(c.Body, "Body")
	a.leave(id)
	a.pop()
}
