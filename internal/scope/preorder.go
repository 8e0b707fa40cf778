package scope

import (
	"reflect"

	"github.com/dop251/goja/ast"
)

// preorder calls visit for root and every node below it, parents before
// children and children in source order.
func preorder(root ast.Node, visit func(ast.Node)) {
	w := nodeWalker{visit: visit}
	w.node(root)
}

type nodeWalker struct {
	visit func(ast.Node)
}

func isNilNode(n ast.Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func (w nodeWalker) statements(list []ast.Statement) {
	for _, st := range list {
		w.node(st)
	}
}

func (w nodeWalker) expressions(list []ast.Expression) {
	for _, e := range list {
		w.node(e)
	}
}

func (w nodeWalker) bindings(list []*ast.Binding) {
	for _, b := range list {
		w.node(b)
	}
}

func (w nodeWalker) node(n ast.Node) {
	if isNilNode(n) {
		return
	}
	w.visit(n)

	switch n := n.(type) {
	case *ast.Program:
		w.statements(n.Body)

	// statements
	case *ast.BlockStatement:
		w.statements(n.List)
	case *ast.ExpressionStatement:
		w.node(n.Expression)
	case *ast.VariableStatement:
		w.bindings(n.List)
	case *ast.LexicalDeclaration:
		w.bindings(n.List)
	case *ast.FunctionDeclaration:
		w.node(n.Function)
	case *ast.ClassDeclaration:
		w.node(n.Class)
	case *ast.IfStatement:
		w.node(n.Test)
		w.node(n.Consequent)
		w.node(n.Alternate)
	case *ast.ForStatement:
		w.node(n.Initializer)
		w.node(n.Test)
		w.node(n.Update)
		w.node(n.Body)
	case *ast.ForLoopInitializerExpression:
		w.node(n.Expression)
	case *ast.ForLoopInitializerVarDeclList:
		w.bindings(n.List)
	case *ast.ForLoopInitializerLexicalDecl:
		w.node(&n.LexicalDeclaration)
	case *ast.ForInStatement:
		w.node(n.Into)
		w.node(n.Source)
		w.node(n.Body)
	case *ast.ForOfStatement:
		w.node(n.Into)
		w.node(n.Source)
		w.node(n.Body)
	case *ast.ForIntoVar:
		w.node(n.Binding)
	case *ast.ForDeclaration:
		w.node(n.Target)
	case *ast.ForIntoExpression:
		w.node(n.Expression)
	case *ast.WhileStatement:
		w.node(n.Test)
		w.node(n.Body)
	case *ast.DoWhileStatement:
		w.node(n.Body)
		w.node(n.Test)
	case *ast.SwitchStatement:
		w.node(n.Discriminant)
		for _, c := range n.Body {
			w.node(c)
		}
	case *ast.CaseStatement:
		w.node(n.Test)
		w.statements(n.Consequent)
	case *ast.TryStatement:
		w.node(n.Body)
		w.node(n.Catch)
		w.node(n.Finally)
	case *ast.CatchStatement:
		w.node(n.Parameter)
		w.node(n.Body)
	case *ast.WithStatement:
		w.node(n.Object)
		w.node(n.Body)
	case *ast.LabelledStatement:
		w.node(n.Label)
		w.node(n.Statement)
	case *ast.BranchStatement:
		w.node(n.Label)
	case *ast.ReturnStatement:
		w.node(n.Argument)
	case *ast.ThrowStatement:
		w.node(n.Argument)

	// expressions and patterns
	case *ast.Binding:
		w.node(n.Target)
		w.node(n.Initializer)
	case *ast.AssignExpression:
		w.node(n.Left)
		w.node(n.Right)
	case *ast.BinaryExpression:
		w.node(n.Left)
		w.node(n.Right)
	case *ast.UnaryExpression:
		w.node(n.Operand)
	case *ast.ConditionalExpression:
		w.node(n.Test)
		w.node(n.Consequent)
		w.node(n.Alternate)
	case *ast.SequenceExpression:
		w.expressions(n.Sequence)
	case *ast.CallExpression:
		w.node(n.Callee)
		w.expressions(n.ArgumentList)
	case *ast.NewExpression:
		w.node(n.Callee)
		w.expressions(n.ArgumentList)
	case *ast.DotExpression:
		w.node(n.Left)
		w.node(&n.Identifier)
	case *ast.PrivateDotExpression:
		w.node(n.Left)
		w.node(&n.Identifier)
	case *ast.BracketExpression:
		w.node(n.Left)
		w.node(n.Member)
	case *ast.ObjectLiteral:
		for _, p := range n.Value {
			w.node(p)
		}
	case *ast.ObjectPattern:
		for _, p := range n.Properties {
			w.node(p)
		}
		w.node(n.Rest)
	case *ast.PropertyShort:
		w.node(&n.Name)
		w.node(n.Initializer)
	case *ast.PropertyKeyed:
		w.node(n.Key)
		w.node(n.Value)
	case *ast.ArrayLiteral:
		w.expressions(n.Value)
	case *ast.ArrayPattern:
		w.expressions(n.Elements)
		w.node(n.Rest)
	case *ast.SpreadElement:
		w.node(n.Expression)
	case *ast.OptionalChain:
		w.node(n.Expression)
	case *ast.Optional:
		w.node(n.Expression)
	case *ast.TemplateLiteral:
		w.node(n.Tag)
		// quasis and substitutions alternate in the source
		for i, el := range n.Elements {
			w.node(el)
			if i < len(n.Expressions) {
				w.node(n.Expressions[i])
			}
		}
	case *ast.YieldExpression:
		w.node(n.Argument)
	case *ast.AwaitExpression:
		w.node(n.Argument)
	case *ast.MetaProperty:
		w.node(n.Meta)
		w.node(n.Property)

	// functions and classes
	case *ast.FunctionLiteral:
		w.node(n.Name)
		w.node(n.ParameterList)
		w.node(n.Body)
	case *ast.ArrowFunctionLiteral:
		w.node(n.ParameterList)
		w.node(n.Body)
	case *ast.ExpressionBody:
		w.node(n.Expression)
	case *ast.ParameterList:
		w.bindings(n.List)
		w.node(n.Rest)
	case *ast.ClassLiteral:
		w.node(n.Name)
		w.node(n.SuperClass)
		for _, el := range n.Body {
			w.node(el)
		}
	case *ast.MethodDefinition:
		w.node(n.Key)
		w.node(n.Body)
	case *ast.FieldDefinition:
		w.node(n.Key)
		w.node(n.Initializer)
	case *ast.ClassStaticBlock:
		w.node(n.Block)
	}
}
