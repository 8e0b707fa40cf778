// Package testkit holds helpers shared by package tests.
package testkit

import (
	"testing"

	"github.com/dop251/goja/ast"

	"jsscope/internal/jsparse"
	"jsscope/internal/scope"
)

// ParseScript parses src or fails the test.
func ParseScript(tb testing.TB, src string) *ast.Program {
	tb.Helper()
	prog, err := jsparse.ParseSource("test.js", src)
	if err != nil {
		tb.Fatalf("parse %q: %v", src, err)
	}
	return prog
}

// AnalyzeScript parses and analyzes src as a script and checks the result.
func AnalyzeScript(tb testing.TB, src string) *scope.GlobalScope {
	tb.Helper()
	return analyze(tb, src, scope.Options{})
}

// AnalyzeModule parses and analyzes src as a module and checks the result.
func AnalyzeModule(tb testing.TB, src string) *scope.GlobalScope {
	tb.Helper()
	return analyze(tb, src, scope.Options{Module: true})
}

func analyze(tb testing.TB, src string, opts scope.Options) *scope.GlobalScope {
	tb.Helper()
	global, err := scope.AnalyzeWith(ParseScript(tb, src), opts)
	if err != nil {
		tb.Fatalf("analyze %q: %v", src, err)
	}
	if err := global.Validate(); err != nil {
		tb.Fatalf("validate %q: %v", src, err)
	}
	if err := CheckLookupInvariants(global); err != nil {
		tb.Fatalf("lookup invariants %q: %v", src, err)
	}
	return global
}
