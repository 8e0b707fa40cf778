// Package scope resolves the bindings of a JavaScript program.
//
// Analyze walks a goja AST once and produces a GlobalScope: a tree of Scope
// values, each owning the Variables declared in it. Every identifier
// occurrence of the program ends up as exactly one Declaration or Reference
// on exactly one Variable.
//
// # Model
//
//   - var declarations and, in sloppy code, the Annex B companions of block
//     functions bind in the nearest Function, Global or StaticBlock scope.
//   - let, const, class and catch parameters bind in the innermost scope.
//   - Named function expressions get a FunctionName scope around the function
//     scope; both share the same AST node.
//   - with statements and direct eval calls make a scope dynamic. References
//     that resolve to a non-global variable across a dynamic scope are listed
//     in that scope's through table.
//   - Names without a declaration become free variables of the global scope.
//
// Resolution runs in two phases. The walk creates scopes and declarations and
// queues references together with the scope they occur in; once the walk is
// complete every queued reference is resolved against the finished tree. That
// way hoisted declarations and eval taint are known before any lookup.
//
// Scopes and variables live in arenas owned by the GlobalScope and refer to
// each other by id. The tree is immutable after Analyze returns and may be
// shared between goroutines. Lookup and Serializer are read-only views.
package scope
