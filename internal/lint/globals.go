package lint

// builtinGlobals lists ECMAScript and common host bindings that are never
// reported as undeclared.
var builtinGlobals = []string{
	"Array", "ArrayBuffer", "Atomics", "BigInt", "BigInt64Array", "BigUint64Array",
	"Boolean", "DataView", "Date", "Error", "EvalError", "FinalizationRegistry",
	"Float32Array", "Float64Array", "Function", "Infinity", "Int16Array", "Int32Array",
	"Int8Array", "Intl", "JSON", "Map", "Math", "NaN", "Number", "Object", "Promise",
	"Proxy", "RangeError", "ReferenceError", "Reflect", "RegExp", "Set",
	"SharedArrayBuffer", "String", "Symbol", "SyntaxError", "TypeError", "URIError",
	"Uint16Array", "Uint32Array", "Uint8Array", "Uint8ClampedArray", "WeakMap",
	"WeakRef", "WeakSet", "decodeURI", "decodeURIComponent", "encodeURI",
	"encodeURIComponent", "escape", "eval", "globalThis", "isFinite", "isNaN",
	"parseFloat", "parseInt", "undefined", "unescape",
	// hosts
	"console", "window", "document", "navigator", "location", "self", "setTimeout",
	"clearTimeout", "setInterval", "clearInterval", "queueMicrotask", "fetch",
	"require", "module", "exports", "process", "global",
}

func knownGlobals(extra []string) map[string]struct{} {
	known := make(map[string]struct{}, len(builtinGlobals)+len(extra))
	for _, name := range builtinGlobals {
		known[name] = struct{}{}
	}
	for _, name := range extra {
		known[name] = struct{}{}
	}
	return known
}
