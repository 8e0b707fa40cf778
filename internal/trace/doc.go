// Package trace records what the jsscope driver is doing while it runs.
//
//	jsscope analyze --trace=- --trace-level=detail src/
//
// A Tracer receives Events. Spans pair a begin and an end event; points are
// single instants. Every event has a Scope, from the whole command down to a
// single script, and the Level picks how fine-grained the output gets:
// LevelPhase keeps driver and pass events, LevelDetail adds files and
// LevelDebug adds scripts.
//
// Output goes to a stream (text or NDJSON), to an in-memory ring that is
// dumped when the CLI crashes, or to both. Tracers travel in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "load", 0)
//	defer span.End("")
package trace
