// Package diag defines the diagnostic model shared by the parse, analysis and
// lint phases.
//
// Diagnostic is the central record: a Severity, a numeric Code with a stable
// string form, a short Message, the Primary span and optional Notes pointing
// at related sites (e.g. "declared here").
//
// Phases emit through a Reporter so they stay decoupled from storage.
// BagReporter collects into a bounded Bag, which supports sorting and
// deduplication; DedupReporter filters repeats before forwarding. Rendering
// lives in internal/scopefmt.
package diag
