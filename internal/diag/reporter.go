package diag

import "jsscope/internal/source"

// Reporter receives finished diagnostics from a pass.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Draft is a diagnostic under construction. Notes are attached with WithNote;
// Emit hands it to the reporter, at most once.
type Draft struct {
	to   Reporter
	d    Diagnostic
	sent bool
}

func draft(r Reporter, sev Severity, code Code, at source.Span, msg string) *Draft {
	return &Draft{to: r, d: New(sev, code, at, msg)}
}

// ReportError starts an error diagnostic.
func ReportError(r Reporter, code Code, at source.Span, msg string) *Draft {
	return draft(r, SevError, code, at, msg)
}

// ReportWarning starts a warning diagnostic.
func ReportWarning(r Reporter, code Code, at source.Span, msg string) *Draft {
	return draft(r, SevWarning, code, at, msg)
}

// ReportInfo starts an informational diagnostic.
func ReportInfo(r Reporter, code Code, at source.Span, msg string) *Draft {
	return draft(r, SevInfo, code, at, msg)
}

func (b *Draft) WithNote(sp source.Span, msg string) *Draft {
	if b != nil {
		b.d = b.d.WithNote(sp, msg)
	}
	return b
}

func (b *Draft) Emit() {
	if b == nil || b.sent {
		return
	}
	b.sent = true
	if b.to != nil {
		b.to.Report(b.d)
	}
}

// Diagnostic returns the draft without emitting it.
func (b *Draft) Diagnostic() Diagnostic {
	if b == nil {
		return Diagnostic{}
	}
	return b.d
}

// BagReporter adds to a Bag; a nil Bag drops everything.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

type dedupKey struct {
	code Code
	sev  Severity
	at   source.Span
	msg  string
}

// DedupReporter forwards a diagnostic only the first time its code,
// severity, primary span and message are seen. Notes do not count.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]bool
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{next: next, seen: make(map[dedupKey]bool)}
}

func (r *DedupReporter) Report(d Diagnostic) {
	k := dedupKey{code: d.Code, sev: d.Severity, at: d.Primary, msg: d.Message}
	if r.seen[k] {
		return
	}
	r.seen[k] = true
	if r.next != nil {
		r.next.Report(d)
	}
}
