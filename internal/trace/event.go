package trace

import (
	"fmt"
	"strings"
	"time"
)

// Kind tells begin, end and instant events apart.
type Kind uint8

const (
	KindBegin Kind = iota + 1
	KindEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{
	KindBegin:     "begin",
	KindEnd:       "end",
	KindPoint:     "point",
	KindHeartbeat: "beat",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope is the granularity of an event; lower values are coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // whole command
	ScopePass                    // one phase over all files
	ScopeFile                    // one input file
	ScopeNode                    // one script
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopePass:   "pass",
	ScopeFile:   "file",
	ScopeNode:   "node",
}

func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Attr is a key/value annotation of an end event.
type Attr struct {
	Key, Value string
}

// Event is a single trace record.
type Event struct {
	Time    time.Time
	Seq     uint64
	Kind    Kind
	Scope   Scope
	Span    uint64
	Parent  uint64 // 0 for root spans
	Name    string // e.g. "load" or "file:src/app.js"
	Detail  string
	Attrs   []Attr
	Elapsed time.Duration // set on end events
}

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota // no tracing
	LevelError               // ring only, dumped on a crash
	LevelPhase               // driver and pass events
	LevelDetail              // plus file events
	LevelDebug               // plus script events
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// finest is the finest scope emitted at each level.
var finest = [...]Scope{
	LevelOff:    0,
	LevelError:  ScopeNode,
	LevelPhase:  ScopePass,
	LevelDetail: ScopeFile,
	LevelDebug:  ScopeNode,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level.
func ParseLevel(s string) (Level, error) {
	for i, name := range levelNames {
		if strings.EqualFold(s, name) {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// Records reports whether events of scope are kept at this level.
// Heartbeats are kept at every level but off.
func (l Level) Records(kind Kind, scope Scope) bool {
	if l == LevelOff || int(l) >= len(finest) {
		return false
	}
	return kind == KindHeartbeat || scope <= finest[l]
}
