package diag

import (
	"fmt"
	"strings"
)

type Code uint16

const (
	UnknownCode Code = 0

	IOInfo          Code = 1000
	IOLoadFileError Code = 1001
	IOCacheError    Code = 1002

	ParInfo        Code = 2000
	ParSyntaxError Code = 2001
	ParHTMLError   Code = 2002

	ScoInfo            Code = 3000
	ScoUnsupportedNode Code = 3001
	ScoInvalidTree     Code = 3002

	LntInfo              Code = 4000
	LntImplicitGlobal    Code = 4001
	LntUndeclaredGlobal  Code = 4002
	LntUnusedBinding     Code = 4003
	LntWithStatement     Code = 4004
	LntArgumentsShadowed Code = 4005
	LntConfusableNames   Code = 4006
	LntDynamicEval       Code = 4007
)

var codeDescription = map[Code]string{
	UnknownCode:          "Unknown error",
	IOInfo:               "I/O information",
	IOLoadFileError:      "I/O load file error",
	IOCacheError:         "Analysis cache error",
	ParInfo:              "Parser information",
	ParSyntaxError:       "Syntax error",
	ParHTMLError:         "Malformed HTML page",
	ScoInfo:              "Scope analysis information",
	ScoUnsupportedNode:   "Unsupported AST node",
	ScoInvalidTree:       "Scope tree failed validation",
	LntInfo:              "Lint information",
	LntImplicitGlobal:    "Assignment creates an implicit global",
	LntUndeclaredGlobal:  "Read of an undeclared global",
	LntUnusedBinding:     "Binding is never used",
	LntWithStatement:     "with statement makes resolution dynamic",
	LntArgumentsShadowed: "Declaration shadows the implicit arguments object",
	LntConfusableNames:   "Names differ only in Unicode normalization",
	LntDynamicEval:       "Direct eval makes resolution dynamic",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PAR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("SCO%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LNT%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// ParseCode accepts an ID such as "LNT4003" (case-insensitive).
func ParseCode(id string) (Code, bool) {
	id = strings.ToUpper(strings.TrimSpace(id))
	for c := range codeDescription {
		if c.ID() == id {
			return c, true
		}
	}
	return UnknownCode, false
}
