package scope

// Kind enumerates scope categories. String() is the name used in serialized output.
type Kind uint8

const (
	KindInvalid       Kind = iota
	KindGlobal             // script or module root
	KindFunction           // function, method, getter, setter body
	KindArrowFunction      // arrow function body, no implicit arguments
	KindFunctionName       // self-reference wrapper of a named function expression
	KindClassName          // class body, binds the class name
	KindCatch              // catch clause parameter
	KindWith               // with statement body, always dynamic
	KindBlock              // block, loop head, switch body
	KindParameters         // parameter list containing expressions
	KindStaticBlock        // class static initialization block
)

var kindNames = [...]string{
	KindInvalid:       "Invalid",
	KindGlobal:        "Global",
	KindFunction:      "Function",
	KindArrowFunction: "ArrowFunction",
	KindFunctionName:  "FunctionName",
	KindClassName:     "ClassName",
	KindCatch:         "Catch",
	KindWith:          "With",
	KindBlock:         "Block",
	KindParameters:    "Parameters",
	KindStaticBlock:   "StaticBlock",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindInvalid]
}

// IsVarScope reports whether var declarations and hoisted functions bind here.
func (k Kind) IsVarScope() bool {
	switch k {
	case KindGlobal, KindFunction, KindArrowFunction, KindStaticBlock:
		return true
	default:
		return false
	}
}

// IsFunction reports whether the scope is a function body.
func (k Kind) IsFunction() bool {
	return k == KindFunction || k == KindArrowFunction
}

// DeclKind tells how a binding was introduced.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclVar
	DeclLet
	DeclConst
	DeclParam
	DeclFunctionDeclaration
	DeclFunctionB33 // Annex B var-scoped companion of a block function
	DeclFunctionName
	DeclClassDeclaration
	DeclClassName
	DeclCatchParam
)

var declKindNames = [...]string{
	DeclInvalid:             "Invalid",
	DeclVar:                 "Var",
	DeclLet:                 "Let",
	DeclConst:               "Const",
	DeclParam:               "Param",
	DeclFunctionDeclaration: "FunctionDeclaration",
	DeclFunctionB33:         "FunctionB33",
	DeclFunctionName:        "FunctionName",
	DeclClassDeclaration:    "ClassDeclaration",
	DeclClassName:           "ClassName",
	DeclCatchParam:          "CatchParam",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return declKindNames[DeclInvalid]
}

// IsLexical reports whether the declaration blocks an Annex B companion of the same name.
func (k DeclKind) IsLexical() bool {
	switch k {
	case DeclLet, DeclConst, DeclClassDeclaration:
		return true
	default:
		return false
	}
}

// Accessibility describes how a reference uses its variable.
type Accessibility uint8

const (
	Read Accessibility = 1 << iota
	Write

	ReadWrite = Read | Write
)

// IsRead reports whether the reference observes the variable.
func (a Accessibility) IsRead() bool { return a&Read != 0 }

// IsWrite reports whether the reference assigns the variable.
func (a Accessibility) IsWrite() bool { return a&Write != 0 }

func (a Accessibility) String() string {
	switch a {
	case Read:
		return "Read"
	case Write:
		return "Write"
	case ReadWrite:
		return "ReadWrite"
	default:
		return "Invalid"
	}
}
