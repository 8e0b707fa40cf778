package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
	// FileKind tells how the content of a file is turned into scripts.
	FileKind uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, repl).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

const (
	// KindScript is a plain JavaScript source.
	KindScript FileKind = iota
	// KindHTML is a page whose inline <script> elements are analyzed.
	KindHTML
)

func (k FileKind) String() string {
	if k == KindHTML {
		return "html"
	}
	return "script"
}

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Kind    FileKind
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}
