package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"slices"

	"fortio.org/safecast"
)

// FileSet owns loaded source files. FileIDs index into it and stay valid for
// its lifetime. Adding files is not safe for concurrent use; reading is.
type FileSet struct {
	files   []*File
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{}
}

// SetBaseDir sets the directory relative paths are computed against.
func (fs *FileSet) SetBaseDir(dir string) {
	fs.baseDir = dir
}

// BaseDir returns the base directory, defaulting to the working directory.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir != "" {
		return fs.baseDir
	}
	wd, _ := os.Getwd()
	return wd
}

// Add stores content under path as given and returns its id.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	id, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	path = normalizePath(path)
	fs.files = append(fs.files, &File{
		ID:      FileID(id),
		Path:    path,
		Kind:    KindForPath(path),
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	return FileID(id)
}

// Load reads path, drops a UTF-8 BOM and turns CRLF into LF before adding it.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- inputs are chosen by the user
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	content, flags := decode(raw)
	return fs.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file such as REPL input or test source.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	content, flags := decode(content)
	return fs.Add(name, content, flags|FileVirtual)
}

// Get returns the file for id, or nil when id is unknown.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) >= len(fs.files) {
		return nil
	}
	return fs.files[id]
}

// Resolve converts a span into line and column positions.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fs.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Position(span.Start), f.Position(span.End)
}

// Position converts a byte offset into a line and column.
func (f *File) Position(off uint32) LineCol {
	// newlines strictly before off
	n, _ := slices.BinarySearch(f.LineIdx, off)
	var start uint32
	if n > 0 {
		start = f.LineIdx[n-1] + 1
	}
	return LineCol{Line: uint32(n) + 1, Col: off - start + 1} // #nosec G115 -- bounded by Add
}

// Offset converts a 1-based line and column into a byte offset. The offset
// one past the last byte is valid.
func (f *File) Offset(pos LineCol) (uint32, bool) {
	start, ok := f.lineStart(pos.Line)
	if !ok || pos.Col == 0 {
		return 0, false
	}
	off := start + pos.Col - 1
	if int(off) > len(f.Content) {
		return 0, false
	}
	return off, true
}

// Line returns the text of a 1-based line without its newline.
func (f *File) Line(line uint32) string {
	start, ok := f.lineStart(line)
	if !ok {
		return ""
	}
	rest := f.Content[start:]
	if i := bytes.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return string(rest)
}

func (f *File) lineStart(line uint32) (uint32, bool) {
	switch {
	case line == 0:
		return 0, false
	case line == 1:
		return 0, true
	case int(line-2) < len(f.LineIdx):
		return f.LineIdx[line-2] + 1, true
	}
	return 0, false
}
