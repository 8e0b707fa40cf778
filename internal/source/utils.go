package source

import (
	"bytes"
	"path/filepath"
	"strings"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
	crlf    = []byte("\r\n")
)

// decode strips a leading BOM and replaces CRLF with LF; a lone CR stays.
func decode(raw []byte) ([]byte, FileFlags) {
	var flags FileFlags
	if rest, ok := bytes.CutPrefix(raw, utf8BOM); ok {
		raw = rest
		flags |= FileHadBOM
	}
	if bytes.Contains(raw, crlf) {
		raw = bytes.ReplaceAll(raw, crlf, []byte{'\n'})
		flags |= FileNormalizedCRLF
	}
	return raw, flags
}

// buildLineIndex records the offset of every '\n'.
func buildLineIndex(content []byte) []uint32 {
	idx := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return idx
		}
		off += i
		idx = append(idx, uint32(off)) // #nosec G115 -- bounded by Add
		off++
	}
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// KindForPath picks the file kind from the extension.
func KindForPath(p string) FileKind {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".html", ".htm", ".xhtml":
		return KindHTML
	}
	return KindScript
}
