package jsparse

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Fragment is the text of one inline script and where it starts in its page.
type Fragment struct {
	Offset uint32
	Text   string
	Module bool
}

// ExtractScripts returns the inline JavaScript of an HTML page in document
// order. External scripts (src=...) and non-JavaScript types are skipped.
func ExtractScripts(page []byte) ([]Fragment, error) {
	z := html.NewTokenizer(bytes.NewReader(page))
	var (
		out      []Fragment
		offset   int
		inScript bool
		module   bool
	)
	for {
		tt := z.Next()
		raw := len(z.Raw())
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return out, nil
			}
			return out, fmt.Errorf("html tokenizer at byte %d: %w", offset, z.Err())
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if atom.Lookup(name) == atom.Script {
				inScript, module = scriptKind(z, hasAttr)
			}
		case html.TextToken:
			if inScript {
				start, err := safecast.Conv[uint32](offset)
				if err != nil {
					return out, fmt.Errorf("page too large: %w", err)
				}
				out = append(out, Fragment{Offset: start, Text: string(z.Raw()), Module: module})
			}
		case html.EndTagToken:
			inScript = false
		}
		offset += raw
	}
}

// scriptKind reads the attributes of a <script> start tag and reports whether
// its inline text is JavaScript and whether it is a module.
func scriptKind(z *html.Tokenizer, hasAttr bool) (js, module bool) {
	js = true
	for hasAttr {
		var key, val []byte
		key, val, hasAttr = z.TagAttr()
		switch string(key) {
		case "src":
			js = false
		case "type":
			switch t := strings.ToLower(strings.TrimSpace(string(val))); t {
			case "", "text/javascript", "application/javascript", "text/ecmascript", "application/ecmascript":
			case "module":
				module = true
			default:
				js = false
			}
		}
	}
	return js, module
}
