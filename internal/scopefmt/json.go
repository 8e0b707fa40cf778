package scopefmt

import (
	"bufio"
	"encoding/json"
	"io"
)

// Document is one serialized scope tree tagged with its origin.
type Document struct {
	Path   string          `json:"path"`
	Offset uint32          `json:"offset"`
	Scope  json.RawMessage `json:"scope"`
}

// JSONLines writes each serialized tree on its own line, unwrapped.
func JSONLines(w io.Writer, docs []Document) error {
	bw := bufio.NewWriter(w)
	for _, d := range docs {
		if _, err := bw.Write(d.Scope); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// JSONArray writes all trees as one indented array of tagged documents.
func JSONArray(w io.Writer, docs []Document) error {
	if docs == nil {
		docs = []Document{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}
