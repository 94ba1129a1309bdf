// JSON export of line ranges.
//
// WriteJSON emits a range as JSONL (one {"n":…,"text":…} object per
// output line), which downstream tools can consume without knowing the
// source file's format or encoding. Only query results are serialized;
// the offset index itself is never persisted.
package lines

import (
	"io"

	json "github.com/goccy/go-json"
)

// WriteJSON writes lines from through to, inclusive, to w as
// newline-delimited JSON. Range validation and truncation behave exactly
// as in ReadLines.
func (f *File) WriteJSON(w io.Writer, from, to int) error {
	result, err := f.ReadLines(from, to)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for _, ln := range result {
		if err := enc.Encode(ln); err != nil {
			return err
		}
	}
	return nil
}
