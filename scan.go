// Lazy iteration over a line range.
//
// Scan is the streaming counterpart of ReadLines: instead of collecting
// the whole range into a slice, it yields one Line at a time, so a
// caller scanning a million-line range for something near its start can
// break early without paying for the rest. The query lock is held for
// as long as the caller keeps consuming; breaking out of the range
// loop releases it.
package lines

import (
	"errors"
	"io"
	"iter"

	"golang.org/x/text/encoding"
)

// Scan yields lines from through to, inclusive, lazily. Argument
// violations and I/O failures surface as the error value of a yielded
// pair; iteration stops after any error.
func (f *File) Scan(from, to int) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		if err := f.checkRange(from, to); err != nil {
			yield(Line{}, err)
			return
		}

		f.mu.Lock()
		defer f.mu.Unlock()

		if f.closed {
			yield(Line{}, ErrClosed)
			return
		}

		if err := f.r.seek(f.index[from-1]); err != nil {
			yield(Line{}, err)
			return
		}

		var dec *encoding.Decoder
		if f.enc != nil {
			dec = f.enc.NewDecoder()
		}

		for i := from; i <= to; i++ {
			raw, err := f.r.readLine()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(Line{}, err)
				}
				return
			}
			text, err := decodeText(raw, dec)
			if err != nil {
				yield(Line{}, err)
				return
			}
			if !yield(Line{Number: i, Text: text}, nil) {
				return
			}
		}
	}
}
