// Core File type and lifecycle operations.
//
// File owns the finished offset index, one long-lived buffered reader,
// and the lock that serializes queries. The index is built exactly once,
// in Open, and never changes afterward; reading it concurrently needs no
// synchronization. The reader does need it, since its cursor moves on
// every read: each query holds the mutex from the initial seek through the
// final line. One shared OS handle for all callers, at the price of
// serialized queries.
package lines

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Config holds options for Open. The zero value is ready to use.
type Config struct {
	Encoding    string // IANA charset name ("" = UTF-8 passthrough)
	SplitCount  int    // divisions of the byte range for parallel indexing (≤1 = threshold-driven only)
	ReadBuffer  int    // read-ahead buffer size (default 64KB)
	Pool        *Pool  // indexing pool (nil = shared process-wide pool)
	Fingerprint int    // fingerprint hash algorithm (default AlgXXHash3)
}

// Line is a single query result: a 1-based line number and its decoded
// text, terminator stripped.
type Line struct {
	Number int    `json:"n"`
	Text   string `json:"text"`
}

// File is an indexed line reader. It is safe for concurrent use; queries
// are serialized internally.
type File struct {
	f      *os.File
	r      *bufreader
	enc    encoding.Encoding // nil when no transform is needed
	index  []int64           // ascending line starts + EOF sentinel
	fp     fingerprint
	path   string // path actually indexed (temp file for compressed input)
	orig   string // path given to Open
	tmp    bool   // path is a temp file to remove on Close
	closed bool
	mu     sync.Mutex
}

// Open indexes the file at path and returns a File ready for queries.
// The file is indexed only once; later modifications to it are not seen
// by the index (use Stale to detect them). Compressed input (gzip, zstd)
// is decompressed to a temporary file first.
func Open(path string, config Config) (*File, error) {
	if config.ReadBuffer == 0 {
		config.ReadBuffer = 64 * 1024
	}
	if config.Pool == nil {
		config.Pool = sharedPool()
	}
	if config.Fingerprint == 0 {
		config.Fingerprint = AlgXXHash3
	}

	enc, err := lookupEncoding(config.Encoding)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	// The fingerprint is taken on the file the caller named, before any
	// decompression, so Stale detects changes to it even when queries
	// run against an inflated copy.
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	fp, err := fingerprintFile(f, info.Size(), config.Fingerprint)
	if err != nil {
		f.Close()
		return nil, err
	}

	// Compressed input can't be read at arbitrary offsets; inflate it to
	// a temp file and index that instead.
	readPath, tmp, err := inflate(f, path)
	if err != nil {
		f.Close()
		return nil, err
	}
	if tmp {
		f.Close()
		if f, err = os.Open(readPath); err != nil {
			os.Remove(readPath)
			return nil, err
		}
		if info, err = f.Stat(); err != nil {
			f.Close()
			os.Remove(readPath)
			return nil, err
		}
	}

	r, err := newBufreader(f, config.ReadBuffer)
	if err != nil {
		f.Close()
		if tmp {
			os.Remove(readPath)
		}
		return nil, err
	}

	index := buildIndex(readPath, info.Size(), config.SplitCount, config.ReadBuffer, config.Pool)

	return &File{
		f:     f,
		r:     r,
		enc:   enc,
		index: index,
		fp:    fp,
		path:  readPath,
		orig:  path,
		tmp:   tmp,
	}, nil
}

// lookupEncoding resolves an IANA charset name. The empty name means no
// transform and maps to nil.
func lookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Close releases the file handle and any decompression temp file.
// Queries after Close return ErrClosed.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	err := f.f.Close()
	if f.tmp {
		if rmErr := os.Remove(f.path); err == nil {
			err = rmErr
		}
	}
	return err
}

// Lines returns the number of lines in the indexed file. The index holds
// one offset per line plus the end-of-file sentinel.
func (f *File) Lines() int {
	return len(f.index) - 1
}

// Size returns the indexed file's length in bytes (the sentinel offset).
func (f *File) Size() int64 {
	return f.index[len(f.index)-1]
}

// ReadLines returns lines from through to, inclusive, 1-based. The range
// must satisfy from ≥ 1, to ≥ from, and from ≤ Lines(). Reaching the end
// of the file before to is not an error; the result is simply shorter.
func (f *File) ReadLines(from, to int) ([]Line, error) {
	if err := f.checkRange(from, to); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.readRange(from, to, nil)
}

// Head returns the first n lines. Equivalent to ReadLines(1, n).
func (f *File) Head(n int) ([]Line, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: 'n' must be at least 1", ErrInvalidArgument)
	}
	return f.ReadLines(1, n)
}

// Tail returns the last n lines. Asking for more lines than the file has
// returns the whole file.
func (f *File) Tail(n int) ([]Line, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: 'n' must be at least 1", ErrInvalidArgument)
	}
	from := f.Lines() - n + 1
	if from < 1 {
		from = 1
	}
	return f.ReadLines(from, f.Lines())
}

// Find returns the lines in [from, to] whose entire text matches pattern.
// The range is read exactly as ReadLines reads it (a non-matching line
// still costs a read) and matching is whole-string, not substring.
func (f *File) Find(from, to int, pattern string) ([]Line, error) {
	if err := f.checkRange(from, to); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(`\A(?:` + pattern + `)\z`)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, pattern)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.readRange(from, to, re)
}

// checkRange validates query arguments before any I/O. Violations name
// the broken constraint and wrap ErrInvalidArgument.
func (f *File) checkRange(from, to int) error {
	if from < 1 {
		return fmt.Errorf("%w: 'from' must be at least 1", ErrInvalidArgument)
	}
	if to < from {
		return fmt.Errorf("%w: 'to' must be at least 'from'", ErrInvalidArgument)
	}
	if from > f.Lines() {
		return fmt.Errorf("%w: 'from' is beyond the file's %d lines", ErrInvalidArgument, f.Lines())
	}
	return nil
}

// readRange seeks to line from and reads forward through line to,
// keeping only lines matched by re (nil matches everything). Caller
// holds the mutex.
func (f *File) readRange(from, to int, re *regexp.Regexp) ([]Line, error) {
	if f.closed {
		return nil, ErrClosed
	}

	if err := f.r.seek(f.index[from-1]); err != nil {
		return nil, err
	}

	var dec *encoding.Decoder
	if f.enc != nil {
		dec = f.enc.NewDecoder()
	}

	var result []Line
	for i := from; i <= to; i++ {
		raw, err := f.r.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		text, err := decodeText(raw, dec)
		if err != nil {
			return nil, err
		}
		if re == nil || re.MatchString(text) {
			result = append(result, Line{Number: i, Text: text})
		}
	}
	return result, nil
}

// decodeText converts raw line bytes to a string with the configured
// charset decoder, or verbatim when none is set.
func decodeText(raw []byte, dec *encoding.Decoder) (string, error) {
	if dec == nil {
		return string(raw), nil
	}
	out, err := dec.Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return string(out), nil
}
