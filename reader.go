// Buffered random-access reads over a single file handle.
//
// bufreader keeps a fixed-size read-ahead window so that line-by-line
// scanning costs one real read per window instead of one per call, while
// seek stays cheap: a seek landing inside the buffered window only moves
// the in-buffer cursor. Both the indexer (one private bufreader per leaf
// scan) and File (one long-lived bufreader for queries) are built on it.
//
// The reader deals in raw bytes only. Charset decoding happens in the
// query layer, so the indexer can locate line boundaries without paying
// for decoding it never needs.
package lines

import (
	"bytes"
	"io"
	"os"
)

type bufreader struct {
	f    *os.File
	buf  []byte
	end  int   // valid bytes in buf
	pos  int   // cursor within buf
	real int64 // file offset corresponding to buf[end]
}

// newBufreader wraps f with a read buffer of the given size. The logical
// position starts at f's current offset.
func newBufreader(f *os.File, size int) (*bufreader, error) {
	r := &bufreader{f: f, buf: make([]byte, size)}
	if err := r.invalidate(); err != nil {
		return nil, err
	}
	return r, nil
}

// position returns the current logical byte offset without touching the
// file. The real offset points at the end of the buffered window, so the
// unread remainder of the buffer is subtracted back out.
func (r *bufreader) position() int64 {
	return r.real - int64(r.end) + int64(r.pos)
}

// seek moves the logical position to pos. If pos falls inside the
// currently buffered window the cursor is adjusted with no I/O; otherwise
// the file is really seeked and the buffer discarded. Seeking past the
// end of the file is not an error; the next read reports io.EOF.
func (r *bufreader) seek(pos int64) error {
	back := r.real - pos
	if back >= 0 && back <= int64(r.end) {
		r.pos = r.end - int(back)
		return nil
	}
	if _, err := r.f.Seek(pos, io.SeekStart); err != nil {
		return err
	}
	return r.invalidate()
}

// readByte returns the next byte, refilling the buffer when it runs dry.
// Returns io.EOF at end of file.
func (r *bufreader) readByte() (byte, error) {
	if r.pos >= r.end {
		if err := r.fill(); err != nil {
			return 0, err
		}
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// readLine returns the next line without its terminator. Lines end at
// '\n' or "\r\n"; a lone '\r' is ordinary content. The final line of a
// file with no trailing terminator is still returned once, with nil
// error; io.EOF is returned only when no bytes at all were consumed.
//
// The returned slice may alias the internal buffer and is only valid
// until the next call on this reader.
func (r *bufreader) readLine() ([]byte, error) {
	if r.pos >= r.end {
		if err := r.fill(); err != nil {
			return nil, err
		}
	}

	// Fast path: terminator inside the buffered window.
	if i := bytes.IndexByte(r.buf[r.pos:r.end], '\n'); i >= 0 {
		line := r.buf[r.pos : r.pos+i]
		r.pos += i + 1
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		return line, nil
	}

	// Slow path: the line continues past the window. Accumulate bytes
	// across refills until '\n' or EOF.
	line := append([]byte(nil), r.buf[r.pos:r.end]...)
	r.pos = r.end
	for {
		b, err := r.readByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if b == '\n' {
			break
		}
		line = append(line, b)
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, nil
}

// fill replaces the buffer contents with the next window from the file.
func (r *bufreader) fill() error {
	n, err := r.f.Read(r.buf)
	if n > 0 {
		r.real += int64(n)
		r.end = n
		r.pos = 0
		return nil
	}
	if err != nil {
		return err
	}
	return io.EOF
}

// invalidate empties the buffer and resyncs the tracked real offset with
// the file's actual position.
func (r *bufreader) invalidate() error {
	pos, err := r.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	r.end = 0
	r.pos = 0
	r.real = pos
	return nil
}
