// Buffered reader tests.
//
// bufreader is the primitive everything else stands on: the indexer
// trusts position() after readLine() to be a true line start, and the
// query layer trusts seek() to land exactly where the index says. These
// tests exercise it against raw files with a deliberately tiny buffer so
// both the fast (in-window) and slow (spanning) paths are covered.
package lines

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// createTestFile writes raw content to a temp file and returns an open
// read handle.
func createTestFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write test file: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open test file: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func newTestReader(t *testing.T, content string, bufSize int) *bufreader {
	t.Helper()
	r, err := newBufreader(createTestFile(t, content), bufSize)
	if err != nil {
		t.Fatalf("newBufreader: %v", err)
	}
	return r
}

func TestReadLineSequential(t *testing.T) {
	r := newTestReader(t, "first\nsecond\nthird\n", 64)

	for _, want := range []string{"first", "second", "third"} {
		line, err := r.readLine()
		if err != nil {
			t.Fatalf("readLine: %v", err)
		}
		if string(line) != want {
			t.Errorf("readLine = %q, want %q", line, want)
		}
	}

	if _, err := r.readLine(); err != io.EOF {
		t.Errorf("readLine past end = %v, want io.EOF", err)
	}
}

// TestReadLineNoTrailingNewline verifies that a final line without a
// terminator is still returned once, with nil error. If it were reported
// as EOF, the last line of most log files would be unreadable.
func TestReadLineNoTrailingNewline(t *testing.T) {
	r := newTestReader(t, "first\nlast line", 64)

	r.readLine()
	line, err := r.readLine()
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if string(line) != "last line" {
		t.Errorf("readLine = %q, want %q", line, "last line")
	}

	if _, err := r.readLine(); err != io.EOF {
		t.Errorf("readLine after final = %v, want io.EOF", err)
	}
}

func TestReadLineCRLF(t *testing.T) {
	r := newTestReader(t, "one\r\ntwo\r\n", 64)

	for _, want := range []string{"one", "two"} {
		line, err := r.readLine()
		if err != nil {
			t.Fatalf("readLine: %v", err)
		}
		if string(line) != want {
			t.Errorf("readLine = %q, want %q", line, want)
		}
	}
}

// TestReadLineLoneCR verifies that a bare '\r' with no following '\n' is
// content, not a terminator. Only '\n'-based termination is recognized.
func TestReadLineLoneCR(t *testing.T) {
	r := newTestReader(t, "a\rb\nnext\n", 64)

	line, err := r.readLine()
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if string(line) != "a\rb" {
		t.Errorf("readLine = %q, want %q", line, "a\rb")
	}
}

// TestReadLineLongerThanBuffer forces the slow path: the line spans
// several buffer refills before its terminator appears.
func TestReadLineLongerThanBuffer(t *testing.T) {
	long := strings.Repeat("x", 100)
	r := newTestReader(t, long+"\nshort\n", 16)

	line, err := r.readLine()
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if string(line) != long {
		t.Errorf("readLine length = %d, want %d", len(line), len(long))
	}

	line, err = r.readLine()
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if string(line) != "short" {
		t.Errorf("readLine = %q, want %q", line, "short")
	}
}

// TestReadLineCRLFAcrossBuffers places the "\r\n" pair so that it
// straddles a refill boundary; the trailing '\r' must still be stripped.
func TestReadLineCRLFAcrossBuffers(t *testing.T) {
	// 15 content bytes + '\r' fill the 16-byte buffer; '\n' arrives in
	// the next window.
	content := strings.Repeat("y", 15)
	r := newTestReader(t, content+"\r\nrest\n", 16)

	line, err := r.readLine()
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if string(line) != content {
		t.Errorf("readLine = %q, want %q", line, content)
	}
}

func TestReadLineEmptyFile(t *testing.T) {
	r := newTestReader(t, "", 64)

	if _, err := r.readLine(); err != io.EOF {
		t.Errorf("readLine on empty file = %v, want io.EOF", err)
	}
}

func TestReadByte(t *testing.T) {
	r := newTestReader(t, "ab", 64)

	for _, want := range []byte{'a', 'b'} {
		b, err := r.readByte()
		if err != nil {
			t.Fatalf("readByte: %v", err)
		}
		if b != want {
			t.Errorf("readByte = %q, want %q", b, want)
		}
	}

	if _, err := r.readByte(); err != io.EOF {
		t.Errorf("readByte past end = %v, want io.EOF", err)
	}
}

// TestPositionTracksReads verifies the logical-position arithmetic
// (real offset minus unread buffer). The indexer records position()
// after every readLine, so any drift here corrupts the whole index.
func TestPositionTracksReads(t *testing.T) {
	r := newTestReader(t, "ab\ncdef\ng\n", 4)

	if got := r.position(); got != 0 {
		t.Errorf("position = %d, want 0", got)
	}

	r.readLine()
	if got := r.position(); got != 3 {
		t.Errorf("position after line 1 = %d, want 3", got)
	}

	r.readLine() // spans a refill
	if got := r.position(); got != 8 {
		t.Errorf("position after line 2 = %d, want 8", got)
	}

	r.readLine()
	if got := r.position(); got != 10 {
		t.Errorf("position after line 3 = %d, want 10", got)
	}
}

// TestSeekWithinBuffer verifies the fast path: seeking back into the
// buffered window must not touch the file, and reads after the seek see
// the right bytes.
func TestSeekWithinBuffer(t *testing.T) {
	r := newTestReader(t, "abcdef", 64)

	// Fill the buffer.
	if _, err := r.readByte(); err != nil {
		t.Fatalf("readByte: %v", err)
	}

	if err := r.seek(3); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if got := r.position(); got != 3 {
		t.Errorf("position after seek = %d, want 3", got)
	}

	b, err := r.readByte()
	if err != nil {
		t.Fatalf("readByte: %v", err)
	}
	if b != 'd' {
		t.Errorf("readByte after seek = %q, want %q", b, 'd')
	}
}

// TestSeekOutsideBuffer forces a real seek and buffer invalidation.
func TestSeekOutsideBuffer(t *testing.T) {
	r := newTestReader(t, "0123456789abcdef", 4)

	if err := r.seek(10); err != nil {
		t.Fatalf("seek: %v", err)
	}
	if got := r.position(); got != 10 {
		t.Errorf("position after seek = %d, want 10", got)
	}

	b, err := r.readByte()
	if err != nil {
		t.Fatalf("readByte: %v", err)
	}
	if b != 'a' {
		t.Errorf("readByte after seek = %q, want %q", b, 'a')
	}
}

// TestSeekPastEOF verifies random-access semantics: the seek itself
// succeeds and the following read reports end of file.
func TestSeekPastEOF(t *testing.T) {
	r := newTestReader(t, "short\n", 64)

	if err := r.seek(1000); err != nil {
		t.Fatalf("seek past EOF: %v", err)
	}
	if _, err := r.readLine(); err != io.EOF {
		t.Errorf("readLine past EOF = %v, want io.EOF", err)
	}
}

// TestSeekMidLineThenReadLine is the property the indexer depends on:
// starting mid-line, readLine consumes the remainder and position()
// lands on the next true line start.
func TestSeekMidLineThenReadLine(t *testing.T) {
	r := newTestReader(t, "hello world\nsecond\n", 64)

	if err := r.seek(4); err != nil {
		t.Fatalf("seek: %v", err)
	}

	line, err := r.readLine()
	if err != nil {
		t.Fatalf("readLine: %v", err)
	}
	if string(line) != "o world" {
		t.Errorf("readLine = %q, want %q", line, "o world")
	}
	if got := r.position(); got != 12 {
		t.Errorf("position = %d, want 12 (start of line 2)", got)
	}
}
