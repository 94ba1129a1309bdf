// Package lines provides random access to individual lines of large text
// files. A file is indexed once at Open, when a parallel divide-and-conquer
// scan records the byte offset of every line start. Every subsequent
// query seeks directly to the requested line instead of re-reading the
// file from the top.
//
// The index is held in memory (one offset per line plus an end-of-file
// sentinel) and is immutable for the lifetime of the File. Changes to the
// underlying file after Open are not tracked; Stale reports whether the
// file has been modified since indexing.
//
// Gzip- and zstd-compressed inputs are detected by magic bytes and
// transparently decompressed to a temporary file before indexing, since
// random access needs the plain bytes.
package lines

import "errors"

// Sentinel errors for programmatic handling. Argument violations wrap
// ErrInvalidArgument with the violated constraint, so callers can use
// errors.Is to distinguish caller bugs from I/O failures.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidPattern  = errors.New("invalid regex pattern")
	ErrUnknownEncoding = errors.New("unknown text encoding")
	ErrClosed          = errors.New("file is closed")
	ErrDecode          = errors.New("decoding line failed")
	ErrDecompress      = errors.New("decompression failed")
)
