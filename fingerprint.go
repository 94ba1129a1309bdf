// File fingerprinting for external-modification detection.
//
// The index describes the file as it was at Open. Nothing here tracks
// changes, but a cheap fingerprint taken at Open lets callers ask, on
// demand, whether the file has been modified since. The fingerprint is the file length plus a 64-bit
// digest of the leading bytes, so it catches truncation, rewrites, and
// in-place edits near the head without ever reading the whole file.
//
// Three digest algorithms are supported, selectable via
// Config.Fingerprint.
package lines

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"os"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint hash algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// fingerprintHead is how many leading bytes feed the digest.
const fingerprintHead = 64 * 1024

type fingerprint struct {
	size int64
	sum  string // 16 hex chars
	alg  int
}

// fingerprintFile digests the first fingerprintHead bytes of f together
// with its size. ReadAt is used so the shared handle's offset is not
// disturbed.
func fingerprintFile(f *os.File, size int64, alg int) (fingerprint, error) {
	n := min(size, fingerprintHead)
	head := make([]byte, n+8)
	if n > 0 {
		if _, err := f.ReadAt(head[:n], 0); err != nil {
			return fingerprint{}, err
		}
	}
	binary.LittleEndian.PutUint64(head[n:], uint64(size))

	sum, err := digest(head, alg)
	if err != nil {
		return fingerprint{}, err
	}
	return fingerprint{size: size, sum: sum, alg: alg}, nil
}

// digest produces a 16 hex character sum using the selected algorithm.
func digest(data []byte, alg int) (string, error) {
	switch alg {
	case AlgXXHash3:
		return fmt.Sprintf("%016x", xxh3.Hash(data)), nil
	case AlgFNV1a:
		h := fnv.New64a()
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum64()), nil
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write(data)
		return fmt.Sprintf("%016x", h.Sum(nil)), nil
	default:
		return "", fmt.Errorf("%w: unknown fingerprint algorithm %d", ErrInvalidArgument, alg)
	}
}

// Stale reports whether the file named at Open has been modified since
// indexing. The check reopens the original path, so it works for
// compressed inputs whose queries run against an inflated copy. Query
// results over a stale file are undefined; the index still describes
// the old contents. Detection only; the File never re-indexes.
func (f *File) Stale() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false, ErrClosed
	}

	cur, err := os.Open(f.orig)
	if err != nil {
		return false, err
	}
	defer cur.Close()

	info, err := cur.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() != f.fp.size {
		return true, nil
	}

	fp, err := fingerprintFile(cur, info.Size(), f.fp.alg)
	if err != nil {
		return false, err
	}
	return fp.sum != f.fp.sum, nil
}
