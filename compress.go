// Transparent decompression of compressed inputs.
//
// Line indexing needs random access to the plain bytes, which a gzip or
// zstd stream cannot provide. Open sniffs the input's magic bytes and,
// when it finds a compressed stream, inflates it to a temporary file
// once; indexing and every query then run against the temp file, which
// is removed on Close. Uncompressed inputs pass through untouched.
package lines

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Magic bytes identifying supported compression formats.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// inflate checks f for a compressed stream. Plain files return
// (path, false, nil) with f's offset untouched. Compressed files are
// decompressed into a temp file whose path is returned with tmp = true;
// the caller owns the temp file's removal and should discard f.
func inflate(f *os.File, path string) (string, bool, error) {
	var magic [4]byte
	n, err := f.ReadAt(magic[:], 0)
	if err != nil && err != io.EOF {
		return "", false, err
	}

	var open func(io.Reader) (io.ReadCloser, error)
	switch {
	case bytes.HasPrefix(magic[:n], gzipMagic):
		open = func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		}
	case bytes.HasPrefix(magic[:n], zstdMagic):
		open = func(r io.Reader) (io.ReadCloser, error) {
			d, err := zstd.NewReader(r)
			if err != nil {
				return nil, err
			}
			return d.IOReadCloser(), nil
		}
	default:
		return path, false, nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", false, err
	}

	src, err := open(f)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	defer src.Close()

	dst, err := os.CreateTemp("", "lines-*")
	if err != nil {
		return "", false, err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", false, fmt.Errorf("%w: %w", ErrDecompress, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", false, err
	}

	return dst.Name(), true, nil
}
