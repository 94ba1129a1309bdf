// Parallel line-start indexing.
//
// The index is the sorted set of byte offsets at which lines begin, plus
// a sentinel equal to the file length ("one past the last line"). It is
// built by recursively halving the file's byte range: ranges below the
// threshold are scanned directly with a private reader, larger ranges
// fork one half onto the pool and compute the other inline.
//
// Splits land at arbitrary byte positions, usually mid-line. That is
// fine: a scan starting mid-line consumes bytes up to the next
// terminator, and the position recorded after that first readLine is a
// genuine line start. Two adjacent ranges may both discover the offset
// near their shared split point; the set collapses the duplicate. Do
// not "fix" this by aligning splits to terminators: the set already
// yields the correct global result, and aligning would only add a
// sequential pre-scan.
package lines

import (
	"errors"
	"io"
	"os"
	"slices"
)

// minSplitThreshold is the floor on the per-scan range size. Below this,
// forking costs more than the scan itself, regardless of the requested
// split count.
const minSplitThreshold = 1_000_000

// offsets is the working set of discovered line starts. Map keying gives
// the deduplication the overlapping scans rely on.
type offsets map[int64]struct{}

func (o offsets) merge(other offsets) {
	for k := range other {
		o[k] = struct{}{}
	}
}

// buildIndex indexes the whole file at path and returns the ascending
// offset sequence, sentinel included. The effective threshold is the
// larger of minSplitThreshold and size/splitCount, so small files are
// never forked no matter how finely a caller asks to split.
func buildIndex(path string, size int64, splitCount, bufSize int, pool *Pool) []int64 {
	threshold := size
	if splitCount > 1 {
		threshold = size / int64(splitCount)
	}
	threshold = max(threshold, minSplitThreshold)

	set := indexRange(path, 0, size, threshold, bufSize, pool)

	index := make([]int64, 0, len(set))
	for off := range set {
		index = append(index, off)
	}
	slices.Sort(index)
	return index
}

// indexRange computes the line-start offsets within [start, end).
//
// An I/O failure during a scan is swallowed: the failing range
// contributes whatever partial set it had accumulated rather than
// aborting its siblings. Callers needing a completeness guarantee must
// check the result against the file externally.
func indexRange(path string, start, end, threshold int64, bufSize int, pool *Pool) offsets {
	if end-start < threshold {
		return scanRange(path, start, end, bufSize)
	}

	mid := start + (end-start)/2

	// Fork the left half when a pool slot is free; otherwise both halves
	// run on this goroutine. The right half always runs inline, then we
	// join on the forked result before merging.
	if pool.tryAcquire() {
		left := make(chan offsets, 1)
		go func() {
			defer pool.release()
			left <- indexRange(path, start, mid, threshold, bufSize, pool)
		}()
		set := indexRange(path, mid, end, threshold, bufSize, pool)
		set.merge(<-left)
		return set
	}

	set := indexRange(path, start, mid, threshold, bufSize, pool)
	set.merge(indexRange(path, mid, end, threshold, bufSize, pool))
	return set
}

// scanRange reads [start, end) line by line with a private reader,
// recording the position after every readLine. The range's first line
// start is only recorded by the scan that actually begins at offset 0,
// so the global first line appears exactly once; the scan whose range
// reaches the true end of file records the EOF sentinel.
func scanRange(path string, start, end int64, bufSize int) offsets {
	set := make(offsets)

	f, err := os.Open(path)
	if err != nil {
		return set
	}
	defer f.Close()

	r, err := newBufreader(f, bufSize)
	if err != nil {
		return set
	}
	if err := r.seek(start); err != nil {
		return set
	}

	if r.position() == 0 {
		set[0] = struct{}{}
	}
	for r.position() < end {
		if _, err := r.readLine(); err != nil {
			if errors.Is(err, io.EOF) {
				set[r.position()] = struct{}{}
			}
			break
		}
		set[r.position()] = struct{}{}
	}
	return set
}
