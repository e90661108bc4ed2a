// Package pagemap does the address geometry for page-buffered devices:
// splitting an arbitrary byte range into the page-aligned spans the device
// can accept in single write cycles.
package pagemap

import "github.com/pkg/errors"

// ValidateGeometry checks a capacity and page size pair before a device is
// brought up. Page buffers on these parts are power-of-two sized, and the
// boundary math here and in the write path assumes that.
func ValidateGeometry(capacity uint32, pageSize int) error {
	if capacity == 0 {
		return errors.New("device capacity must be at least one byte")
	}
	if pageSize <= 0 {
		return errors.Errorf("page size %d is not positive", pageSize)
	}
	if pageSize&(pageSize-1) != 0 {
		return errors.Errorf("page size %d is not a power of two", pageSize)
	}
	if uint32(pageSize) > capacity {
		return errors.Errorf("page size %d exceeds device capacity %d", pageSize, capacity)
	}
	return nil
}

// Span is one write-sized run of consecutive addresses. Spans produced by
// Chunks never cross a page boundary.
type Span struct {
	Start  uint32
	Length int
}

// End returns the last address covered by the span.
func (s Span) End() uint32 {
	return s.Start + uint32(s.Length) - 1
}

// Chunks decomposes [start, start+length-1] into consecutive spans: a first
// span trimmed so the next one lands on a page boundary, full pages in the
// middle, and a final span holding the remainder. A zero or negative length
// yields no spans.
func Chunks(start uint32, length int64, pageSize int) []Span {
	if length <= 0 || pageSize <= 0 {
		return nil
	}

	var spans []Span
	addr := start
	left := length
	for left > 0 {
		n := pageSize - int(addr)%pageSize
		if int64(n) > left {
			n = int(left)
		}
		spans = append(spans, Span{Start: addr, Length: n})
		addr += uint32(n)
		left -= int64(n)
	}
	return spans
}
