package engine

import (
	"fmt"
	"io"

	"github.com/eeprom-tools/eeprog/pkg/pagemap"
)

// EraseAll zero-fills the whole device, one aligned page at a time.
// Idempotent. Returns false if any page write hit a configured retry cap.
func (e *Engine) EraseAll() bool {
	zero := make([]byte, e.cfg.PageSize)
	for _, span := range pagemap.Chunks(0, int64(e.cfg.MaxAddr)+1, e.cfg.PageSize) {
		if !e.WritePage(zero[:span.Length], span.Start) {
			return false
		}
	}
	return true
}

// LoadStream writes up to total bytes from r to consecutive addresses
// starting at start. Bytes are buffered into page-sized chunks first, so a
// partial page of uninitialized data is never written; the first chunk is
// trimmed to the page boundary and a short final chunk is flushed as-is. If
// r ends before total bytes, whatever arrived is written and no error is
// reported. Returns the number of bytes written to the device.
func (e *Engine) LoadStream(r io.Reader, total int64, start uint32) (int64, error) {
	if total <= 0 {
		return 0, nil
	}
	if int64(start)+total-1 > int64(e.cfg.MaxAddr) {
		return 0, fmt.Errorf("range [0x%X, 0x%X] exceeds device top address 0x%X",
			start, int64(start)+total-1, e.cfg.MaxAddr)
	}

	buf := make([]byte, e.cfg.PageSize)
	var written int64
	for _, span := range pagemap.Chunks(start, total, e.cfg.PageSize) {
		n, err := io.ReadFull(r, buf[:span.Length])
		if n > 0 {
			if !e.WritePage(buf[:n], span.Start) {
				return written, fmt.Errorf("page write @ 0x%X failed after retry cap", span.Start)
			}
			written += int64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return written, nil
		}
		if err != nil {
			return written, fmt.Errorf("reading input stream: %v", err)
		}
	}
	return written, nil
}
