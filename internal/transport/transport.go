// Package transport opens the byte-oriented serial link a KISS TNC talks
// over. It deals only in raw reads and writes; framing is the kiss
// package's job.
package transport

import (
	"fmt"

	"github.com/pkg/term"
)

// Serial is an open, configured serial port.
type Serial struct {
	t *term.Term
}

// OpenSerial opens path at the given baud rate in raw mode, the
// configuration a KISS TNC expects: no echo, no line discipline, 8N1.
func OpenSerial(path string, baud int) (*Serial, error) {
	t, err := term.Open(path, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("transport: opening %s: %w", path, err)
	}

	return &Serial{t: t}, nil
}

// Read satisfies io.Reader. A short read is possible and is not an error;
// the kiss decoder consumes bytes one at a time and tolerates it.
func (s *Serial) Read(p []byte) (int, error) {
	return s.t.Read(p)
}

// Write satisfies io.Writer.
func (s *Serial) Write(p []byte) (int, error) {
	return s.t.Write(p)
}

// Close releases the underlying file descriptor. A blocked Read returns an
// error once Close runs concurrently with it.
func (s *Serial) Close() error {
	return s.t.Close()
}
