// Package kiss implements the KISS TNC framing protocol: FEND-delimited,
// byte-stuffed frames carrying a one-byte command plus a data payload. Only
// the "data frame" command is produced or accepted; any other command byte
// causes the frame to be treated the way an unescaped stray FEND is, so a
// TNC in a different mode never desynchronizes the decoder.
package kiss

import (
	"io"

	"github.com/2mac/windbag/pkg/ax25"
)

const (
	fend  = 0xC0
	fesc  = 0xDB
	tfend = 0xDC
	tfesc = 0xDD

	cmdDataFrame = 0x00
)

// MaxFrame is the largest payload a decoded KISS data frame can carry:
// twice the largest AX.25 frame plus framing overhead, matching the worst
// case where every byte needs escaping.
const MaxFrame = ax25.FrameMax*2 + 3

// State names the resumable decoder's position in the KISS byte stream.
type State int

const (
	// StateNoCommand is searching for the start of the next frame.
	StateNoCommand State = iota

	// StateAwaitingCommand has seen a FEND and is waiting for the
	// command byte that follows it.
	StateAwaitingCommand

	// StateDataFrame is accumulating a data frame's payload bytes.
	StateDataFrame
)

func (s State) String() string {
	switch s {
	case StateNoCommand:
		return "NoCommand"
	case StateAwaitingCommand:
		return "AwaitingCommand"
	case StateDataFrame:
		return "DataFrame"
	default:
		return "Unknown"
	}
}

// Decoder is a resumable KISS frame decoder. Feed bytes to it one at a time
// as they arrive from a transport; it holds no reference to any I/O source,
// so it can be fed from a blocking reader, a pty, or a unit test's byte
// slice without distinction.
type Decoder struct {
	state  State
	escape bool
	buf    []byte
}

// NewDecoder returns a Decoder ready to scan for the start of a frame.
func NewDecoder() *Decoder {
	return &Decoder{state: StateNoCommand}
}

// State reports the decoder's current position, mostly useful for tests.
func (d *Decoder) State() State {
	return d.state
}

// Feed processes one input byte. It returns (frame, true) when b completes a
// data frame; the returned slice is owned by the caller. Non-data commands
// (anything but cmdDataFrame) are treated as noise: the decoder resyncs on
// the next FEND without ever returning a frame for them.
func (d *Decoder) Feed(b byte) ([]byte, bool) {
	switch d.state {
	case StateNoCommand:
		if b == fend {
			d.state = StateAwaitingCommand
		}

		return nil, false

	case StateAwaitingCommand:
		switch b {
		case cmdDataFrame:
			d.state = StateDataFrame
			d.buf = d.buf[:0]
		case fend:
			// Consecutive FENDs: stay put, wait for the real command byte.
		default:
			d.state = StateNoCommand
		}

		return nil, false

	case StateDataFrame:
		return d.feedDataByte(b)
	}

	return nil, false
}

func (d *Decoder) feedDataByte(b byte) ([]byte, bool) {
	if d.escape {
		d.escape = false

		switch b {
		case tfend:
			d.appendByte(fend)
		case tfesc:
			d.appendByte(fesc)
		default:
			// Invalid escape sequence: drop it, matching the reference
			// decoder's behavior of ignoring the unescaped byte.
		}

		return nil, false
	}

	switch b {
	case fend:
		d.state = StateAwaitingCommand
		out := make([]byte, len(d.buf))
		copy(out, d.buf)
		return out, true

	case fesc:
		d.escape = true

	default:
		d.appendByte(b)
	}

	return nil, false
}

func (d *Decoder) appendByte(b byte) {
	if len(d.buf) < MaxFrame {
		d.buf = append(d.buf, b)
	}
}

// ReadFrame blocks on r one byte at a time until a complete data frame has
// been decoded, returning it. It returns any error r.Read returns, including
// io.EOF if the stream ends before a frame completes.
func ReadFrame(r io.Reader, d *Decoder) ([]byte, error) {
	var one [1]byte

	for {
		if _, err := io.ReadFull(r, one[:]); err != nil {
			return nil, err
		}

		if frame, ok := d.Feed(one[0]); ok {
			return frame, nil
		}
	}
}

// Encode wraps frame as a complete KISS data frame: FEND, the data-frame
// command byte, the payload with FEND/FESC byte-stuffed, and a trailing
// FEND.
func Encode(frame []byte) []byte {
	out := make([]byte, 0, len(frame)+4)
	out = append(out, fend, cmdDataFrame)

	for _, b := range frame {
		switch b {
		case fend:
			out = append(out, fesc, tfend)
		case fesc:
			out = append(out, fesc, tfesc)
		default:
			out = append(out, b)
		}
	}

	out = append(out, fend)
	return out
}
