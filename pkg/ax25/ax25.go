// Package ax25 encodes and decodes AX.25 UI frames: the unnumbered
// information frames used for connectionless packet-radio traffic. It
// covers address-field shifted-ASCII encoding, the control/PID bytes for a
// "no layer 3" UI frame, and up to two digipeater addresses.
package ax25

import (
	"errors"
	"fmt"

	"github.com/2mac/windbag/pkg/callsign"
)

const (
	// AddrSize is the encoded width of one AX.25 address field.
	AddrSize = 7

	// MaxAddrs is destination + source + up to two digipeaters.
	MaxAddrs = 4

	// MaxDigis is the number of digipeater addresses a header may carry.
	MaxDigis = MaxAddrs - 2

	// HeaderMax is the largest the address+control+PID section can be.
	HeaderMax = 2 + AddrSize*MaxAddrs

	// InfoMax is the largest a UI frame's information field may be.
	InfoMax = 256

	// FrameMin is the smallest legal encoded frame: two addresses plus
	// control and PID with no payload.
	FrameMin = 2*AddrSize + 2

	// FrameMax is the largest legal encoded frame.
	FrameMax = HeaderMax + InfoMax

	// PIDNoLayer3 marks a UI frame carrying no layer-3 protocol, the
	// PID value every Windbag frame uses.
	PIDNoLayer3 = 0xF0

	ctrlUIFrame  = 0x03
	ctrlTypeMask = 0x03
	addrEndBit   = 0x01
	ssidMask     = 0x1E
	ssidShift    = 1
)

var (
	// ErrShortFrame is returned when a frame is too small to contain a
	// valid address field, control byte, and PID byte.
	ErrShortFrame = errors.New("ax25: frame too short")

	// ErrBadAddressField is returned when the address section's length
	// isn't a positive multiple of AddrSize, or no address carries the
	// end-of-address-field marker bit.
	ErrBadAddressField = errors.New("ax25: malformed address field")

	// ErrNotUIFrame is returned when the control byte doesn't mark a UI
	// frame.
	ErrNotUIFrame = errors.New("ax25: not a UI frame")

	// ErrNotLayer3None is returned when the PID byte isn't "no layer 3".
	ErrNotLayer3None = errors.New("ax25: unsupported PID")

	// ErrPayloadTooLarge is returned by Encode when the payload doesn't
	// fit in a single UI frame's information field.
	ErrPayloadTooLarge = errors.New("ax25: payload exceeds frame capacity")

	// ErrTooManyDigis is returned by Encode when more than MaxDigis
	// digipeater addresses are given.
	ErrTooManyDigis = errors.New("ax25: too many digipeaters")
)

// Header is an AX.25 UI frame's address and control fields.
type Header struct {
	Dest    callsign.Callsign
	Src     callsign.Callsign
	Digis   []callsign.Callsign
	Control byte
	PID     byte
}

// Packet is a decoded AX.25 UI frame: header plus information field.
type Packet struct {
	Header  Header
	Payload []byte
}

// Encode renders pkt as the bytes of a raw AX.25 UI frame: address fields,
// control byte, PID byte, and payload, in the order a KISS data frame
// carries them.
func Encode(pkt Packet) ([]byte, error) {
	if len(pkt.Header.Digis) > MaxDigis {
		return nil, ErrTooManyDigis
	}

	if len(pkt.Payload) > InfoMax {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, len(pkt.Payload), InfoMax)
	}

	addrs := make([]callsign.Callsign, 0, MaxAddrs)
	addrs = append(addrs, pkt.Header.Dest, pkt.Header.Src)
	addrs = append(addrs, pkt.Header.Digis...)

	frame := make([]byte, 0, FrameMax)
	for _, a := range addrs {
		frame = append(frame, encodeAddr(a)...)
	}

	frame[len(frame)-1] |= addrEndBit

	control := pkt.Header.Control
	if control == 0 {
		control = ctrlUIFrame
	}

	pid := pkt.Header.PID
	if pid == 0 {
		pid = PIDNoLayer3
	}

	frame = append(frame, control, pid)
	frame = append(frame, pkt.Payload...)

	return frame, nil
}

// Decode parses a raw AX.25 UI frame into a Packet. It rejects frames that
// are too short, have a malformed address field, aren't UI frames, or don't
// carry PIDNoLayer3.
func Decode(frame []byte) (Packet, error) {
	if len(frame) < FrameMin {
		return Packet{}, ErrShortFrame
	}

	addrLen := addrFieldLength(frame)
	if addrLen < 2*AddrSize || addrLen%AddrSize != 0 {
		return Packet{}, ErrBadAddressField
	}

	if len(frame) < addrLen+2 {
		return Packet{}, ErrShortFrame
	}

	control := frame[addrLen]
	if control&ctrlTypeMask != ctrlUIFrame {
		return Packet{}, ErrNotUIFrame
	}

	pid := frame[addrLen+1]
	if pid != PIDNoLayer3 {
		return Packet{}, ErrNotLayer3None
	}

	numAddrs := addrLen / AddrSize
	header := Header{
		Dest:    decodeAddr(frame[0:AddrSize]),
		Src:     decodeAddr(frame[AddrSize : 2*AddrSize]),
		Control: control,
		PID:     pid,
	}

	for i := 2; i < numAddrs; i++ {
		start := i * AddrSize
		header.Digis = append(header.Digis, decodeAddr(frame[start:start+AddrSize]))
	}

	payload := frame[addrLen+2:]
	out := make([]byte, len(payload))
	copy(out, payload)

	return Packet{Header: header, Payload: out}, nil
}

// addrFieldLength scans for the address-field terminator: the first byte
// whose low bit is set, which must fall on an AddrSize boundary.
func addrFieldLength(frame []byte) int {
	for i, b := range frame {
		if b&addrEndBit != 0 {
			return i + 1
		}
	}

	return -1
}

func encodeAddr(c callsign.Callsign) []byte {
	out := make([]byte, AddrSize)
	for i := range out {
		out[i] = ' ' << 1
	}

	base := c.Base
	if len(base) > callsign.MaxBaseLength {
		base = base[:callsign.MaxBaseLength]
	}

	for i := 0; i < len(base); i++ {
		out[i] = base[i] << 1
	}

	out[6] = byte(c.SSID<<ssidShift) & ssidMask
	return out
}

func decodeAddr(field []byte) callsign.Callsign {
	base := make([]byte, 0, callsign.MaxBaseLength)
	for i := 0; i < callsign.MaxBaseLength; i++ {
		ch := field[i] >> 1
		if ch == ' ' {
			break
		}

		base = append(base, ch)
	}

	ssid := int(field[6]&ssidMask) >> ssidShift
	return callsign.Callsign{Base: string(base), SSID: ssid}
}
