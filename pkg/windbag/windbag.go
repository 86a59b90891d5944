// Package windbag implements the Windbag envelope: a private framing layer
// carried inside an AX.25 UI frame's information field. It adds a
// timestamp, optional multi-part fragmentation for messages too large for
// one frame, and an optional Ed25519 signature covering the fragment
// index, timestamp, and content.
package windbag

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/2mac/windbag/pkg/ax25"
	"github.com/2mac/windbag/pkg/bigbuffer"
)

var magicNumber = [2]byte{0xA4, 0x55}

const (
	fixedHeaderLength = 4 // magic(2) + header_length(1) + flags(1)
	timestampLength   = 4
	multipartLength   = 2
	sigLengthField    = 1

	flagMultipart = 0x01
	flagSigned    = 0x02
)

// minHeaderLength is the smallest legal header: no signature, no
// multi-part indices, just the fixed header and the timestamp.
const minHeaderLength = fixedHeaderLength + timestampLength

// Status is the outcome of verifying a signed envelope's signature.
type Status int

const (
	// StatusNone means the envelope wasn't signed.
	StatusNone Status = iota

	// StatusUnknown means the envelope was signed but no public key is
	// on file for the sender, so the signature could not be checked.
	StatusUnknown

	// StatusGood means the signature verified against the sender's
	// known public key.
	StatusGood

	// StatusBad means the signature did not verify.
	StatusBad

	// StatusAlternate is reserved for a future signature scheme and is
	// never produced by Parse.
	StatusAlternate
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusUnknown:
		return "unknown"
	case StatusGood:
		return "good"
	case StatusBad:
		return "bad"
	case StatusAlternate:
		return "alternate"
	default:
		return "invalid"
	}
}

// Errors returned while decoding a Windbag envelope.
var (
	ErrShortPayload    = errors.New("windbag: payload too short")
	ErrBadMagic        = errors.New("windbag: bad magic number")
	ErrBadHeaderLength = errors.New("windbag: inconsistent header length")
)

// Frame is one decoded Windbag envelope: one AX.25 information field's
// worth of a (possibly fragmented) message.
type Frame struct {
	Timestamp  uint32
	Multipart  bool
	PartIndex  int
	FinalIndex int
	Signed     bool
	Status     Status
	Content    []byte
}

// KeyLookup resolves a sender call sign to its known Ed25519 public key.
// The bool result is false when no key is on file.
type KeyLookup func(sender string) (ed25519.PublicKey, bool)

// Parse decodes one Windbag envelope from payload, the information field of
// an AX.25 UI frame. sender is the call sign the frame's AX.25 header names
// as its source, used to look up a verification key when the envelope is
// signed.
func Parse(payload []byte, sender string, lookup KeyLookup) (Frame, error) {
	if len(payload) < minHeaderLength {
		return Frame{}, ErrShortPayload
	}

	if payload[0] != magicNumber[0] || payload[1] != magicNumber[1] {
		return Frame{}, ErrBadMagic
	}

	headerLength := int(payload[2])
	flags := payload[3]
	if headerLength < minHeaderLength || headerLength > len(payload) {
		return Frame{}, ErrBadHeaderLength
	}

	multipart := flags&flagMultipart != 0
	signedMsg := flags&flagSigned != 0

	pos := fixedHeaderLength

	var sig []byte
	if signedMsg {
		if pos+sigLengthField > headerLength {
			return Frame{}, ErrBadHeaderLength
		}

		sigLen := int(payload[pos])
		pos += sigLengthField

		if pos+sigLen > headerLength {
			return Frame{}, ErrBadHeaderLength
		}

		sig = payload[pos : pos+sigLen]
		pos += sigLen
	}

	var partIndex, finalIndex int
	if multipart {
		if pos+multipartLength > headerLength {
			return Frame{}, ErrBadHeaderLength
		}

		partIndex = int(payload[pos])
		finalIndex = int(payload[pos+1])
		pos += multipartLength
	}

	if pos+timestampLength > headerLength {
		return Frame{}, ErrBadHeaderLength
	}

	timestamp := binary.LittleEndian.Uint32(payload[pos : pos+timestampLength])
	content := payload[headerLength:]

	frame := Frame{
		Timestamp:  timestamp,
		Multipart:  multipart,
		PartIndex:  partIndex,
		FinalIndex: finalIndex,
		Signed:     signedMsg,
		Content:    append([]byte(nil), content...),
	}

	if !signedMsg {
		frame.Status = StatusNone
		return frame, nil
	}

	tailLen := timestampLength
	if multipart {
		tailLen += multipartLength
	}

	signedBytes := payload[headerLength-tailLen:]

	pub, ok := lookup(sender)
	if !ok {
		frame.Status = StatusUnknown
		return frame, nil
	}

	if ed25519.Verify(pub, signedBytes, sig) {
		frame.Status = StatusGood
	} else {
		frame.Status = StatusBad
	}

	return frame, nil
}

// BuildFrames encodes content as one or more Windbag envelopes, splitting it
// across multiple frames if it doesn't fit in a single AX.25 information
// field. Each returned slice is one frame's payload, ready to carry as an
// ax25.Packet's Payload. If signer is non-nil, every frame is signed.
func BuildFrames(content []byte, timestamp uint32, signer ed25519.PrivateKey) ([][]byte, error) {
	signing := signer != nil

	sigSection := 0
	if signing {
		sigSection = sigLengthField + ed25519.SignatureSize
	}

	singleHeader := fixedHeaderLength + sigSection + timestampLength
	maxSingle := ax25.InfoMax - singleHeader

	if len(content) <= maxSingle {
		frame, err := buildOne(content, timestamp, signer, singleHeader, 0, false, 0, 0)
		if err != nil {
			return nil, err
		}

		return [][]byte{frame}, nil
	}

	multiHeader := singleHeader + multipartLength
	maxMulti := ax25.InfoMax - multiHeader
	if maxMulti <= 0 {
		return nil, fmt.Errorf("windbag: no room for content with signing=%v", signing)
	}

	chunks, err := bigbuffer.Split(content, maxMulti)
	if err != nil {
		return nil, fmt.Errorf("windbag: splitting message: %w", err)
	}

	finalIndex := len(chunks) - 1
	frames := make([][]byte, 0, len(chunks))

	for i, chunk := range chunks {
		frame, err := buildOne(chunk, timestamp, signer, multiHeader, sigSection, true, i, finalIndex)
		if err != nil {
			return nil, err
		}

		frames = append(frames, frame)
	}

	return frames, nil
}

func buildOne(content []byte, timestamp uint32, signer ed25519.PrivateKey, headerLength, _ int, multipart bool, partIndex, finalIndex int) ([]byte, error) {
	var flags byte
	if multipart {
		flags |= flagMultipart
	}

	signing := signer != nil
	if signing {
		flags |= flagSigned
	}

	tail := make([]byte, 0, multipartLength+timestampLength+len(content))
	if multipart {
		tail = append(tail, byte(partIndex), byte(finalIndex))
	}

	var ts [timestampLength]byte
	binary.LittleEndian.PutUint32(ts[:], timestamp)
	tail = append(tail, ts[:]...)
	tail = append(tail, content...)

	payload := make([]byte, 0, headerLength+len(content))
	payload = append(payload, magicNumber[0], magicNumber[1], byte(headerLength), flags)

	if signing {
		sig := ed25519.Sign(signer, tail)
		payload = append(payload, byte(len(sig)))
		payload = append(payload, sig...)
	}

	payload = append(payload, tail...)

	if len(payload) > ax25.FrameMax {
		return nil, fmt.Errorf("windbag: encoded frame exceeds %d bytes", ax25.FrameMax)
	}

	return payload, nil
}
