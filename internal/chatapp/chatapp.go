// Package chatapp implements the interactive chat session: a writer that
// sends each stdin line as a Windbag message, and a concurrent reader that
// decodes and verifies incoming frames. Multi-part messages are not
// reassembled; each fragment is surfaced on its own, with its part index
// and final index, as soon as it arrives.
package chatapp

import (
	"bufio"
	"crypto/ed25519"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"

	"github.com/2mac/windbag/pkg/ax25"
	"github.com/2mac/windbag/pkg/callsign"
	"github.com/2mac/windbag/pkg/keyring"
	"github.com/2mac/windbag/pkg/kiss"
	"github.com/2mac/windbag/pkg/windbag"
)

// cqCallsign is the conventional unaddressed destination for a general
// broadcast chat message.
var cqCallsign = callsign.Callsign{Base: "CQ"}

// exitCommand ends the chat loop, matching the original client's command.
const exitCommand = "/exit"

// defaultTimestampFormat mirrors a typical TNC monitor's receive stamp.
const defaultTimestampFormat = "%Y-%m-%d %H:%M:%S"

// Link is the byte transport a chat session reads frames from and writes
// frames to: a serial port, or anything else that behaves like one.
type Link interface {
	io.Reader
	io.Writer
}

// Session holds everything one chat run needs.
type Session struct {
	MyCall          callsign.Callsign
	DigiPath        []callsign.Callsign
	Signer          ed25519.PrivateKey // nil disables signing
	Keyring         *keyring.Keyring
	Link            Link
	Logger          *log.Logger
	TimestampFormat string
	Stdin           io.Reader
	Stdout          io.Writer
}

// Run starts the reader goroutine and drives the writer loop on the
// current goroutine until the user types "/exit" or stdin closes. It
// returns once both have stopped.
func (s *Session) Run() error {
	if s.Logger == nil {
		s.Logger = log.Default()
	}

	if s.TimestampFormat == "" {
		s.TimestampFormat = defaultTimestampFormat
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		s.readLoop()
	}()

	err := s.writeLoop()

	// Closing the link unblocks the reader's pending read so it can stop.
	if c, ok := s.Link.(io.Closer); ok {
		_ = c.Close()
	}

	<-readerDone

	return err
}

func (s *Session) readLoop() {
	decoder := kiss.NewDecoder()

	for {
		frame, err := kiss.ReadFrame(s.Link, decoder)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.Logger.Error("reading frame", "err", err)
			}

			return
		}

		pkt, err := ax25.Decode(frame)
		if err != nil {
			s.Logger.Debug("dropping malformed AX.25 frame", "err", err)
			continue
		}

		env, err := windbag.Parse(pkt.Payload, pkt.Header.Src.String(), s.Keyring.Lookup)
		if err != nil {
			s.Logger.Debug("dropping malformed Windbag envelope", "err", err)
			continue
		}

		s.printReceived(pkt.Header.Src, env)
	}
}

func (s *Session) printReceived(sender callsign.Callsign, env windbag.Frame) {
	ts, err := strftime.Format(s.TimestampFormat, time.Unix(int64(env.Timestamp), 0))
	if err != nil {
		ts = fmt.Sprintf("%d", env.Timestamp)
	}

	if env.Multipart {
		fmt.Fprintf(s.Stdout, "[%s %s] (%s) [%d/%d] %s\n", ts, sender, env.Status,
			env.PartIndex, env.FinalIndex, env.Content)
		return
	}

	fmt.Fprintf(s.Stdout, "[%s %s] (%s) %s\n", ts, sender, env.Status, env.Content)
}

func (s *Session) writeLoop() error {
	header := ax25.Header{Dest: cqCallsign, Src: s.MyCall, Digis: s.DigiPath}
	scanner := bufio.NewScanner(s.Stdin)

	for {
		fmt.Fprint(s.Stdout, "> ")

		if !scanner.Scan() {
			return scanner.Err()
		}

		line := scanner.Text()
		if strings.TrimSpace(line) == exitCommand {
			return nil
		}

		if line == "" {
			continue
		}

		if err := s.send(header, line); err != nil {
			return fmt.Errorf("chatapp: writing to TNC: %w", err)
		}
	}
}

func (s *Session) send(header ax25.Header, line string) error {
	frames, err := windbag.BuildFrames([]byte(line), uint32(time.Now().Unix()), s.Signer)
	if err != nil {
		return err
	}

	written := 0

	for _, payload := range frames {
		pkt := ax25.Packet{Header: header, Payload: payload}

		raw, err := ax25.Encode(pkt)
		if err != nil {
			return err
		}

		n, err := s.Link.Write(kiss.Encode(raw))
		if err != nil {
			return err
		}

		written += n
	}

	fmt.Fprintf(s.Stdout, "Wrote %d bytes\n", written)
	return nil
}
