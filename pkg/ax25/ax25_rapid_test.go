package ax25_test

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/2mac/windbag/pkg/ax25"
	"github.com/2mac/windbag/pkg/callsign"
)

func callsignGen() *rapid.Generator[callsign.Callsign] {
	return rapid.Custom(func(t *rapid.T) callsign.Callsign {
		n := rapid.IntRange(1, callsign.MaxBaseLength).Draw(t, "baseLen")
		letters := rapid.SliceOfN(rapid.RuneFrom([]rune("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")), n, n).Draw(t, "base")
		base := string(letters)
		ssid := rapid.IntRange(0, callsign.MaxSSID).Draw(t, "ssid")
		return callsign.Callsign{Base: base, SSID: ssid}
	})
}

func Test_EncodeDecodeRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		dest := callsignGen().Draw(t, "dest")
		src := callsignGen().Draw(t, "src")
		payload := rapid.SliceOfN(rapid.Byte(), 0, ax25.InfoMax).Draw(t, "payload")

		pkt := ax25.Packet{
			Header:  ax25.Header{Dest: dest, Src: src},
			Payload: payload,
		}

		frame, err := ax25.Encode(pkt)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}

		got, err := ax25.Decode(frame)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}

		if got.Header.Dest != dest || got.Header.Src != src {
			t.Fatalf("address round trip mismatch: got %+v/%+v, want %+v/%+v",
				got.Header.Dest, got.Header.Src, dest, src)
		}

		if len(got.Payload) != len(payload) {
			t.Fatalf("payload length mismatch: got %d, want %d", len(got.Payload), len(payload))
		}
	})
}
