package bigbuffer_test

import (
	"testing"
	"unicode/utf8"

	"pgregory.net/rapid"

	"github.com/2mac/windbag/pkg/bigbuffer"
)

// Test_SplitNeverSplitsARune confirms that splitting valid UTF-8 text never
// cuts a multi-byte rune across two chunks, for any chunk size large enough
// to hold the widest possible rune.
func Test_SplitNeverSplitsARune(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringN(0, 64, -1).Draw(t, "s")
		maxLength := rapid.IntRange(utf8.UTFMax, 128).Draw(t, "maxLength")

		chunks, err := bigbuffer.Split([]byte(s), maxLength)
		if err != nil {
			t.Fatalf("Split: %v", err)
		}

		var rebuilt []byte
		for _, c := range chunks {
			if len(c) == 0 {
				t.Fatal("Split produced an empty chunk")
			}

			if !utf8.Valid(c) {
				t.Fatalf("chunk is not valid UTF-8: %q", c)
			}

			rebuilt = append(rebuilt, c...)
		}

		if string(rebuilt) != s {
			t.Fatalf("rebuilt text does not match input: got %q, want %q", rebuilt, s)
		}
	})
}
