package jobfeed

import (
	"errors"
	"testing"
)

func TestCursorRoundTrip(t *testing.T) {
	ids := []string{
		"a",
		"cmejp2jak0001",
		"remoteok:9f31c2",
		"2024-01-02T15:04:05Z/848",
	}
	for _, id := range ids {
		got, err := DecodeCursor(EncodeCursor(id))
		if err != nil {
			t.Fatalf("DecodeCursor(EncodeCursor(%q)): %v", id, err)
		}
		if got != id {
			t.Fatalf("round trip %q: got %q", id, got)
		}
	}
}

func TestEncodeCursorDeterministic(t *testing.T) {
	if EncodeCursor("job-1") != EncodeCursor("job-1") {
		t.Fatal("two encodings of the same id differ")
	}
}

func TestDecodeCursorGarbage(t *testing.T) {
	for _, cursor := range []string{"", "!!!not-base64!!!", "====", EncodeCursor("")} {
		if _, err := DecodeCursor(cursor); !errors.Is(err, ErrInvalidCursor) {
			t.Fatalf("DecodeCursor(%q): want ErrInvalidCursor, got %v", cursor, err)
		}
	}
}
