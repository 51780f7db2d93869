package jobfeed

import (
	"encoding/base64"
	"fmt"
	"unicode/utf8"
)

// EncodeCursor turns a job identifier into an opaque pagination cursor.
// Encoding is deterministic: the same identifier always yields the same
// cursor, so clients may cache and compare cursors byte-for-byte.
func EncodeCursor(id string) string {
	return base64.StdEncoding.EncodeToString([]byte(id))
}

// DecodeCursor reverses EncodeCursor. A cursor that does not round-trip to a
// non-empty identifier reports ErrInvalidCursor.
func DecodeCursor(cursor string) (string, error) {
	if cursor == "" {
		return "", fmt.Errorf("%w: empty cursor", ErrInvalidCursor)
	}
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if len(raw) == 0 || !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: cursor does not decode to an identifier", ErrInvalidCursor)
	}
	return string(raw), nil
}
