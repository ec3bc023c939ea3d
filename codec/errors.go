package codec

import "errors"

var (
	// ErrUnsupportedFragment is returned by the encoder when it meets
	// an AST node outside the enumerated tag set.
	ErrUnsupportedFragment = errors.New("unsupported fragment")

	// ErrUnknownTag is returned by the decoder when it reads a byte
	// that is not in the tag table.
	ErrUnknownTag = errors.New("unknown tag")

	// ErrUnexpectedTag is returned by the decoder when a known tag
	// appears in a position the grammar does not permit.
	ErrUnexpectedTag = errors.New("unexpected tag")

	// ErrContextViolation is returned when a fragment is illegal
	// under the inherited script context.
	ErrContextViolation = errors.New("fragment not allowed in script " +
		"context")

	// ErrMalformedVarint is returned on a truncated, overlong or
	// non-canonical LEB128 value, or on an integer field whose value
	// is out of range.
	ErrMalformedVarint = errors.New("malformed varint")

	// ErrTruncated is returned when the input ends mid-template or
	// the payload is shorter than the template requires.
	ErrTruncated = errors.New("truncated input")

	// ErrTrailingBytes is returned when bytes remain after a complete
	// decode.
	ErrTrailingBytes = errors.New("trailing bytes after descriptor")

	// ErrDepthExceeded is returned when the recursion cap is hit.
	ErrDepthExceeded = errors.New("recursion depth exceeded")

	// ErrChecksum is returned when the decoded descriptor cannot be
	// given a checksum. It indicates an internal bug.
	ErrChecksum = errors.New("checksum derivation failed")
)
