// Package codec implements a lossless binary codec for bitcoin output
// descriptors. The encoding splits a descriptor into a template stream
// of one-byte structural tags and LEB128 varints, followed by a payload
// stream of raw value bytes referenced positionally by the template.
// The template is self-delimiting, so the boundary between the two
// streams is implicit.
package codec

import (
	"fmt"

	"github.com/joshdoman/descriptor-codec/descriptor"
)

// MaxRecursionDepth caps the nesting of encoded descriptors so
// adversarial inputs cannot exhaust the stack.
const MaxRecursionDepth = 256

// Encode parses a textual descriptor and encodes it into its compact
// binary form.
func Encode(desc string) ([]byte, error) {
	parsed, err := descriptor.Parse(desc)
	if err != nil {
		return nil, err
	}
	return EncodeDescriptor(parsed)
}

// EncodeDescriptor encodes an already parsed descriptor.
func EncodeDescriptor(d *descriptor.Descriptor) ([]byte, error) {
	var e encoder
	if err := encodeDescriptor(&e, d); err != nil {
		return nil, err
	}
	return e.finish(), nil
}

// Decode decodes a binary descriptor back into its textual form, with a
// freshly derived checksum attached.
func Decode(data []byte) (string, error) {
	parsed, err := DecodeDescriptor(data)
	if err != nil {
		return "", err
	}
	text, err := parsed.Encode()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrChecksum, err)
	}
	return text, nil
}

// DecodeDescriptor decodes a binary descriptor into its AST.
func DecodeDescriptor(data []byte) (*descriptor.Descriptor, error) {
	d := &decoder{data: data}
	parsed, err := decodeDescriptor(d)
	if err != nil {
		return nil, err
	}
	if err := d.finish(); err != nil {
		return nil, err
	}
	return parsed, nil
}
