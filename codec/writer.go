package codec

// encoder accumulates the two halves of an encoding: the template
// stream of tags and varints, and the payload stream of raw value
// bytes. The halves are concatenated on finish.
type encoder struct {
	template []byte
	payload  []byte
}

func (e *encoder) tag(t Tag) {
	e.template = append(e.template, byte(t))
}

func (e *encoder) uvarint(v uint64) {
	e.template = AppendUvarint(e.template, v)
}

func (e *encoder) bytes(b []byte) {
	e.payload = append(e.payload, b...)
}

func (e *encoder) finish() []byte {
	return append(e.template, e.payload...)
}
