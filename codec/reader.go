package codec

import "fmt"

// decoder reads the template stream from the front of the input. The
// template alone determines how many payload bytes follow it, so
// payload reads are deferred: each records its length and destination,
// and finish slices the remainder of the input into the destinations
// once the template grammar has completed.
type decoder struct {
	data   []byte
	pos    int
	need   int
	fixups []fixup
}

type fixup struct {
	n    int
	dst  *[]byte
	post func([]byte)
}

func (d *decoder) peekTag() (Tag, error) {
	if d.pos >= len(d.data) {
		return 0, fmt.Errorf("%w: expected tag", ErrTruncated)
	}
	b := d.data[d.pos]
	if Tag(b) > tagMax {
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownTag, b)
	}
	return Tag(b), nil
}

func (d *decoder) readTag() (Tag, error) {
	t, err := d.peekTag()
	if err != nil {
		return 0, err
	}
	d.pos++
	return t, nil
}

func (d *decoder) uvarint() (uint64, error) {
	v, n, err := Uvarint(d.data[d.pos:])
	if err != nil {
		return 0, err
	}
	d.pos += n
	return v, nil
}

// bytes schedules n payload bytes to be sliced into *dst by finish.
func (d *decoder) bytes(n int, dst *[]byte) {
	d.need += n
	d.fixups = append(d.fixups, fixup{n: n, dst: dst})
}

// bytesFunc schedules n payload bytes to be handed to post by finish,
// for destinations that are not a single slice field.
func (d *decoder) bytesFunc(n int, post func([]byte)) {
	d.need += n
	d.fixups = append(d.fixups, fixup{n: n, post: post})
}

// finish splits the input after the template region and resolves the
// scheduled payload reads.
func (d *decoder) finish() error {
	payload := d.data[d.pos:]
	if len(payload) < d.need {
		return fmt.Errorf("%w: payload has %d bytes, template "+
			"requires %d", ErrTruncated, len(payload), d.need)
	}
	if len(payload) > d.need {
		return fmt.Errorf("%w: %d extra bytes", ErrTrailingBytes,
			len(payload)-d.need)
	}
	for _, f := range d.fixups {
		b := payload[:f.n]
		payload = payload[f.n:]
		if f.dst != nil {
			*f.dst = b
		}
		if f.post != nil {
			f.post(b)
		}
	}
	return nil
}
