// Package packet implements the binary record format exchanged between
// robot nodes over the radio link. Every packet starts with a fixed 9-byte
// little-endian header; the first byte selects the payload variant.
package packet

import (
	"encoding/binary"
	"fmt"
)

// Type is the payload type tag carried in the first header byte.
type Type uint8

const (
	TypeAnnounce   Type = 10
	TypeDisplay    Type = 11
	TypeBotCommand Type = 20
	TypeBotStatus  Type = 21
	TypeJoystick   Type = 30
)

// HeaderSize is the encoded size of the shared header.
const HeaderSize = 9

// Header is the prefix common to all packets. Time and Serial are opaque
// sender-supplied identifiers; the protocol only echoes and compares them.
type Header struct {
	Type   Type
	Time   int32
	Serial int32
}

// Head returns the shared header. Variants embed Header, so every packet
// value provides this method.
func (h Header) Head() Header { return h }

func (h Header) encodeTo(buf []byte) {
	buf[0] = byte(h.Type)
	binary.LittleEndian.PutUint32(buf[1:5], uint32(h.Time))
	binary.LittleEndian.PutUint32(buf[5:9], uint32(h.Serial))
}

func parseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: need at least %d header bytes, got %d", ErrShortBuffer, HeaderSize, len(data))
	}

	return Header{
		Type:   Type(data[0]),
		Time:   int32(binary.LittleEndian.Uint32(data[1:5])),
		Serial: int32(binary.LittleEndian.Uint32(data[5:9])),
	}, nil
}
