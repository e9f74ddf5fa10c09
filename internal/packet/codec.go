package packet

import (
	"encoding/hex"
	"fmt"
)

// Packet is one decoded protocol message: the shared header plus a typed
// payload variant. Encode always produces the variant's canonical byte
// layout, so len(p.Encode()) is fixed per tag (Raw: header plus payload).
type Packet interface {
	Head() Header
	Encode() []byte
}

type variantSpec struct {
	size   int
	decode func([]byte) (Packet, error)
}

// variants is the closed dispatch table mapping type tags to their fixed
// total size and decoder. Tags outside the table fall back to Raw.
var variants = map[Type]variantSpec{
	TypeAnnounce:   {AnnounceSize, func(b []byte) (Packet, error) { return DecodeAnnounce(b) }},
	TypeDisplay:    {DisplaySize, func(b []byte) (Packet, error) { return DecodeDisplay(b) }},
	TypeBotCommand: {BotCommandSize, func(b []byte) (Packet, error) { return DecodeBotCommand(b) }},
	TypeBotStatus:  {BotStatusSize, func(b []byte) (Packet, error) { return DecodeBotStatus(b) }},
	TypeJoystick:   {JoystickSize, func(b []byte) (Packet, error) { return DecodeJoystick(b) }},
}

// Decode dispatches on the leading type tag and parses the matching
// variant. Buffers longer than the variant's fixed size are truncated, not
// rejected, so framing layers may pad or concatenate. Unknown tags decode
// as Raw with the whole remainder as payload.
func Decode(data []byte) (Packet, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrShortBuffer, HeaderSize, len(data))
	}

	spec, ok := variants[Type(data[0])]
	if !ok {
		return DecodeRaw(data)
	}
	if len(data) < spec.size {
		return nil, fmt.Errorf("%w: tag %d needs %d bytes, got %d", ErrShortBuffer, data[0], spec.size, len(data))
	}

	return spec.decode(data[:spec.size])
}

// DecodeHex decodes a packet from lowercase hex text.
func DecodeHex(text string) (Packet, error) {
	raw, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}

	return Decode(raw)
}

// EncodeHex renders a packet as lowercase hex with no separators.
func EncodeHex(p Packet) string {
	return hex.EncodeToString(p.Encode())
}
