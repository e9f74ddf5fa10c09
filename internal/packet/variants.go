package packet

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Total encoded sizes per variant, header included.
const (
	AnnounceSize   = HeaderSize + 11
	DisplaySize    = HeaderSize + 18
	BotCommandSize = HeaderSize + 19
	BotStatusSize  = HeaderSize + 7
	JoystickSize   = HeaderSize + 11
)

// Announce advertises a node's presence and identity. Nodes broadcast it
// periodically; the peer directory is built from these.
type Announce struct {
	Header
	ClassID uint8
	Group   uint16
	Channel uint16
	Flags   uint16
	Image   uint32
}

// DecodeAnnounce parses an announce packet from its canonical bytes.
func DecodeAnnounce(data []byte) (*Announce, error) {
	h, err := requireVariant(data, TypeAnnounce, AnnounceSize)
	if err != nil {
		return nil, err
	}

	return &Announce{
		Header:  h,
		ClassID: data[9],
		Group:   binary.LittleEndian.Uint16(data[10:12]),
		Channel: binary.LittleEndian.Uint16(data[12:14]),
		Flags:   binary.LittleEndian.Uint16(data[14:16]),
		Image:   binary.LittleEndian.Uint32(data[16:20]),
	}, nil
}

func (p *Announce) Encode() []byte {
	buf := make([]byte, AnnounceSize)
	p.stamp(TypeAnnounce).encodeTo(buf)
	buf[9] = p.ClassID
	binary.LittleEndian.PutUint16(buf[10:12], p.Group)
	binary.LittleEndian.PutUint16(buf[12:14], p.Channel)
	binary.LittleEndian.PutUint16(buf[14:16], p.Flags)
	binary.LittleEndian.PutUint32(buf[16:20], p.Image)

	return buf
}

func (p *Announce) String() string {
	return fmt.Sprintf("Announce(time=%d, serial=%d, class_id=%d, group=%d, channel=%d, flags=%d, image=%d)",
		p.Time, p.Serial, p.ClassID, p.Group, p.Channel, p.Flags, p.Image)
}

// Display carries tone, icon, and lamp colors for a node's indicators.
// The four colors travel as RGB byte triples and are exposed as packed
// 24-bit values.
type Display struct {
	Header
	Tone          uint8
	Duration      uint8
	Image         uint32
	HeadLampLeft  uint32
	HeadLampRight uint32
	NeoLeft       uint32
	NeoRight      uint32
}

// DecodeDisplay parses a display packet from its canonical bytes.
func DecodeDisplay(data []byte) (*Display, error) {
	h, err := requireVariant(data, TypeDisplay, DisplaySize)
	if err != nil {
		return nil, err
	}

	p := &Display{
		Header:   h,
		Tone:     data[9],
		Duration: data[10],
		Image:    binary.LittleEndian.Uint32(data[11:15]),
	}
	colors := data[15:27]
	p.HeadLampLeft = JoinColor(colors[0], colors[1], colors[2])
	p.HeadLampRight = JoinColor(colors[3], colors[4], colors[5])
	p.NeoLeft = JoinColor(colors[6], colors[7], colors[8])
	p.NeoRight = JoinColor(colors[9], colors[10], colors[11])

	return p, nil
}

func (p *Display) Encode() []byte {
	buf := make([]byte, DisplaySize)
	p.stamp(TypeDisplay).encodeTo(buf)
	buf[9] = p.Tone
	buf[10] = p.Duration
	binary.LittleEndian.PutUint32(buf[11:15], p.Image)
	off := 15
	for _, c := range [4]uint32{p.HeadLampLeft, p.HeadLampRight, p.NeoLeft, p.NeoRight} {
		r, g, b := SplitColor(c)
		buf[off] = r
		buf[off+1] = g
		buf[off+2] = b
		off += 3
	}

	return buf
}

func (p *Display) String() string {
	return fmt.Sprintf("Display(time=%d, serial=%d, tone=%d, duration=%d, image=%d, head_lamp_left=%06x, head_lamp_right=%06x, neo_left=%06x, neo_right=%06x)",
		p.Time, p.Serial, p.Tone, p.Duration, p.Image,
		p.HeadLampLeft&colorMask, p.HeadLampRight&colorMask, p.NeoLeft&colorMask, p.NeoRight&colorMask)
}

// BotCommand drives a robot's motors and servos. Only the extended form
// (servo1, servo2, data1 included) is valid on the wire; the historical
// short form is rejected as a short buffer.
type BotCommand struct {
	Header
	CommandType uint8
	Motor1      int16
	Motor2      int16
	Motor3      int16
	Motor4      int16
	Duration    int16
	Servo1      int16
	Servo2      int16
	Data1       int32
}

// DecodeBotCommand parses a bot command packet from its canonical bytes.
func DecodeBotCommand(data []byte) (*BotCommand, error) {
	h, err := requireVariant(data, TypeBotCommand, BotCommandSize)
	if err != nil {
		return nil, err
	}

	return &BotCommand{
		Header:      h,
		CommandType: data[9],
		Motor1:      int16(binary.LittleEndian.Uint16(data[10:12])),
		Motor2:      int16(binary.LittleEndian.Uint16(data[12:14])),
		Motor3:      int16(binary.LittleEndian.Uint16(data[14:16])),
		Motor4:      int16(binary.LittleEndian.Uint16(data[16:18])),
		Duration:    int16(binary.LittleEndian.Uint16(data[18:20])),
		Servo1:      int16(binary.LittleEndian.Uint16(data[20:22])),
		Servo2:      int16(binary.LittleEndian.Uint16(data[22:24])),
		Data1:       int32(binary.LittleEndian.Uint32(data[24:28])),
	}, nil
}

func (p *BotCommand) Encode() []byte {
	buf := make([]byte, BotCommandSize)
	p.stamp(TypeBotCommand).encodeTo(buf)
	buf[9] = p.CommandType
	binary.LittleEndian.PutUint16(buf[10:12], uint16(p.Motor1))
	binary.LittleEndian.PutUint16(buf[12:14], uint16(p.Motor2))
	binary.LittleEndian.PutUint16(buf[14:16], uint16(p.Motor3))
	binary.LittleEndian.PutUint16(buf[16:18], uint16(p.Motor4))
	binary.LittleEndian.PutUint16(buf[18:20], uint16(p.Duration))
	binary.LittleEndian.PutUint16(buf[20:22], uint16(p.Servo1))
	binary.LittleEndian.PutUint16(buf[22:24], uint16(p.Servo2))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(p.Data1))

	return buf
}

func (p *BotCommand) String() string {
	return fmt.Sprintf("BotCommand(time=%d, serial=%d, command_type=%d, motor1=%d, motor2=%d, motor3=%d, motor4=%d, duration=%d, servo1=%d, servo2=%d, data1=%d)",
		p.Time, p.Serial, p.CommandType, p.Motor1, p.Motor2, p.Motor3, p.Motor4, p.Duration, p.Servo1, p.Servo2, p.Data1)
}

// BotStatus reports a robot's button state and accelerometer reading.
type BotStatus struct {
	Header
	Buttons uint8
	AccelX  int16
	AccelY  int16
	AccelZ  int16
}

// DecodeBotStatus parses a bot status packet from its canonical bytes.
func DecodeBotStatus(data []byte) (*BotStatus, error) {
	h, err := requireVariant(data, TypeBotStatus, BotStatusSize)
	if err != nil {
		return nil, err
	}

	return &BotStatus{
		Header:  h,
		Buttons: data[9],
		AccelX:  int16(binary.LittleEndian.Uint16(data[10:12])),
		AccelY:  int16(binary.LittleEndian.Uint16(data[12:14])),
		AccelZ:  int16(binary.LittleEndian.Uint16(data[14:16])),
	}, nil
}

func (p *BotStatus) Encode() []byte {
	buf := make([]byte, BotStatusSize)
	p.stamp(TypeBotStatus).encodeTo(buf)
	buf[9] = p.Buttons
	binary.LittleEndian.PutUint16(buf[10:12], uint16(p.AccelX))
	binary.LittleEndian.PutUint16(buf[12:14], uint16(p.AccelY))
	binary.LittleEndian.PutUint16(buf[14:16], uint16(p.AccelZ))

	return buf
}

func (p *BotStatus) String() string {
	return fmt.Sprintf("BotStatus(time=%d, serial=%d, buttons=0x%02x, accel_x=%d, accel_y=%d, accel_z=%d)",
		p.Time, p.Serial, p.Buttons, p.AccelX, p.AccelY, p.AccelZ)
}

// Joystick carries joystick position, button bits, and accelerometer data.
type Joystick struct {
	Header
	X       uint16
	Y       uint16
	Buttons uint8
	AccelX  int16
	AccelY  int16
	AccelZ  int16
}

// DecodeJoystick parses a joystick packet from its canonical bytes.
func DecodeJoystick(data []byte) (*Joystick, error) {
	h, err := requireVariant(data, TypeJoystick, JoystickSize)
	if err != nil {
		return nil, err
	}

	return &Joystick{
		Header:  h,
		X:       binary.LittleEndian.Uint16(data[9:11]),
		Y:       binary.LittleEndian.Uint16(data[11:13]),
		Buttons: data[13],
		AccelX:  int16(binary.LittleEndian.Uint16(data[14:16])),
		AccelY:  int16(binary.LittleEndian.Uint16(data[16:18])),
		AccelZ:  int16(binary.LittleEndian.Uint16(data[18:20])),
	}, nil
}

func (p *Joystick) Encode() []byte {
	buf := make([]byte, JoystickSize)
	p.stamp(TypeJoystick).encodeTo(buf)
	binary.LittleEndian.PutUint16(buf[9:11], p.X)
	binary.LittleEndian.PutUint16(buf[11:13], p.Y)
	buf[13] = p.Buttons
	binary.LittleEndian.PutUint16(buf[14:16], uint16(p.AccelX))
	binary.LittleEndian.PutUint16(buf[16:18], uint16(p.AccelY))
	binary.LittleEndian.PutUint16(buf[18:20], uint16(p.AccelZ))

	return buf
}

// ButtonPressed reports whether the given button bit is set.
func (p *Joystick) ButtonPressed(button uint) bool {
	return p.Buttons&(1<<button) != 0
}

func (p *Joystick) String() string {
	return fmt.Sprintf("Joystick(time=%d, serial=%d, x=%d, y=%d, buttons=0x%02x, accel_x=%d, accel_y=%d, accel_z=%d)",
		p.Time, p.Serial, p.X, p.Y, p.Buttons, p.AccelX, p.AccelY, p.AccelZ)
}

// Raw is the fallback for unrecognized type tags. The payload is every
// byte after the header, kept opaque so future tags round-trip losslessly.
type Raw struct {
	Header
	Payload []byte
}

// DecodeRaw parses any buffer long enough to hold a header, keeping the
// remainder as opaque payload.
func DecodeRaw(data []byte) (*Raw, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	payload := make([]byte, len(data)-HeaderSize)
	copy(payload, data[HeaderSize:])

	return &Raw{Header: h, Payload: payload}, nil
}

func (p *Raw) Encode() []byte {
	buf := make([]byte, HeaderSize+len(p.Payload))
	p.Header.encodeTo(buf)
	copy(buf[HeaderSize:], p.Payload)

	return buf
}

func (p *Raw) String() string {
	return fmt.Sprintf("Raw(type=%d, time=%d, serial=%d, payload=%s)",
		p.Type, p.Time, p.Serial, hex.EncodeToString(p.Payload))
}

// stamp returns the header with the variant's canonical tag, so encoding a
// hand-built value never emits a mismatched type byte.
func (h Header) stamp(t Type) Header {
	h.Type = t

	return h
}

func requireVariant(data []byte, want Type, size int) (Header, error) {
	h, err := parseHeader(data)
	if err != nil {
		return Header{}, err
	}
	if h.Type != want {
		return Header{}, fmt.Errorf("%w: tag %d, want %d", ErrWrongVariant, h.Type, want)
	}
	if len(data) < size {
		return Header{}, fmt.Errorf("%w: tag %d needs %d bytes, got %d", ErrShortBuffer, want, size, len(data))
	}

	return h, nil
}
