// Package relay speaks the line protocol of the serial-to-radio relay:
// outbound packets become hex command lines, inbound lines are classified
// into radio frames, log text, and other relay commands.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
)

const (
	// DefaultBaudRate matches the relay firmware's serial speed.
	DefaultBaudRate = 115200

	defaultReadTimeout = 100 * time.Millisecond
	defaultIdleSleep   = 50 * time.Millisecond

	readChunkSize = 512
)

// Stream is the byte stream the relay is reached over. A read that times
// out must return n == 0 with a nil error, which is how serial ports with
// a read timeout behave.
type Stream interface {
	io.Reader
	io.Writer
	Close() error
}

type drainer interface {
	Drain() error
}

type inputResetter interface {
	ResetInputBuffer() error
}

// Options tune the relay's polling behavior. Zero values select defaults.
type Options struct {
	BaudRate    int
	ReadTimeout time.Duration
	IdleSleep   time.Duration
}

func (o Options) withDefaults() Options {
	if o.BaudRate <= 0 {
		o.BaudRate = DefaultBaudRate
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = defaultReadTimeout
	}
	if o.IdleSleep <= 0 {
		o.IdleSleep = defaultIdleSleep
	}

	return o
}

// Relay owns a stream exclusively and turns it into a sequence of
// classified events. It is single-threaded: one caller polls at a time.
type Relay struct {
	stream    Stream
	device    string
	idleSleep time.Duration

	pending []byte
	chunk   []byte
}

// NewRelay wraps an already-open stream. The stream's own read timeout
// must be short so the polling loop can re-check its deadline.
func NewRelay(stream Stream, opts Options) *Relay {
	opts = opts.withDefaults()

	return &Relay{
		stream:    stream,
		idleSleep: opts.IdleSleep,
		chunk:     make([]byte, readChunkSize),
	}
}

// Open resolves a serial device (auto-detecting when path is empty), opens
// it with the configured baud rate and read timeout, and wraps it.
func Open(path string, opts Options) (*Relay, error) {
	resolved, err := ResolveDevice(path)
	if err != nil {
		return nil, err
	}

	opts = opts.withDefaults()
	port, err := serial.Open(resolved, &serial.Mode{BaudRate: opts.BaudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %q: %w", resolved, err)
	}
	if err := port.SetReadTimeout(opts.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set serial read timeout: %w", err)
	}

	r := NewRelay(port, opts)
	r.device = resolved

	return r, nil
}

// Device reports the resolved device path, when opened through Open.
func (r *Relay) Device() string {
	return r.device
}

func (r *Relay) Close() error {
	return r.stream.Close()
}

// ResetInput discards buffered inbound data, both the relay's partial-line
// buffer and the port's input buffer when the stream supports it.
func (r *Relay) ResetInput() error {
	r.pending = nil
	if resetter, ok := r.stream.(inputResetter); ok {
		return resetter.ResetInputBuffer()
	}

	return nil
}

// Send hex-encodes a frame and asks the relay to transmit it over radio.
// It returns the literal command line written, without the newline.
func (r *Relay) Send(frame []byte) (string, error) {
	return r.SendCommand(CmdSend, frame)
}

// SendCommand is Send with an explicit command prefix.
func (r *Relay) SendCommand(prefix string, frame []byte) (string, error) {
	return r.writeLine(prefix, EncodeFrameHex(frame))
}

// SendHex sends pre-encoded hex text, stripping embedded spaces.
func (r *Relay) SendHex(text string) (string, error) {
	return r.SendHexCommand(CmdSend, text)
}

// SendHexCommand is SendHex with an explicit command prefix.
func (r *Relay) SendHexCommand(prefix, text string) (string, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, " ", ""))

	return r.writeLine(prefix, cleaned)
}

func (r *Relay) writeLine(prefix, payloadHex string) (string, error) {
	command := strings.TrimSpace(prefix + ": " + payloadHex)
	if _, err := io.WriteString(r.stream, command+"\n"); err != nil {
		return "", fmt.Errorf("write command: %w", err)
	}
	if d, ok := r.stream.(drainer); ok {
		if err := d.Drain(); err != nil {
			return "", fmt.Errorf("drain output: %w", err)
		}
	}

	return command, nil
}

// ReadEvent returns the next classified event. The context deadline bounds
// the poll: expiry surfaces as the context's error and consumes nothing.
// Blank lines are skipped; stream errors are fatal to the relay instance.
func (r *Relay) ReadEvent(ctx context.Context) (Event, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}

		line, ok, err := r.readLine()
		if err != nil {
			return Event{}, fmt.Errorf("read line: %w", err)
		}
		if !ok {
			if !sleepWithContext(ctx, r.idleSleep) {
				return Event{}, ctx.Err()
			}
			continue
		}

		text := strings.TrimRight(line, "\r\n")
		if text == "" {
			continue
		}

		return classifyLine(text), nil
	}
}

// readLine assembles the next newline-terminated line. ok is false when
// the underlying read timed out before a full line arrived; any partial
// line stays buffered for the next call.
func (r *Relay) readLine() (string, bool, error) {
	for {
		if i := bytes.IndexByte(r.pending, '\n'); i >= 0 {
			line := string(r.pending[:i+1])
			r.pending = r.pending[i+1:]

			return line, true, nil
		}

		n, err := r.stream.Read(r.chunk)
		if n > 0 {
			r.pending = append(r.pending, r.chunk[:n]...)
			continue
		}
		if err != nil {
			return "", false, err
		}

		return "", false, nil
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
